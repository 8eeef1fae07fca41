package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Geinome/dsharp/internal/backend"
	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/graphio"
	"github.com/Geinome/dsharp/internal/pack"
	"github.com/Geinome/dsharp/internal/version"
)

var emitCmd = &cobra.Command{
	Use:   "emit <model.dsm>",
	Short: "Compile a single resolved model without a project manifest",
	Long: `Compile one resolved model and print the packaged artifact to standard
output (or to --output). Unlike build, emit takes no manifest: template and
switches come from flags, and no dependencies are wired.`,
	Args: cobra.ExactArgs(1),
	RunE: runEmit,
}

func init() {
	emitCmd.Flags().Bool("minify", false, "obfuscate internal identifiers")
	emitCmd.Flags().Bool("include-tests", false, "emit test-only declarations")
	emitCmd.Flags().String("template", "", "packaging template path")
	emitCmd.Flags().String("indent", "", "indent unit of the emitted script (tab when empty)")
	emitCmd.Flags().StringP("output", "o", "", "write the artifact to a file instead of stdout")
}

func runEmit(cmd *cobra.Command, args []string) error {
	minify, err := cmd.Flags().GetBool("minify")
	if err != nil {
		return err
	}
	includeTests, err := cmd.Flags().GetBool("include-tests")
	if err != nil {
		return err
	}
	templatePath, err := cmd.Flags().GetString("template")
	if err != nil {
		return err
	}
	indentUnit, err := cmd.Flags().GetString("indent")
	if err != nil {
		return err
	}
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	graph, _, err := graphio.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}

	var template string
	var includes pack.IncludeResolver
	if templatePath != "" {
		data, err := os.ReadFile(templatePath)
		if err != nil {
			return fmt.Errorf("failed to read template: %w", err)
		}
		template = string(data)
		includes = pack.FileResolver{Root: filepath.Dir(templatePath)}
	}

	res, compileErr := backend.Compile(cmd.Context(), &backend.CompileRequest{
		Unit:         graph.ModuleName,
		Graph:        graph,
		Minify:       minify,
		IncludeTests: includeTests,
		IndentUnit:   indentUnit,
		Template:     template,
		Includes:     includes,
		Tokens: pack.Tokens{
			Name:     graph.ModuleName,
			Compiler: version.Number,
		},
		MaxDiagnostics: maxDiagnostics,
	})
	if res.Bag != nil && res.Bag.Len() > 0 {
		res.Bag.Sort()
		if printErr := diag.Print(os.Stderr, res.Bag, colorEnabled(cmd)); printErr != nil {
			return printErr
		}
	}
	if compileErr != nil {
		return compileErr
	}

	if outputPath == "" {
		_, err = fmt.Fprint(cmd.OutOrStdout(), res.Artifact)
		return err
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return err
		}
	}
	return os.WriteFile(outputPath, []byte(res.Artifact), 0o644)
}
