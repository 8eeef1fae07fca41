package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Geinome/dsharp/internal/backend"
	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/pack"
	"github.com/Geinome/dsharp/internal/project"
	"github.com/Geinome/dsharp/internal/version"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] [path...]",
	Short: "Build script artifacts from resolved models",
	Long: `Build one or more dsharp projects. Each path must contain (or sit below)
a dsharp.toml manifest describing the model input, the packaging template and
the dependency wiring. With no path the current directory is built.
Independent projects are built in parallel.`,
	RunE: buildExecution,
}

func buildExecution(cmd *cobra.Command, args []string) error {
	minify, err := cmd.Flags().GetBool("minify")
	if err != nil {
		return err
	}
	minifyChanged := cmd.Flags().Changed("minify")
	includeTests, err := cmd.Flags().GetBool("include-tests")
	if err != nil {
		return err
	}
	includeTestsChanged := cmd.Flags().Changed("include-tests")
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}

	targets := args
	if len(targets) == 0 {
		targets = []string{"."}
	}

	reqs := make([]*backend.BuildRequest, 0, len(targets))
	units := make([]string, 0, len(targets))
	for _, target := range targets {
		manifestPath, found, err := project.Find(target)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no %s found under %q", project.ManifestName, target)
		}
		manifest, err := project.Load(manifestPath)
		if err != nil {
			return err
		}
		req := requestFromManifest(manifest, maxDiagnostics)
		if minifyChanged {
			req.Minify = minify
		}
		if includeTestsChanged {
			req.IncludeTests = includeTests
		}
		reqs = append(reqs, req)
		units = append(units, manifest.Config.Module.Name)
	}

	useUI := shouldUseUI(uiValue) && !quiet
	var results []backend.BuildResult
	if useUI {
		results, err = runBuildAllWithUI(cmd.Context(), "dsc build", units, reqs)
	} else {
		results, err = backend.BuildAll(cmd.Context(), reqs)
	}

	colorize := colorEnabled(cmd)
	failed := false
	for _, res := range results {
		if res.Bag != nil && res.Bag.Len() > 0 {
			res.Bag.Sort()
			if printErr := diag.Print(os.Stderr, res.Bag, colorize); printErr != nil {
				return printErr
			}
		}
		if res.Bag != nil && res.Bag.HasErrors() {
			failed = true
			continue
		}
		if showTimings {
			fmt.Fprintf(os.Stdout, "inputs %s\n", res.InputDigest.String()[:12])
			printStageTimings(os.Stdout, res.Timings)
		}
		if !quiet && res.OutputPath != "" {
			if _, printErr := fmt.Fprintf(os.Stdout, "built %s\n", displayPath(res.OutputPath)); printErr != nil {
				return printErr
			}
		}
	}
	if failed || err != nil {
		return fmt.Errorf("build failed")
	}
	return nil
}

// requestFromManifest maps the manifest onto a build request; command-line
// flags may still override the minify and include-tests switches afterwards.
func requestFromManifest(m *project.Manifest, maxDiagnostics int) *backend.BuildRequest {
	cfg := m.Config
	output := cfg.Build.Output
	if output == "" {
		output = cfg.Module.Name + ".js"
	}
	return &backend.BuildRequest{
		Unit:         cfg.Module.Name,
		ModelPath:    m.ResolvePath(cfg.Build.Model),
		OutputPath:   m.ResolvePath(output),
		TemplatePath: m.ResolvePath(cfg.Build.Template),
		Minify:       cfg.Build.Minify,
		IncludeTests: cfg.Build.IncludeTests,
		IndentUnit:   cfg.Build.Indent,
		Dependencies: m.Dependencies(),
		Tokens: pack.Tokens{
			Name:        cfg.Module.Name,
			Description: cfg.Module.Description,
			Copyright:   cfg.Module.Copyright,
			Version:     cfg.Module.Version,
			Compiler:    version.Number,
		},
		MaxDiagnostics: maxDiagnostics,
	}
}

func shouldUseUI(mode string) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

func displayPath(path string) string {
	cwd, err := os.Getwd()
	if err != nil {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || len(rel) > len(path) {
		return path
	}
	return filepath.ToSlash(rel)
}

func init() {
	buildCmd.Flags().Bool("minify", false, "obfuscate internal identifiers (overrides manifest)")
	buildCmd.Flags().Bool("include-tests", false, "emit test-only declarations (overrides manifest)")
	buildCmd.Flags().String("ui", "auto", "progress user interface (auto|on|off)")
}
