package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Geinome/dsharp/internal/emit"
	"github.com/Geinome/dsharp/internal/graphio"
	"github.com/Geinome/dsharp/internal/model"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <model.dsm>",
	Short: "Dump the declaration table of a resolved model",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().Bool("order", false, "show the emission order instead of file order")
	inspectCmd.Flags().Bool("include-tests", false, "keep test-only declarations when showing the emission order")
}

func runInspect(cmd *cobra.Command, args []string) error {
	showOrder, err := cmd.Flags().GetBool("order")
	if err != nil {
		return err
	}
	includeTests, err := cmd.Flags().GetBool("include-tests")
	if err != nil {
		return err
	}

	graph, digest, err := graphio.Load(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "module %s (%s)\n", graph.ModuleName, digest)

	if showOrder {
		res := emit.Select(graph, emit.SelectOptions{IncludeTests: includeTests})
		fmt.Fprintf(out, "emission order (%d public, %d internal):\n", len(res.Public), len(res.Internal))
		for _, d := range res.Ordered {
			printDecl(out, d)
		}
		return nil
	}

	for _, ns := range graph.Namespaces {
		fmt.Fprintf(out, "namespace %s\n", ns.Name)
		for _, d := range ns.Declarations {
			printDecl(out, d)
		}
	}
	return nil
}

func printDecl(out io.Writer, d *model.Declaration) {
	flags := d.Flags.Strings()
	detail := ""
	if len(flags) > 0 {
		detail = " [" + strings.Join(flags, " ") + "]"
	}
	if d.Kind == model.DeclClass {
		detail += fmt.Sprintf(" depth=%d", d.Depth)
	}
	fmt.Fprintf(out, "  %-9s %s (%d members)%s\n", d.Kind, d.QualifiedName, len(d.Members), detail)
}
