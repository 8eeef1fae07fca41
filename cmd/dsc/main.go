// Package main implements the dsc CLI, the dsharp script backend driver.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Geinome/dsharp/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "dsc",
	Short: "dsharp script backend and packager",
	Long:  `dsc lowers a resolved dsharp program model into a deployable script module`,
}

func main() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(emitCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// colorEnabled resolves the --color mode against the output terminal.
func colorEnabled(cmd *cobra.Command) bool {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false
	}
	switch mode {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(os.Stdout)
	}
}
