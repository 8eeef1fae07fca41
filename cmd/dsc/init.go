package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Geinome/dsharp/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a new dsharp project",
	Long: `Initialize a new dsharp project by creating a project manifest (dsharp.toml)
and a default packaging template (module.jst). If [path|name] is omitted, the
current directory is initialized. A non-existing name creates a directory.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const defaultTemplate = `// {name} {version}
// {description}
// {copyright}
// compiled with dsharp {compiler}

define('{name}', [{requires}], function({dependencies}) {
	'use strict';

{script}
});
`

func manifestTemplate(name string) string {
	return fmt.Sprintf(`[module]
name = %q
version = "0.1.0"
description = ""
copyright = ""

[build]
model = "obj/%s.dsm"
output = "bin/%s.js"
template = "module.jst"
minify = false
`, name, name, name)
}

func runInit(cmd *cobra.Command, args []string) error {
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	name := strings.TrimSpace(filepath.Base(target))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "dsharp-project"
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(manifestPath, []byte(manifestTemplate(name)), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}
	templatePath := filepath.Join(target, "module.jst")
	if _, err := os.Stat(templatePath); errors.Is(err, os.ErrNotExist) {
		if err := os.WriteFile(templatePath, []byte(defaultTemplate), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", templatePath, err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s\ncreated %s\n", manifestPath, templatePath)
	return nil
}
