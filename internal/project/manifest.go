// Package project locates and loads the dsharp.toml project manifest.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/Geinome/dsharp/internal/model"
)

// ManifestName is the file the loader searches for, walking parent
// directories from the start directory upward.
const ManifestName = "dsharp.toml"

// Manifest is a located and decoded project manifest.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

type Config struct {
	Module       ModuleConfig       `toml:"module"`
	Build        BuildConfig        `toml:"build"`
	Dependencies []DependencyConfig `toml:"dependency"`
}

type ModuleConfig struct {
	Name        string `toml:"name"`
	Version     string `toml:"version"`
	Description string `toml:"description"`
	Copyright   string `toml:"copyright"`
}

type BuildConfig struct {
	// Model is the resolved-model input (.dsm) produced by the front-end.
	Model string `toml:"model"`
	// Output is the artifact path, relative to the manifest root.
	Output string `toml:"output"`
	// Template wraps the generated script when set; without one the script
	// is the artifact verbatim.
	Template     string `toml:"template"`
	Minify       bool   `toml:"minify"`
	IncludeTests bool   `toml:"include-tests"`
	// Indent is the indent unit of the generated script (tab when empty).
	Indent string `toml:"indent"`
}

type DependencyConfig struct {
	Name       string `toml:"name"`
	Path       string `toml:"path"`
	Identifier string `toml:"identifier"`
	DelayLoad  bool   `toml:"delay-load"`
}

// Find walks from startDir toward the filesystem root looking for a
// manifest. ok is false when none exists on the path.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
	}
	m := &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) validate() error {
	if m.Config.Module.Name == "" {
		return fmt.Errorf("%s: module.name is required", m.Path)
	}
	if m.Config.Build.Model == "" {
		return fmt.Errorf("%s: build.model is required", m.Path)
	}
	seen := make(map[string]bool, len(m.Config.Dependencies))
	for i, d := range m.Config.Dependencies {
		if d.Name == "" || d.Identifier == "" {
			return fmt.Errorf("%s: dependency %d needs both name and identifier", m.Path, i)
		}
		if seen[d.Identifier] {
			return fmt.Errorf("%s: dependency identifier %q bound twice", m.Path, d.Identifier)
		}
		seen[d.Identifier] = true
	}
	return nil
}

// Dependencies converts the manifest dependency tables into model references.
// A dependency without an explicit load path loads by its logical name.
func (m *Manifest) Dependencies() []model.DependencyRef {
	out := make([]model.DependencyRef, 0, len(m.Config.Dependencies))
	for _, d := range m.Config.Dependencies {
		path := d.Path
		if path == "" {
			path = d.Name
		}
		out = append(out, model.DependencyRef{
			Name:       d.Name,
			Path:       path,
			Identifier: d.Identifier,
			DelayLoad:  d.DelayLoad,
		})
	}
	return out
}

// ResolvePath turns a manifest-relative path into an absolute one.
func (m *Manifest) ResolvePath(rel string) string {
	if rel == "" || filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(m.Root, rel)
}
