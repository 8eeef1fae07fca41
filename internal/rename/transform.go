package rename

import (
	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/model"
)

// Transform renames eligible symbols of the resolved model in place. The two
// implementations are Internalizer (scope-internalization, the default) and
// Obfuscator (minification). Both are deterministic: the same graph visited
// in the same declaration order always yields the same name assignment.
type Transform interface {
	Transform(graph *model.SymbolGraph, r diag.Reporter) error
}

// ForOptions picks the transform for a compilation: the obfuscator when
// minify is set, the internalizer otherwise.
func ForOptions(minify bool) Transform {
	if minify {
		return NewObfuscator()
	}
	return Internalizer{}
}

// Internalizer scopes internal top-level names so they cannot collide with
// anything outside their own compilation artifact, without shortening them.
// Public names, members and locals are left untouched.
type Internalizer struct{}

func (Internalizer) Transform(graph *model.SymbolGraph, r diag.Reporter) error {
	prefix := "$" + sanitizeIdent(graph.ModuleName) + "$"
	for _, d := range graph.Declarations() {
		if !d.IsCanonical() || !d.IsAppDefined() {
			continue
		}
		if d.IsPublic() {
			continue
		}
		d.EmissionName = prefix + d.Name
	}
	return nil
}
