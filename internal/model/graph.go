package model

// Namespace groups the declarations of one source namespace.
type Namespace struct {
	Name         string
	Declarations []*Declaration
}

// HasAppDeclarations reports whether the namespace owns at least one
// application-defined declaration. Namespaces that only re-export imported
// metadata contribute nothing to emission.
func (n *Namespace) HasAppDeclarations() bool {
	for _, d := range n.Declarations {
		if d.IsAppDefined() {
			return true
		}
	}
	return false
}

// SymbolGraph is the fully resolved program model handed to the backend.
// It is read-mostly: the backend rewrites emission names and minified body
// payloads, and never adds or removes declarations.
type SymbolGraph struct {
	// ModuleName names the produced artifact in the export wrapper and in
	// template substitution.
	ModuleName string
	Namespaces []*Namespace
}

// Declarations iterates all declarations of namespaces that carry
// application-defined declarations, in namespace order then declaration
// order. The slice is rebuilt per call; callers own it.
func (g *SymbolGraph) Declarations() []*Declaration {
	var out []*Declaration
	for _, ns := range g.Namespaces {
		if !ns.HasAppDeclarations() {
			continue
		}
		out = append(out, ns.Declarations...)
	}
	return out
}
