package model

// Body is the generated implementation payload attached to a declaration or
// member. The backend owns none of its internals beyond the lexical scope
// handle: the payload text is produced by the upstream per-construct code
// generator and spliced into the output verbatim (after the identifier
// transform has rewritten renamed references inside it).
type Body struct {
	Script string
	// Scope is the root lexical scope of the payload, used by the identifier
	// transform to discover renameable local bindings. May be nil for bodies
	// with no locals.
	Scope *Scope
}

// Scope models a lexical region of an implementation body with a
// parent-child hierarchy. Bindings are kept in declaration order so that
// renaming is deterministic.
type Scope struct {
	Parent   *Scope
	Bindings []*Binding
	Children []*Scope
}

// Binding is a renameable local binding inside an implementation body.
type Binding struct {
	Name string
	// EmissionName is seeded with Name and rewritten by the obfuscator.
	EmissionName string
}

// NewScope creates a scope, attaching it under parent when one is given.
func NewScope(parent *Scope) *Scope {
	s := &Scope{Parent: parent}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Bind appends a binding with the given name and returns it.
func (s *Scope) Bind(name string) *Binding {
	b := &Binding{Name: name, EmissionName: name}
	s.Bindings = append(s.Bindings, b)
	return b
}
