package rename

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/model"
)

// Obfuscator assigns short, deterministic replacement names to eligible
// symbols: internal top-level declarations, internal members and local
// bindings. Names that are part of the public contract are never touched.
// One instance carries the name assignment for a whole compilation, so the
// same original name always maps to the same generated name everywhere the
// artifact can observe it.
type Obfuscator struct {
	globals         map[string]string // internal top-level name -> generated
	props           map[string]string // internal member name -> generated
	globalGenerated map[string]bool

	globalAlloc *allocator
	propAlloc   *allocator
}

func NewObfuscator() *Obfuscator {
	return &Obfuscator{
		globals:         make(map[string]string),
		props:           make(map[string]string),
		globalGenerated: make(map[string]bool),
	}
}

// key normalizes an identifier before it is compared or used as a map key.
// Visually identical identifiers with different code sequences must collapse
// to one symbol, not silently coexist.
func key(name string) string {
	return norm.NFC.String(name)
}

func (o *Obfuscator) Transform(graph *model.SymbolGraph, r diag.Reporter) error {
	decls := baseFirst(graph.Declarations())

	if err := o.validateOverrides(decls, r); err != nil {
		return err
	}
	if err := o.assignTopLevel(decls, r); err != nil {
		return err
	}
	if err := o.assignMembers(decls, r); err != nil {
		return err
	}
	if err := o.assignLocals(decls, r); err != nil {
		return err
	}
	o.rewriteBodies(decls)
	return nil
}

// baseFirst orders declarations so every class appears after its base.
// Non-class declarations and classes with imported bases keep their relative
// declaration order, which keeps the whole assignment deterministic.
func baseFirst(decls []*model.Declaration) []*model.Declaration {
	out := make([]*model.Declaration, 0, len(decls))
	seen := make(map[*model.Declaration]bool)
	inSet := make(map[*model.Declaration]bool, len(decls))
	eligible := make([]*model.Declaration, 0, len(decls))
	for _, d := range decls {
		if d.IsCanonical() && d.IsAppDefined() {
			inSet[d] = true
			eligible = append(eligible, d)
		}
	}
	var visit func(d *model.Declaration)
	visit = func(d *model.Declaration) {
		if seen[d] {
			return
		}
		seen[d] = true
		if d.Base != nil && inSet[d.Base] {
			visit(d.Base)
		}
		out = append(out, d)
	}
	for _, d := range eligible {
		visit(d)
	}
	return out
}

// resolveOverride walks the base chain looking for the member the override
// targets. A claim that cannot be resolved is a defect in the upstream
// resolution stage, never something to repair here.
func resolveOverride(d *model.Declaration, m *model.Member) *model.Member {
	target := key(m.OverrideOf)
	for base := d.Base; base != nil; base = base.Base {
		for _, bm := range base.Members {
			if key(bm.Name) == target {
				return bm
			}
		}
	}
	return nil
}

func (o *Obfuscator) validateOverrides(decls []*model.Declaration, r diag.Reporter) error {
	for _, d := range decls {
		for _, m := range d.Members {
			if m.OverrideOf == "" {
				continue
			}
			if resolveOverride(d, m) == nil {
				msg := fmt.Sprintf("member %s overrides %s, which no base of %s declares",
					m.Name, m.OverrideOf, d.QualifiedName)
				diag.ReportError(r, diag.EmitOverrideBaseMissing,
					diag.Loc{Symbol: d.QualifiedName + "." + m.Name}, msg)
				return fmt.Errorf("unresolvable override %s.%s", d.QualifiedName, m.Name)
			}
		}
	}
	return nil
}

func (o *Obfuscator) assignTopLevel(decls []*model.Declaration, r diag.Reporter) error {
	avoid := make(map[string]bool)
	for _, d := range decls {
		if d.IsPublic() {
			avoid[key(d.Name)] = true
		}
	}
	o.globalAlloc = newAllocator(avoid)

	for _, d := range decls {
		if d.IsPublic() {
			continue
		}
		k := key(d.Name)
		if _, dup := o.globals[k]; dup {
			msg := fmt.Sprintf("two internal declarations named %s share the module scope", d.Name)
			diag.ReportError(r, diag.EmitNameCollision, diag.Loc{Symbol: d.QualifiedName}, msg)
			return fmt.Errorf("duplicate internal declaration name %s", d.Name)
		}
		gen := o.globalAlloc.take()
		o.globals[k] = gen
		o.globalGenerated[gen] = true
		d.EmissionName = gen
	}
	return nil
}

func (o *Obfuscator) assignMembers(decls []*model.Declaration, r diag.Reporter) error {
	public := make(map[string]bool)
	for _, d := range decls {
		for _, m := range d.Members {
			if m.IsPublic() {
				public[key(m.Name)] = true
			}
		}
	}
	if o.propAlloc == nil {
		o.propAlloc = newAllocator(public)
	}

	for _, d := range decls {
		perClass := make(map[string]bool, len(d.Members))
		for _, m := range d.Members {
			k := key(m.Name)
			if perClass[k] {
				msg := fmt.Sprintf("duplicate member %s in %s", m.Name, d.QualifiedName)
				diag.ReportError(r, diag.EmitNameCollision,
					diag.Loc{Symbol: d.QualifiedName + "." + m.Name}, msg)
				return fmt.Errorf("duplicate member name %s.%s", d.QualifiedName, m.Name)
			}
			perClass[k] = true

			if m.OverrideOf != "" {
				// The overriding member must observe the exact generated name
				// of the slot it overrides; base classes were processed first.
				m.EmissionName = resolveOverride(d, m).EmissionName
				continue
			}
			if m.IsPublic() {
				continue
			}
			if public[k] {
				// Some other class exposes a public member of this name. The
				// body rewrite works on flat text and cannot tell the two
				// slots apart, so renaming this one would also rewrite call
				// sites of the public contract. Keep the original name.
				continue
			}
			gen, ok := o.props[k]
			if !ok {
				gen = o.propAlloc.take()
				o.props[k] = gen
			}
			m.EmissionName = gen
		}
	}
	return nil
}

func (o *Obfuscator) assignLocals(decls []*model.Declaration, r diag.Reporter) error {
	// A local may never take a name any module-scope binding observable from
	// its body carries: generated internal names and public top-level names
	// alike, since references to the latter are not rewritten.
	avoid := make(map[string]bool, len(o.globalGenerated))
	for name := range o.globalGenerated {
		avoid[name] = true
	}
	for _, d := range decls {
		if d.IsPublic() {
			avoid[key(d.Name)] = true
		}
	}

	for _, d := range decls {
		bodies := collectBodies(d)
		for _, b := range bodies {
			if b.Scope == nil {
				continue
			}
			seen := make(map[string]bool)
			if err := o.allocScope(d, b.Scope, newAllocator(avoid), seen, r); err != nil {
				return err
			}
		}
	}
	return nil
}

// allocScope assigns slot-ordered names down one scope subtree. A child
// continues from its parent's slot position so it can never reuse a name an
// enclosing scope already handed out, while sibling scopes restart from the
// same position and share names freely.
func (o *Obfuscator) allocScope(d *model.Declaration, s *model.Scope, alloc *allocator, seen map[string]bool, r diag.Reporter) error {
	for _, b := range s.Bindings {
		k := key(b.Name)
		if seen[k] {
			msg := fmt.Sprintf("duplicate local binding %s in a body of %s", b.Name, d.QualifiedName)
			diag.ReportError(r, diag.EmitNameCollision, diag.Loc{Symbol: d.QualifiedName}, msg)
			return fmt.Errorf("duplicate local binding %s", b.Name)
		}
		seen[k] = true
		b.EmissionName = alloc.take()
	}
	for _, child := range s.Children {
		if err := o.allocScope(d, child, alloc.at(), seen, r); err != nil {
			return err
		}
	}
	return nil
}

func collectBodies(d *model.Declaration) []*model.Body {
	var out []*model.Body
	if d.Body != nil {
		out = append(out, d.Body)
	}
	for _, m := range d.Members {
		if m.Body != nil {
			out = append(out, m.Body)
		}
	}
	return out
}

// rewriteBodies rewrites references to renamed symbols inside the generated
// implementation payloads. Precedence within one body: local bindings shadow
// top-level names, which shadow member names.
func (o *Obfuscator) rewriteBodies(decls []*model.Declaration) {
	for _, d := range decls {
		for _, b := range collectBodies(d) {
			table := make(map[string]string, len(o.props)+len(o.globals))
			for k, v := range o.props {
				table[k] = v
			}
			for k, v := range o.globals {
				table[k] = v
			}
			addScopeRenames(b.Scope, table)
			b.Script = rewriteScript(b.Script, table)
		}
	}
}

func addScopeRenames(s *model.Scope, table map[string]string) {
	if s == nil {
		return
	}
	for _, b := range s.Bindings {
		if b.EmissionName != b.Name {
			table[key(b.Name)] = b.EmissionName
		}
	}
	for _, child := range s.Children {
		addScopeRenames(child, table)
	}
}
