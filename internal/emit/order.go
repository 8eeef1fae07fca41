package emit

import (
	"sort"

	"github.com/Geinome/dsharp/internal/model"
)

// SelectOptions tune declaration selection.
type SelectOptions struct {
	// IncludeTests keeps test-only declarations in the emission list.
	IncludeTests bool
}

// OrderResult is the outcome of declaration selection and ordering.
// Public and Internal partition Ordered: they are disjoint and their union is
// exactly the emission list.
type OrderResult struct {
	Ordered  []*model.Declaration
	Public   []*model.Declaration
	Internal []*model.Declaration
	// HasNonModuleInternal is true when at least one internal declaration is
	// not a synthetic module container. Module containers alone never need an
	// internal export table: their members are reached through a shared
	// import binding, not through name lookup.
	HasNonModuleInternal bool
}

// kindRank fixes the emission order across declaration categories. Any fixed
// total order works; this one groups classes first so the depth ordering of
// the inheritance hierarchy stays contiguous.
func kindRank(k model.DeclKind) int {
	switch k {
	case model.DeclClass:
		return 0
	case model.DeclInterface:
		return 1
	case model.DeclRecord:
		return 2
	case model.DeclEnum:
		return 3
	}
	return 4
}

// selectable reports whether a declaration survives selection.
func selectable(d *model.Declaration, opts SelectOptions) bool {
	if !d.IsCanonical() {
		return false
	}
	if !d.IsAppDefined() {
		return false
	}
	if d.Kind == model.DeclDelegate {
		return false
	}
	if d.Flags&model.DeclFlagTestOnly != 0 && !opts.IncludeTests {
		return false
	}
	if d.Kind == model.DeclEnum {
		// Inlined enums have their values substituted at every reference
		// site; internal enums have no observers left after inlining. Neither
		// needs a runtime object.
		if !d.IsPublic() || d.Flags&model.DeclFlagInlinedEnum != 0 {
			return false
		}
	}
	return true
}

// Select walks every namespace with application-defined declarations,
// selects the emittable declarations and orders them deterministically:
// primary key is the category rank, secondary key (classes only) is
// inheritance depth ascending, and remaining ties keep first-appearance
// order. Depth ordering guarantees a base class is emitted before any class
// derived from it; it is not a general topological sort (classes at equal
// depth with declaration-order dependencies between them are not reordered).
func Select(graph *model.SymbolGraph, opts SelectOptions) OrderResult {
	var res OrderResult
	appearance := make(map[*model.Declaration]int)

	for _, d := range graph.Declarations() {
		if !selectable(d, opts) {
			continue
		}
		appearance[d] = len(res.Ordered)
		res.Ordered = append(res.Ordered, d)
	}

	sort.SliceStable(res.Ordered, func(i, j int) bool {
		di, dj := res.Ordered[i], res.Ordered[j]
		ri, rj := kindRank(di.Kind), kindRank(dj.Kind)
		if ri != rj {
			return ri < rj
		}
		if di.Kind == model.DeclClass && di.Depth != dj.Depth {
			return di.Depth < dj.Depth
		}
		return appearance[di] < appearance[dj]
	})

	for _, d := range res.Ordered {
		if d.IsPublic() {
			res.Public = append(res.Public, d)
			continue
		}
		res.Internal = append(res.Internal, d)
		if !d.IsModuleContainer() {
			res.HasNonModuleInternal = true
		}
	}
	return res
}
