package pack

import (
	"strings"

	"github.com/Geinome/dsharp/internal/model"
)

const (
	// runtimeDependencyName is the reserved logical name of the host runtime
	// module. Lookup-style templates must load it from its versioned kernel
	// path; this substitution is a named exception for exactly this one
	// dependency, not a general rewrite rule.
	runtimeDependencyName = "dsharp"
	runtimeLookupPath     = "dsharp/kernel"
)

// eager filters out delay-loaded dependencies, which are excluded from all
// wiring the template performs at load time.
func eager(deps []model.DependencyRef) []model.DependencyRef {
	out := make([]model.DependencyRef, 0, len(deps))
	for _, d := range deps {
		if d.DelayLoad {
			continue
		}
		out = append(out, d)
	}
	return out
}

// RequiresList renders the {requires} token: the quoted load paths of all
// eager dependencies, comma-joined.
func RequiresList(deps []model.DependencyRef) string {
	parts := make([]string, 0, len(deps))
	for _, d := range eager(deps) {
		parts = append(parts, "'"+d.Path+"'")
	}
	return strings.Join(parts, ", ")
}

// DependencyList renders the {dependencies} token: the local binding
// identifiers of all eager dependencies, comma-joined.
func DependencyList(deps []model.DependencyRef) string {
	parts := make([]string, 0, len(deps))
	for _, d := range eager(deps) {
		parts = append(parts, d.Identifier)
	}
	return strings.Join(parts, ", ")
}

// DependencyLookup renders the {dependenciesLookup} token: a sequence of
// `identifier = load('logical-name')` bindings terminated by a semicolon,
// or the empty string when there is nothing to bind.
func DependencyLookup(deps []model.DependencyRef) string {
	eagerDeps := eager(deps)
	if len(eagerDeps) == 0 {
		return ""
	}
	parts := make([]string, 0, len(eagerDeps))
	for _, d := range eagerDeps {
		name := d.Name
		if name == runtimeDependencyName {
			name = runtimeLookupPath
		}
		parts = append(parts, d.Identifier+" = load('"+name+"')")
	}
	return strings.Join(parts, ", ") + ";"
}
