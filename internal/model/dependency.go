package model

// DependencyRef describes an external module dependency of the produced
// artifact, as wired into the packaging template.
type DependencyRef struct {
	// Name is the logical dependency name used in lookup-style load calls.
	Name string
	// Path is the load path substituted into the {requires} token.
	Path string
	// Identifier is the local binding identifier inside the artifact.
	Identifier string
	// DelayLoad excludes the dependency from eager wiring; delay-loaded
	// dependencies are loaded later by other means.
	DelayLoad bool
}
