package model

// DeclKind classifies a top-level declaration in the resolved model.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclClass
	DeclInterface
	DeclRecord
	DeclEnum
	DeclDelegate
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclInterface:
		return "interface"
	case DeclRecord:
		return "record"
	case DeclEnum:
		return "enum"
	case DeclDelegate:
		return "delegate"
	default:
		return "invalid"
	}
}

// DeclFlags encode misc declaration attributes for quick checks.
type DeclFlags uint16

const (
	DeclFlagPublic DeclFlags = 1 << iota
	// DeclFlagAppDefined marks declarations written in the sources being
	// compiled, as opposed to imported from a precompiled dependency.
	DeclFlagAppDefined
	DeclFlagTestOnly
	// DeclFlagModuleContainer marks a synthetic class holding only
	// module-level members; it has no instance identity of its own.
	DeclFlagModuleContainer
	// DeclFlagExtensionContainer marks a synthetic class whose members attach
	// behavior to another type; it is never named directly by consumers.
	DeclFlagExtensionContainer
	// DeclFlagInlinedEnum marks an enumeration whose member values are
	// substituted at every reference site, requiring no runtime object.
	DeclFlagInlinedEnum
)

// Strings returns a slice of textual flag labels.
func (f DeclFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 6)
	if f&DeclFlagPublic != 0 {
		labels = append(labels, "public")
	}
	if f&DeclFlagAppDefined != 0 {
		labels = append(labels, "app-defined")
	}
	if f&DeclFlagTestOnly != 0 {
		labels = append(labels, "test-only")
	}
	if f&DeclFlagModuleContainer != 0 {
		labels = append(labels, "module-container")
	}
	if f&DeclFlagExtensionContainer != 0 {
		labels = append(labels, "extension-container")
	}
	if f&DeclFlagInlinedEnum != 0 {
		labels = append(labels, "inlined-enum")
	}
	return labels
}

// Declaration describes a named, typed program entity produced by the
// front-end. The backend only ever mutates emission names (and body payloads
// during minification); everything else is read-only by the time it gets here.
type Declaration struct {
	Name          string
	QualifiedName string
	// EmissionName is the generated script name. The front-end seeds it with
	// Name; the identifier transform may overwrite it.
	EmissionName string
	Kind         DeclKind
	Flags        DeclFlags
	// Depth is the inheritance distance from the ultimate base (0 for
	// roots). Meaningful for classes only.
	Depth int
	// Base points at the resolved base class, nil for roots and non-classes.
	Base *Declaration
	// Canonical points at the representative fragment when this declaration
	// is one of several partial fragments of the same logical type. Only the
	// fragment with a nil Canonical participates in ordering and export.
	Canonical *Declaration
	// Constructor is the record constructor, when present. A record without
	// one is purely structural and erased at emission time.
	Constructor *Member
	Members     []*Member
	Body        *Body
}

// IsPublic reports whether the declaration is part of the public contract.
func (d *Declaration) IsPublic() bool {
	return d.Flags&DeclFlagPublic != 0
}

// IsAppDefined reports whether the declaration was compiled from sources.
func (d *Declaration) IsAppDefined() bool {
	return d.Flags&DeclFlagAppDefined != 0
}

// IsModuleContainer reports whether the declaration is a synthetic module
// container class.
func (d *Declaration) IsModuleContainer() bool {
	return d.Flags&DeclFlagModuleContainer != 0
}

// IsExtensionContainer reports whether the declaration is a synthetic
// extension container class.
func (d *Declaration) IsExtensionContainer() bool {
	return d.Flags&DeclFlagExtensionContainer != 0
}

// IsCanonical reports whether this declaration represents its logical type in
// ordering and export. Partial fragments carrying a canonical back-reference
// are excluded.
func (d *Declaration) IsCanonical() bool {
	return d.Canonical == nil
}
