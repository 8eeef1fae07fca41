package model

// MemberFlags encode member attributes relevant to emission and renaming.
type MemberFlags uint8

const (
	MemberFlagPublic MemberFlags = 1 << iota
	MemberFlagStatic
)

// Strings returns a slice of textual flag labels.
func (f MemberFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 2)
	if f&MemberFlagPublic != 0 {
		labels = append(labels, "public")
	}
	if f&MemberFlagStatic != 0 {
		labels = append(labels, "static")
	}
	return labels
}

// Member is a named member of a declaration (method, property, field).
type Member struct {
	Name string
	// EmissionName is the generated script name, seeded with Name by the
	// front-end and possibly rewritten by the identifier transform.
	EmissionName string
	Flags        MemberFlags
	// OverrideOf names the base-class member this member overrides, empty
	// when the member introduces a fresh slot. The identifier transform
	// resolves it against the base chain; failure to resolve is a defect in
	// the upstream resolution stage.
	OverrideOf string
	Body       *Body
}

// IsPublic reports whether the member is part of the public contract.
func (m *Member) IsPublic() bool {
	return m.Flags&MemberFlagPublic != 0
}
