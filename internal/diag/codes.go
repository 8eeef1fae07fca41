package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Emission / model defects (symbol graph violates a backend invariant).
	EmitInfo                Code = 5000
	EmitOverrideBaseMissing Code = 5001
	EmitNameCollision       Code = 5002
	EmitMissingBody         Code = 5003
	EmitDeclarationFailed   Code = 5004

	// Packaging.
	PackInfo           Code = 6000
	PackIncludeCycle   Code = 6001
	PackIncludeTooDeep Code = 6002

	// Build / environment.
	BuildInfo         Code = 7000
	BuildManifest     Code = 7001
	BuildModelRead    Code = 7002
	BuildModelDecode  Code = 7003
	BuildTemplateRead Code = 7004
	BuildOutputWrite  Code = 7005
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	EmitInfo:                "emission note",
	EmitOverrideBaseMissing: "override target missing in base chain",
	EmitNameCollision:       "generated name collision",
	EmitMissingBody:         "declaration has no implementation body",
	EmitDeclarationFailed:   "declaration emitter failed",

	PackInfo:           "packaging note",
	PackIncludeCycle:   "template include cycle",
	PackIncludeTooDeep: "template includes nested too deeply",

	BuildInfo:         "build note",
	BuildManifest:     "invalid project manifest",
	BuildModelRead:    "cannot read model file",
	BuildModelDecode:  "cannot decode model file",
	BuildTemplateRead: "cannot read template",
	BuildOutputWrite:  "cannot write output artifact",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("EMT%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("PKG%04d", ic)
	case ic >= 7000 && ic < 8000:
		return fmt.Sprintf("BLD%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
