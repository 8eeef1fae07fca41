// Package rename implements the identifier transform of the script backend:
// either plain scope-internalization of non-public names, or the minifying
// obfuscator that assigns short, deterministic, collision-free replacement
// names and rewrites references inside generated implementation bodies.
package rename

import "strings"

// reservedWords are target-language keywords and literals that may never be
// produced as generated identifiers.
var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true,
	"continue": true, "debugger": true, "default": true, "delete": true,
	"do": true, "else": true, "enum": true, "export": true, "extends": true,
	"false": true, "finally": true, "for": true, "function": true, "if": true,
	"import": true, "in": true, "instanceof": true, "let": true, "new": true,
	"null": true, "return": true, "static": true, "super": true,
	"switch": true, "this": true, "throw": true, "true": true, "try": true,
	"typeof": true, "var": true, "void": true, "while": true, "with": true,
	"yield": true,
}

// shortName maps a slot index to a short identifier: a..z, then aa..az, ba..
// (bijective base-26). Index 0 is "a".
func shortName(i int) string {
	var b [8]byte
	pos := len(b)
	n := i + 1
	for n > 0 {
		n--
		pos--
		b[pos] = byte('a' + n%26)
		n /= 26
	}
	return string(b[pos:])
}

// allocator hands out short names in slot order, skipping reserved words and
// anything the avoid set forbids. Allocation is a pure function of the slot
// sequence, so identical inputs always produce identical names.
type allocator struct {
	next  int
	avoid map[string]bool
}

func newAllocator(avoid map[string]bool) *allocator {
	return &allocator{avoid: avoid}
}

// at clones the allocator at its current position. Used for sibling scopes,
// which may safely reuse each other's names.
func (a *allocator) at() *allocator {
	return &allocator{next: a.next, avoid: a.avoid}
}

func (a *allocator) take() string {
	for {
		name := shortName(a.next)
		a.next++
		if reservedWords[name] {
			continue
		}
		if a.avoid != nil && a.avoid[name] {
			continue
		}
		return name
	}
}

// sanitizeIdent maps s onto identifier-safe characters; used to turn module
// names into internalized name prefixes.
func sanitizeIdent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z',
			r >= '0' && r <= '9', r == '_', r == '$':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
