package rename

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// rewriteScript replaces whole identifier tokens of src according to table.
// String literals (single, double and backtick quoted) and comments pass
// through untouched. The scanner does not need a full target-language lexer:
// implementation payloads are machine-generated, so token boundaries are all
// that matters.
func rewriteScript(src string, table map[string]string) string {
	if len(table) == 0 || src == "" {
		return src
	}
	var out strings.Builder
	out.Grow(len(src))

	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			i = copyString(&out, src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = copyLineComment(&out, src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i = copyBlockComment(&out, src, i)
		default:
			r, size := utf8.DecodeRuneInString(src[i:])
			if !isIdentStart(r) {
				out.WriteString(src[i : i+size])
				i += size
				continue
			}
			start := i
			i += size
			for i < len(src) {
				r, size = utf8.DecodeRuneInString(src[i:])
				if !isIdentPart(r) {
					break
				}
				i += size
			}
			ident := src[start:i]
			if gen, ok := table[key(ident)]; ok {
				out.WriteString(gen)
			} else {
				out.WriteString(ident)
			}
		}
	}
	return out.String()
}

func copyString(out *strings.Builder, src string, i int) int {
	quote := src[i]
	start := i
	i++
	for i < len(src) {
		if src[i] == '\\' && i+1 < len(src) {
			i += 2
			continue
		}
		if src[i] == quote {
			i++
			break
		}
		i++
	}
	out.WriteString(src[start:i])
	return i
}

func copyLineComment(out *strings.Builder, src string, i int) int {
	start := i
	for i < len(src) && src[i] != '\n' {
		i++
	}
	out.WriteString(src[start:i])
	return i
}

func copyBlockComment(out *strings.Builder, src string, i int) int {
	start := i
	i += 2
	for i < len(src) {
		if src[i] == '*' && i+1 < len(src) && src[i+1] == '/' {
			i += 2
			break
		}
		i++
	}
	out.WriteString(src[start:i])
	return i
}
