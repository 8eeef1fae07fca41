// Package pack merges an assembled script into a distribution template,
// resolving substitution tokens and recursive external includes.
package pack

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Geinome/dsharp/internal/diag"
	"github.com/Geinome/dsharp/internal/model"
)

const includeToken = "{include:"

// maxIncludeDepth bounds include nesting. A template that includes itself,
// directly or through a chain, fails with a packaging error instead of
// looping forever.
const maxIncludeDepth = 16

// IncludeResolver looks up the content of an {include:<path>} token. The
// lookup is treated as a synchronous, side-effect-free read; absence is not
// an error.
type IncludeResolver interface {
	Resolve(path string) (content string, ok bool)
}

// FileResolver resolves include paths against a root directory.
type FileResolver struct {
	Root string
}

func (f FileResolver) Resolve(path string) (string, bool) {
	data, err := os.ReadFile(filepath.Join(f.Root, filepath.FromSlash(path)))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Tokens carries the literal values substituted into the template.
type Tokens struct {
	Name        string
	Description string
	Copyright   string
	Version     string
	Compiler    string
}

// Package wraps the generated script in the template. With no template the
// script is the final artifact verbatim. Substitution is a single
// simultaneous pass, so token lookalikes inside the generated script (or
// inside substituted values) are never re-substituted; combined with the
// deterministic dependency strings the output is a byte-for-byte function of
// its inputs.
func Package(script, template string, deps []model.DependencyRef, inc IncludeResolver, tok Tokens, r diag.Reporter) (string, error) {
	if template == "" {
		return script, nil
	}
	expanded, err := expandIncludes(template, inc, nil, r)
	if err != nil {
		return "", err
	}
	repl := strings.NewReplacer(
		"{name}", tok.Name,
		"{description}", tok.Description,
		"{copyright}", tok.Copyright,
		"{version}", tok.Version,
		"{compiler}", tok.Compiler,
		"{requires}", RequiresList(deps),
		"{dependencies}", DependencyList(deps),
		"{dependenciesLookup}", DependencyLookup(deps),
		"{script}", script,
	)
	return repl.Replace(expanded), nil
}

// expandIncludes splices resolved include content in place, recursively.
// Without a resolver the tokens pass through untouched; an unresolvable path
// yields empty content at that occurrence. Cycles and over-deep nesting are
// packaging errors.
func expandIncludes(text string, inc IncludeResolver, stack []string, r diag.Reporter) (string, error) {
	if inc == nil {
		return text, nil
	}
	var out strings.Builder
	for {
		idx := strings.Index(text, includeToken)
		if idx < 0 {
			out.WriteString(text)
			return out.String(), nil
		}
		out.WriteString(text[:idx])
		rest := text[idx+len(includeToken):]
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			// Unterminated token: keep the raw text, nothing to resolve.
			out.WriteString(text[idx:])
			return out.String(), nil
		}
		path := rest[:end]
		text = rest[end+1:]

		for _, p := range stack {
			if p == path {
				msg := fmt.Sprintf("include %q includes itself (chain: %s)", path, strings.Join(stack, " -> "))
				diag.ReportError(r, diag.PackIncludeCycle, diag.Loc{Path: path}, msg)
				return "", fmt.Errorf("include cycle at %q", path)
			}
		}
		if len(stack) >= maxIncludeDepth {
			msg := fmt.Sprintf("includes nested beyond %d levels at %q", maxIncludeDepth, path)
			diag.ReportError(r, diag.PackIncludeTooDeep, diag.Loc{Path: path}, msg)
			return "", fmt.Errorf("include depth exceeded at %q", path)
		}

		content, ok := inc.Resolve(path)
		if !ok {
			continue
		}
		nested, err := expandIncludes(content, inc, append(stack, path), r)
		if err != nil {
			return "", err
		}
		out.WriteString(nested)
	}
}
