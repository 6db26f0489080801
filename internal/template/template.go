// Package template implements {placeholder} substitution for route
// paths, headers, bodies, and query parameters.
package template

import (
	"fmt"
	"net/url"
	"os"
	"strings"
)

// UnresolvedPlaceholderError reports a placeholder with no value in the
// current context.
type UnresolvedPlaceholderError struct {
	Name string
}

func (e *UnresolvedPlaceholderError) Error() string {
	return fmt.Sprintf("unresolved placeholder {%s}", e.Name)
}

// Options control how placeholder values are written into the output.
type Options struct {
	// URLEncode path-escapes each substituted value. The engine uses it
	// for path templates; query values are escaped separately, and
	// headers and bodies substitute raw.
	URLEncode bool

	// Lenient leaves unresolved placeholders in place instead of
	// failing.
	Lenient bool
}

// Substitute replaces every {identifier} in s with the context value,
// raw and strict. Identifiers are letters, digits, and underscores;
// {env.NAME} falls back to the process environment. {{ and }} emit
// literal braces.
func Substitute(s string, ctx map[string]string) (string, error) {
	return Render(s, ctx, Options{})
}

// Render is Substitute with explicit options.
func Render(s string, ctx map[string]string, opts Options) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			b.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			b.WriteByte('}')
			i += 2
		case c == '{':
			name, end, ok := scanPlaceholder(s, i+1)
			if !ok {
				// Not a placeholder, keep the brace as text.
				b.WriteByte('{')
				i++
				continue
			}
			value, found := resolve(name, ctx)
			if !found {
				if opts.Lenient {
					b.WriteString(s[i:end])
					i = end
					continue
				}
				return "", &UnresolvedPlaceholderError{Name: name}
			}
			if opts.URLEncode {
				value = url.PathEscape(value)
			}
			b.WriteString(value)
			i = end
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// Placeholders returns the distinct placeholder names referenced by s,
// in order of first appearance.
func Placeholders(s string) []string {
	var names []string
	seen := make(map[string]bool)
	for i := 0; i < len(s); {
		if s[i] == '{' && i+1 < len(s) && s[i+1] == '{' {
			i += 2
			continue
		}
		if s[i] == '{' {
			if name, end, ok := scanPlaceholder(s, i+1); ok {
				if !seen[name] {
					seen[name] = true
					names = append(names, name)
				}
				i = end
				continue
			}
		}
		i++
	}
	return names
}

// scanPlaceholder reads an identifier starting at position start and its
// closing brace. It accepts an optional "env." prefix. Returns the name,
// the position past the closing brace, and whether the span is a valid
// placeholder.
func scanPlaceholder(s string, start int) (string, int, bool) {
	i := start
	if strings.HasPrefix(s[i:], "env.") {
		i += len("env.")
	}
	j := i
	for j < len(s) && isIdentChar(s[j]) {
		j++
	}
	if j == i || j >= len(s) || s[j] != '}' {
		return "", 0, false
	}
	return s[start:j], j + 1, true
}

func resolve(name string, ctx map[string]string) (string, bool) {
	if v, ok := ctx[name]; ok {
		return v, true
	}
	if envName, ok := strings.CutPrefix(name, "env."); ok {
		return os.LookupEnv(envName)
	}
	return "", false
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
