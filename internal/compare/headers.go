package compare

import (
	"sort"
	"strings"

	"httpdiff/internal/httpclient"
)

// builtinIgnore covers headers that legitimately vary between
// environments and would drown real differences.
var builtinIgnore = []string{"date", "server", "x-request-id"}

// diffHeaders compares header maps, skipping ignored names. Multi-value
// headers compare joined in received order. Output is sorted by header
// name so results are deterministic.
func diffHeaders(pair Pair, a, b *httpclient.Response, extraIgnore []string) []HeaderDiff {
	names := make(map[string]bool)
	for name := range a.Headers {
		names[name] = true
	}
	for name := range b.Headers {
		names[name] = true
	}

	var out []HeaderDiff
	for name := range names {
		if ignored(name, extraIgnore) {
			continue
		}
		va := strings.Join(a.Headers.Values(name), ", ")
		vb := strings.Join(b.Headers.Values(name), ", ")
		if va != vb {
			out = append(out, HeaderDiff{Pair: pair, Name: name, ValueA: va, ValueB: vb})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ignored matches a header name against the built-in list and the
// user's patterns. Patterns are exact names or *-globs, compared
// case-insensitively.
func ignored(name string, extra []string) bool {
	lower := strings.ToLower(name)
	for _, ig := range builtinIgnore {
		if lower == ig {
			return true
		}
	}
	for _, pattern := range extra {
		if matchGlob(strings.ToLower(pattern), lower) {
			return true
		}
	}
	return false
}

// matchGlob matches s against a pattern where * spans any run of
// characters.
func matchGlob(pattern, s string) bool {
	if !strings.Contains(pattern, "*") {
		return pattern == s
	}
	parts := strings.Split(pattern, "*")
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, part := range parts[1 : len(parts)-1] {
		i := strings.Index(s, part)
		if i < 0 {
			return false
		}
		s = s[i+len(part):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}
