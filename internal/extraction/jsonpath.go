package extraction

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// evalJSONPath parses body as JSON and walks a restricted path: `$`,
// `.field`, `['field']`, and `[n]` with non-negative n. No wildcards,
// slices, or filters. A field accessor applied to an array descends
// into its first element, so ambiguous paths resolve to the first
// match.
func evalJSONPath(body []byte, path string) (string, error) {
	steps, err := parsePath(path)
	if err != nil {
		return "", err
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return "", fmt.Errorf("body is not JSON: %w", err)
	}

	node := doc
	for _, step := range steps {
		node, err = step.apply(node)
		if err != nil {
			return "", fmt.Errorf("path %q: %w", path, err)
		}
	}
	return stringify(node)
}

type pathStep struct {
	field string
	index int
	isIdx bool
}

func (s pathStep) apply(node any) (any, error) {
	if s.isIdx {
		arr, ok := node.([]any)
		if !ok {
			return nil, fmt.Errorf("index [%d] on non-array", s.index)
		}
		if s.index >= len(arr) {
			return nil, fmt.Errorf("index [%d] out of range (len %d)", s.index, len(arr))
		}
		return arr[s.index], nil
	}

	// First match: descend through arrays until an object turns up.
	for {
		if arr, ok := node.([]any); ok {
			if len(arr) == 0 {
				return nil, fmt.Errorf("field %q on empty array", s.field)
			}
			node = arr[0]
			continue
		}
		break
	}
	obj, ok := node.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("field %q on non-object", s.field)
	}
	v, ok := obj[s.field]
	if !ok {
		return nil, fmt.Errorf("field %q not found", s.field)
	}
	return v, nil
}

// parsePath tokenizes the restricted path grammar.
func parsePath(path string) ([]pathStep, error) {
	s := strings.TrimSpace(path)
	if s == "" {
		return nil, fmt.Errorf("empty path")
	}
	if !strings.HasPrefix(s, "$") {
		return nil, fmt.Errorf("path must start with $")
	}
	s = s[1:]

	var steps []pathStep
	for len(s) > 0 {
		switch {
		case strings.HasPrefix(s, "."):
			s = s[1:]
			j := 0
			for j < len(s) && s[j] != '.' && s[j] != '[' {
				j++
			}
			if j == 0 {
				return nil, fmt.Errorf("empty field name in path")
			}
			steps = append(steps, pathStep{field: s[:j]})
			s = s[j:]

		case strings.HasPrefix(s, "['"):
			end := strings.Index(s[2:], "']")
			if end < 0 {
				return nil, fmt.Errorf("unterminated ['field'] accessor")
			}
			steps = append(steps, pathStep{field: s[2 : 2+end]})
			s = s[2+end+2:]

		case strings.HasPrefix(s, "["):
			end := strings.IndexByte(s, ']')
			if end < 0 {
				return nil, fmt.Errorf("unterminated index accessor")
			}
			n, err := strconv.Atoi(s[1:end])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("index accessor %q must be a non-negative integer", s[:end+1])
			}
			steps = append(steps, pathStep{index: n, isIdx: true})
			s = s[end+1:]

		default:
			return nil, fmt.Errorf("unexpected %q in path", s)
		}
	}
	return steps, nil
}

// stringify renders the matched node as a context value. Strings are
// unquoted; everything else is compact JSON.
func stringify(node any) (string, error) {
	switch v := node.(type) {
	case string:
		return v, nil
	case json.Number:
		return v.String(), nil
	case nil:
		return "null", nil
	}
	data, err := json.Marshal(node)
	if err != nil {
		return "", fmt.Errorf("rendering matched value: %w", err)
	}
	return string(data), nil
}
