package compare

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"httpdiff/internal/httpclient"
)

func isJSON(r *httpclient.Response) bool {
	ct := strings.ToLower(r.Headers.Get("Content-Type"))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	ct = strings.TrimSpace(ct)
	return strings.HasSuffix(ct, "/json") || strings.HasSuffix(ct, "+json")
}

// diffJSON canonicalizes both bodies before diffing so formatting and
// key order never count as differences. One side failing to parse is
// itself a difference.
func diffJSON(pair Pair, a, b *httpclient.Response) *BodyDiff {
	canonA, errA := canonicalize(a.Body)
	canonB, errB := canonicalize(b.Body)

	switch {
	case errA != nil && errB != nil:
		// Neither parses; fall back to a raw text diff.
		if bytes.Equal(a.Body, b.Body) {
			return nil
		}
		return &BodyDiff{
			Pair: pair, Kind: BodyText,
			Note:  "declared JSON but neither body parses",
			Lines: diffLines(a.Text(), b.Text()),
		}
	case errA != nil:
		return &BodyDiff{
			Pair: pair, Kind: BodyJSON,
			Note:  fmt.Sprintf("%s body is not valid JSON: %v", pair.A, errA),
			Lines: diffLines(a.Text(), canonB),
		}
	case errB != nil:
		return &BodyDiff{
			Pair: pair, Kind: BodyJSON,
			Note:  fmt.Sprintf("%s body is not valid JSON: %v", pair.B, errB),
			Lines: diffLines(canonA, b.Text()),
		}
	}

	if canonA == canonB {
		return nil
	}
	return &BodyDiff{Pair: pair, Kind: BodyJSON, Lines: diffLines(canonA, canonB)}
}

// canonicalize renders JSON with sorted object keys and fixed
// indentation, one scalar per line, so the line diff is stable.
func canonicalize(body []byte) (string, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return "", err
	}

	var b strings.Builder
	writeCanonical(&b, doc, 0)
	b.WriteByte('\n')
	return b.String(), nil
}

func writeCanonical(b *strings.Builder, node any, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v := node.(type) {
	case map[string]any:
		if len(v) == 0 {
			b.WriteString("{}")
			return
		}
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{\n")
		for i, k := range keys {
			b.WriteString(indent + "  ")
			writeScalar(b, k)
			b.WriteString(": ")
			writeCanonical(b, v[k], depth+1)
			if i < len(keys)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(indent + "}")
	case []any:
		if len(v) == 0 {
			b.WriteString("[]")
			return
		}
		b.WriteString("[\n")
		for i, item := range v {
			b.WriteString(indent + "  ")
			writeCanonical(b, item, depth+1)
			if i < len(v)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(indent + "]")
	case json.Number:
		b.WriteString(v.String())
	case string:
		writeScalar(b, v)
	case bool:
		if v {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case nil:
		b.WriteString("null")
	}
}

func writeScalar(b *strings.Builder, s string) {
	data, _ := json.Marshal(s)
	b.Write(data)
}
