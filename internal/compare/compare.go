// Package compare classifies the responses a route produced across
// environments and computes structured diffs for the renderers.
package compare

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"httpdiff/internal/httpclient"
)

// Class is the comparison outcome for one (row, route).
type Class string

const (
	Identical Class = "identical"
	Differs   Class = "differs"
	Error     Class = "error"
	Skipped   Class = "skipped"
)

// Severity orders classes for exit-code purposes: skipped < identical <
// differs < error.
func (c Class) Severity() int {
	switch c {
	case Differs:
		return 2
	case Error:
		return 3
	case Identical:
		return 1
	}
	return 0
}

// EnvResponse is one environment's outcome for a route: a response, or
// the error that prevented one.
type EnvResponse struct {
	Env      string
	Response *httpclient.Response
	Err      error
}

// Pair names the two environments a change was observed between.
type Pair struct {
	A string
	B string
}

func (p Pair) String() string { return p.A + " vs " + p.B }

// StatusDiff is a status-code mismatch between two environments.
type StatusDiff struct {
	Pair
	CodeA int
	CodeB int
}

// HeaderDiff is one header whose values differ between two
// environments. Empty Value means the header is absent on that side.
type HeaderDiff struct {
	Pair
	Name   string
	ValueA string
	ValueB string
}

// BodyKind says how two bodies were compared.
type BodyKind string

const (
	BodyJSON   BodyKind = "json"
	BodyText   BodyKind = "text"
	BodyBinary BodyKind = "binary"
)

// BodyDiff is a body mismatch between two environments. Textual and
// JSON bodies carry line-level diffs; binary bodies carry size and hash
// pairs.
type BodyDiff struct {
	Pair
	Kind  BodyKind
	Lines []Line

	// Note flags structural findings, like one side failing to parse
	// as JSON or binary bodies differing in size. A truncated body is
	// not noted here; that flag stays on httpclient.Response.
	Note string

	SizeA, SizeB int
	HashA, HashB string
}

// Result is the full structured comparison for one (row, route).
type Result struct {
	Class    Class
	Statuses []StatusDiff
	Headers  []HeaderDiff
	Bodies   []BodyDiff

	// Errors holds per-environment failures when Class is Error.
	Errors []EnvResponse
}

// Options control comparison scope.
type Options struct {
	// IncludeHeaders adds header comparison on top of status and body.
	IncludeHeaders bool

	// IgnoreHeaders extends the built-in header ignore list with exact
	// names or *-glob patterns.
	IgnoreHeaders []string

	// BaseEnv, when set, restricts pairs to base-vs-other instead of
	// all-pairs.
	BaseEnv string
}

// Compare classifies a route's responses. Responses must arrive in a
// deterministic environment order; identical inputs always produce
// identical results.
func Compare(responses []EnvResponse, opts Options) *Result {
	res := &Result{}
	for _, r := range responses {
		if r.Err != nil {
			res.Errors = append(res.Errors, r)
		}
	}
	if len(res.Errors) > 0 {
		res.Class = Error
		return res
	}
	if len(responses) < 2 {
		res.Class = Skipped
		return res
	}

	for _, p := range pairs(responses, opts.BaseEnv) {
		comparePair(res, p.a, p.b, opts)
	}
	if len(res.Statuses) == 0 && len(res.Headers) == 0 && len(res.Bodies) == 0 {
		res.Class = Identical
	} else {
		res.Class = Differs
	}
	return res
}

type envPair struct {
	a, b EnvResponse
}

// pairs enumerates the environment pairs to compare: base-vs-other when
// a base is set, otherwise every pair in input order.
func pairs(responses []EnvResponse, baseEnv string) []envPair {
	var out []envPair
	if baseEnv != "" {
		var base *EnvResponse
		for i := range responses {
			if responses[i].Env == baseEnv {
				base = &responses[i]
				break
			}
		}
		if base != nil {
			for i := range responses {
				if responses[i].Env != baseEnv {
					out = append(out, envPair{*base, responses[i]})
				}
			}
			return out
		}
	}
	for i := range responses {
		for j := i + 1; j < len(responses); j++ {
			out = append(out, envPair{responses[i], responses[j]})
		}
	}
	return out
}

func comparePair(res *Result, a, b EnvResponse, opts Options) {
	pair := Pair{A: a.Env, B: b.Env}

	if a.Response.StatusCode != b.Response.StatusCode {
		res.Statuses = append(res.Statuses, StatusDiff{
			Pair: pair, CodeA: a.Response.StatusCode, CodeB: b.Response.StatusCode,
		})
	}
	if opts.IncludeHeaders {
		res.Headers = append(res.Headers, diffHeaders(pair, a.Response, b.Response, opts.IgnoreHeaders)...)
	}
	if d := diffBodies(pair, a.Response, b.Response); d != nil {
		res.Bodies = append(res.Bodies, *d)
	}
}

// diffBodies picks the comparison mode from the content types: JSON is
// canonicalized first, other text is line-diffed, binary is compared by
// size and hash.
func diffBodies(pair Pair, a, b *httpclient.Response) *BodyDiff {
	aJSON, bJSON := isJSON(a), isJSON(b)
	if aJSON || bJSON {
		return diffJSON(pair, a, b)
	}
	if a.IsTextual() && b.IsTextual() {
		if bytes.Equal(a.Body, b.Body) {
			return nil
		}
		return &BodyDiff{
			Pair:  pair,
			Kind:  BodyText,
			Lines: diffLines(a.Text(), b.Text()),
		}
	}
	if bytes.Equal(a.Body, b.Body) {
		return nil
	}
	return &BodyDiff{
		Pair:  pair,
		Kind:  BodyBinary,
		Note:  fmt.Sprintf("binary bodies differ (%d vs %d bytes)", len(a.Body), len(b.Body)),
		SizeA: len(a.Body),
		SizeB: len(b.Body),
		HashA: hashBody(a.Body),
		HashB: hashBody(b.Body),
	}
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}
