package compare

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineKind marks one line of a textual diff.
type LineKind int

const (
	LineContext LineKind = iota
	LineAdded
	LineRemoved
)

// Line is a single line of a body diff.
type Line struct {
	Kind LineKind
	Text string
}

var dmp = newMatcher()

func newMatcher() *diffmatchpatch.DiffMatchPatch {
	m := diffmatchpatch.New()
	m.DiffTimeout = 0
	return m
}

// diffLines computes a line-level diff. The line-to-char reduction
// avoids newline boundary artifacts when converting character diffs
// back to line operations.
func diffLines(old, new string) []Line {
	a, b, lineArray := dmp.DiffLinesToChars(old, new)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCleanupSemantic(diffs)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var out []Line
	for _, d := range diffs {
		kind := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = LineAdded
		case diffmatchpatch.DiffDelete:
			kind = LineRemoved
		}
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, line := range lines {
			out = append(out, Line{Kind: kind, Text: line})
		}
	}
	return out
}
