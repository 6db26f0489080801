package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"httpdiff/internal/compare"
	"httpdiff/internal/engine"
)

const errorPreviewBytes = 200

// Plain is the line-oriented renderer for non-interactive terminals and
// pipes. As a Sink it prints one line per comparison; Render writes the
// detail blocks and the final summary.
type Plain struct {
	mu sync.Mutex
	w  io.Writer

	// DiffView lays body diffs out unified or side-by-side.
	DiffView DiffView

	// IncludeErrors prints error detail blocks alongside diffs.
	IncludeErrors bool
}

// NewPlain builds a plain renderer writing to w.
func NewPlain(w io.Writer) *Plain {
	return &Plain{w: w, DiffView: DiffUnified}
}

// Handle implements engine.Sink: one progress line per comparison.
func (p *Plain) Handle(ev engine.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch ev := ev.(type) {
	case engine.RunStarted:
		fmt.Fprintf(p.w, "run %s: %d rows, %d environments, %d routes\n",
			ev.RunID, ev.Rows, ev.Environments, ev.Routes)
	case engine.ComparisonReady:
		fmt.Fprintf(p.w, "%-9s %s / %s\n", string(ev.Result.Class), ev.RowLabel, ev.Route)
	}
}

// Render writes per-result detail and the summary block.
func (p *Plain) Render(res *engine.RunResult) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, rr := range res.Results {
		switch rr.Comparison.Class {
		case compare.Differs:
			p.renderDiffs(rr)
		case compare.Error:
			if p.IncludeErrors {
				p.renderErrors(rr)
			}
		}
	}
	p.renderSummary(res.Summary)
	return nil
}

func (p *Plain) renderDiffs(rr engine.RouteResult) {
	fmt.Fprintf(p.w, "\n=== %s / %s: differs ===\n", rr.RowLabel, rr.Route)
	for _, d := range rr.Comparison.Statuses {
		fmt.Fprintf(p.w, "status %s: %d vs %d\n", d.Pair, d.CodeA, d.CodeB)
	}
	for _, d := range rr.Comparison.Headers {
		fmt.Fprintf(p.w, "header %s %s: %q vs %q\n", d.Pair, d.Name, d.ValueA, d.ValueB)
	}
	for _, d := range rr.Comparison.Bodies {
		fmt.Fprintf(p.w, "body %s (%s)\n", d.Pair, d.Kind)
		if d.Note != "" {
			fmt.Fprintf(p.w, "  note: %s\n", d.Note)
		}
		if d.Kind == compare.BodyBinary {
			fmt.Fprintf(p.w, "  %d bytes %s\n  %d bytes %s\n", d.SizeA, d.HashA, d.SizeB, d.HashB)
			continue
		}
		p.renderLines(d.Lines)
	}
}

func (p *Plain) renderLines(lines []compare.Line) {
	if p.DiffView == DiffSideBySide {
		p.renderSideBySide(lines)
		return
	}
	for _, line := range lines {
		switch line.Kind {
		case compare.LineAdded:
			fmt.Fprintf(p.w, "+%s\n", line.Text)
		case compare.LineRemoved:
			fmt.Fprintf(p.w, "-%s\n", line.Text)
		default:
			fmt.Fprintf(p.w, " %s\n", line.Text)
		}
	}
}

// renderSideBySide pairs removed and added runs into two columns.
func (p *Plain) renderSideBySide(lines []compare.Line) {
	const width = 40
	cell := func(s string) string {
		if len(s) > width {
			return s[:width-1] + "…"
		}
		return s + strings.Repeat(" ", width-len(s))
	}

	var left, right []string
	flush := func() {
		n := max(len(left), len(right))
		for i := 0; i < n; i++ {
			l, r := "", ""
			if i < len(left) {
				l = left[i]
			}
			if i < len(right) {
				r = right[i]
			}
			fmt.Fprintf(p.w, "%s | %s\n", cell(l), cell(r))
		}
		left, right = left[:0], right[:0]
	}

	for _, line := range lines {
		switch line.Kind {
		case compare.LineRemoved:
			left = append(left, line.Text)
		case compare.LineAdded:
			right = append(right, line.Text)
		default:
			flush()
			fmt.Fprintf(p.w, "%s | %s\n", cell(line.Text), cell(line.Text))
		}
	}
	flush()
}

func (p *Plain) renderErrors(rr engine.RouteResult) {
	fmt.Fprintf(p.w, "\n=== %s / %s: error ===\n", rr.RowLabel, rr.Route)
	for _, er := range rr.Envs {
		if er.Outcome != engine.OutcomeError {
			continue
		}
		fmt.Fprintf(p.w, "%s: %v\n", er.Env, er.Err)
		if preview := errorPreview(er); preview != "" {
			fmt.Fprintf(p.w, "  body: %s\n", preview)
		}
	}
}

// errorPreview shows the beginning of the body the failing environment
// returned, when there is one.
func errorPreview(er engine.EnvResult) string {
	if er.Response == nil || len(er.Response.Body) == 0 {
		return ""
	}
	body := er.Response.Text()
	body = strings.ReplaceAll(body, "\n", " ")
	if len(body) > errorPreviewBytes {
		body = body[:errorPreviewBytes] + "..."
	}
	return body
}

func (p *Plain) renderSummary(s *engine.Summary) {
	fmt.Fprintf(p.w, "\n--- summary ---\n")
	fmt.Fprintf(p.w, "%s in %s\n", s.ClassCounts(), s.Duration.Round(time.Millisecond))
	if s.Cancelled {
		fmt.Fprintln(p.w, "run cancelled")
	}

	routes := make([]string, 0, len(s.PerRoute))
	for name := range s.PerRoute {
		routes = append(routes, name)
	}
	sort.Strings(routes)
	for _, name := range routes {
		c := s.PerRoute[name]
		fmt.Fprintf(p.w, "  %-20s identical=%d differs=%d errors=%d skipped=%d\n",
			name, c.Identical, c.Differs, c.Errors, c.Skipped)
	}
}
