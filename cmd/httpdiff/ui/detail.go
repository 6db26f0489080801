package ui

import (
	"fmt"
	"strings"

	"httpdiff/internal/compare"
)

// detailContent renders one comparison for the viewport: statuses,
// headers, colored body diffs, and per-environment errors.
func detailContent(it item) string {
	var b strings.Builder
	head := fmt.Sprintf("%s / %s  ", it.rowLabel, it.route)
	b.WriteString(head + classStyle(it.result.Class).Render(string(it.result.Class)) + "\n")

	for _, d := range it.result.Statuses {
		fmt.Fprintf(&b, "\nstatus %s: %d vs %d\n", d.Pair, d.CodeA, d.CodeB)
	}
	for _, d := range it.result.Headers {
		fmt.Fprintf(&b, "\nheader %s %s: %q vs %q\n", d.Pair, d.Name, d.ValueA, d.ValueB)
	}
	for _, d := range it.result.Bodies {
		fmt.Fprintf(&b, "\nbody %s (%s)\n", d.Pair, d.Kind)
		if d.Note != "" {
			b.WriteString(noteStyle.Render(d.Note) + "\n")
		}
		if d.Kind == compare.BodyBinary {
			fmt.Fprintf(&b, "%d bytes %s\n%d bytes %s\n", d.SizeA, d.HashA, d.SizeB, d.HashB)
			continue
		}
		for _, line := range d.Lines {
			switch line.Kind {
			case compare.LineAdded:
				b.WriteString(addedStyle.Render("+"+line.Text) + "\n")
			case compare.LineRemoved:
				b.WriteString(removedStyle.Render("-"+line.Text) + "\n")
			default:
				b.WriteString(" " + line.Text + "\n")
			}
		}
	}
	for _, er := range it.result.Errors {
		fmt.Fprintf(&b, "\n%s: %s\n", er.Env, errorStyle.Render(fmt.Sprint(er.Err)))
	}
	if it.result.Class == compare.Identical {
		b.WriteString("\nresponses match across environments\n")
	}
	return b.String()
}
