// Package render contains the output sinks: the plain CLI renderer,
// the HTML report, and the curl dump. Renderers consume run results and
// events; they never feed back into execution.
package render

import (
	"os"

	"github.com/mattn/go-isatty"
)

// Mode selects the terminal renderer.
type Mode int

const (
	ModePlain Mode = iota
	ModeTUI
)

// SelectMode picks the renderer: the TUI when stdout is a terminal,
// plain otherwise. --no-tui and --force-tui override detection.
func SelectMode(noTUI, forceTUI bool) Mode {
	switch {
	case noTUI:
		return ModePlain
	case forceTUI:
		return ModeTUI
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return ModeTUI
	}
	return ModePlain
}

// DiffView selects how body diffs are laid out.
type DiffView string

const (
	DiffUnified    DiffView = "unified"
	DiffSideBySide DiffView = "side-by-side"
)

// Valid reports whether v is a known diff view.
func (v DiffView) Valid() bool {
	return v == DiffUnified || v == DiffSideBySide
}
