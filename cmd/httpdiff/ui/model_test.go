package ui

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpdiff/internal/compare"
	"httpdiff/internal/engine"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out
}

func TestModelAccumulatesComparisons(t *testing.T) {
	m := New(func() {})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = update(t, m, EventMsg{Event: engine.RunStarted{RunID: uuid.New(), Rows: 2, Routes: 2}})

	m = update(t, m, EventMsg{Event: engine.ComparisonReady{
		RowLabel: "alice", Route: "get_user",
		Result: &compare.Result{Class: compare.Identical},
	}})
	m = update(t, m, EventMsg{Event: engine.ComparisonReady{
		RowLabel: "alice", Route: "get_account",
		Result: &compare.Result{
			Class:    compare.Differs,
			Statuses: []compare.StatusDiff{{CodeA: 200, CodeB: 500}},
		},
	}})

	assert.Equal(t, 4, m.total)
	assert.Equal(t, 2, m.completed)
	assert.Equal(t, 1, m.counts[compare.Identical])
	assert.Equal(t, 1, m.counts[compare.Differs])

	view := m.View()
	assert.Contains(t, view, "get_user")
	assert.Contains(t, view, "get_account")
	assert.Contains(t, view, "2/4")
}

func TestModelDoneShowsSummary(t *testing.T) {
	m := New(func() {})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = update(t, m, DoneMsg{Result: &engine.RunResult{
		Summary: &engine.Summary{
			Overall:  engine.Counts{Total: 1, Identical: 1},
			Duration: 80 * time.Millisecond,
		},
	}})

	assert.True(t, m.done)
	assert.Contains(t, m.View(), "1 total, 1 identical")
}

func TestModelQuitBeforeDoneCancels(t *testing.T) {
	cancelled := false
	m := New(func() { cancelled = true })

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	m = next.(Model)

	assert.True(t, cancelled, "quitting mid-run must cancel the engine")
	assert.Nil(t, cmd, "the program stays alive until the engine reports done")
	assert.Contains(t, m.View(), "cancelling")

	_, cmd = m.Update(DoneMsg{Result: &engine.RunResult{Summary: &engine.Summary{Cancelled: true}}})
	require.NotNil(t, cmd, "done after cancel quits the program")
}

func TestModelQuitAfterDone(t *testing.T) {
	m := New(func() {})
	m = update(t, m, DoneMsg{Result: &engine.RunResult{Summary: &engine.Summary{}}})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	require.NotNil(t, cmd)
}

func TestModelDetailToggle(t *testing.T) {
	m := New(func() {})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})
	m = update(t, m, EventMsg{Event: engine.ComparisonReady{
		RowLabel: "alice", Route: "get_user",
		Result: &compare.Result{
			Class: compare.Differs,
			Bodies: []compare.BodyDiff{{Kind: compare.BodyJSON, Lines: []compare.Line{
				{Kind: compare.LineRemoved, Text: `"ok"`},
				{Kind: compare.LineAdded, Text: `"degraded"`},
			}}},
		},
	}})

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.showDetail)
	assert.Contains(t, m.View(), "degraded")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyEscape})
	assert.False(t, m.showDetail)
}

func TestDetailContent(t *testing.T) {
	it := item{rowLabel: "alice", route: "login", result: &compare.Result{
		Class: compare.Error,
		Errors: []compare.EnvResponse{
			{Env: "staging", Err: errors.New("request timeout")},
		},
	}}
	out := detailContent(it)
	assert.Contains(t, out, "alice / login")
	assert.Contains(t, out, "staging")
	assert.Contains(t, out, "request timeout")
}
