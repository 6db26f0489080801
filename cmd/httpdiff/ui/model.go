package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"httpdiff/internal/compare"
	"httpdiff/internal/engine"
)

// EventMsg wraps an engine event for the bubbletea loop.
type EventMsg struct {
	Event engine.Event
}

// DoneMsg announces the finished run.
type DoneMsg struct {
	Result *engine.RunResult
}

// programSink forwards engine events into a running program. Send is
// safe from the engine's goroutines.
type programSink struct {
	prog *tea.Program
}

func (s programSink) Handle(ev engine.Event) {
	s.prog.Send(EventMsg{Event: ev})
}

// SinkFor adapts a program into an engine.Sink.
func SinkFor(prog *tea.Program) engine.Sink {
	return programSink{prog: prog}
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Escape key.Binding
	Quit   key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Escape, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var keys = keyMap{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open diff")),
	Escape: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

type item struct {
	rowLabel string
	route    string
	result   *compare.Result
}

// Model is the interactive run view: a live table of comparisons with a
// progress bar while the engine works, and a diff viewport afterwards.
type Model struct {
	cancel context.CancelFunc

	spin spinner.Model
	bar  progress.Model
	tbl  table.Model
	vp   viewport.Model
	help help.Model

	width  int
	height int

	total     int
	completed int
	counts    map[compare.Class]int
	items     []item

	done       bool
	cancelling bool
	result     *engine.RunResult

	showDetail bool
}

// New builds the model. cancel aborts the engine when the user quits
// mid-run.
func New(cancel context.CancelFunc) Model {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	tbl := table.New(
		table.WithColumns(tableColumns(80)),
		table.WithFocused(true),
		table.WithHeight(12),
	)

	return Model{
		cancel: cancel,
		spin:   sp,
		bar:    progress.New(progress.WithDefaultGradient()),
		tbl:    tbl,
		vp:     viewport.New(80, 20),
		help:   help.New(),
		counts: make(map[compare.Class]int),
	}
}

func tableColumns(width int) []table.Column {
	route := width - 9 - 16 - 24 - 8
	if route < 10 {
		route = 10
	}
	return []table.Column{
		{Title: "CLASS", Width: 9},
		{Title: "ROW", Width: 16},
		{Title: "ROUTE", Width: route},
		{Title: "DETAIL", Width: 24},
	}
}

func (m Model) Init() tea.Cmd {
	return m.spin.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.tbl.SetColumns(tableColumns(msg.Width - 2))
		m.tbl.SetHeight(max(4, msg.Height-8))
		m.bar.Width = max(10, msg.Width-30)
		m.vp.Width = msg.Width - 4
		m.vp.Height = max(4, msg.Height-6)
		return m, nil

	case EventMsg:
		m.apply(msg.Event)
		return m, nil

	case DoneMsg:
		m.done = true
		m.result = msg.Result
		if m.cancelling {
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) apply(ev engine.Event) {
	switch ev := ev.(type) {
	case engine.RunStarted:
		m.total = ev.Rows * ev.Routes
	case engine.ComparisonReady:
		m.completed++
		m.counts[ev.Result.Class]++
		m.items = append(m.items, item{
			rowLabel: ev.RowLabel,
			route:    ev.Route,
			result:   ev.Result,
		})
		m.tbl.SetRows(m.tableRows())
	}
}

func (m *Model) tableRows() []table.Row {
	rows := make([]table.Row, len(m.items))
	for i, it := range m.items {
		rows[i] = table.Row{
			string(it.result.Class),
			it.rowLabel,
			it.route,
			detailSummary(it.result),
		}
	}
	return rows
}

func detailSummary(res *compare.Result) string {
	switch res.Class {
	case compare.Differs:
		return fmt.Sprintf("%d status, %d header, %d body",
			len(res.Statuses), len(res.Headers), len(res.Bodies))
	case compare.Error:
		return fmt.Sprintf("%d failed", len(res.Errors))
	}
	return ""
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		if !m.done {
			m.cancelling = true
			m.cancel()
			return m, nil
		}
		return m, tea.Quit

	case key.Matches(msg, keys.Enter):
		if i := m.tbl.Cursor(); i >= 0 && i < len(m.items) {
			m.vp.SetContent(detailContent(m.items[i]))
			m.vp.GotoTop()
			m.showDetail = true
		}
		return m, nil

	case key.Matches(msg, keys.Escape):
		m.showDetail = false
		return m, nil
	}

	var cmd tea.Cmd
	if m.showDetail {
		m.vp, cmd = m.vp.Update(msg)
	} else {
		m.tbl, cmd = m.tbl.Update(msg)
	}
	return m, cmd
}

func (m Model) View() string {
	title := titleStyle.Render("httpdiff")

	var status string
	switch {
	case m.cancelling:
		status = statusStyle.Render("cancelling, waiting for in-flight requests")
	case !m.done:
		pct := 0.0
		if m.total > 0 {
			pct = float64(m.completed) / float64(m.total)
		}
		status = fmt.Sprintf("%s %s %d/%d  %s",
			m.spin.View(), m.bar.ViewAs(pct), m.completed, m.total, m.countsLine())
	default:
		status = m.summaryLine()
	}

	if m.showDetail {
		return lipgloss.JoinVertical(lipgloss.Left,
			title,
			detailBorder.Render(m.vp.View()),
			helpStyle.Render(m.help.View(keys)),
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		status,
		m.tbl.View(),
		helpStyle.Render(m.help.View(keys)),
	)
}

func (m Model) countsLine() string {
	return fmt.Sprintf("%s %s %s %s",
		identicalStyle.Render(fmt.Sprintf("%d identical", m.counts[compare.Identical])),
		differsStyle.Render(fmt.Sprintf("%d differ", m.counts[compare.Differs])),
		errorStyle.Render(fmt.Sprintf("%d errors", m.counts[compare.Error])),
		skippedStyle.Render(fmt.Sprintf("%d skipped", m.counts[compare.Skipped])))
}

func (m Model) summaryLine() string {
	s := m.result.Summary
	line := fmt.Sprintf("%s in %s", s.ClassCounts(), s.Duration.Round(time.Millisecond))
	if s.Cancelled {
		line += "  " + errorStyle.Render("cancelled")
	}
	return statusStyle.Render(line)
}
