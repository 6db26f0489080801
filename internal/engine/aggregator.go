package engine

import (
	"sync"

	"httpdiff/internal/compare"
)

// Aggregator is the single consumer of engine events. It keeps live
// counters for interactive renderers and fans events out to attached
// sinks one at a time. A panicking downstream sink must not corrupt
// the tallies, so counters update before forwarding.
type Aggregator struct {
	mu    sync.Mutex
	live  Counts
	total int
	sinks []Sink
}

// NewAggregator wires the downstream sinks.
func NewAggregator(sinks ...Sink) *Aggregator {
	return &Aggregator{sinks: sinks}
}

// Handle implements Sink.
func (a *Aggregator) Handle(ev Event) {
	a.mu.Lock()
	switch ev := ev.(type) {
	case RunStarted:
		a.total = ev.Rows * ev.Routes
	case ComparisonReady:
		a.live.add(ev.Result.Class)
	}
	sinks := a.sinks
	a.mu.Unlock()

	for _, s := range sinks {
		forward(s, ev)
	}
}

func forward(s Sink, ev Event) {
	defer func() {
		// A failed renderer must not take the run down with it.
		recover()
	}()
	s.Handle(ev)
}

// Progress returns the live tally and the expected total number of
// (row, route) comparisons.
func (a *Aggregator) Progress() (Counts, int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live, a.total
}

// Classes returns the live per-class counts keyed by comparison class.
func (a *Aggregator) Classes() map[compare.Class]int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return map[compare.Class]int{
		compare.Identical: a.live.Identical,
		compare.Differs:   a.live.Differs,
		compare.Error:     a.live.Errors,
		compare.Skipped:   a.live.Skipped,
	}
}
