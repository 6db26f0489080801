package engine

import (
	"time"

	"github.com/google/uuid"

	"httpdiff/internal/compare"
)

// Event is a progress notification consumed by the aggregator and the
// renderers. Events for one (row, env, route) are ordered Started then
// Finished; across keys only that pairing is guaranteed.
type Event interface{ event() }

// RunStarted opens the event stream.
type RunStarted struct {
	RunID        uuid.UUID
	Rows         int
	Environments int
	Routes       int
}

// RouteStarted marks one (row, env, route) attempt beginning.
type RouteStarted struct {
	Row   int
	Env   string
	Route string
}

// RouteFinished carries the per-environment outcome of one attempt.
type RouteFinished struct {
	Row     int
	Env     string
	Route   string
	Outcome Outcome
	Cause   Cause
	Elapsed time.Duration
}

// ComparisonReady is emitted once per (row, route) after every
// environment has finished, carrying the structured comparison.
type ComparisonReady struct {
	Row      int
	RowLabel string
	Route    string
	Result   *compare.Result
}

// RunFinished closes the stream with the final summary.
type RunFinished struct {
	Summary *Summary
}

func (RunStarted) event()      {}
func (RouteStarted) event()    {}
func (RouteFinished) event()   {}
func (ComparisonReady) event() {}
func (RunFinished) event()     {}

// Sink consumes events. Implementations must tolerate concurrent
// callers; the engine serializes emission, renderers receive events
// from the aggregator one at a time.
type Sink interface {
	Handle(Event)
}
