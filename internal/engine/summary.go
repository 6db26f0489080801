package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"httpdiff/internal/compare"
)

// Counts tallies comparison classes for one grouping key.
type Counts struct {
	Total     int
	Identical int
	Differs   int
	Errors    int
	Skipped   int
}

func (c *Counts) add(class compare.Class) {
	c.Total++
	switch class {
	case compare.Identical:
		c.Identical++
	case compare.Differs:
		c.Differs++
	case compare.Error:
		c.Errors++
	case compare.Skipped:
		c.Skipped++
	}
}

// Summary is the run-wide tally handed to renderers and turned into the
// process exit code.
type Summary struct {
	RunID     uuid.UUID
	Overall   Counts
	PerRoute  map[string]*Counts
	PerEnv    map[string]*Counts
	Duration  time.Duration
	Cancelled bool
}

func summarize(runID uuid.UUID, results []RouteResult, elapsed time.Duration, cancelled bool) *Summary {
	s := &Summary{
		RunID:     runID,
		PerRoute:  make(map[string]*Counts),
		PerEnv:    make(map[string]*Counts),
		Duration:  elapsed,
		Cancelled: cancelled,
	}
	for _, rr := range results {
		s.Overall.add(rr.Comparison.Class)
		if s.PerRoute[rr.Route] == nil {
			s.PerRoute[rr.Route] = &Counts{}
		}
		s.PerRoute[rr.Route].add(rr.Comparison.Class)

		for _, er := range rr.Envs {
			if s.PerEnv[er.Env] == nil {
				s.PerEnv[er.Env] = &Counts{}
			}
			c := s.PerEnv[er.Env]
			c.Total++
			switch er.Outcome {
			case OutcomeOK:
				c.Identical++
			case OutcomeError:
				c.Errors++
			case OutcomeSkipped:
				c.Skipped++
			}
		}
	}
	return s
}

// ClassCounts renders the overall tally as a one-line string.
func (s *Summary) ClassCounts() string {
	return fmt.Sprintf("%d total, %d identical, %d differ, %d errors, %d skipped",
		s.Overall.Total, s.Overall.Identical, s.Overall.Differs, s.Overall.Errors, s.Overall.Skipped)
}

// ExitCode maps the run outcome onto the process exit code: cancelled
// beats everything, then errors, then differences.
func (s *Summary) ExitCode() int {
	switch {
	case s.Cancelled:
		return 130
	case s.Overall.Errors > 0:
		return 2
	case s.Overall.Differs > 0:
		return 1
	}
	return 0
}
