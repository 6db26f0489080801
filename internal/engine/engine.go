// Package engine drives a diff run: for every user row and environment
// it walks the planned route order, executes requests through the
// client seam, applies extractions and conditions, and hands joined
// responses to the comparator. Progress flows out as events.
package engine

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"httpdiff/internal/compare"
	"httpdiff/internal/conditions"
	"httpdiff/internal/config"
	"httpdiff/internal/extraction"
	"httpdiff/internal/httpclient"
	"httpdiff/internal/logging"
	"httpdiff/internal/plan"
	"httpdiff/internal/template"
	"httpdiff/internal/userdata"
)

// Outcome is the per-environment result of one route attempt.
type Outcome string

const (
	OutcomeOK      Outcome = "ok"
	OutcomeError   Outcome = "error"
	OutcomeSkipped Outcome = "skipped"
)

// Cause refines an error or skip outcome.
type Cause string

const (
	CauseNone               Cause = ""
	CauseConditionFalse     Cause = "condition_false"
	CauseUpstreamFailed     Cause = "upstream_failed"
	CauseTransport          Cause = "transport"
	CauseRequiredExtraction Cause = "missing_required_extraction"
	CauseSubstitution       Cause = "substitution"
	CauseCancelled          Cause = "cancelled"
)

// EnvResult is everything one environment produced for one route
// attempt within a row.
type EnvResult struct {
	Env     string
	Outcome Outcome
	Cause   Cause
	Err     error

	// Request is the prepared request, kept for the curl dump. Nil
	// when the route never reached preparation.
	Request  *httpclient.Request
	Response *httpclient.Response
	Elapsed  time.Duration
	Warnings []string
}

// RouteResult joins one route's outcomes across environments for one
// row, with the comparison.
type RouteResult struct {
	Row      int
	RowLabel string
	Route    string

	// Envs in sorted environment-name order.
	Envs       []EnvResult
	Comparison *compare.Result
}

// RunResult is the complete output of a run: every (row, route) joined
// result in deterministic order, plus the summary.
type RunResult struct {
	RunID   uuid.UUID
	Results []RouteResult
	Summary *Summary
}

// Options configure a run beyond what the config file carries.
type Options struct {
	// IncludeHeaders turns on header comparison.
	IncludeHeaders bool

	// Sink receives progress events; nil means no events.
	Sink Sink
}

// Engine executes runs. Construct with New; one Engine per run.
type Engine struct {
	cfg    *config.Config
	plan   *plan.Plan
	rows   []userdata.Row
	client httpclient.Doer
	opts   Options

	sem    *semaphore.Weighted
	emitMu sync.Mutex
	log    *logging.Logger
}

// New wires an engine. The client is a seam: tests pass a fake.
func New(cfg *config.Config, p *plan.Plan, rows []userdata.Row, client httpclient.Doer, opts Options) *Engine {
	return &Engine{
		cfg:    cfg,
		plan:   p,
		rows:   rows,
		client: client,
		opts:   opts,
		sem:    semaphore.NewWeighted(int64(cfg.Global.MaxConcurrent)),
		log:    logging.Get(logging.CategoryEngine),
	}
}

func (e *Engine) emit(ev Event) {
	if e.opts.Sink == nil {
		return
	}
	e.emitMu.Lock()
	defer e.emitMu.Unlock()
	e.opts.Sink.Handle(ev)
}

// Run executes every (row, environment) traversal. Environments within
// a row and rows among themselves run in parallel; the semaphore caps
// in-flight HTTP requests globally. Cancelling ctx aborts in-flight
// requests and records unstarted work as skipped.
func (e *Engine) Run(ctx context.Context) *RunResult {
	runID := uuid.New()
	start := time.Now()
	envs := e.cfg.EnvironmentNames()

	e.log.Info("run %s: %d rows x %d environments x %d routes", runID, len(e.rows), len(envs), len(e.plan.Order))
	e.emit(RunStarted{RunID: runID, Rows: len(e.rows), Environments: len(envs), Routes: len(e.plan.Order)})

	perRow := make([][]RouteResult, len(e.rows))
	g := new(errgroup.Group)
	for ri := range e.rows {
		g.Go(func() error {
			outcomes := make(map[string]map[string]*EnvResult, len(envs))
			var mu sync.Mutex
			eg := new(errgroup.Group)
			for _, env := range envs {
				eg.Go(func() error {
					out := e.traverse(ctx, ri, env)
					mu.Lock()
					outcomes[env] = out
					mu.Unlock()
					return nil
				})
			}
			eg.Wait()
			perRow[ri] = e.join(ri, envs, outcomes)
			return nil
		})
	}
	g.Wait()

	var results []RouteResult
	for _, rr := range perRow {
		results = append(results, rr...)
	}

	summary := summarize(runID, results, time.Since(start), ctx.Err() != nil)
	e.emit(RunFinished{Summary: summary})
	e.log.Info("run %s finished: %s", runID, summary.ClassCounts())
	return &RunResult{RunID: runID, Results: results, Summary: summary}
}

// traverse walks the plan for one (row, environment), returning the
// outcome per route name.
func (e *Engine) traverse(ctx context.Context, ri int, env string) map[string]*EnvResult {
	row := &e.rows[ri]
	vars := row.Variables()
	out := make(map[string]*EnvResult, len(e.plan.Order))

	for _, name := range e.plan.Order {
		route, _ := e.cfg.RouteByName(name)

		if ctx.Err() != nil {
			// Unstarted work under cancellation is recorded without
			// Started/Finished events.
			out[name] = &EnvResult{Env: env, Outcome: OutcomeSkipped, Cause: CauseCancelled}
			continue
		}

		if cause, bad := e.upstreamBlocked(route, out, vars); bad {
			e.emit(RouteStarted{Row: ri, Env: env, Route: name})
			res := &EnvResult{Env: env, Outcome: OutcomeSkipped, Cause: cause}
			out[name] = res
			e.emit(RouteFinished{Row: ri, Env: env, Route: name, Outcome: res.Outcome, Cause: res.Cause})
			continue
		}

		e.emit(RouteStarted{Row: ri, Env: env, Route: name})
		res := e.attempt(ctx, route, env, vars)
		out[name] = res
		e.emit(RouteFinished{Row: ri, Env: env, Route: name, Outcome: res.Outcome, Cause: res.Cause, Elapsed: res.Elapsed})
	}
	return out
}

// upstreamBlocked reports whether a route must be skipped because a
// dependency errored or was skipped, or because wait_for_extraction
// finds a declared upstream extraction missing from the context.
func (e *Engine) upstreamBlocked(route *config.Route, out map[string]*EnvResult, vars map[string]string) (Cause, bool) {
	for _, dep := range e.plan.Dependencies(route.Name) {
		if prev, ok := out[dep]; ok && prev.Outcome != OutcomeOK {
			if prev.Cause == CauseCancelled {
				return CauseCancelled, true
			}
			return CauseUpstreamFailed, true
		}
	}
	if route.WaitForExtraction {
		for _, dep := range e.plan.Dependencies(route.Name) {
			depRoute, ok := e.cfg.RouteByName(dep)
			if !ok {
				continue
			}
			for _, rule := range depRoute.Extract {
				if _, ok := vars[rule.Name]; !ok {
					return CauseUpstreamFailed, true
				}
			}
		}
	}
	return CauseNone, false
}

// attempt runs conditions, substitution, the HTTP call, and extractions
// for one route in one environment.
func (e *Engine) attempt(ctx context.Context, route *config.Route, env string, vars map[string]string) *EnvResult {
	res := &EnvResult{Env: env}

	cond := conditions.Evaluate(route.Conditions, vars)
	res.Warnings = append(res.Warnings, cond.Warnings...)
	if !cond.Pass {
		res.Outcome = OutcomeSkipped
		res.Cause = CauseConditionFalse
		return res
	}

	req, err := e.prepare(route, env, vars)
	if err != nil {
		res.Outcome = OutcomeError
		res.Cause = CauseSubstitution
		res.Err = err
		return res
	}
	res.Request = req

	if err := e.sem.Acquire(ctx, 1); err != nil {
		res.Outcome = OutcomeSkipped
		res.Cause = CauseCancelled
		return res
	}
	response, err := e.client.Do(ctx, req)
	e.sem.Release(1)

	if err != nil {
		if ctx.Err() != nil {
			res.Outcome = OutcomeSkipped
			res.Cause = CauseCancelled
			return res
		}
		e.log.Warn("%s %s [%s]: %v", req.Method, req.URL, env, err)
		res.Outcome = OutcomeError
		res.Cause = CauseTransport
		res.Err = err
		return res
	}
	res.Response = response
	res.Elapsed = response.Elapsed

	warnings, err := extraction.Apply(response, route.Extract, vars)
	res.Warnings = append(res.Warnings, warnings...)
	if err != nil {
		res.Outcome = OutcomeError
		res.Cause = CauseRequiredExtraction
		res.Err = err
		return res
	}

	res.Outcome = OutcomeOK
	return res
}

// prepare substitutes the context into the route's templates and builds
// the absolute URL. Path and query placeholders are URL-encoded unless
// raw_path_substitution is set; headers and bodies substitute raw.
func (e *Engine) prepare(route *config.Route, env string, vars map[string]string) (*httpclient.Request, error) {
	base, ok := e.cfg.BaseURLFor(route, env)
	if !ok {
		return nil, fmt.Errorf("no base URL for environment %q", env)
	}

	encode := template.Options{URLEncode: !e.cfg.Global.RawPathSubstitution}
	path, err := template.Render(route.Path, vars, encode)
	if err != nil {
		return nil, err
	}

	full := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")

	params := e.cfg.MergedParams(route)
	if len(params) > 0 {
		names := make([]string, 0, len(params))
		for k := range params {
			names = append(names, k)
		}
		sort.Strings(names)
		pairs := make([]string, 0, len(names))
		for _, k := range names {
			v, err := template.Render(params[k], vars, template.Options{})
			if err != nil {
				return nil, err
			}
			if e.cfg.Global.RawPathSubstitution {
				pairs = append(pairs, k+"="+v)
			} else {
				pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(v))
			}
		}
		sep := "?"
		if strings.Contains(full, "?") {
			sep = "&"
		}
		full += sep + strings.Join(pairs, "&")
	}

	headers := make(map[string]string)
	for k, v := range e.cfg.MergedHeaders(route, env) {
		sub, err := template.Substitute(v, vars)
		if err != nil {
			return nil, err
		}
		headers[k] = sub
	}

	body := ""
	if route.Body != "" {
		body, err = template.Substitute(route.Body, vars)
		if err != nil {
			return nil, err
		}
	}

	return &httpclient.Request{
		Method:  route.Method,
		URL:     full,
		Headers: headers,
		Body:    body,
	}, nil
}

// join builds the per-route comparisons for one row once every
// environment traversal has finished.
func (e *Engine) join(ri int, envs []string, outcomes map[string]map[string]*EnvResult) []RouteResult {
	row := &e.rows[ri]
	compareOpts := compare.Options{
		IncludeHeaders: e.opts.IncludeHeaders,
		IgnoreHeaders:  e.cfg.Global.IgnoreHeaders,
		BaseEnv:        e.cfg.BaseEnvironment(),
	}

	results := make([]RouteResult, 0, len(e.plan.Order))
	for _, name := range e.plan.Order {
		rr := RouteResult{Row: ri, RowLabel: row.Label(), Route: name}

		var inputs []compare.EnvResponse
		for _, env := range envs {
			er := outcomes[env][name]
			rr.Envs = append(rr.Envs, *er)
			switch er.Outcome {
			case OutcomeOK:
				inputs = append(inputs, compare.EnvResponse{Env: env, Response: er.Response})
			case OutcomeError:
				inputs = append(inputs, compare.EnvResponse{Env: env, Err: er.Err})
			}
			// Skipped environments stay out of the comparison.
		}

		rr.Comparison = compare.Compare(inputs, compareOpts)
		results = append(results, rr)
		e.emit(ComparisonReady{Row: ri, RowLabel: rr.RowLabel, Route: name, Result: rr.Comparison})
	}
	return results
}
