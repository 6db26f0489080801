// Package plan turns the route set and its depends_on edges into a
// stable execution order. The plan is computed once per run.
package plan

import (
	"httpdiff/internal/config"
)

// Plan is the topologically ordered route list plus the dependency
// closures the engine needs for skip propagation.
type Plan struct {
	// Order holds route names in execution order. Routes with no
	// ordering constraint between them keep their declaration order.
	Order []string

	deps       map[string][]string
	dependents map[string][]string
}

// Build validates the dependency graph and computes the order. A
// depends_on entry naming no route or a cycle is a *config.ConfigError.
func Build(cfg *config.Config) (*Plan, error) {
	names := make([]string, 0, len(cfg.Routes))
	index := make(map[string]int, len(cfg.Routes))
	for i := range cfg.Routes {
		names = append(names, cfg.Routes[i].Name)
		index[cfg.Routes[i].Name] = i
	}

	deps := make(map[string][]string, len(names))
	dependents := make(map[string][]string, len(names))
	indegree := make(map[string]int, len(names))
	for i := range cfg.Routes {
		r := &cfg.Routes[i]
		for _, dep := range r.DependsOn {
			if _, ok := index[dep]; !ok {
				return nil, &config.ConfigError{Err: &config.UnknownDependencyError{Route: r.Name, Dep: dep}}
			}
			deps[r.Name] = append(deps[r.Name], dep)
			dependents[dep] = append(dependents[dep], r.Name)
			indegree[r.Name]++
		}
	}

	// Kahn's algorithm. The ready set is kept in declaration order so
	// unconstrained routes execute in the order the file lists them.
	order := make([]string, 0, len(names))
	done := make(map[string]bool, len(names))
	remaining := len(names)
	for remaining > 0 {
		progressed := false
		for _, name := range names {
			if done[name] || indegree[name] > 0 {
				continue
			}
			done[name] = true
			order = append(order, name)
			remaining--
			progressed = true
			for _, dependent := range dependents[name] {
				indegree[dependent]--
			}
			// Rescan from the top so the earliest-declared ready route
			// always goes next.
			break
		}
		if !progressed {
			return nil, &config.ConfigError{Err: &config.CyclicDependencyError{
				Cycle: findCycle(names, done, deps),
			}}
		}
	}

	return &Plan{Order: order, deps: deps, dependents: dependents}, nil
}

// Dependencies returns the direct depends_on list of a route.
func (p *Plan) Dependencies(route string) []string {
	return p.deps[route]
}

// Dependents returns every route that transitively depends on the given
// one, in plan order. The engine does not call it: it skips downstream
// work by checking each route's direct dependencies as it walks the
// order.
func (p *Plan) Dependents(route string) []string {
	reached := make(map[string]bool)
	var visit func(name string)
	visit = func(name string) {
		for _, d := range p.dependents[name] {
			if !reached[d] {
				reached[d] = true
				visit(d)
			}
		}
	}
	visit(route)

	out := make([]string, 0, len(reached))
	for _, name := range p.Order {
		if reached[name] {
			out = append(out, name)
		}
	}
	return out
}

// findCycle walks dependency edges among the unordered remainder until
// a node repeats, then returns that loop with the entry node repeated
// at the end.
func findCycle(names []string, done map[string]bool, deps map[string][]string) []string {
	stuck := func(name string) bool { return !done[name] }
	for _, start := range names {
		if !stuck(start) {
			continue
		}
		seen := map[string]int{}
		path := []string{}
		cur := start
		for {
			if at, ok := seen[cur]; ok {
				cycle := append([]string{}, path[at:]...)
				return append(cycle, cur)
			}
			seen[cur] = len(path)
			path = append(path, cur)
			next := ""
			for _, dep := range deps[cur] {
				if stuck(dep) {
					next = dep
					break
				}
			}
			if next == "" {
				break
			}
			cur = next
		}
	}
	return nil
}
