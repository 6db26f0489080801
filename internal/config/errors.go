package config

import (
	"fmt"
	"strings"
)

// ConfigError is any configuration problem: a parse failure, a duplicate
// name, an unknown reference. Configuration errors are fatal and abort
// the run before any HTTP call (exit code 3).
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("config %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("config: %v", e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// UnknownDependencyError reports a depends_on entry that names no route.
type UnknownDependencyError struct {
	Route string
	Dep   string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("route %q depends on unknown route %q", e.Route, e.Dep)
}

// CyclicDependencyError reports a cycle in the route dependency graph.
// Cycle lists the route names on one cycle, in traversal order.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Cycle, " -> "))
}
