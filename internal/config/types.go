// Package config holds the httpdiff configuration model: environments,
// routes, extraction rules, execution conditions, and global knobs.
// Loading supports TOML (primary) and YAML; the file extension selects
// the parser. The configuration is immutable after Load.
package config

import (
	"sort"
	"strings"
	"time"
)

// Config is the root configuration for a diff run.
type Config struct {
	// Global execution settings
	Global GlobalConfig `toml:"global" yaml:"global"`

	// Named target environments. At least one is required; two or more
	// make a comparison run meaningful.
	Environments map[string]Environment `toml:"environments" yaml:"environments"`

	// Route definitions in declaration order.
	Routes []Route `toml:"routes" yaml:"routes"`
}

// Environment is a named target: a base URL plus default headers.
type Environment struct {
	BaseURL string            `toml:"base_url" yaml:"base_url"`
	Headers map[string]string `toml:"headers" yaml:"headers"`

	// IsBase marks this environment as the comparison base. When set,
	// diffs are rendered base-vs-other instead of all-pairs.
	IsBase bool `toml:"is_base" yaml:"is_base"`
}

// GlobalConfig holds run-wide knobs.
type GlobalConfig struct {
	// Request timeout in seconds. Default 30.
	TimeoutSeconds int `toml:"timeout" yaml:"timeout"`

	// Maximum in-flight HTTP requests across the whole run. Default 10.
	MaxConcurrent int `toml:"max_concurrent" yaml:"max_concurrent"`

	// Whether the client follows redirects. Default true.
	FollowRedirects *bool `toml:"follow_redirects" yaml:"follow_redirects"`

	// Headers applied to every request, overridable per environment and
	// per route.
	Headers map[string]string `toml:"headers" yaml:"headers"`

	// Query parameters applied to every request.
	Params map[string]string `toml:"params" yaml:"params"`

	// Response body buffer cap in bytes; larger bodies are truncated and
	// flagged. Default 4 MiB.
	MaxBodyBytes int64 `toml:"max_body_bytes" yaml:"max_body_bytes"`

	// Header names (or *-glob patterns) excluded from header comparison,
	// in addition to the built-in ignore list.
	IgnoreHeaders []string `toml:"ignore_headers" yaml:"ignore_headers"`

	// RawPathSubstitution disables URL encoding of path and query
	// placeholders for configs that predate the encoding policy.
	RawPathSubstitution bool `toml:"raw_path_substitution" yaml:"raw_path_substitution"`
}

// Route is a named HTTP request template exercised across environments.
type Route struct {
	Name   string `toml:"name" yaml:"name"`
	Method string `toml:"method" yaml:"method"`
	Path   string `toml:"path" yaml:"path"`

	Headers map[string]string `toml:"headers" yaml:"headers"`
	Params  map[string]string `toml:"params" yaml:"params"`

	// Per-environment base URL overrides.
	BaseURLs map[string]string `toml:"base_urls" yaml:"base_urls"`

	// Request body template; empty means no body.
	Body string `toml:"body" yaml:"body"`

	// Names of routes that must execute before this one.
	DependsOn []string `toml:"depends_on" yaml:"depends_on"`

	// WaitForExtraction requires every extraction declared by this
	// route's dependencies to be present in the context before this
	// route runs; a missing optional extraction skips the route instead
	// of proceeding without it.
	WaitForExtraction bool `toml:"wait_for_extraction" yaml:"wait_for_extraction"`

	Extract    []ExtractionRule `toml:"extract" yaml:"extract"`
	Conditions []Condition      `toml:"conditions" yaml:"conditions"`
}

// ExtractorType identifies how a value is pulled from a response.
type ExtractorType string

const (
	ExtractJSONPath   ExtractorType = "json_path"
	ExtractRegex      ExtractorType = "regex"
	ExtractHeader     ExtractorType = "header"
	ExtractStatusCode ExtractorType = "status_code"
)

// Valid reports whether t is one of the known extractor types.
func (t ExtractorType) Valid() bool {
	switch t {
	case ExtractJSONPath, ExtractRegex, ExtractHeader, ExtractStatusCode:
		return true
	}
	return false
}

// ExtractionRule binds a response value to a context variable for use in
// later routes.
type ExtractionRule struct {
	Name string        `toml:"name" yaml:"name"`
	Type ExtractorType `toml:"type" yaml:"type"`

	// Source expression: JSON path, regex pattern, or header name.
	// Ignored for status_code.
	Source string `toml:"source" yaml:"source"`

	// Required defaults to true; a failed required extraction marks the
	// route as errored and poisons its dependents.
	Required *bool `toml:"required" yaml:"required"`

	// DefaultValue is used when an optional extraction fails.
	DefaultValue string `toml:"default_value" yaml:"default_value"`
}

// IsRequired resolves the Required pointer against its default (true).
func (r ExtractionRule) IsRequired() bool {
	return r.Required == nil || *r.Required
}

// Operator is a condition comparison operator.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpNotContains Operator = "not_contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpExists      Operator = "exists"
	OpNotExists   Operator = "not_exists"
)

// Valid reports whether op is one of the known operators.
func (op Operator) Valid() bool {
	switch op {
	case OpEquals, OpNotEquals, OpContains, OpNotContains,
		OpGreaterThan, OpLessThan, OpExists, OpNotExists:
		return true
	}
	return false
}

// Condition gates route execution on the current variable context.
// Multiple conditions on a route must all hold (AND semantics).
type Condition struct {
	Field    string   `toml:"field" yaml:"field"`
	Operator Operator `toml:"operator" yaml:"operator"`
	Value    string   `toml:"value" yaml:"value"`
}

// Timeout returns the per-request deadline.
func (g GlobalConfig) Timeout() time.Duration {
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// ShouldFollowRedirects resolves the FollowRedirects pointer against its
// default (true).
func (g GlobalConfig) ShouldFollowRedirects() bool {
	return g.FollowRedirects == nil || *g.FollowRedirects
}

// EnvironmentNames returns the environment names sorted alphabetically.
// Map iteration order is not stable, and renderers want a fixed order.
func (c *Config) EnvironmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BaseEnvironment returns the name of the environment marked is_base, or
// "" when none is.
func (c *Config) BaseEnvironment() string {
	for name, env := range c.Environments {
		if env.IsBase {
			return name
		}
	}
	return ""
}

// RouteByName returns the route with the given name.
func (c *Config) RouteByName(name string) (*Route, bool) {
	for i := range c.Routes {
		if c.Routes[i].Name == name {
			return &c.Routes[i], true
		}
	}
	return nil, false
}

// BaseURLFor resolves the base URL for a route in an environment,
// honoring per-route overrides.
func (c *Config) BaseURLFor(route *Route, env string) (string, bool) {
	if route.BaseURLs != nil {
		if u, ok := route.BaseURLs[env]; ok {
			return u, true
		}
	}
	e, ok := c.Environments[env]
	if !ok {
		return "", false
	}
	return e.BaseURL, true
}

// MergedHeaders overlays global, environment, and route headers, with
// later layers winning on name collisions. Header names compare
// case-insensitively but the route's spelling is preserved.
func (c *Config) MergedHeaders(route *Route, env string) map[string]string {
	merged := make(map[string]string)
	put := func(m map[string]string) {
		for k, v := range m {
			for existing := range merged {
				if strings.EqualFold(existing, k) {
					delete(merged, existing)
					break
				}
			}
			merged[k] = v
		}
	}
	put(c.Global.Headers)
	if e, ok := c.Environments[env]; ok {
		put(e.Headers)
	}
	put(route.Headers)
	return merged
}

// MergedParams overlays global and route query parameters.
func (c *Config) MergedParams(route *Route) map[string]string {
	merged := make(map[string]string, len(c.Global.Params)+len(route.Params))
	for k, v := range c.Global.Params {
		merged[k] = v
	}
	for k, v := range route.Params {
		merged[k] = v
	}
	return merged
}
