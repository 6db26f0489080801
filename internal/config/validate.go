package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks structural invariants: names are unique and well
// formed, references resolve, base URLs parse. Cycles through several
// routes are the planner's job; only a route that depends on itself is
// rejected here, as a one-route cycle.
func (c *Config) Validate() error {
	if len(c.Environments) == 0 {
		return &ConfigError{Err: fmt.Errorf("no environments defined")}
	}
	for name, env := range c.Environments {
		if name == "" {
			return &ConfigError{Err: fmt.Errorf("environment with empty name")}
		}
		if env.BaseURL == "" {
			return &ConfigError{Err: fmt.Errorf("environment %q has no base_url", name)}
		}
		if _, err := url.Parse(env.BaseURL); err != nil {
			return &ConfigError{Err: fmt.Errorf("environment %q base_url: %w", name, err)}
		}
	}

	base := ""
	for name, env := range c.Environments {
		if !env.IsBase {
			continue
		}
		if base != "" {
			return &ConfigError{Err: fmt.Errorf("environments %q and %q both marked is_base", base, name)}
		}
		base = name
	}

	if len(c.Routes) == 0 {
		return &ConfigError{Err: fmt.Errorf("no routes defined")}
	}

	seen := make(map[string]bool, len(c.Routes))
	for i := range c.Routes {
		r := &c.Routes[i]
		if r.Name == "" {
			return &ConfigError{Err: fmt.Errorf("route #%d has no name", i+1)}
		}
		if seen[r.Name] {
			return &ConfigError{Err: fmt.Errorf("duplicate route name %q", r.Name)}
		}
		seen[r.Name] = true

		if r.Path == "" {
			return &ConfigError{Err: fmt.Errorf("route %q has no path", r.Name)}
		}
		for env := range r.BaseURLs {
			if _, ok := c.Environments[env]; !ok {
				return &ConfigError{Err: fmt.Errorf("route %q overrides base_url for unknown environment %q", r.Name, env)}
			}
		}
		if err := validateExtractions(r); err != nil {
			return err
		}
		if err := validateConditions(r); err != nil {
			return err
		}
	}

	for i := range c.Routes {
		r := &c.Routes[i]
		for _, dep := range r.DependsOn {
			if !seen[dep] {
				return &ConfigError{Err: &UnknownDependencyError{Route: r.Name, Dep: dep}}
			}
			if dep == r.Name {
				return &ConfigError{Err: &CyclicDependencyError{Cycle: []string{r.Name, r.Name}}}
			}
		}
	}
	return nil
}

func validateExtractions(r *Route) error {
	names := make(map[string]bool, len(r.Extract))
	for _, rule := range r.Extract {
		if !isIdentifier(rule.Name) {
			return &ConfigError{Err: fmt.Errorf(
				"route %q extraction %q: name must be letters, digits, and underscores", r.Name, rule.Name)}
		}
		if names[rule.Name] {
			return &ConfigError{Err: fmt.Errorf("route %q declares extraction %q twice", r.Name, rule.Name)}
		}
		names[rule.Name] = true

		if !rule.Type.Valid() {
			return &ConfigError{Err: fmt.Errorf("route %q extraction %q: unknown type %q", r.Name, rule.Name, rule.Type)}
		}
		if rule.Type != ExtractStatusCode && strings.TrimSpace(rule.Source) == "" {
			return &ConfigError{Err: fmt.Errorf("route %q extraction %q: empty source", r.Name, rule.Name)}
		}
	}
	return nil
}

func validateConditions(r *Route) error {
	for _, cond := range r.Conditions {
		if cond.Field == "" {
			return &ConfigError{Err: fmt.Errorf("route %q has a condition with no field", r.Name)}
		}
		if !cond.Operator.Valid() {
			return &ConfigError{Err: fmt.Errorf("route %q condition on %q: unknown operator %q", r.Name, cond.Field, cond.Operator)}
		}
	}
	return nil
}

// Warnings returns non-fatal configuration findings, currently extraction
// names declared by more than one route. Later extractions shadow earlier
// ones at run time, which is usually a config mistake.
func (c *Config) Warnings() []string {
	owner := make(map[string]string)
	var warnings []string
	for _, r := range c.Routes {
		for _, rule := range r.Extract {
			if prev, ok := owner[rule.Name]; ok {
				warnings = append(warnings, fmt.Sprintf(
					"extraction %q is declared by both %q and %q; the later route shadows the earlier value",
					rule.Name, prev, r.Name))
				continue
			}
			owner[rule.Name] = r.Name
		}
	}
	return warnings
}

// isIdentifier reports whether s is a valid placeholder identifier:
// non-empty, letters, digits, and underscores only.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
