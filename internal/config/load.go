package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Load when the file leaves a knob unset.
const (
	DefaultTimeoutSeconds = 30
	DefaultMaxConcurrent  = 10
	DefaultMaxBodyBytes   = 4 << 20
)

// DefaultConfig returns a Config with all global knobs at their defaults
// and no environments or routes.
func DefaultConfig() *Config {
	return &Config{
		Global: GlobalConfig{
			TimeoutSeconds: DefaultTimeoutSeconds,
			MaxConcurrent:  DefaultMaxConcurrent,
			MaxBodyBytes:   DefaultMaxBodyBytes,
		},
		Environments: make(map[string]Environment),
	}
}

// Load reads, parses, defaults, and validates a configuration file.
// The extension selects the parser: .toml is primary, .yaml/.yml is
// accepted with the same schema. Any failure is a *ConfigError.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("reading config: %w", err)}
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = toml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, &ConfigError{Path: path, Err: fmt.Errorf("parsing config: %w", err)}
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Global.TimeoutSeconds <= 0 {
		c.Global.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.Global.MaxConcurrent <= 0 {
		c.Global.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.Global.MaxBodyBytes <= 0 {
		c.Global.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.Environments == nil {
		c.Environments = make(map[string]Environment)
	}
	for i := range c.Routes {
		if c.Routes[i].Method == "" {
			c.Routes[i].Method = "GET"
		} else {
			c.Routes[i].Method = strings.ToUpper(c.Routes[i].Method)
		}
	}
}

// Select restricts the config to a subset of environments and routes, as
// chosen by the --environments and --routes flags. Empty selectors keep
// everything. Unknown names are a *ConfigError.
func (c *Config) Select(environments, routes []string) (*Config, error) {
	out := &Config{Global: c.Global}

	if len(environments) == 0 {
		out.Environments = c.Environments
	} else {
		out.Environments = make(map[string]Environment, len(environments))
		for _, name := range environments {
			env, ok := c.Environments[name]
			if !ok {
				return nil, &ConfigError{Err: fmt.Errorf("unknown environment %q", name)}
			}
			out.Environments[name] = env
		}
	}

	if len(routes) == 0 {
		out.Routes = c.Routes
		return out, nil
	}
	want := make(map[string]bool, len(routes))
	for _, name := range routes {
		if _, ok := c.RouteByName(name); !ok {
			return nil, &ConfigError{Err: fmt.Errorf("unknown route %q", name)}
		}
		want[name] = true
	}
	// Keep declaration order, and pull in dependencies of selected routes
	// so chains still execute.
	needed := make(map[string]bool)
	var mark func(name string)
	mark = func(name string) {
		if needed[name] {
			return
		}
		needed[name] = true
		if r, ok := c.RouteByName(name); ok {
			for _, dep := range r.DependsOn {
				mark(dep)
			}
		}
	}
	for name := range want {
		mark(name)
	}
	for _, r := range c.Routes {
		if needed[r.Name] {
			out.Routes = append(out.Routes, r)
		}
	}
	return out, nil
}
