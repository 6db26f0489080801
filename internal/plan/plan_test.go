package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpdiff/internal/config"
)

func routes(rs ...config.Route) *config.Config {
	return &config.Config{Routes: rs}
}

func TestBuildOrder(t *testing.T) {
	t.Run("no dependencies keeps declaration order", func(t *testing.T) {
		p, err := Build(routes(
			config.Route{Name: "c"},
			config.Route{Name: "a"},
			config.Route{Name: "b"},
		))
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "a", "b"}, p.Order)
	})

	t.Run("dependencies come first", func(t *testing.T) {
		p, err := Build(routes(
			config.Route{Name: "profile", DependsOn: []string{"login"}},
			config.Route{Name: "login"},
		))
		require.NoError(t, err)
		assert.Equal(t, []string{"login", "profile"}, p.Order)
	})

	t.Run("diamond with stable tie-break", func(t *testing.T) {
		p, err := Build(routes(
			config.Route{Name: "root"},
			config.Route{Name: "left", DependsOn: []string{"root"}},
			config.Route{Name: "right", DependsOn: []string{"root"}},
			config.Route{Name: "join", DependsOn: []string{"left", "right"}},
		))
		require.NoError(t, err)
		assert.Equal(t, []string{"root", "left", "right", "join"}, p.Order)
	})

	t.Run("chain", func(t *testing.T) {
		p, err := Build(routes(
			config.Route{Name: "z", DependsOn: []string{"y"}},
			config.Route{Name: "y", DependsOn: []string{"x"}},
			config.Route{Name: "x"},
		))
		require.NoError(t, err)
		assert.Equal(t, []string{"x", "y", "z"}, p.Order)
	})
}

func TestBuildErrors(t *testing.T) {
	t.Run("unknown dependency", func(t *testing.T) {
		_, err := Build(routes(config.Route{Name: "a", DependsOn: []string{"ghost"}}))
		var dep *config.UnknownDependencyError
		require.ErrorAs(t, err, &dep)
		assert.Equal(t, "a", dep.Route)
		assert.Equal(t, "ghost", dep.Dep)
	})

	t.Run("two-node cycle", func(t *testing.T) {
		_, err := Build(routes(
			config.Route{Name: "a", DependsOn: []string{"b"}},
			config.Route{Name: "b", DependsOn: []string{"a"}},
		))
		var cyc *config.CyclicDependencyError
		require.ErrorAs(t, err, &cyc)
		require.Len(t, cyc.Cycle, 3, "loop plus the repeated entry node")
		assert.Equal(t, cyc.Cycle[0], cyc.Cycle[len(cyc.Cycle)-1])
		assert.ElementsMatch(t, []string{"a", "b"}, cyc.Cycle[:2])
	})

	t.Run("cycle behind a valid prefix", func(t *testing.T) {
		_, err := Build(routes(
			config.Route{Name: "ok"},
			config.Route{Name: "x", DependsOn: []string{"ok", "y"}},
			config.Route{Name: "y", DependsOn: []string{"x"}},
		))
		var cyc *config.CyclicDependencyError
		require.ErrorAs(t, err, &cyc)
		assert.NotContains(t, cyc.Cycle, "ok")
	})
}

func TestDependents(t *testing.T) {
	p, err := Build(routes(
		config.Route{Name: "login"},
		config.Route{Name: "profile", DependsOn: []string{"login"}},
		config.Route{Name: "orders", DependsOn: []string{"profile"}},
		config.Route{Name: "health"},
	))
	require.NoError(t, err)

	assert.Equal(t, []string{"profile", "orders"}, p.Dependents("login"), "transitive, in plan order")
	assert.Equal(t, []string{"orders"}, p.Dependents("profile"))
	assert.Empty(t, p.Dependents("orders"))
	assert.Empty(t, p.Dependents("health"))

	assert.Equal(t, []string{"login"}, p.Dependencies("profile"))
	assert.Empty(t, p.Dependencies("login"))
}
