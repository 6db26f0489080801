package conditions

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"httpdiff/internal/config"
)

func TestEvaluateOperators(t *testing.T) {
	ctx := map[string]string{
		"status": "200",
		"plan":   "premium",
		"empty":  "",
		"score":  "3.5",
	}

	cases := []struct {
		name string
		cond config.Condition
		want bool
	}{
		{"equals true", config.Condition{Field: "plan", Operator: config.OpEquals, Value: "premium"}, true},
		{"equals false", config.Condition{Field: "plan", Operator: config.OpEquals, Value: "free"}, false},
		{"not_equals", config.Condition{Field: "plan", Operator: config.OpNotEquals, Value: "free"}, true},
		{"contains", config.Condition{Field: "plan", Operator: config.OpContains, Value: "emi"}, true},
		{"not_contains", config.Condition{Field: "plan", Operator: config.OpNotContains, Value: "zzz"}, true},
		{"greater_than true", config.Condition{Field: "status", Operator: config.OpGreaterThan, Value: "199"}, true},
		{"greater_than false", config.Condition{Field: "status", Operator: config.OpGreaterThan, Value: "200"}, false},
		{"less_than float", config.Condition{Field: "score", Operator: config.OpLessThan, Value: "3.6"}, true},
		{"exists", config.Condition{Field: "plan", Operator: config.OpExists}, true},
		{"exists empty value", config.Condition{Field: "empty", Operator: config.OpExists}, false},
		{"exists absent", config.Condition{Field: "missing", Operator: config.OpExists}, false},
		{"not_exists absent", config.Condition{Field: "missing", Operator: config.OpNotExists}, true},
		{"not_exists empty value", config.Condition{Field: "empty", Operator: config.OpNotExists}, true},
		{"not_exists present", config.Condition{Field: "plan", Operator: config.OpNotExists}, false},
		{"absent field compares as empty", config.Condition{Field: "missing", Operator: config.OpEquals, Value: ""}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate([]config.Condition{tc.cond}, ctx)
			assert.Equal(t, tc.want, got.Pass)
			assert.Empty(t, got.Warnings)
		})
	}
}

func TestEvaluateNumericWarning(t *testing.T) {
	ctx := map[string]string{"plan": "premium"}

	t.Run("non-numeric field value", func(t *testing.T) {
		got := Evaluate([]config.Condition{
			{Field: "plan", Operator: config.OpGreaterThan, Value: "10"},
		}, ctx)
		assert.False(t, got.Pass)
		assert.Len(t, got.Warnings, 1)
		assert.Contains(t, got.Warnings[0], "numeric")
	})

	t.Run("non-numeric comparison value", func(t *testing.T) {
		got := Evaluate([]config.Condition{
			{Field: "plan", Operator: config.OpLessThan, Value: "abc"},
		}, map[string]string{"plan": "5"})
		assert.False(t, got.Pass)
		assert.Len(t, got.Warnings, 1)
	})
}

func TestEvaluateAndSemantics(t *testing.T) {
	ctx := map[string]string{"a": "1", "b": "2"}

	got := Evaluate([]config.Condition{
		{Field: "a", Operator: config.OpEquals, Value: "1"},
		{Field: "b", Operator: config.OpEquals, Value: "wrong"},
	}, ctx)
	assert.False(t, got.Pass, "all conditions must hold")

	got = Evaluate([]config.Condition{
		{Field: "a", Operator: config.OpEquals, Value: "1"},
		{Field: "b", Operator: config.OpEquals, Value: "2"},
	}, ctx)
	assert.True(t, got.Pass)

	assert.True(t, Evaluate(nil, ctx).Pass, "no conditions always passes")
}

func TestEvaluateEnvFallback(t *testing.T) {
	t.Setenv("HTTPDIFF_TEST_FLAG", "on")

	got := Evaluate([]config.Condition{
		{Field: "env.HTTPDIFF_TEST_FLAG", Operator: config.OpEquals, Value: "on"},
	}, map[string]string{})
	assert.True(t, got.Pass)

	got = Evaluate([]config.Condition{
		{Field: "env.HTTPDIFF_TEST_FLAG", Operator: config.OpEquals, Value: "on"},
	}, map[string]string{"env.HTTPDIFF_TEST_FLAG": "off"})
	assert.False(t, got.Pass, "context entry wins over process environment")

	got = Evaluate([]config.Condition{
		{Field: "env.HTTPDIFF_TEST_ABSENT", Operator: config.OpNotExists},
	}, map[string]string{})
	assert.True(t, got.Pass)
}
