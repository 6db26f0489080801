package extraction

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpdiff/internal/config"
	"httpdiff/internal/httpclient"
)

func jsonResponse(body string) *httpclient.Response {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return &httpclient.Response{StatusCode: 200, Headers: h, Body: []byte(body)}
}

func TestExtractJSONPath(t *testing.T) {
	res := jsonResponse(`{
		"id": 42,
		"name": "alice",
		"active": true,
		"score": 3.14,
		"tags": ["a", "b"],
		"account": {"id": "acct-9"},
		"items": [{"sku": "x1"}, {"sku": "x2"}],
		"nothing": null
	}`)

	cases := []struct {
		name   string
		source string
		want   string
	}{
		{"string field", "$.name", "alice"},
		{"integer keeps formatting", "$.id", "42"},
		{"float keeps formatting", "$.score", "3.14"},
		{"bool", "$.active", "true"},
		{"null", "$.nothing", "null"},
		{"array index", "$.tags[1]", "b"},
		{"nested field", "$.account.id", "acct-9"},
		{"bracket field", "$['account']['id']", "acct-9"},
		{"index then field", "$.items[1].sku", "x2"},
		{"field on array picks first element", "$.items.sku", "x1"},
		{"whole object renders as JSON", "$.account", `{"id":"acct-9"}`},
		{"root", "$", `{"account":{"id":"acct-9"},"active":true,"id":42,"items":[{"sku":"x1"},{"sku":"x2"}],"name":"alice","nothing":null,"score":3.14,"tags":["a","b"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(res, config.ExtractionRule{Name: "v", Type: config.ExtractJSONPath, Source: tc.source})
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestExtractJSONPathErrors(t *testing.T) {
	res := jsonResponse(`{"a": {"b": 1}, "arr": [1]}`)

	cases := []struct {
		name   string
		body   *httpclient.Response
		source string
		want   string
	}{
		{"not JSON", jsonResponse(`<html>`), "$.a", "not JSON"},
		{"missing field", res, "$.a.c", "not found"},
		{"index out of range", res, "$.arr[5]", "out of range"},
		{"index on object", res, "$.a[0]", "non-array"},
		{"field on scalar", res, "$.a.b.c", "non-object"},
		{"no dollar", res, "a.b", "must start with $"},
		{"negative index", res, "$.arr[-1]", "non-negative"},
		{"wildcard unsupported", res, "$.a.*", "not found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Extract(tc.body, config.ExtractionRule{Name: "v", Type: config.ExtractJSONPath, Source: tc.source})
			var xerr *ExtractionError
			require.ErrorAs(t, err, &xerr)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestExtractRegex(t *testing.T) {
	res := jsonResponse(`session=abc123; expires=soon`)

	t.Run("group 1 when present", func(t *testing.T) {
		got, err := Extract(res, config.ExtractionRule{Name: "v", Type: config.ExtractRegex, Source: `session=(\w+)`})
		require.NoError(t, err)
		assert.Equal(t, "abc123", got)
	})

	t.Run("group 0 without capture", func(t *testing.T) {
		got, err := Extract(res, config.ExtractionRule{Name: "v", Type: config.ExtractRegex, Source: `session=\w+`})
		require.NoError(t, err)
		assert.Equal(t, "session=abc123", got)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := Extract(res, config.ExtractionRule{Name: "v", Type: config.ExtractRegex, Source: `token=(\w+)`})
		assert.ErrorContains(t, err, "matched nothing")
	})

	t.Run("bad pattern", func(t *testing.T) {
		_, err := Extract(res, config.ExtractionRule{Name: "v", Type: config.ExtractRegex, Source: `(`})
		assert.ErrorContains(t, err, "bad pattern")
	})
}

func TestExtractHeader(t *testing.T) {
	h := http.Header{}
	h.Add("X-Request-Id", "req-1")
	h.Add("X-Request-Id", "req-2")
	res := &httpclient.Response{StatusCode: 200, Headers: h}

	got, err := Extract(res, config.ExtractionRule{Name: "v", Type: config.ExtractHeader, Source: "x-request-id"})
	require.NoError(t, err)
	assert.Equal(t, "req-1", got, "case-insensitive, first value")

	_, err = Extract(res, config.ExtractionRule{Name: "v", Type: config.ExtractHeader, Source: "X-Missing"})
	assert.ErrorContains(t, err, "absent")
}

func TestExtractStatusCode(t *testing.T) {
	res := &httpclient.Response{StatusCode: 418, Headers: http.Header{}}
	got, err := Extract(res, config.ExtractionRule{Name: "v", Type: config.ExtractStatusCode})
	require.NoError(t, err)
	assert.Equal(t, "418", got)
}

func TestApply(t *testing.T) {
	res := jsonResponse(`{"id": 7}`)
	optional := false

	t.Run("declaration order, later shadows earlier", func(t *testing.T) {
		ctx := map[string]string{}
		warnings, err := Apply(res, []config.ExtractionRule{
			{Name: "x", Type: config.ExtractJSONPath, Source: "$.id"},
			{Name: "x", Type: config.ExtractStatusCode},
		}, ctx)
		require.NoError(t, err)
		assert.Empty(t, warnings)
		assert.Equal(t, "200", ctx["x"])
	})

	t.Run("required failure stops", func(t *testing.T) {
		ctx := map[string]string{}
		_, err := Apply(res, []config.ExtractionRule{
			{Name: "a", Type: config.ExtractJSONPath, Source: "$.missing"},
			{Name: "b", Type: config.ExtractStatusCode},
		}, ctx)
		var xerr *ExtractionError
		require.ErrorAs(t, err, &xerr)
		assert.Equal(t, "a", xerr.Rule)
		assert.NotContains(t, ctx, "b", "later rules must not run")
	})

	t.Run("optional failure uses default and warns", func(t *testing.T) {
		ctx := map[string]string{}
		warnings, err := Apply(res, []config.ExtractionRule{
			{Name: "a", Type: config.ExtractJSONPath, Source: "$.missing", Required: &optional, DefaultValue: "fallback"},
			{Name: "b", Type: config.ExtractStatusCode},
		}, ctx)
		require.NoError(t, err)
		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0], `"a"`)
		assert.Equal(t, "fallback", ctx["a"])
		assert.Equal(t, "200", ctx["b"])
	})
}
