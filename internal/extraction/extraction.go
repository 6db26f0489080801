// Package extraction pulls values out of responses and binds them in
// the variable context for later routes. Four extractor kinds are
// supported: json_path, regex, header, and status_code.
package extraction

import (
	"fmt"
	"regexp"
	"strconv"

	"httpdiff/internal/config"
	"httpdiff/internal/httpclient"
)

// ExtractionError reports one rule that failed against one response.
type ExtractionError struct {
	Rule string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction %q: %v", e.Rule, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// Extract evaluates a single rule against a response.
func Extract(res *httpclient.Response, rule config.ExtractionRule) (string, error) {
	switch rule.Type {
	case config.ExtractJSONPath:
		value, err := evalJSONPath(res.Body, rule.Source)
		if err != nil {
			return "", &ExtractionError{Rule: rule.Name, Err: err}
		}
		return value, nil

	case config.ExtractRegex:
		re, err := regexp.Compile(rule.Source)
		if err != nil {
			return "", &ExtractionError{Rule: rule.Name, Err: fmt.Errorf("bad pattern: %w", err)}
		}
		m := re.FindStringSubmatch(res.Text())
		if m == nil {
			return "", &ExtractionError{Rule: rule.Name, Err: fmt.Errorf("pattern %q matched nothing", rule.Source)}
		}
		if len(m) > 1 {
			return m[1], nil
		}
		return m[0], nil

	case config.ExtractHeader:
		v := res.Headers.Get(rule.Source)
		if v == "" {
			return "", &ExtractionError{Rule: rule.Name, Err: fmt.Errorf("header %q absent", rule.Source)}
		}
		return v, nil

	case config.ExtractStatusCode:
		return strconv.Itoa(res.StatusCode), nil
	}
	return "", &ExtractionError{Rule: rule.Name, Err: fmt.Errorf("unknown extractor type %q", rule.Type)}
}

// Apply runs all of a route's rules in declaration order, updating ctx.
// An optional rule that fails binds its default value and adds a
// warning; a required rule that fails stops and returns the error.
func Apply(res *httpclient.Response, rules []config.ExtractionRule, ctx map[string]string) ([]string, error) {
	var warnings []string
	for _, rule := range rules {
		value, err := Extract(res, rule)
		if err != nil {
			if rule.IsRequired() {
				return warnings, err
			}
			warnings = append(warnings, fmt.Sprintf(
				"extraction %q failed, using default %q: %v", rule.Name, rule.DefaultValue, err))
			value = rule.DefaultValue
		}
		ctx[rule.Name] = value
	}
	return warnings, nil
}
