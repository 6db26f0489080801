// Package userdata loads the user CSV: one row per test identity, with
// the header row naming the initial variables for each traversal.
package userdata

import (
	"encoding/csv"
	"fmt"
	"os"

	"httpdiff/internal/config"
)

// Row is one test identity: an ordered column-name to value mapping.
type Row struct {
	// Index is the 1-based row number in the file, excluding the header.
	Index int

	// Columns in header order.
	Columns []string

	values map[string]string
}

// Value returns the value of the named column.
func (r *Row) Value(name string) (string, bool) {
	v, ok := r.values[name]
	return v, ok
}

// Variables returns a fresh mutable copy of the row's variables, the
// seed for one (row, environment) context.
func (r *Row) Variables() map[string]string {
	out := make(map[string]string, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Label returns a short human identifier for the row: the first column's
// value if non-empty, otherwise "row N".
func (r *Row) Label() string {
	if len(r.Columns) > 0 {
		if v := r.values[r.Columns[0]]; v != "" {
			return v
		}
	}
	return fmt.Sprintf("row %d", r.Index)
}

// Load reads and validates a user CSV. The first record names the
// variables; every following record is one row. Malformed CSV, empty
// files, duplicate or invalid column names are all configuration errors.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &config.ConfigError{Path: path, Err: fmt.Errorf("reading users file: %w", err)}
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, &config.ConfigError{Path: path, Err: fmt.Errorf("parsing users file: %w", err)}
	}
	if len(records) == 0 {
		return nil, &config.ConfigError{Path: path, Err: fmt.Errorf("users file is empty")}
	}

	header := records[0]
	seen := make(map[string]bool, len(header))
	for _, name := range header {
		if !isIdentifier(name) {
			return nil, &config.ConfigError{Path: path, Err: fmt.Errorf(
				"column %q: names must be letters, digits, and underscores", name)}
		}
		if seen[name] {
			return nil, &config.ConfigError{Path: path, Err: fmt.Errorf("duplicate column %q", name)}
		}
		seen[name] = true
	}

	if len(records) == 1 {
		return nil, &config.ConfigError{Path: path, Err: fmt.Errorf("users file has a header but no rows")}
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make(map[string]string, len(header))
		for j, name := range header {
			values[name] = record[j]
		}
		rows = append(rows, Row{Index: i + 1, Columns: header, values: values})
	}
	return rows, nil
}

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
