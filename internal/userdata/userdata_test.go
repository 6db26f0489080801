package userdata

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"httpdiff/internal/config"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	rows, err := Load(writeCSV(t, "user_id,token\n1001,alice\n1002,bob\n"))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 1, rows[0].Index)
	assert.Equal(t, []string{"user_id", "token"}, rows[0].Columns)

	v, ok := rows[0].Value("token")
	require.True(t, ok)
	assert.Equal(t, "alice", v)

	_, ok = rows[0].Value("missing")
	assert.False(t, ok)
}

func TestLoadErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty file", "", "empty"},
		{"header only", "user_id,token\n", "no rows"},
		{"duplicate column", "id,id\n1,2\n", "duplicate column"},
		{"invalid column name", "user-id\n1\n", "letters, digits"},
		{"ragged row", "a,b\n1\n", "parsing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeCSV(t, tc.body))
			var cerr *config.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	var cerr *config.ConfigError
	require.ErrorAs(t, err, &cerr)
}

func TestVariablesIsACopy(t *testing.T) {
	rows, err := Load(writeCSV(t, "user_id\n1001\n"))
	require.NoError(t, err)

	vars := rows[0].Variables()
	vars["user_id"] = "mutated"
	vars["extra"] = "x"

	v, _ := rows[0].Value("user_id")
	assert.Equal(t, "1001", v, "mutating the copy must not touch the row")
}

func TestLabel(t *testing.T) {
	rows, err := Load(writeCSV(t, "user_id,token\n1001,alice\n,bob\n"))
	require.NoError(t, err)
	assert.Equal(t, "1001", rows[0].Label())
	assert.Equal(t, "row 2", rows[1].Label(), "empty first column falls back to the index")
}
