package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const scaffoldConfig = `# httpdiff configuration.
# Environments are the targets to compare; routes are the requests to run.

[global]
# Per-request timeout in seconds.
timeout = 30
# Maximum in-flight HTTP requests across the whole run.
max_concurrent = 10
# follow_redirects = true
# Additional header names (or *-glob patterns) to ignore when comparing.
# ignore_headers = ["x-trace-*"]

[global.headers]
# Sent with every request. Placeholders like {token} come from the user
# CSV or from earlier extractions.
# Authorization = "Bearer {token}"

[environments.staging]
base_url = "https://staging.example.com"
# is_base marks the environment every other one is diffed against.
is_base = true

[environments.production]
base_url = "https://example.com"

[[routes]]
name = "get_user"
method = "GET"
path = "/api/users/{user_id}"

[[routes.extract]]
name = "account_id"
type = "json_path"
source = "$.account.id"

[[routes]]
name = "get_account"
method = "GET"
path = "/api/accounts/{account_id}"
depends_on = ["get_user"]
`

const scaffoldUsers = `user_id,token
1001,example-token-alice
1002,example-token-bob
`

// Scaffold writes a commented starter configuration and user CSV into
// dir. Existing files are refused unless force is set.
func Scaffold(dir string, force bool) error {
	files := []struct {
		name string
		body string
	}{
		{"httpdiff.toml", scaffoldConfig},
		{"users.csv", scaffoldUsers},
	}
	if !force {
		for _, f := range files {
			path := filepath.Join(dir, f.name)
			if _, err := os.Stat(path); err == nil {
				return &ConfigError{Path: path, Err: fmt.Errorf("already exists (use --force to overwrite)")}
			}
		}
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, []byte(f.body), 0o644); err != nil {
			return &ConfigError{Path: path, Err: err}
		}
	}
	return nil
}
