package render

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"httpdiff/internal/engine"
	"httpdiff/internal/httpclient"
)

// WriteCurl dumps every prepared request as a runnable curl command.
// Commands are grouped per route and environment; routes that never
// produced a request (skipped before preparation) are noted instead.
func WriteCurl(path, configPath string, res *engine.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating curl dump: %w", err)
	}
	defer f.Close()

	fmt.Fprintf(f, "# httpdiff curl dump\n")
	fmt.Fprintf(f, "# run: %s\n", res.RunID)
	fmt.Fprintf(f, "# generated: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(f, "# config: %s\n", configPath)

	for _, rr := range res.Results {
		fmt.Fprintf(f, "\n## %s / %s\n", rr.RowLabel, rr.Route)
		for _, er := range rr.Envs {
			fmt.Fprintf(f, "\n# environment: %s\n", er.Env)
			if er.Request == nil {
				fmt.Fprintf(f, "# no request sent (%s)\n", er.Outcome)
				continue
			}
			writeCommand(f, er.Request)
		}
	}
	return nil
}

func writeCommand(f *os.File, req *httpclient.Request) {
	fmt.Fprintf(f, "curl -X %s '%s'", req.Method, shellQuote(req.URL))

	names := make([]string, 0, len(req.Headers))
	for name := range req.Headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(f, " \\\n  -H '%s: %s'", name, shellQuote(req.Headers[name]))
	}
	if req.Body != "" {
		fmt.Fprintf(f, " \\\n  -d '%s'", shellQuote(req.Body))
	}
	fmt.Fprintln(f)
}

// shellQuote makes a value safe inside single quotes.
func shellQuote(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}
