package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"httpdiff/internal/logging"
	"httpdiff/internal/render"
)

var (
	// Files
	configPath string
	usersPath  string

	// Selection
	envNames   []string
	routeNames []string

	// Output
	reportPath string
	outputPath string
	noTUI      bool
	forceTUI   bool
	verbose    bool
	logDir     string

	// Comparison
	includeHeaders bool
	includeErrors  bool
	diffView       string

	// Scaffolding
	initConfig bool
	force      bool

	logger *zap.Logger
)

// exitCodeError carries the process exit code out of cobra's RunE.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}

var rootCmd = &cobra.Command{
	Use:   "httpdiff",
	Short: "httpdiff - compare HTTP responses across environments",
	Long: `httpdiff replays a set of dependent HTTP routes against two or more
environments for every row of a user data file, then diffs the responses.

Routes form a dependency DAG: values extracted from one response (tokens,
ids) feed the requests that depend on it. Each comparison is classified as
identical, differs, error, or skipped, and the worst class across the run
decides the exit code.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		if logDir != "" {
			if err := logging.Enable(logDir, logging.LevelDebug); err != nil {
				return fmt.Errorf("enabling debug logs: %w", err)
			}
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
		logging.Close()
	},
	RunE: runDiff,
}

func init() {
	f := rootCmd.Flags()

	f.StringVarP(&configPath, "config", "c", "httpdiff.toml", "configuration file (TOML or YAML)")
	f.StringVarP(&usersPath, "users-file", "u", "users.csv", "CSV file of user rows")

	f.StringSliceVar(&envNames, "environments", nil, "environments to compare (default: all)")
	f.StringSliceVar(&routeNames, "routes", nil, "routes to run, dependencies included (default: all)")

	f.StringVar(&reportPath, "report", "", "write an HTML report to this path")
	f.StringVar(&outputPath, "output-file", "", "write prepared requests as curl commands to this path")
	f.BoolVar(&noTUI, "no-tui", false, "force the plain line-oriented renderer")
	f.BoolVar(&forceTUI, "force-tui", false, "force the interactive renderer even without a terminal")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug-level process logging")
	f.StringVar(&logDir, "log-dir", "", "write per-subsystem debug logs into this directory")

	f.BoolVar(&includeHeaders, "include-headers", false, "compare response headers too")
	f.BoolVar(&includeErrors, "include-errors", false, "print error detail blocks")
	f.StringVar(&diffView, "diff-view", string(render.DiffUnified), "body diff layout: unified or side-by-side")

	f.BoolVar(&initConfig, "init", false, "write a commented httpdiff.toml and users.csv, then exit")
	f.BoolVar(&force, "force", false, "with --init, overwrite existing files")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return
	}

	var exit *exitCodeError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}

	// Anything else is a configuration or setup failure.
	fmt.Fprintf(os.Stderr, "httpdiff: %v\n", err)
	os.Exit(3)
}
