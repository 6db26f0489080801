package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"httpdiff/cmd/httpdiff/ui"
	"httpdiff/internal/config"
	"httpdiff/internal/engine"
	"httpdiff/internal/httpclient"
	"httpdiff/internal/plan"
	"httpdiff/internal/render"
	"httpdiff/internal/userdata"
)

func runDiff(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if initConfig {
		dir := filepath.Dir(configPath)
		if err := config.Scaffold(dir, force); err != nil {
			return err
		}
		fmt.Printf("wrote %s and %s\n",
			filepath.Join(dir, "httpdiff.toml"), filepath.Join(dir, "users.csv"))
		return nil
	}

	view := render.DiffView(diffView)
	if !view.Valid() {
		return fmt.Errorf("unknown --diff-view %q (want unified or side-by-side)", diffView)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg, err = cfg.Select(envNames, routeNames)
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	p, err := plan.Build(cfg)
	if err != nil {
		return err
	}
	rows, err := userdata.Load(usersPath)
	if err != nil {
		return err
	}

	logger.Debug("run configured",
		zap.Int("rows", len(rows)),
		zap.Int("environments", len(cfg.Environments)),
		zap.Int("routes", len(cfg.Routes)),
		zap.Int("max_concurrent", cfg.Global.MaxConcurrent))

	client := httpclient.New(cfg.Global)

	var res *engine.RunResult
	switch render.SelectMode(noTUI, forceTUI) {
	case render.ModeTUI:
		res, err = runTUI(ctx, cfg, p, rows, client)
	default:
		res, err = runPlain(ctx, cfg, p, rows, client, view)
	}
	if err != nil {
		return err
	}

	if reportPath != "" {
		if err := render.WriteHTML(reportPath, res); err != nil {
			return err
		}
		logger.Debug("report written", zap.String("path", reportPath))
	}
	if outputPath != "" {
		if err := render.WriteCurl(outputPath, configPath, res); err != nil {
			return err
		}
		logger.Debug("curl dump written", zap.String("path", outputPath))
	}

	if code := res.Summary.ExitCode(); code != 0 {
		return &exitCodeError{code: code}
	}
	return nil
}

func runPlain(ctx context.Context, cfg *config.Config, p *plan.Plan,
	rows []userdata.Row, client httpclient.Doer, view render.DiffView) (*engine.RunResult, error) {

	plain := render.NewPlain(os.Stdout)
	plain.DiffView = view
	plain.IncludeErrors = includeErrors

	agg := engine.NewAggregator(plain)
	eng := engine.New(cfg, p, rows, client, engine.Options{
		IncludeHeaders: includeHeaders,
		Sink:           agg,
	})
	res := eng.Run(ctx)
	if err := plain.Render(res); err != nil {
		return nil, err
	}
	return res, nil
}

// runTUI drives the interactive renderer. The engine runs in a goroutine
// and feeds events into the bubbletea program; quitting before the run
// ends cancels the engine, which then reports a cancelled summary.
func runTUI(ctx context.Context, cfg *config.Config, p *plan.Plan,
	rows []userdata.Row, client httpclient.Doer) (*engine.RunResult, error) {

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(ui.New(cancel), tea.WithAltScreen())

	agg := engine.NewAggregator(ui.SinkFor(prog))
	eng := engine.New(cfg, p, rows, client, engine.Options{
		IncludeHeaders: includeHeaders,
		Sink:           agg,
	})

	resCh := make(chan *engine.RunResult, 1)
	go func() {
		res := eng.Run(runCtx)
		resCh <- res
		prog.Send(ui.DoneMsg{Result: res})
	}()

	_, uiErr := prog.Run()
	cancel()
	res := <-resCh
	if uiErr != nil {
		return nil, fmt.Errorf("running interface: %w", uiErr)
	}

	// Leave a scannable trace in the scrollback after the alt screen
	// closes.
	fmt.Printf("%s\n", res.Summary.ClassCounts())
	return res, nil
}
