package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/history"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/observability"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin"
	"git.home.luguber.info/inful/sitebuilder/internal/plugin/builtin"
)

// SuccessMessage follows the marker printed after a successful build at the
// minimum verbosity.
const SuccessMessage = "Files built.. ✨"

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	Source      string `short:"s" help:"Source directory (overrides config)"`
	Destination string `short:"d" help:"Destination directory (overrides config)"`
	Logs        string `help:"Console verbosity: silent, minimum or complete (overrides config)"`
	MetricsFile string `name:"metrics-file" help:"Write Prometheus metrics in textfile format after the build"`
	ReportFile  string `name:"report-file" help:"Write the JSON build report after the build"`
	History     string `help:"Record the build in this SQLite history database"`
}

func (b *BuildCmd) Run(g *Global, root *CLI) error {
	cfg, err := config.LoadWithOverrides(root.Config, root.configRequired(), config.Overrides{
		Source:      b.Source,
		Destination: b.Destination,
		Logs:        b.Logs,
	})
	if err != nil {
		return err
	}

	level := cfg.Logs.SlogLevel()
	if root.Verbose {
		level = slog.LevelDebug
	}
	logger := observability.NewLogger(os.Stderr, level)
	slog.SetDefault(logger)

	if err := builtin.RegisterAll(plugin.DefaultRegistry()); err != nil {
		return ferrors.WrapError(err, ferrors.CategoryInternal, "register built-in plugins").Fatal().Build()
	}

	registry := prometheus.NewRegistry()
	var recorder metrics.Recorder = metrics.NoopRecorder{}
	if b.MetricsFile != "" {
		recorder = metrics.NewPrometheusRecorder(registry)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, buildErr := build.New(cfg, build.WithLogger(logger), build.WithRecorder(recorder)).Build(ctx)

	if b.MetricsFile != "" {
		if err := metrics.WriteTextfile(b.MetricsFile, registry); err != nil {
			logger.Warn("Failed to write metrics file", logfields.Path(b.MetricsFile), logfields.Error(err))
		}
	}
	if b.ReportFile != "" && report != nil {
		if err := report.Persist(b.ReportFile); err != nil {
			logger.Warn("Failed to write build report", logfields.Path(b.ReportFile), logfields.Error(err))
		}
	}
	if b.History != "" && report != nil {
		if err := recordHistory(ctx, b.History, report); err != nil {
			logger.Warn("Failed to record build history", logfields.Path(b.History), logfields.Error(err))
		}
	}
	if buildErr != nil {
		return buildErr
	}

	logger.Debug("Build summary", slog.String("summary", report.Summary()))
	if cfg.Logs == config.LogMinimum {
		observability.SuccessLine(g.stdout(), SuccessMessage)
	}
	return nil
}

func recordHistory(ctx context.Context, path string, report *build.Report) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return store.Record(context.WithoutCancel(ctx), report)
}
