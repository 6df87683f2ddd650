package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chrissnell/turbineclean/internal/cleaning"
	"github.com/chrissnell/turbineclean/internal/ingest"
	"github.com/chrissnell/turbineclean/internal/managers"
	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/chrissnell/turbineclean/pkg/config"
	"go.uber.org/zap"
)

// Options carries command line overrides
type Options struct {
	// Anomalous overrides cleaning.anomalous when set
	Anomalous *bool

	// Compare also cleans with the opposite anomalous setting and reports
	// both power_avg summaries. Only the configured mode is stored.
	Compare bool

	// Report receives the completeness and summary report. Defaults to stdout.
	Report io.Writer
}

// App represents the main application
type App struct {
	configProvider config.ConfigProvider
	logger         *zap.SugaredLogger
	opts           Options
}

// New creates a new application instance
func New(configProvider config.ConfigProvider, logger *zap.SugaredLogger, opts Options) *App {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Report == nil {
		opts.Report = os.Stdout
	}
	return &App{
		configProvider: configProvider,
		logger:         logger,
		opts:           opts,
	}
}

// Run loads the input, cleans it, prints the report and hands the cleaned
// table to every configured sink
func (a *App) Run(ctx context.Context) error {
	cfg, err := a.configProvider.LoadConfig()
	if err != nil {
		return fmt.Errorf("could not load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	params := Params(cfg)
	if a.opts.Anomalous != nil {
		params.Anomalous = *a.opts.Anomalous
	}

	cleaner, err := cleaning.New(params, a.logger)
	if err != nil {
		return err
	}

	raw, err := a.load(cfg)
	if err != nil {
		return err
	}
	a.logger.Infow("loaded input", "path", cfg.Input.Path, "rows", raw.Nrow(), "turbines", params.Turbines)

	// Open sinks before cleaning so a bad connection fails fast
	sm, err := managers.NewStorageManager(ctx, &cfg.Storage, a.logger)
	if err != nil {
		return err
	}
	defer sm.Close()

	started := time.Now()
	res, err := cleaner.Clean(raw)
	if err != nil {
		return err
	}

	if err := a.report(res); err != nil {
		return err
	}

	if a.opts.Compare {
		if err := a.compare(raw, params, res); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	run := storage.NewRun(cfg.Farm.Name, cfg.Input.Path, started, res)
	a.logger.Infow("storing cleaning run", "run", run.ID, "sinks", len(sm.Sinks))
	return sm.StoreRun(ctx, run)
}

// Params converts the configuration into cleaning parameters
func Params(cfg *config.ConfigData) cleaning.Params {
	p := cleaning.DefaultParams(cfg.Farm.Turbines, cfg.Farm.CutIn, cfg.Farm.Rated, cfg.Farm.CutOut)
	p.KUp = cfg.Cleaning.KUp
	p.KLow = cfg.Cleaning.KLow
	p.Anomalous = cfg.Cleaning.Anomalous
	p.BinWidth = cfg.Cleaning.BinWidth
	p.ShutdownMargin = cfg.Cleaning.ShutdownMargin
	if cfg.Cleaning.Workers > 0 {
		p.Workers = cfg.Cleaning.Workers
	}
	return p
}

func (a *App) load(cfg *config.ConfigData) (*table.Table, error) {
	loc, err := cfg.Input.Location()
	if err != nil {
		return nil, err
	}
	return ingest.Load(cfg.Input.Path, ingest.Options{
		Format:     ingest.Format(cfg.Input.Format),
		Sheet:      cfg.Input.Sheet,
		TimeColumn: cfg.Input.TimeColumn,
		TimeLayout: cfg.Input.TimeLayout,
		Location:   loc,
	})
}

func (a *App) report(res *cleaning.Result) error {
	w := a.opts.Report

	if err := res.Completeness.Format(w); err != nil {
		return err
	}

	for _, s := range res.Stages {
		a.logger.Infow("stage summary", "stage", s.Stage, "erased", s.TotalErased(), "flagged", s.TotalFlagged())
	}
	for _, d := range res.Warnings {
		a.logger.Debug(d.String())
	}

	cleaned, _ := res.Table.Float(table.PowerAvg)
	_, err := fmt.Fprintf(w, "\nRaw power_avg:\n%s\nCleaned power_avg (anomalous=%t):\n%s\n",
		cleaning.Describe(res.RawAggregates.PowerAvg), res.Params.Anomalous, cleaning.Describe(cleaned))
	return err
}

// compare cleans raw again with the opposite anomalous setting
func (a *App) compare(raw *table.Table, params cleaning.Params, primary *cleaning.Result) error {
	other := params
	other.Anomalous = !params.Anomalous

	res, err := cleaning.Clean(raw, other)
	if err != nil {
		return err
	}

	power, _ := res.Table.Float(table.PowerAvg)
	summary := cleaning.Describe(power)
	primaryPower, _ := primary.Table.Float(table.PowerAvg)
	a.logger.Infow("mode comparison",
		"anomalous", other.Anomalous,
		"power_avg_count", summary.Count,
		"primary_power_avg_count", cleaning.Describe(primaryPower).Count)

	_, err = fmt.Fprintf(a.opts.Report, "Cleaned power_avg (anomalous=%t):\n%s\n", other.Anomalous, summary)
	return err
}
