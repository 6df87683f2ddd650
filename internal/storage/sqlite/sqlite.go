// Package sqlite stores cleaning runs in a local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/chrissnell/turbineclean/pkg/migrate"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const timeLayout = time.RFC3339Nano

// Storage holds the connection to a SQLite database
type Storage struct {
	db     *sql.DB
	path   string
	logger *zap.SugaredLogger
}

// New opens (or creates) the database at path and brings its schema up to date
func New(ctx context.Context, path string, logger *zap.SugaredLogger) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite sink requires a path")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	db, err := OpenDB(ctx, path)
	if err != nil {
		return nil, err
	}

	if err := SchemaMigrator(db, logger).MigrateUp(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite database: %w", err)
	}

	return &Storage{
		db:     db,
		path:   path,
		logger: logger,
	}, nil
}

// OpenDB opens the database at path with foreign keys enforced, creating
// the parent directory if needed
func OpenDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("could not create database directory: %w", err)
	}

	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return db, nil
}

// SchemaMigrator returns a migrator over the embedded sink schema
func SchemaMigrator(db *sql.DB, logger *zap.SugaredLogger) *migrate.Migrator {
	return migrate.NewMigrator(db, migrate.NewFSProvider(migrationFiles, ""), logger)
}

// Name identifies the sink in logs
func (s *Storage) Name() string {
	return "sqlite"
}

// StoreRun writes the run and all of its readings in one transaction
func (s *Storage) StoreRun(ctx context.Context, run *storage.Run) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertRun(ctx, tx, run); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	if err := insertReadings(ctx, tx, run); err != nil {
		return fmt.Errorf("failed to insert turbine readings: %w", err)
	}
	if err := insertAggregates(ctx, tx, run); err != nil {
		return fmt.Errorf("failed to insert farm aggregates: %w", err)
	}
	if err := insertDiagnostics(ctx, tx, run); err != nil {
		return fmt.Errorf("failed to insert run diagnostics: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}

	s.logger.Infow("stored cleaning run", "sink", s.Name(), "path", s.path, "run", run.ID)
	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, run *storage.Run) error {
	p := run.Result.Params
	query := `
		INSERT INTO cleaning_runs (
			id, farm, source, started_at, finished_at, turbines,
			cut_in, rated, cut_out, k_up, k_low, anomalous, bin_width,
			row_count, degenerate_bins
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		run.ID.String(), run.Farm, run.Source,
		run.Started.UTC().Format(timeLayout), run.Finished.UTC().Format(timeLayout),
		p.Turbines, p.CutIn, p.Rated, p.CutOut, p.KUp, p.KLow, p.Anomalous, p.BinWidth,
		run.Result.Table.Nrow(), len(run.Result.Warnings),
	)
	return err
}

func insertReadings(ctx context.Context, tx *sql.Tx, run *storage.Run) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO turbine_readings (run_id, row_num, time, turbine, wind_speed, power, flag)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	id := run.ID.String()
	turbines := run.Result.Params.Turbines
	for i, r := range storage.TurbineReadings(run.Result.Table, turbines) {
		_, err := stmt.ExecContext(ctx, id, i/turbines, r.Time.UTC().Format(timeLayout), r.Turbine,
			nullFloat(r.WindSpeed), nullFloat(r.Power), r.Flag)
		if err != nil {
			return err
		}
	}
	return nil
}

func insertAggregates(ctx context.Context, tx *sql.Tx, run *storage.Run) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO farm_aggregates (run_id, row_num, time, wind_speed_avg, wind_speed_std, power_avg)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	id := run.ID.String()
	for i, r := range storage.FarmReadings(run.Result.Table) {
		_, err := stmt.ExecContext(ctx, id, i, r.Time.UTC().Format(timeLayout),
			nullFloat(r.WindSpeedAvg), nullFloat(r.WindSpeedStd), nullFloat(r.PowerAvg))
		if err != nil {
			return err
		}
	}
	return nil
}

func insertDiagnostics(ctx context.Context, tx *sql.Tx, run *storage.Run) error {
	id := run.ID.String()

	for seq, st := range run.Result.Stages {
		for i := range st.Erased {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO stage_stats (run_id, seq, stage, turbine, erased, flagged)
				VALUES (?, ?, ?, ?, ?, ?)
			`, id, seq, st.Stage, i+1, st.Erased[i], st.Flagged[i])
			if err != nil {
				return err
			}
		}
	}

	for _, c := range run.Result.Completeness.Turbines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO completeness (run_id, turbine, wind_speed_missing, wind_speed_percent, power_missing, power_percent)
			VALUES (?, ?, ?, ?, ?, ?)
		`, id, c.Turbine, c.WindSpeedMissing, c.WindSpeedPercent, c.PowerMissing, c.PowerPercent)
		if err != nil {
			return err
		}
	}
	return nil
}

func nullFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !table.IsMissing(v)}
}
