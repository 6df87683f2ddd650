// Package managers builds and drives the configured output sinks.
package managers

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/storage/csvfile"
	"github.com/chrissnell/turbineclean/internal/storage/sqlite"
	"github.com/chrissnell/turbineclean/internal/storage/timescaledb"
	"github.com/chrissnell/turbineclean/internal/storage/xlsx"
	"github.com/chrissnell/turbineclean/pkg/config"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StorageManager holds our active sinks
type StorageManager struct {
	Sinks  []storage.Sink
	logger *zap.SugaredLogger
}

// NewStorageManager creates a StorageManager populated with every sink the
// configuration enables. Sinks opened before a failure are closed again.
func NewStorageManager(ctx context.Context, c *config.StorageData, logger *zap.SugaredLogger) (*StorageManager, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	s := &StorageManager{logger: logger}

	// Check the configuration for the supported sinks and enable them if found
	var err error
	if c.CSV != nil {
		err = s.AddSink(ctx, "csv", c)
	}
	if err == nil && c.XLSX != nil {
		err = s.AddSink(ctx, "xlsx", c)
	}
	if err == nil && c.SQLite != nil {
		err = s.AddSink(ctx, "sqlite", c)
	}
	if err == nil && c.TimescaleDB != nil {
		err = s.AddSink(ctx, "timescaledb", c)
	}
	if err != nil {
		s.Close()
		return nil, err
	}

	return s, nil
}

// AddSink adds a new sink of name sinkName
func (s *StorageManager) AddSink(ctx context.Context, sinkName string, c *config.StorageData) error {
	var sink storage.Sink
	var err error

	switch sinkName {
	case "csv":
		sink, err = csvfile.New(c.CSV.Path, s.logger)
	case "xlsx":
		sink, err = xlsx.New(c.XLSX.Path, c.XLSX.Sheet, s.logger)
	case "sqlite":
		sink, err = sqlite.New(ctx, c.SQLite.Path, s.logger)
	case "timescaledb":
		sink, err = timescaledb.New(ctx, c.TimescaleDB.ConnectionString, c.TimescaleDB.BatchSize, s.logger)
	default:
		return fmt.Errorf("unknown sink %q", sinkName)
	}
	if err != nil {
		return fmt.Errorf("could not add %s sink: %w", sinkName, err)
	}

	s.Sinks = append(s.Sinks, sink)
	return nil
}

// StoreRun hands the run to every sink concurrently. A failing sink does not
// stop the others; all failures are returned together.
func (s *StorageManager) StoreRun(ctx context.Context, run *storage.Run) error {
	if len(s.Sinks) == 0 {
		s.logger.Warn("no storage sinks configured; cleaned table discarded")
		return nil
	}

	errs := make([]error, len(s.Sinks))
	var g errgroup.Group
	for i, sink := range s.Sinks {
		g.Go(func() error {
			if err := sink.StoreRun(ctx, run); err != nil {
				errs[i] = fmt.Errorf("%s sink: %w", sink.Name(), err)
				s.logger.Errorw("sink failed", "sink", sink.Name(), "run", run.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Close closes every sink
func (s *StorageManager) Close() error {
	var errs []error
	for _, sink := range s.Sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s sink: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
