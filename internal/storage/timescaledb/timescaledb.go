// Package timescaledb stores cleaning runs in TimescaleDB hypertables.
package timescaledb

import (
	"context"
	"fmt"

	"github.com/chrissnell/turbineclean/internal/database"
	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultBatchSize is the number of rows per INSERT statement
const DefaultBatchSize = 1000

// Storage holds the configuration for a TimescaleDB storage backend
type Storage struct {
	TimescaleDBConn *gorm.DB
	batchSize       int
	logger          *zap.SugaredLogger
}

// schemaStep is one idempotent statement run at startup
type schemaStep struct {
	description string
	sql         string
}

var schema = []schemaStep{
	{"TimescaleDB extension", createExtensionSQL},
	{"runs table", createRunsTableSQL},
	{"readings table", createReadingsTableSQL},
	{"readings hypertable", createReadingsHypertableSQL},
	{"readings index", createReadingsIndexSQL},
	{"aggregates table", createAggregatesTableSQL},
	{"aggregates hypertable", createAggregatesHypertableSQL},
}

// New sets up a new TimescaleDB storage backend
func New(ctx context.Context, connectionString string, batchSize int, logger *zap.SugaredLogger) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	conn, err := database.CreateConnection(connectionString)
	if err != nil {
		return nil, err
	}

	for _, step := range schema {
		logger.Infof("creating %s...", step.description)
		if err := conn.WithContext(ctx).Exec(step.sql).Error; err != nil {
			return nil, fmt.Errorf("could not create %s: %w", step.description, err)
		}
	}

	return &Storage{
		TimescaleDBConn: conn,
		batchSize:       batchSize,
		logger:          logger,
	}, nil
}

// Name identifies the sink in logs
func (t *Storage) Name() string {
	return "timescaledb"
}

// StoreRun inserts the run and its readings in a single transaction
func (t *Storage) StoreRun(ctx context.Context, run *storage.Run) error {
	runRecord, readings, aggregates := toRecords(run)

	err := t.TimescaleDBConn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&runRecord).Error; err != nil {
			return fmt.Errorf("could not store run: %w", err)
		}
		if len(readings) > 0 {
			if err := tx.CreateInBatches(readings, t.batchSize).Error; err != nil {
				return fmt.Errorf("could not store turbine readings: %w", err)
			}
		}
		if len(aggregates) > 0 {
			if err := tx.CreateInBatches(aggregates, t.batchSize).Error; err != nil {
				return fmt.Errorf("could not store farm aggregates: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	t.logger.Infow("stored cleaning run", "sink", t.Name(), "run", run.ID, "readings", len(readings))
	return nil
}

// Close releases the underlying connection pool
func (t *Storage) Close() error {
	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// toRecords converts a run into gorm models. Missing values become NULL.
func toRecords(run *storage.Run) (database.CleaningRun, []database.TurbineReading, []database.FarmAggregate) {
	res := run.Result
	p := res.Params

	runRecord := database.CleaningRun{
		ID:             run.ID,
		Farm:           run.Farm,
		Source:         run.Source,
		StartedAt:      run.Started,
		FinishedAt:     run.Finished,
		Turbines:       p.Turbines,
		CutIn:          p.CutIn,
		Rated:          p.Rated,
		CutOut:         p.CutOut,
		KUp:            p.KUp,
		KLow:           p.KLow,
		Anomalous:      p.Anomalous,
		BinWidth:       p.BinWidth,
		RowCount:       res.Table.Nrow(),
		DegenerateBins: len(res.Warnings),
	}

	turbineRows := storage.TurbineReadings(res.Table, p.Turbines)
	readings := make([]database.TurbineReading, len(turbineRows))
	for i, r := range turbineRows {
		readings[i] = database.TurbineReading{
			Time:      r.Time,
			RunID:     run.ID,
			Turbine:   r.Turbine,
			WindSpeed: nullable(r.WindSpeed),
			Power:     nullable(r.Power),
			Flag:      r.Flag,
		}
	}

	farmRows := storage.FarmReadings(res.Table)
	aggregates := make([]database.FarmAggregate, len(farmRows))
	for i, r := range farmRows {
		aggregates[i] = database.FarmAggregate{
			Time:         r.Time,
			RunID:        run.ID,
			WindSpeedAvg: nullable(r.WindSpeedAvg),
			WindSpeedStd: nullable(r.WindSpeedStd),
			PowerAvg:     nullable(r.PowerAvg),
		}
	}

	return runRecord, readings, aggregates
}

func nullable(v float64) *float64 {
	if table.IsMissing(v) {
		return nil
	}
	return &v
}
