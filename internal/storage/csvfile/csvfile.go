// Package csvfile writes cleaned tables as wide CSV files.
package csvfile

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"
)

// RunIDPlaceholder in a path is replaced by the run ID
const RunIDPlaceholder = "{run}"

// Storage holds the configuration for a CSV file sink
type Storage struct {
	path   string
	logger *zap.SugaredLogger
}

// New sets up a CSV sink writing to path
func New(path string, logger *zap.SugaredLogger) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("csv sink requires a path")
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Storage{
		path:   path,
		logger: logger,
	}, nil
}

// Name identifies the sink in logs
func (s *Storage) Name() string {
	return "csv"
}

// StoreRun writes the cleaned table. Missing values are written as NaN.
func (s *Storage) StoreRun(ctx context.Context, run *storage.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	path := strings.ReplaceAll(s.path, RunIDPlaceholder, run.ID.String())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := WriteTable(f, run.Result.Table, run.Result.Params.Turbines); err != nil {
		f.Close()
		return fmt.Errorf("could not write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("could not close %s: %w", path, err)
	}

	s.logger.Infow("wrote cleaned table", "sink", s.Name(), "path", path, "rows", run.Result.Table.Nrow())
	return nil
}

// Close is a no-op; every run opens and closes its own file
func (s *Storage) Close() error {
	return nil
}

// WriteTable writes t in the wide layout read by the ingest package: a time
// column followed by the turbine and aggregate columns
func WriteTable(w io.Writer, t *table.Table, turbines int) error {
	df := toDataFrame(t, turbines)
	if df.Err != nil {
		return fmt.Errorf("could not build dataframe: %w", df.Err)
	}
	return df.WriteCSV(w)
}

func toDataFrame(t *table.Table, turbines int) dataframe.DataFrame {
	stamps := make([]string, t.Nrow())
	for i, ts := range t.Index {
		stamps[i] = ts.Format(time.RFC3339)
	}

	columns := []series.Series{series.New(stamps, series.String, "time")}
	for _, name := range storage.WideColumns(t, turbines) {
		if counts, ok := t.Counter(name); ok {
			columns = append(columns, series.New(counts, series.Int, name))
			continue
		}
		values, _ := t.Float(name)
		columns = append(columns, series.New(formatFloats(values), series.String, name))
	}
	return dataframe.New(columns...)
}

// formatFloats renders values at full precision; gota's float series would
// round them to six decimals
func formatFloats(values []float64) []string {
	out := make([]string, len(values))
	for i, v := range values {
		if table.IsMissing(v) {
			out[i] = "NaN"
			continue
		}
		out[i] = strconv.FormatFloat(v, 'f', -1, 64)
	}
	return out
}
