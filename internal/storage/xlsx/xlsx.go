// Package xlsx writes cleaned tables as Excel workbooks.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chrissnell/turbineclean/internal/storage"
	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	// RunIDPlaceholder in a path is replaced by the run ID
	RunIDPlaceholder = "{run}"

	DefaultSheet = "cleaned"
	stagesSheet  = "stages"

	// Built-in number format "m/d/yy h:mm"
	dateTimeNumFmt = 22
)

// Storage holds the configuration for an XLSX sink
type Storage struct {
	path   string
	sheet  string
	logger *zap.SugaredLogger
}

// New sets up an XLSX sink writing to path
func New(path, sheet string, logger *zap.SugaredLogger) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("xlsx sink requires a path")
	}
	if sheet == "" {
		sheet = DefaultSheet
	}
	if sheet == stagesSheet {
		return nil, fmt.Errorf("sheet name %q is reserved", stagesSheet)
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Storage{
		path:   path,
		sheet:  sheet,
		logger: logger,
	}, nil
}

// Name identifies the sink in logs
func (s *Storage) Name() string {
	return "xlsx"
}

// StoreRun writes the cleaned table to the data sheet and the per-stage
// counts to a second sheet. Missing values are left as empty cells.
func (s *Storage) StoreRun(ctx context.Context, run *storage.Run) error {
	path := strings.ReplaceAll(s.path, RunIDPlaceholder, run.ID.String())
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("could not create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), s.sheet); err != nil {
		return fmt.Errorf("could not name sheet: %w", err)
	}

	if err := s.writeTable(ctx, f, run); err != nil {
		return err
	}
	if err := writeStages(f, run); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}

	s.logger.Infow("wrote cleaned table", "sink", s.Name(), "path", path, "rows", run.Result.Table.Nrow())
	return nil
}

func (s *Storage) writeTable(ctx context.Context, f *excelize.File, run *storage.Run) error {
	t := run.Result.Table
	columns := storage.WideColumns(t, run.Result.Params.Turbines)

	timeStyle, err := f.NewStyle(&excelize.Style{NumFmt: dateTimeNumFmt})
	if err != nil {
		return fmt.Errorf("could not create time style: %w", err)
	}

	sw, err := f.NewStreamWriter(s.sheet)
	if err != nil {
		return fmt.Errorf("could not open stream writer: %w", err)
	}

	header := make([]interface{}, 0, len(columns)+1)
	header = append(header, "time")
	for _, name := range columns {
		header = append(header, name)
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	for r, ts := range t.Index {
		if r%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		row := make([]interface{}, len(columns)+1)
		row[0] = excelize.Cell{StyleID: timeStyle, Value: ts}
		for c, name := range columns {
			v, _ := t.Value(name, r)
			if table.IsMissing(v) {
				continue
			}
			row[c+1] = v
		}

		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("could not write row %d: %w", r+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("could not flush sheet %s: %w", s.sheet, err)
	}
	return nil
}

func writeStages(f *excelize.File, run *storage.Run) error {
	if _, err := f.NewSheet(stagesSheet); err != nil {
		return fmt.Errorf("could not add %s sheet: %w", stagesSheet, err)
	}

	rows := [][]interface{}{{"stage", "turbine", "erased", "flagged"}}
	for _, st := range run.Result.Stages {
		for i := range st.Erased {
			rows = append(rows, []interface{}{st.Stage, i + 1, st.Erased[i], st.Flagged[i]})
		}
	}

	for r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(stagesSheet, cell, &rows[r]); err != nil {
			return fmt.Errorf("could not write stage row: %w", err)
		}
	}
	return nil
}

// Close is a no-op; every run writes its own workbook
func (s *Storage) Close() error {
	return nil
}
