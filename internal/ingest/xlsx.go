package ingest

import (
	"fmt"

	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses a worksheet laid out like the CSV export. Date cells may
// hold spreadsheet serial numbers.
func ReadXLSX(path string, opts Options) (*table.Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	// GetRows drops trailing empty cells, so pad every row to the header width
	width := len(rows[0])
	for i, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			rows[i] = padded
		} else if len(row) > width {
			rows[i] = row[:width]
		}
	}

	df := dataframe.LoadRecords(rows, loadOptions()...)
	return fromDataFrame(df, opts, true)
}
