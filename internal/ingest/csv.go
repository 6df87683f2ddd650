package ingest

import (
	"io"

	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/go-gota/gota/dataframe"
)

// ReadCSV parses a wide CSV export: a time column followed by
// windSpeed_wtNN / power_wtNN columns
func ReadCSV(r io.Reader, opts Options) (*table.Table, error) {
	df := dataframe.ReadCSV(r, loadOptions()...)
	return fromDataFrame(df, opts, false)
}
