// Package ingest loads turbine SCADA exports into reading tables.
package ingest

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/chrissnell/turbineclean/internal/table"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// Format identifies an input file type
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DefaultTimeLayout is the timestamp layout of the farm SCADA exports
const DefaultTimeLayout = "2006-01-02 15:04:05"

// Cell values treated as missing
var missingMarkers = []string{"", "NA", "NaN", "nan", "null", "NULL"}

// Layouts tried after Options.TimeLayout
var fallbackTimeLayouts = []string{
	DefaultTimeLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"1/2/06 15:04",
}

// Options controls how a file is turned into a table
type Options struct {
	// Format overrides detection from the file extension
	Format Format

	// Sheet selects the XLSX worksheet. Defaults to the first sheet.
	Sheet string

	// TimeColumn names the time index column. Defaults to the first column.
	TimeColumn string

	// TimeLayout is tried first when parsing timestamps
	TimeLayout string

	// Location is applied to timestamps without zone information. Defaults to UTC.
	Location *time.Location
}

// Load reads the file at path into a table sorted by time
func Load(path string, opts Options) (*table.Table, error) {
	format := opts.Format
	if format == "" {
		format = DetectFormat(path)
	}

	var t *table.Table
	var err error
	switch format {
	case FormatCSV:
		var f *os.File
		f, err = os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open %s: %w", path, err)
		}
		defer f.Close()
		t, err = ReadCSV(f, opts)
	case FormatXLSX:
		t, err = ReadXLSX(path, opts)
	default:
		return nil, fmt.Errorf("unsupported input format %q for %s", format, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	t.SortByIndex()
	return t, nil
}

// DetectFormat guesses the format from the file extension, falling back to CSV
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// loadOptions makes gota keep every cell as a string so values are parsed,
// and rejected, here
func loadOptions() []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(missingMarkers),
	}
}

// fromDataFrame converts a string-typed dataframe into a table
func fromDataFrame(df dataframe.DataFrame, opts Options, excelDates bool) (*table.Table, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse records: %w", df.Err)
	}

	names := df.Names()
	if len(names) == 0 {
		return nil, fmt.Errorf("input has no columns")
	}

	timeColumn := opts.TimeColumn
	if timeColumn == "" {
		timeColumn = names[0]
	}
	if !contains(names, timeColumn) {
		return nil, fmt.Errorf("time column %q not found", timeColumn)
	}

	loc := opts.Location
	if loc == nil {
		loc = time.UTC
	}

	timeSeries := df.Col(timeColumn)
	index := make([]time.Time, df.Nrow())
	for i := range index {
		e := timeSeries.Elem(i)
		if e.IsNA() {
			return nil, fmt.Errorf("row %d: missing timestamp", i+1)
		}
		ts, err := parseTime(e.String(), opts.TimeLayout, loc, excelDates)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		index[i] = ts
	}

	t := table.New(index)
	for _, name := range names {
		if name == timeColumn {
			continue
		}

		col := df.Col(name)
		if field, _, ok := table.ParseTurbineColumn(name); ok && field == "flag" {
			values, err := parseCounters(col)
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", name, err)
			}
			if err := t.SetCounter(name, values); err != nil {
				return nil, err
			}
			continue
		}

		values, err := parseFloats(col)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		if err := t.SetFloat(name, values); err != nil {
			return nil, err
		}
	}

	return t, nil
}

func parseFloats(s series.Series) ([]float64, error) {
	values := make([]float64, s.Len())
	for i := range values {
		e := s.Elem(i)
		if e.IsNA() {
			values[i] = table.Missing()
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(e.String()), 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid number %q", i+1, e.String())
		}
		values[i] = v
	}
	return values, nil
}

// parseCounters reads a flag column. Missing cells count as zero.
func parseCounters(s series.Series) ([]int, error) {
	values := make([]int, s.Len())
	for i := range values {
		e := s.Elem(i)
		if e.IsNA() {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(e.String()), 64)
		if err != nil || v < 0 || v != math.Trunc(v) {
			return nil, fmt.Errorf("row %d: invalid flag %q", i+1, e.String())
		}
		values[i] = int(v)
	}
	return values, nil
}

func parseTime(value, layout string, loc *time.Location, excelDates bool) (time.Time, error) {
	value = strings.TrimSpace(value)

	if excelDates {
		if serial, err := strconv.ParseFloat(value, 64); err == nil {
			ts, err := excelize.ExcelDateToTime(serial, false)
			if err != nil {
				return time.Time{}, fmt.Errorf("invalid spreadsheet date %q: %w", value, err)
			}
			// Spreadsheet serials carry no zone; reinterpret the wall clock in loc
			return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), loc), nil
		}
	}

	layouts := fallbackTimeLayouts
	if layout != "" {
		layouts = append([]string{layout}, fallbackTimeLayouts...)
	}
	for _, l := range layouts {
		if ts, err := time.ParseInLocation(l, value, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable timestamp %q", value)
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
