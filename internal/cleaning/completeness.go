package cleaning

import (
	"fmt"
	"io"
	"math"

	"github.com/chrissnell/turbineclean/internal/table"
)

// TurbineCompleteness holds missing-value counts for one turbine
type TurbineCompleteness struct {
	Turbine          int
	WindSpeedMissing int
	WindSpeedPercent float64
	PowerMissing     int
	PowerPercent     float64
}

// Completeness is the missing-data report for a whole table
type Completeness struct {
	Rows     int
	Turbines []TurbineCompleteness
}

// ReportCompleteness counts missing wind speed and power values per turbine.
// Percentages are rounded to one decimal and are 0 for an empty table.
func ReportCompleteness(t *table.Table, turbines int) Completeness {
	c := Completeness{
		Rows:     t.Nrow(),
		Turbines: make([]TurbineCompleteness, turbines),
	}

	for i := 0; i < turbines; i++ {
		ws, _ := t.Float(table.WindSpeedColumn(i + 1))
		power, _ := t.Float(table.PowerColumn(i + 1))

		tc := TurbineCompleteness{
			Turbine:          i + 1,
			WindSpeedMissing: countMissing(ws),
			PowerMissing:     countMissing(power),
		}
		tc.WindSpeedPercent = percentOf(tc.WindSpeedMissing, c.Rows)
		tc.PowerPercent = percentOf(tc.PowerMissing, c.Rows)
		c.Turbines[i] = tc
	}

	return c
}

// Format writes the report in the console layout used by the cleaner CLI
func (c Completeness) Format(w io.Writer) error {
	lines := []string{"- - - - - Wind speed missing values - - - - -"}
	for _, tc := range c.Turbines {
		lines = append(lines, fmt.Sprintf("Turbine %02d: %d (%.1f%%)", tc.Turbine, tc.WindSpeedMissing, tc.WindSpeedPercent))
	}
	lines = append(lines, "", "- - - - - Power missing values - - - - -")
	for _, tc := range c.Turbines {
		lines = append(lines, fmt.Sprintf("Turbine %02d: %d (%.1f%%)", tc.Turbine, tc.PowerMissing, tc.PowerPercent))
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func countMissing(values []float64) int {
	n := 0
	for _, v := range values {
		if table.IsMissing(v) {
			n++
		}
	}
	return n
}

func percentOf(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*1000) / 10
}
