package cleaning

import (
	"github.com/chrissnell/turbineclean/internal/table"
	"gonum.org/v1/gonum/stat"
)

// Aggregates holds the farm-level row-wise summary columns
type Aggregates struct {
	WindSpeedAvg []float64
	WindSpeedStd []float64
	PowerAvg     []float64
}

// Aggregate computes the farm mean wind speed, the sample standard deviation
// of wind speed and the farm mean power for every row. A row with any
// missing turbine value gets a missing aggregate. With a single turbine the
// standard deviation is always missing.
func Aggregate(t *table.Table, turbines int) Aggregates {
	n := t.Nrow()
	agg := Aggregates{
		WindSpeedAvg: make([]float64, n),
		WindSpeedStd: make([]float64, n),
		PowerAvg:     make([]float64, n),
	}

	ws := make([][]float64, turbines)
	power := make([][]float64, turbines)
	for i := 0; i < turbines; i++ {
		ws[i], _ = t.Float(table.WindSpeedColumn(i + 1))
		power[i], _ = t.Float(table.PowerColumn(i + 1))
	}

	wsRow := make([]float64, turbines)
	powerRow := make([]float64, turbines)
	for r := 0; r < n; r++ {
		wsComplete, powerComplete := true, true
		for i := 0; i < turbines; i++ {
			wsRow[i] = ws[i][r]
			powerRow[i] = power[i][r]
			if table.IsMissing(wsRow[i]) {
				wsComplete = false
			}
			if table.IsMissing(powerRow[i]) {
				powerComplete = false
			}
		}

		if wsComplete {
			agg.WindSpeedAvg[r], agg.WindSpeedStd[r] = stat.MeanStdDev(wsRow, nil)
		} else {
			agg.WindSpeedAvg[r], agg.WindSpeedStd[r] = table.Missing(), table.Missing()
		}

		if powerComplete {
			agg.PowerAvg[r] = stat.Mean(powerRow, nil)
		} else {
			agg.PowerAvg[r] = table.Missing()
		}
	}

	return agg
}

// Apply writes the aggregates into t, replacing any previous aggregate columns
func (a Aggregates) Apply(t *table.Table) error {
	if err := t.SetFloat(table.WindSpeedAvg, a.WindSpeedAvg); err != nil {
		return err
	}
	if err := t.SetFloat(table.WindSpeedStd, a.WindSpeedStd); err != nil {
		return err
	}
	return t.SetFloat(table.PowerAvg, a.PowerAvg)
}
