package storage

import (
	"time"

	"github.com/chrissnell/turbineclean/internal/table"
)

// TurbineReading is one turbine at one timestamp, the long layout used by
// the database sinks
type TurbineReading struct {
	Time      time.Time
	Turbine   int
	WindSpeed float64
	Power     float64
	Flag      int
}

// FarmReading holds the farm aggregates at one timestamp
type FarmReading struct {
	Time         time.Time
	WindSpeedAvg float64
	WindSpeedStd float64
	PowerAvg     float64
}

// TurbineReadings converts a wide table into long rows ordered by time, then
// turbine. Absent columns read as missing and absent flags as zero.
func TurbineReadings(t *table.Table, turbines int) []TurbineReading {
	ws := make([][]float64, turbines)
	power := make([][]float64, turbines)
	flags := make([][]int, turbines)
	for i := 0; i < turbines; i++ {
		ws[i], _ = t.Float(table.WindSpeedColumn(i + 1))
		power[i], _ = t.Float(table.PowerColumn(i + 1))
		flags[i], _ = t.Counter(table.FlagColumn(i + 1))
	}

	rows := make([]TurbineReading, 0, t.Nrow()*turbines)
	for r, ts := range t.Index {
		for i := 0; i < turbines; i++ {
			row := TurbineReading{
				Time:      ts,
				Turbine:   i + 1,
				WindSpeed: at(ws[i], r),
				Power:     at(power[i], r),
			}
			if flags[i] != nil {
				row.Flag = flags[i][r]
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// FarmReadings extracts the aggregate columns
func FarmReadings(t *table.Table) []FarmReading {
	avg, _ := t.Float(table.WindSpeedAvg)
	std, _ := t.Float(table.WindSpeedStd)
	power, _ := t.Float(table.PowerAvg)

	rows := make([]FarmReading, t.Nrow())
	for r, ts := range t.Index {
		rows[r] = FarmReading{
			Time:         ts,
			WindSpeedAvg: at(avg, r),
			WindSpeedStd: at(std, r),
			PowerAvg:     at(power, r),
		}
	}
	return rows
}

// WideColumns returns the column order of the wide exports: per turbine
// wind speed, power and flag, then the farm aggregates, then anything else
// in table order
func WideColumns(t *table.Table, turbines int) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if t.HasColumn(name) && !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	for i := 1; i <= turbines; i++ {
		add(table.WindSpeedColumn(i))
		add(table.PowerColumn(i))
		add(table.FlagColumn(i))
	}
	add(table.WindSpeedAvg)
	add(table.WindSpeedStd)
	add(table.PowerAvg)
	for _, name := range t.Names() {
		add(name)
	}
	return names
}

func at(values []float64, i int) float64 {
	if values == nil {
		return table.Missing()
	}
	return values[i]
}
