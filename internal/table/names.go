package table

import (
	"fmt"
	"regexp"
	"strconv"
)

// Farm-level aggregate column names
const (
	WindSpeedAvg = "windSpeed_avg"
	WindSpeedStd = "windSpeed_std"
	PowerAvg     = "power_avg"
)

var turbineColumnRegex = regexp.MustCompile(`^(windSpeed|power|flag)_wt(\d{2,})$`)

// WindSpeedColumn returns the wind speed column name for turbine t (1-based)
func WindSpeedColumn(t int) string {
	return fmt.Sprintf("windSpeed_wt%02d", t)
}

// PowerColumn returns the normalized power column name for turbine t (1-based)
func PowerColumn(t int) string {
	return fmt.Sprintf("power_wt%02d", t)
}

// FlagColumn returns the flag counter column name for turbine t (1-based)
func FlagColumn(t int) string {
	return fmt.Sprintf("flag_wt%02d", t)
}

// ParseTurbineColumn splits a per-turbine column name into its field and
// turbine number. ok is false for farm-level or unknown columns.
func ParseTurbineColumn(name string) (field string, turbine int, ok bool) {
	m := turbineColumnRegex.FindStringSubmatch(name)
	if m == nil {
		return "", 0, false
	}
	turbine, err := strconv.Atoi(m[2])
	if err != nil || turbine < 1 {
		return "", 0, false
	}
	return m[1], turbine, true
}

// TurbineCount returns the highest turbine number that has both a wind speed
// and a power column, counting up from turbine 1 without gaps.
func (t *Table) TurbineCount() int {
	n := 0
	for {
		next := n + 1
		if !t.HasColumn(WindSpeedColumn(next)) || !t.HasColumn(PowerColumn(next)) {
			return n
		}
		n = next
	}
}
