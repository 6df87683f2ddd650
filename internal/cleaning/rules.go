package cleaning

import (
	"github.com/chrissnell/turbineclean/internal/constants"
	"github.com/chrissnell/turbineclean/internal/table"
)

// The functions in this file operate on the column slices of one turbine.
// Each returns how many non-missing readings it erased or how many flag
// increments it made.

// erase sets values[r] missing and reports whether a reading was removed
func erase(values []float64, r int) bool {
	if table.IsMissing(values[r]) {
		return false
	}
	values[r] = table.Missing()
	return true
}

// filterRange discards wind speeds outside [0, 40) m/s and normalized power
// outside [-0.02, 1.01)
func filterRange(ws, power []float64) int {
	erased := 0
	for r := range ws {
		if v := ws[r]; !(v >= constants.WindSpeedMin && v < constants.WindSpeedMax) && erase(ws, r) {
			erased++
		}
		if v := power[r]; !(v >= constants.PowerMin && v < constants.PowerMax) && erase(power, r) {
			erased++
		}
	}
	return erased
}

// removeLowWindPower erases power above sensor noise while the wind is
// below cut-in
func removeLowWindPower(ws, power []float64, cutIn float64) int {
	erased := 0
	for r := range ws {
		if ws[r] >= 0 && ws[r] < cutIn && power[r] > constants.LowWindPowerLimit && erase(power, r) {
			erased++
		}
	}
	return erased
}

// removeShutdownPower erases any positive power at or above the shutdown
// wind speed
func removeShutdownPower(ws, power []float64, shutdown float64) int {
	erased := 0
	for r := range ws {
		if ws[r] >= shutdown && power[r] > 0 && erase(power, r) {
			erased++
		}
	}
	return erased
}

// flagBelow increments the flag of every row whose wind speed lies strictly
// inside (low, high) while power is below limit
func flagBelow(ws, power []float64, flags []int, low, high, limit float64) int {
	flagged := 0
	for r := range ws {
		if ws[r] > low && ws[r] < high && power[r] < limit {
			flags[r]++
			flagged++
		}
	}
	return flagged
}

// maskFlagged copies power into dst with every flagged row missing
func maskFlagged(dst, power []float64, flags []int) {
	for r := range power {
		if flags[r] > 0 {
			dst[r] = table.Missing()
		} else {
			dst[r] = power[r]
		}
	}
}

// removeUpperOutliers erases, bin by bin, power above q75 + k*IQR of the
// baseline
func removeUpperOutliers(ws, power, baseline []float64, bins Bins, k float64) (int, []DegenerateBin) {
	erased := 0
	var degenerate []DegenerateBin

	for i, rows := range bins.Group(ws) {
		q25, q75, samples, ok := quartiles(baseline, rows)
		if !ok {
			degenerate = append(degenerate, degenerateBin(bins, i, samples))
			continue
		}

		limit := q75 + k*(q75-q25)
		for _, r := range rows {
			if power[r] > limit && erase(power, r) {
				erased++
			}
		}
	}

	return erased, degenerate
}

// flagLowerOutliers increments, bin by bin, the flag of rows whose power is
// below q25 - k*IQR of the baseline
func flagLowerOutliers(ws, power, baseline []float64, flags []int, bins Bins, k float64) (int, []DegenerateBin) {
	flagged := 0
	var degenerate []DegenerateBin

	for i, rows := range bins.Group(ws) {
		q25, q75, samples, ok := quartiles(baseline, rows)
		if !ok {
			degenerate = append(degenerate, degenerateBin(bins, i, samples))
			continue
		}

		limit := q25 - k*(q75-q25)
		for _, r := range rows {
			if power[r] < limit {
				flags[r]++
				flagged++
			}
		}
	}

	return flagged, degenerate
}

// excludeFlagged erases every power reading with a positive flag
func excludeFlagged(power []float64, flags []int) int {
	erased := 0
	for r := range power {
		if flags[r] > 0 && erase(power, r) {
			erased++
		}
	}
	return erased
}

func degenerateBin(bins Bins, i, samples int) DegenerateBin {
	low, high := bins.Bounds(i)
	return DegenerateBin{Low: low, High: high, Samples: samples}
}
