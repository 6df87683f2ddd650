package cleaning

import (
	"math"
	"sort"

	"github.com/chrissnell/turbineclean/internal/table"
)

// Percentile returns the p-th percentile (0-100) of an ascending slice,
// interpolating linearly between the two closest ranks. It returns NaN for
// an empty slice.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return math.NaN()
	}
	if n == 1 {
		return sorted[0]
	}

	h := p / 100 * float64(n-1)
	lo := int(math.Floor(h))
	if lo < 0 {
		return sorted[0]
	}
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// nonMissingSorted collects the non-missing values at rows, sorted ascending
func nonMissingSorted(values []float64, rows []int) []float64 {
	out := make([]float64, 0, len(rows))
	for _, r := range rows {
		if !table.IsMissing(values[r]) {
			out = append(out, values[r])
		}
	}
	sort.Float64s(out)
	return out
}

// quartiles returns the 25th and 75th percentile of the non-missing values
// at rows. ok is false when fewer than two values are available, in which
// case the IQR is undefined.
func quartiles(values []float64, rows []int) (q25, q75 float64, samples int, ok bool) {
	sorted := nonMissingSorted(values, rows)
	if len(sorted) < 2 {
		return 0, 0, len(sorted), false
	}
	return Percentile(sorted, 25), Percentile(sorted, 75), len(sorted), true
}
