package cleaning

import (
	"fmt"
	"math"
	"sort"

	"github.com/chrissnell/turbineclean/internal/table"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds descriptive statistics over the non-missing values of a column
type Summary struct {
	Count int
	Mean  float64
	Std   float64
	Min   float64
	Q25   float64
	Q50   float64
	Q75   float64
	Max   float64
}

// Describe summarizes the non-missing values. Every statistic except Count
// is NaN when no value is present; Std is NaN for a single value.
func Describe(values []float64) Summary {
	present := make([]float64, 0, len(values))
	for _, v := range values {
		if !table.IsMissing(v) {
			present = append(present, v)
		}
	}

	s := Summary{Count: len(present)}
	if s.Count == 0 {
		nan := math.NaN()
		s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sort.Float64s(present)
	s.Mean, s.Std = stat.MeanStdDev(present, nil)
	s.Min = floats.Min(present)
	s.Max = floats.Max(present)
	s.Q25 = Percentile(present, 25)
	s.Q50 = Percentile(present, 50)
	s.Q75 = Percentile(present, 75)
	return s
}

func (s Summary) String() string {
	return fmt.Sprintf("count=%d mean=%.4f std=%.4f min=%.4f 25%%=%.4f 50%%=%.4f 75%%=%.4f max=%.4f",
		s.Count, s.Mean, s.Std, s.Min, s.Q25, s.Q50, s.Q75, s.Max)
}
