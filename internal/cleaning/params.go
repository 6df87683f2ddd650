package cleaning

import (
	"math"
	"runtime"
)

// Defaults for the outlier detection settings
const (
	DefaultK              = 1.5
	DefaultBinWidth       = 0.05 // m/s
	DefaultShutdownMargin = 2.0  // m/s above cut-out
)

// Params holds the power-curve description of the turbine model and the
// outlier settings for one cleaning run. Wind speeds are in m/s.
type Params struct {
	// Turbines is the number of turbines in the table, numbered 1..Turbines
	Turbines int

	CutIn  float64
	Rated  float64
	CutOut float64

	// KUp and KLow multiply the per-bin IQR to form the upper removal and
	// lower flagging thresholds
	KUp  float64
	KLow float64

	// Anomalous keeps flagged readings in the output when true. When false,
	// every power reading with a positive flag is erased at the end.
	Anomalous bool

	// BinWidth is the wind speed width of the quantile bins
	BinWidth float64

	// ShutdownMargin places the shutdown boundary used by the high-wind rule
	// at CutOut + ShutdownMargin
	ShutdownMargin float64

	// Workers bounds how many turbines are processed concurrently within a
	// stage. Values below 1 mean one worker.
	Workers int
}

// DefaultParams returns Params for the given turbine model with default
// outlier settings
func DefaultParams(turbines int, cutIn, rated, cutOut float64) Params {
	return Params{
		Turbines:       turbines,
		CutIn:          cutIn,
		Rated:          rated,
		CutOut:         cutOut,
		KUp:            DefaultK,
		KLow:           DefaultK,
		BinWidth:       DefaultBinWidth,
		ShutdownMargin: DefaultShutdownMargin,
		Workers:        runtime.GOMAXPROCS(0),
	}
}

// Validate checks the parameters for degenerate or inverted ranges
func (p Params) Validate() error {
	if p.Turbines <= 0 {
		return &ConfigurationError{Field: "turbines", Reason: "must be positive"}
	}

	for _, f := range []struct {
		name  string
		value float64
	}{
		{"cut-in", p.CutIn},
		{"rated", p.Rated},
		{"cut-out", p.CutOut},
		{"k-up", p.KUp},
		{"k-low", p.KLow},
		{"bin-width", p.BinWidth},
		{"shutdown-margin", p.ShutdownMargin},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &ConfigurationError{Field: f.name, Reason: "must be a finite number"}
		}
	}

	if p.CutIn >= p.Rated {
		return &ConfigurationError{Field: "cut-in", Reason: "must be below rated wind speed"}
	}
	if p.Rated >= p.CutOut {
		return &ConfigurationError{Field: "rated", Reason: "must be below cut-out wind speed"}
	}
	if p.KUp < 0 {
		return &ConfigurationError{Field: "k-up", Reason: "must not be negative"}
	}
	if p.KLow < 0 {
		return &ConfigurationError{Field: "k-low", Reason: "must not be negative"}
	}
	if p.BinWidth <= 0 {
		return &ConfigurationError{Field: "bin-width", Reason: "must be positive"}
	}
	if p.ShutdownMargin < 0 {
		return &ConfigurationError{Field: "shutdown-margin", Reason: "must not be negative"}
	}

	return nil
}

// shutdownSpeed is the wind speed at and above which a turbine must not
// produce power
func (p Params) shutdownSpeed() float64 {
	return p.CutOut + p.ShutdownMargin
}

func (p Params) workers() int {
	if p.Workers < 1 {
		return 1
	}
	return p.Workers
}
