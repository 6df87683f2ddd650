// Package simulator generates synthetic wind farm SCADA tables with injected
// faults, for exercising the cleaner without field data.
package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/chrissnell/turbineclean/internal/table"
	"gonum.org/v1/gonum/stat/distuv"
)

// Fault is a kind of reading defect the simulator injects
type Fault int

const (
	FaultNone Fault = iota

	// FaultGap drops both readings
	FaultGap

	// FaultIdle stops the turbine in operating wind
	FaultIdle

	// FaultCurtailed caps power while the wind is past rated
	FaultCurtailed

	// FaultOutlier reports power unrelated to the wind
	FaultOutlier

	// FaultLowWindPower reports power below cut-in
	FaultLowWindPower

	// FaultSensorRange makes the anemometer report an impossible speed
	FaultSensorRange
)

// Config describes the farm and the weather to simulate
type Config struct {
	Turbines int
	Rows     int
	Start    time.Time
	Interval time.Duration

	CutIn  float64
	Rated  float64
	CutOut float64

	// Weibull shape and scale of the farm wind speed
	WeibullK      float64
	WeibullLambda float64

	// TurbineSpread is the standard deviation of each turbine's wind speed
	// around the farm wind speed
	TurbineSpread float64

	// PowerNoise is the standard deviation of normalized power noise
	PowerNoise float64

	// FaultRate is the probability that a reading carries a fault
	FaultRate float64

	Seed uint64
}

// DefaultConfig returns a month of ten-minute readings from three turbines
func DefaultConfig() Config {
	return Config{
		Turbines:      3,
		Rows:          4320,
		Start:         time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Interval:      10 * time.Minute,
		CutIn:         3.0,
		Rated:         12.0,
		CutOut:        25.0,
		WeibullK:      2.0,
		WeibullLambda: 8.0,
		TurbineSpread: 0.4,
		PowerNoise:    0.02,
		FaultRate:     0.05,
		Seed:          1,
	}
}

// Validate reports a configuration that cannot be simulated
func (c Config) Validate() error {
	switch {
	case c.Turbines <= 0:
		return fmt.Errorf("turbines must be positive")
	case c.Rows < 0:
		return fmt.Errorf("rows must not be negative")
	case c.Interval <= 0:
		return fmt.Errorf("interval must be positive")
	case !(c.CutIn < c.Rated && c.Rated < c.CutOut):
		return fmt.Errorf("expected cut-in < rated < cut-out")
	case c.WeibullK <= 0 || c.WeibullLambda <= 0:
		return fmt.Errorf("weibull parameters must be positive")
	case c.FaultRate < 0 || c.FaultRate > 1:
		return fmt.Errorf("fault rate must be within [0, 1]")
	}
	return nil
}

// Generate builds a table in the ingest layout
func Generate(cfg Config) (*table.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))
	wind := distuv.Weibull{K: cfg.WeibullK, Lambda: cfg.WeibullLambda, Src: rng}
	spread := distuv.Normal{Mu: 0, Sigma: math.Max(cfg.TurbineSpread, 1e-9), Src: rng}
	noise := distuv.Normal{Mu: 0, Sigma: math.Max(cfg.PowerNoise, 1e-9), Src: rng}

	index := make([]time.Time, cfg.Rows)
	farmWind := make([]float64, cfg.Rows)
	for r := range index {
		index[r] = cfg.Start.Add(time.Duration(r) * cfg.Interval)
		farmWind[r] = wind.Rand()
	}

	t := table.New(index)
	for i := 1; i <= cfg.Turbines; i++ {
		ws := make([]float64, cfg.Rows)
		power := make([]float64, cfg.Rows)

		for r := range ws {
			ws[r] = math.Max(0, farmWind[r]+spread.Rand())
			power[r] = clamp(PowerCurve(ws[r], cfg.CutIn, cfg.Rated, cfg.CutOut)+noise.Rand(), -0.01, 1.0)

			if rng.Float64() < cfg.FaultRate {
				applyFault(pickFault(rng), ws, power, r, cfg, rng)
			}
		}

		if err := t.SetFloat(table.WindSpeedColumn(i), ws); err != nil {
			return nil, err
		}
		if err := t.SetFloat(table.PowerColumn(i), power); err != nil {
			return nil, err
		}
	}

	return t, nil
}

// PowerCurve returns normalized power for a wind speed: zero outside the
// operating range, a logistic ramp between cut-in and rated, then full power
func PowerCurve(ws, cutIn, rated, cutOut float64) float64 {
	switch {
	case ws < cutIn || ws >= cutOut:
		return 0
	case ws >= rated:
		return 1
	}
	mid := (cutIn + rated) / 2
	scale := (rated - cutIn) / 8
	low := 1 / (1 + math.Exp(-(cutIn-mid)/scale))
	high := 1 / (1 + math.Exp(-(rated-mid)/scale))
	return (1/(1+math.Exp(-(ws-mid)/scale)) - low) / (high - low)
}

func pickFault(rng *rand.Rand) Fault {
	return Fault(1 + rng.IntN(int(FaultSensorRange)))
}

func applyFault(f Fault, ws, power []float64, r int, cfg Config, rng *rand.Rand) {
	switch f {
	case FaultGap:
		ws[r], power[r] = table.Missing(), table.Missing()
	case FaultIdle:
		if ws[r] > cfg.CutIn+2 && ws[r] < cfg.CutOut-2 {
			power[r] = 0
		}
	case FaultCurtailed:
		if ws[r] > cfg.Rated+2 && ws[r] < cfg.CutOut-2 {
			power[r] = 0.5 + 0.3*rng.Float64()
		}
	case FaultOutlier:
		power[r] = rng.Float64()
	case FaultLowWindPower:
		ws[r] = cfg.CutIn * rng.Float64()
		power[r] = 0.1 + 0.5*rng.Float64()
	case FaultSensorRange:
		ws[r] = 40 + 60*rng.Float64()
	}
}

func clamp(v, low, high float64) float64 {
	return math.Min(high, math.Max(low, v))
}
