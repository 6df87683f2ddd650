// Package cleaning removes physically implausible readings from wind turbine
// SCADA tables and flags statistically anomalous ones.
//
// A run clones the input table and passes it through an ordered list of
// stages: a range filter, six bivariate wind speed × power rules and, unless
// anomalous readings are kept, a final pass that erases every flagged power
// reading. Rules 5 and 6 compare each reading against interquartile
// thresholds computed per 0.05 m/s wind speed bin from the readings that
// are still unflagged at that point.
//
// Turbines never read each other's columns, so every stage fans out across
// turbines and joins before the next stage starts.
package cleaning

import (
	"time"

	"github.com/chrissnell/turbineclean/internal/constants"
	"github.com/chrissnell/turbineclean/internal/table"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Stage names, in pipeline order
const (
	StageRangeFilter    = "range_filter"
	StageLowWindPower   = "low_wind_power"
	StageShutdownPower  = "shutdown_power"
	StageIdlePower      = "idle_power"
	StageDeratedPower   = "derated_power"
	StageUpperOutliers  = "upper_bin_outliers"
	StageLowerOutliers  = "lower_bin_outliers"
	StageExcludeFlagged = "exclude_flagged"
)

const (
	// operatingMargin keeps the static flagging rules away from the
	// transitions at cut-in, rated and cut-out
	operatingMargin = 2.0

	// binStartOffset is the distance above cut-in where quantile bins start
	binStartOffset = 0.5

	// lowerBinsPastRated extends the lower-outlier bins past rated speed
	lowerBinsPastRated = 2.0
)

// Result is the outcome of one cleaning run
type Result struct {
	// Table is the cleaned copy, with flag and farm aggregate columns added.
	// The aggregate columns describe the cleaned readings.
	Table *table.Table

	Params Params

	// Completeness is the missing-data report of the raw input
	Completeness Completeness

	// RawAggregates are the farm aggregates of the raw input
	RawAggregates Aggregates

	Stages   []StageStats
	Warnings []DegenerateBin
	Duration time.Duration
}

// Cleaner runs the cleaning pipeline for one turbine model
type Cleaner struct {
	params Params
	logger *zap.SugaredLogger
}

// New validates params and returns a Cleaner. A nil logger discards output.
func New(params Params, logger *zap.SugaredLogger) (*Cleaner, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cleaner{
		params: params,
		logger: logger,
	}, nil
}

// Clean validates params, then cleans raw with a discarding logger
func Clean(raw *table.Table, params Params) (*Result, error) {
	c, err := New(params, nil)
	if err != nil {
		return nil, err
	}
	return c.Clean(raw)
}

// Params returns the parameters the Cleaner was built with
func (c *Cleaner) Params() Params {
	return c.params
}

// Clean runs the full pipeline on a copy of raw. raw itself is never
// modified. A SchemaError is returned before any stage runs when a turbine
// column is missing.
func (c *Cleaner) Clean(raw *table.Table) (*Result, error) {
	start := time.Now()

	if err := checkSchema(raw, c.params.Turbines); err != nil {
		return nil, err
	}

	data := raw.Clone()
	res := &Result{
		Table:  data,
		Params: c.params,
	}

	res.RawAggregates = Aggregate(data, c.params.Turbines)
	res.Completeness = ReportCompleteness(data, c.params.Turbines)

	w, err := newWorkspace(data, c.params.Turbines)
	if err != nil {
		return nil, err
	}

	for _, s := range c.stages() {
		stats, warnings := c.runStage(s, w)
		res.Stages = append(res.Stages, stats)
		res.Warnings = append(res.Warnings, warnings...)

		c.logger.Debugw("cleaning stage complete",
			"stage", s.name,
			"erased", stats.TotalErased(),
			"flagged", stats.TotalFlagged())
		if len(warnings) > 0 {
			c.logger.Debugw("skipped quantile bins with fewer than 2 samples",
				"stage", s.name,
				"bins", len(warnings))
		}
	}

	if err := Aggregate(data, c.params.Turbines).Apply(data); err != nil {
		return nil, err
	}

	res.Duration = time.Since(start)
	c.logger.Infow("cleaning complete",
		"rows", data.Nrow(),
		"turbines", c.params.Turbines,
		"anomalous", c.params.Anomalous,
		"degenerate_bins", len(res.Warnings),
		"duration", res.Duration)

	return res, nil
}

func checkSchema(t *table.Table, turbines int) error {
	for i := 1; i <= turbines; i++ {
		for _, name := range []string{table.WindSpeedColumn(i), table.PowerColumn(i)} {
			if _, ok := t.Float(name); !ok {
				return &SchemaError{Column: name}
			}
		}
	}
	return nil
}

// workspace holds per-turbine views into the table being cleaned. Index i
// is turbine i+1.
type workspace struct {
	ws       [][]float64
	power    [][]float64
	flags    [][]int
	baseline [][]float64
}

func newWorkspace(t *table.Table, turbines int) (*workspace, error) {
	w := &workspace{
		ws:       make([][]float64, turbines),
		power:    make([][]float64, turbines),
		flags:    make([][]int, turbines),
		baseline: make([][]float64, turbines),
	}

	for i := 0; i < turbines; i++ {
		w.ws[i], _ = t.Float(table.WindSpeedColumn(i + 1))
		w.power[i], _ = t.Float(table.PowerColumn(i + 1))

		// Flags always start from zero, even when re-cleaning a cleaned table
		flagCol := table.FlagColumn(i + 1)
		t.Drop(flagCol)
		w.flags[i] = make([]int, t.Nrow())
		if err := t.SetCounter(flagCol, w.flags[i]); err != nil {
			return nil, err
		}

		w.baseline[i] = make([]float64, t.Nrow())
		copy(w.baseline[i], w.power[i])
	}

	return w, nil
}

// outcome is what one stage did to one turbine
type outcome struct {
	erased     int
	flagged    int
	degenerate []DegenerateBin
}

type stage struct {
	name string
	run  func(w *workspace, i int) outcome
}

func (c *Cleaner) stages() []stage {
	p := c.params
	upperBins := NewBins(p.CutIn+binStartOffset, p.Rated, p.BinWidth)
	lowerBins := NewBins(p.CutIn+binStartOffset, p.Rated+lowerBinsPastRated+p.BinWidth, p.BinWidth)

	stages := []stage{
		{StageRangeFilter, func(w *workspace, i int) outcome {
			return outcome{erased: filterRange(w.ws[i], w.power[i])}
		}},
		{StageLowWindPower, func(w *workspace, i int) outcome {
			return outcome{erased: removeLowWindPower(w.ws[i], w.power[i], p.CutIn)}
		}},
		{StageShutdownPower, func(w *workspace, i int) outcome {
			return outcome{erased: removeShutdownPower(w.ws[i], w.power[i], p.shutdownSpeed())}
		}},
		{StageIdlePower, func(w *workspace, i int) outcome {
			flagged := flagBelow(w.ws[i], w.power[i], w.flags[i],
				p.CutIn+operatingMargin, p.CutOut-operatingMargin, constants.ZeroPowerLimit)
			maskFlagged(w.baseline[i], w.power[i], w.flags[i])
			return outcome{flagged: flagged}
		}},
		{StageDeratedPower, func(w *workspace, i int) outcome {
			return outcome{flagged: flagBelow(w.ws[i], w.power[i], w.flags[i],
				p.Rated+operatingMargin, p.CutOut-operatingMargin, constants.RatedPowerLimit)}
		}},
		{StageUpperOutliers, func(w *workspace, i int) outcome {
			erased, degenerate := removeUpperOutliers(w.ws[i], w.power[i], w.baseline[i], upperBins, p.KUp)
			return outcome{erased: erased, degenerate: degenerate}
		}},
		{StageLowerOutliers, func(w *workspace, i int) outcome {
			maskFlagged(w.baseline[i], w.power[i], w.flags[i])
			flagged, degenerate := flagLowerOutliers(w.ws[i], w.power[i], w.baseline[i], w.flags[i], lowerBins, p.KLow)
			return outcome{flagged: flagged, degenerate: degenerate}
		}},
	}

	if !p.Anomalous {
		stages = append(stages, stage{StageExcludeFlagged, func(w *workspace, i int) outcome {
			return outcome{erased: excludeFlagged(w.power[i], w.flags[i])}
		}})
	}

	return stages
}

// runStage applies s to every turbine, at most params.Workers at a time, and
// returns once all turbines are done
func (c *Cleaner) runStage(s stage, w *workspace) (StageStats, []DegenerateBin) {
	n := c.params.Turbines
	outcomes := make([]outcome, n)

	var g errgroup.Group
	g.SetLimit(c.params.workers())
	for i := 0; i < n; i++ {
		g.Go(func() error {
			outcomes[i] = s.run(w, i)
			return nil
		})
	}
	_ = g.Wait()

	stats := StageStats{
		Stage:   s.name,
		Erased:  make([]int, n),
		Flagged: make([]int, n),
	}
	var warnings []DegenerateBin
	for i, o := range outcomes {
		stats.Erased[i] = o.erased
		stats.Flagged[i] = o.flagged
		for _, d := range o.degenerate {
			d.Stage = s.name
			d.Turbine = i + 1
			warnings = append(warnings, d)
		}
	}

	return stats, warnings
}
