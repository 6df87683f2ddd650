package cleaning

import "fmt"

// ConfigurationError reports parameters that make the pipeline meaningless.
// It is returned before any stage runs.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid cleaning configuration: %s %s", e.Field, e.Reason)
}

// SchemaError reports a per-turbine column that the input table lacks
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("input table is missing column %s", e.Column)
}

// DegenerateBin records a wind speed bin whose quantile baseline had fewer
// than two samples. Its threshold step was skipped.
type DegenerateBin struct {
	Stage   string
	Turbine int
	Low     float64
	High    float64
	Samples int
}

func (d DegenerateBin) String() string {
	return fmt.Sprintf("%s: turbine %02d bin (%.2f, %.2f] has %d samples",
		d.Stage, d.Turbine, d.Low, d.High, d.Samples)
}
