// Package storage defines the sinks that receive cleaned turbine tables.
package storage

import (
	"context"
	"time"

	"github.com/chrissnell/turbineclean/internal/cleaning"
	"github.com/google/uuid"
)

// Sink is implemented by every output backend. StoreRun must write the
// whole run or nothing where the backend allows it.
type Sink interface {
	Name() string
	StoreRun(ctx context.Context, run *Run) error
	Close() error
}

// Run is one invocation of the cleaner together with its output
type Run struct {
	ID       uuid.UUID
	Farm     string
	Source   string
	Started  time.Time
	Finished time.Time
	Result   *cleaning.Result
}

// NewRun stamps a cleaning result with a fresh run ID
func NewRun(farm, source string, started time.Time, res *cleaning.Result) *Run {
	return &Run{
		ID:       uuid.New(),
		Farm:     farm,
		Source:   source,
		Started:  started,
		Finished: started.Add(res.Duration),
		Result:   res,
	}
}
