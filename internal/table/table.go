// Package table holds turbine SCADA readings in a column-oriented layout: one
// slice per (turbine, field) pair, all sharing a common time index.
package table

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Table is an ordered sequence of timestamped rows stored column by column.
// Float columns use NaN as the missing marker. Counter columns hold
// non-negative integers (turbine flags).
type Table struct {
	Index []time.Time

	names    []string
	floats   map[string][]float64
	counters map[string][]int
}

// New creates an empty table over the given time index
func New(index []time.Time) *Table {
	return &Table{
		Index:    index,
		floats:   make(map[string][]float64),
		counters: make(map[string][]int),
	}
}

// Missing returns the missing-value marker
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing-value marker
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// Nrow returns the number of rows
func (t *Table) Nrow() int {
	return len(t.Index)
}

// Names returns the column names in insertion order
func (t *Table) Names() []string {
	return append([]string(nil), t.names...)
}

// HasColumn reports whether a float or counter column with this name exists
func (t *Table) HasColumn(name string) bool {
	if _, ok := t.floats[name]; ok {
		return true
	}
	_, ok := t.counters[name]
	return ok
}

// IsCounter reports whether name is a counter column
func (t *Table) IsCounter(name string) bool {
	_, ok := t.counters[name]
	return ok
}

// Float returns the backing slice of a float column. Writes through the
// returned slice modify the table.
func (t *Table) Float(name string) ([]float64, bool) {
	col, ok := t.floats[name]
	return col, ok
}

// Counter returns the backing slice of a counter column
func (t *Table) Counter(name string) ([]int, bool) {
	col, ok := t.counters[name]
	return col, ok
}

// SetFloat adds or replaces a float column. The slice is stored as-is.
func (t *Table) SetFloat(name string, values []float64) error {
	if len(values) != t.Nrow() {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), t.Nrow())
	}
	if _, ok := t.counters[name]; ok {
		return fmt.Errorf("column %s already exists as a counter column", name)
	}
	if _, ok := t.floats[name]; !ok {
		t.names = append(t.names, name)
	}
	t.floats[name] = values
	return nil
}

// SetCounter adds or replaces a counter column
func (t *Table) SetCounter(name string, values []int) error {
	if len(values) != t.Nrow() {
		return fmt.Errorf("column %s has %d values, table has %d rows", name, len(values), t.Nrow())
	}
	if _, ok := t.floats[name]; ok {
		return fmt.Errorf("column %s already exists as a float column", name)
	}
	if _, ok := t.counters[name]; !ok {
		t.names = append(t.names, name)
	}
	t.counters[name] = values
	return nil
}

// Drop removes a column if it exists
func (t *Table) Drop(name string) {
	_, isFloat := t.floats[name]
	_, isCounter := t.counters[name]
	if !isFloat && !isCounter {
		return
	}
	delete(t.floats, name)
	delete(t.counters, name)
	for i, n := range t.names {
		if n == name {
			t.names = append(t.names[:i], t.names[i+1:]...)
			break
		}
	}
}

// Value returns the value at row i of any column as a float64, converting
// counters. The second return is false when the column does not exist.
func (t *Table) Value(name string, i int) (float64, bool) {
	if col, ok := t.floats[name]; ok {
		return col[i], true
	}
	if col, ok := t.counters[name]; ok {
		return float64(col[i]), true
	}
	return 0, false
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	c := New(append([]time.Time(nil), t.Index...))
	c.names = append([]string(nil), t.names...)
	for name, col := range t.floats {
		c.floats[name] = append([]float64(nil), col...)
	}
	for name, col := range t.counters {
		c.counters[name] = append([]int(nil), col...)
	}
	return c
}

// SortByIndex reorders every column so the time index is ascending. Rows with
// equal timestamps keep their relative order.
func (t *Table) SortByIndex() {
	order := make([]int, t.Nrow())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return t.Index[order[a]].Before(t.Index[order[b]])
	})

	index := make([]time.Time, len(order))
	for i, src := range order {
		index[i] = t.Index[src]
	}
	t.Index = index

	for name, col := range t.floats {
		sorted := make([]float64, len(order))
		for i, src := range order {
			sorted[i] = col[src]
		}
		t.floats[name] = sorted
	}
	for name, col := range t.counters {
		sorted := make([]int, len(order))
		for i, src := range order {
			sorted[i] = col[src]
		}
		t.counters[name] = sorted
	}
}
