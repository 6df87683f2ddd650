package cleaning

import (
	"math"
	"sort"

	"github.com/chrissnell/turbineclean/internal/table"
)

// edgePrecision snaps bin edges so decimal wind speeds that sit on an edge
// compare equal to it
const edgePrecision = 1e9

// Bins is an ordered partition of a wind speed interval into right-closed
// bins (edges[i], edges[i+1]].
type Bins struct {
	edges []float64
}

// NewBins places edges at low, low+width, low+2*width, ... for every edge
// strictly below stop.
func NewBins(low, stop, width float64) Bins {
	if width <= 0 || stop <= low {
		return Bins{}
	}

	n := int(math.Ceil((stop-low)/width - 1e-9))
	edges := make([]float64, n)
	for i := range edges {
		edges[i] = math.Round((low+float64(i)*width)*edgePrecision) / edgePrecision
	}
	return Bins{edges: edges}
}

// Len returns the number of bins
func (b Bins) Len() int {
	if len(b.edges) < 2 {
		return 0
	}
	return len(b.edges) - 1
}

// Bounds returns the left (exclusive) and right (inclusive) edge of bin i
func (b Bins) Bounds(i int) (low, high float64) {
	return b.edges[i], b.edges[i+1]
}

// Locate returns the bin holding x, or -1 when x is missing or outside
// (edges[0], edges[last]]
func (b Bins) Locate(x float64) int {
	if b.Len() == 0 || table.IsMissing(x) {
		return -1
	}
	i := sort.SearchFloat64s(b.edges, x)
	if i == 0 || i == len(b.edges) {
		return -1
	}
	return i - 1
}

// Group returns, for every bin, the rows whose wind speed falls into it
func (b Bins) Group(ws []float64) [][]int {
	groups := make([][]int, b.Len())
	for r, x := range ws {
		if i := b.Locate(x); i >= 0 {
			groups[i] = append(groups[i], r)
		}
	}
	return groups
}
