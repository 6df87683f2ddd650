package cleaning

// StageStats counts what one pipeline stage did, per turbine. Index 0 is
// turbine 1.
type StageStats struct {
	Stage   string
	Erased  []int
	Flagged []int
}

// TotalErased returns the number of readings the stage erased across all turbines
func (s StageStats) TotalErased() int {
	return sum(s.Erased)
}

// TotalFlagged returns the number of flag increments across all turbines
func (s StageStats) TotalFlagged() int {
	return sum(s.Flagged)
}

func sum(values []int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}
