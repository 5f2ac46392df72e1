package types

// Distribution is a count plus its share of the running total, with the
// percentage rounded to one decimal place. Percentages are all zero when
// nothing has been processed yet.
type Distribution struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// MetricsSnapshot is a point-in-time aggregate of the processing counters.
// Snapshots are derived on demand from the zone memory manager's and the
// orchestrator's counters and are never independently mutated.
//
// Invariant: sum over ZoneDistribution counts == TotalProcessed == sum over
// LensUsage counts.
type MetricsSnapshot struct {
	TotalProcessed   int                     `json:"total_processed"`
	ZoneDistribution map[Zone]Distribution   `json:"zone_distribution"`
	LensUsage        map[LensID]Distribution `json:"lens_usage"`
	SymbolicMatches  int                     `json:"symbolic_matches"`
	DefaultLens      LensID                  `json:"default_lens"`
}

// RoundPercentage rounds a raw percentage to one decimal place, the
// resolution used by every distribution in the snapshot.
func RoundPercentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	raw := 100 * float64(count) / float64(total)
	// Round half away from zero to one decimal; counts are non-negative.
	return float64(int(raw*10+0.5)) / 10
}
