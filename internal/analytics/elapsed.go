package analytics

import (
	"time"

	"shopfloor/internal/core"
)

// Elapsed sums the intervals of consecutive (start, end) pairs after a
// stable sort by time. The total is truncated to whole minutes. A trailing
// unpaired entry contributes nothing; Group never hands one over.
func Elapsed(entries []core.TimeEntry) core.Duration {
	sorted := sortByTime(entries)
	var total time.Duration
	for i := 0; i+1 < len(sorted); i += 2 {
		total += sorted[i+1].Time.Sub(sorted[i].Time)
	}
	return core.DurationOf(total)
}
