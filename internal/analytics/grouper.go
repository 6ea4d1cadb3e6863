package analytics

import (
	"sort"

	"shopfloor/internal/core"
)

// CategoryKey selects the category an entry belongs to.
type CategoryKey func(core.TimeEntry) string

var (
	ByStation    CategoryKey = func(e core.TimeEntry) string { return e.Station }
	ByCostCenter CategoryKey = func(e core.TimeEntry) string { return e.CostCenter }
)

// Axis is the ordered set of distinct category labels shared by every
// series of a view.
type Axis []string

// Grouping maps series key -> category label -> pruned bucket.
// Only categories that survived pruning are present.
type Grouping map[string]map[string][]core.TimeEntry

// BuildAxis collects distinct category labels in first-seen order.
func BuildAxis(entries []core.TimeEntry, key CategoryKey) Axis {
	return distinct(entries, func(e core.TimeEntry) (string, bool) {
		return key(e), true
	})
}

// SeriesKeys returns the distinct employee names in first-seen order.
// Entries without an employee are skipped.
func SeriesKeys(entries []core.TimeEntry) []string {
	return distinct(entries, func(e core.TimeEntry) (string, bool) {
		return e.EmployeeName, e.HasEmployee()
	})
}

// Group buckets each employee's entries by category and prunes every
// bucket to an even length of at least two. A bucket with a single entry
// is dropped; an odd bucket loses its most recent entry.
func Group(entries []core.TimeEntry, key CategoryKey) Grouping {
	out := make(Grouping)
	for _, e := range entries {
		if !e.HasEmployee() {
			continue
		}
		byCat, ok := out[e.EmployeeName]
		if !ok {
			byCat = make(map[string][]core.TimeEntry)
			out[e.EmployeeName] = byCat
		}
		cat := key(e)
		byCat[cat] = append(byCat[cat], e)
	}
	for _, byCat := range out {
		for cat, bucket := range byCat {
			if pruned, ok := prune(bucket); ok {
				byCat[cat] = pruned
			} else {
				delete(byCat, cat)
			}
		}
	}
	return out
}

// Bucket returns the pruned entries for one series and category.
func (g Grouping) Bucket(series, category string) ([]core.TimeEntry, bool) {
	bucket, ok := g[series][category]
	return bucket, ok
}

func prune(bucket []core.TimeEntry) ([]core.TimeEntry, bool) {
	if len(bucket) < 2 {
		return nil, false
	}
	sorted := sortByTime(bucket)
	if len(sorted)%2 != 0 {
		sorted = sorted[:len(sorted)-1]
	}
	return sorted, true
}

// sortByTime returns a stably sorted copy; equal times keep input order.
func sortByTime(entries []core.TimeEntry) []core.TimeEntry {
	sorted := make([]core.TimeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})
	return sorted
}

func distinct(entries []core.TimeEntry, value func(core.TimeEntry) (string, bool)) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range entries {
		v, ok := value(e)
		if !ok {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
