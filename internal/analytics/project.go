package analytics

import "shopfloor/internal/core"

// ProjectSummary is the time spent on one project.
type ProjectSummary struct {
	ProjectID core.ProjectID `json:"projectId"`
	Entries   int            `json:"entries"`
	TimeSpent string         `json:"timeSpent"`
	Hours     float64        `json:"hours"`
	Duration  core.Duration  `json:"-"`
}

// ProjectTimeSpent pairs the project's entries in time order and sums the
// intervals, regardless of employee or station. An unpaired final entry
// is an open interval and contributes nothing.
func ProjectTimeSpent(entries []core.TimeEntry, id core.ProjectID) ProjectSummary {
	var mine []core.TimeEntry
	for _, e := range entries {
		if e.ProjectID == id {
			mine = append(mine, e)
		}
	}
	d := Elapsed(mine)
	return ProjectSummary{
		ProjectID: id,
		Entries:   len(mine),
		TimeSpent: d.String(),
		Hours:     d.Scalar(),
		Duration:  d,
	}
}
