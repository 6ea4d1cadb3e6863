package analytics

import (
	"time"

	"shopfloor/internal/core"
)

// Chart component types understood by the front-end.
const (
	ChartBar = "bar"
	ChartPie = "pie"
)

// Definition titles, in catalog order.
const (
	TitleHoursByStation     = "Employee Hours in a Station"
	TitleHoursByCostCenter  = "Employee Hours in a Cost Center"
	TitleProjectsByCostType = "Total Project Count for a Cost Center Ratio"
	TitleAPCPartCount       = "Total Part Count for APC Projects"
	TitleProjectsByMonth    = "Monthly Total Project Count"
)

// APCCostCenter is the cost center whose job types feed the part count view.
const APCCostCenter = "APC"

// Constant data of the placeholder ratio views.
var (
	costTypePlaceholder = []float64{50, 20, 15, 10, 5, 10, 10}
	apcPartPlaceholder  = []float64{500, 200, 150, 100, 50, 100}
)

// ChartData is the payload a chart component renders.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// View is one renderable chart of a definition. Data stays nil until a
// pass resolves. A nil Compose means the view shows the primary datasets.
type View struct {
	Name    string     `json:"name"`
	Type    string     `json:"type"`
	Compose Compose    `json:"-"`
	Data    *ChartData `json:"data"`
}

// Definition is one analytic: a title and its views.
type Definition struct {
	Title string `json:"title"`
	Views []View `json:"views"`
}

// Options tune a pass.
type Options struct {
	Align    AlignPolicy
	Location *time.Location // month bucketing and zone-less timestamps
}

// DefaultOptions keeps the compact alignment and UTC.
func DefaultOptions() Options {
	return Options{Align: AlignCompact, Location: time.UTC}
}

func (o Options) withDefaults() Options {
	if !o.Align.IsValid() {
		o.Align = AlignCompact
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

// Catalog declares the analytics with empty views.
func Catalog() []Definition {
	return []Definition{
		{
			Title: TitleHoursByStation,
			Views: []View{
				{Name: "Split Bar", Type: ChartBar},
				{Name: "Grouped Bar", Type: ChartBar, Compose: StackedSum},
				{Name: "Pie", Type: ChartPie, Compose: PieSum},
			},
		},
		{
			Title: TitleHoursByCostCenter,
			Views: []View{
				{Name: "Split Bar", Type: ChartBar},
				{Name: "Pie", Type: ChartPie, Compose: PieSum},
			},
		},
		{Title: TitleProjectsByCostType, Views: []View{{Name: "Pie", Type: ChartPie}}},
		{Title: TitleAPCPartCount, Views: []View{{Name: "Pie", Type: ChartPie}}},
		{Title: TitleProjectsByMonth, Views: []View{{Name: "Pie", Type: ChartPie}}},
	}
}

// Aggregate runs the whole pipeline over one normalized snapshot and
// returns the catalog with every view populated.
func Aggregate(entries []core.TimeEntry, opts Options) []Definition {
	defs := Catalog()
	Attach(defs, Compute(entries, opts))
	return defs
}

// Results holds the primary chart data computed from a snapshot, keyed by
// definition title.
type Results map[string]ChartData

// Compute derives the primary data of every definition.
func Compute(entries []core.TimeEntry, opts Options) Results {
	opts = opts.withDefaults()
	series := SeriesKeys(entries)
	return Results{
		TitleHoursByStation:     hoursBy(entries, series, ByStation, opts.Align),
		TitleHoursByCostCenter:  hoursBy(entries, series, ByCostCenter, opts.Align),
		TitleProjectsByCostType: costTypePlaceholderData(entries),
		TitleAPCPartCount:       apcPartPlaceholderData(entries),
		TitleProjectsByMonth:    projectsByMonth(entries, opts.Location),
	}
}

// Attach fills each view of defs from results, in declaration order.
// Views with a Compose get the composed datasets over the same labels.
// Definitions without a result are left untouched.
func Attach(defs []Definition, results Results) {
	for i := range defs {
		primary, ok := results[defs[i].Title]
		if !ok {
			continue
		}
		for j := range defs[i].Views {
			view := &defs[i].Views[j]
			datasets := primary.Datasets
			if view.Compose != nil {
				datasets = view.Compose(primary.Datasets)
			}
			view.Data = &ChartData{Labels: primary.Labels, Datasets: datasets}
		}
	}
}

func hoursBy(entries []core.TimeEntry, series []string, key CategoryKey, policy AlignPolicy) ChartData {
	axis := BuildAxis(entries, key)
	return ChartData{
		Labels:   axis,
		Datasets: BuildDatasets(Group(entries, key), series, axis, policy),
	}
}

func costTypePlaceholderData(entries []core.TimeEntry) ChartData {
	labels := distinct(entries, func(e core.TimeEntry) (string, bool) {
		return e.CostCenter + " - " + e.JobType, true
	})
	return ChartData{
		Labels:   labels,
		Datasets: []Dataset{pieDataset(append([]float64(nil), costTypePlaceholder...))},
	}
}

func apcPartPlaceholderData(entries []core.TimeEntry) ChartData {
	labels := distinct(entries, func(e core.TimeEntry) (string, bool) {
		return e.JobType, e.CostCenter == APCCostCenter
	})
	return ChartData{
		Labels:   labels,
		Datasets: []Dataset{pieDataset(append([]float64(nil), apcPartPlaceholder...))},
	}
}

// projectsByMonth counts projects by the month of their first entry in
// the snapshot. Months appear in first-seen order.
func projectsByMonth(entries []core.TimeEntry, loc *time.Location) ChartData {
	seen := make(map[core.ProjectID]struct{})
	counts := make(map[string]int)
	var months []string
	for _, e := range entries {
		if _, ok := seen[e.ProjectID]; ok {
			continue
		}
		seen[e.ProjectID] = struct{}{}
		month := e.Time.In(loc).Month().String()
		if _, ok := counts[month]; !ok {
			months = append(months, month)
		}
		counts[month]++
	}
	data := make([]float64, 0, len(months))
	for _, m := range months {
		data = append(data, float64(counts[m]))
	}
	if months == nil {
		months = []string{}
	}
	return ChartData{Labels: months, Datasets: []Dataset{pieDataset(data)}}
}
