package analytics

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfloor/internal/core"
)

func sampleEntries() []core.TimeEntry {
	mk := func(id core.ProjectID, emp, station, cc, job string, ts time.Time) core.TimeEntry {
		return core.TimeEntry{ProjectID: id, EmployeeName: emp, Station: station, CostCenter: cc, JobType: job, Time: ts}
	}
	jan := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 2, 9, 0, 0, 0, time.UTC)
	return []core.TimeEntry{
		mk("10", "ana", "Saw", "APC", "Cut", jan),
		mk("10", "ana", "Saw", "APC", "Cut", jan.Add(20*time.Minute)),
		mk("10", "ana", "Saw", "APC", "Cut", jan.Add(60*time.Minute)),
		mk("10", "ana", "Saw", "APC", "Cut", jan.Add(110*time.Minute)),
		mk("11", "bo", "Lathe", "MFG", "Turn", feb),
		mk("11", "bo", "Lathe", "MFG", "Turn", feb.Add(30*time.Minute)),
		mk("12", "", "Press", "APC", "Stamp", feb.Add(time.Hour)),
		mk("13", "bo", "Press", "QA", "Turn", jan.Add(24*time.Hour)),
	}
}

func TestCatalogShape(t *testing.T) {
	defs := Catalog()
	require.Len(t, defs, 5)

	titles := make([]string, len(defs))
	for i, d := range defs {
		titles[i] = d.Title
		for _, v := range d.Views {
			assert.Nil(t, v.Data, "%s/%s must start empty", d.Title, v.Name)
		}
	}
	assert.Equal(t, []string{
		TitleHoursByStation,
		TitleHoursByCostCenter,
		TitleProjectsByCostType,
		TitleAPCPartCount,
		TitleProjectsByMonth,
	}, titles)

	names := func(d Definition) []string {
		out := make([]string, len(d.Views))
		for i, v := range d.Views {
			out[i] = v.Name + ":" + v.Type
		}
		return out
	}
	assert.Equal(t, []string{"Split Bar:bar", "Grouped Bar:bar", "Pie:pie"}, names(defs[0]))
	assert.Equal(t, []string{"Split Bar:bar", "Pie:pie"}, names(defs[1]))
	assert.Equal(t, []string{"Pie:pie"}, names(defs[4]))
}

func TestAggregateHoursByStation(t *testing.T) {
	defs := Aggregate(sampleEntries(), DefaultOptions())
	station := defs[0]

	split := station.Views[0].Data
	require.NotNil(t, split)
	assert.Equal(t, []string{"Saw", "Lathe", "Press"}, split.Labels)
	require.Len(t, split.Datasets, 2)
	assert.Equal(t, "ana", split.Datasets[0].Label)
	assert.Equal(t, []float64{1.17}, split.Datasets[0].Data)
	assert.Equal(t, "bo", split.Datasets[1].Label)
	assert.Equal(t, []float64{0.5}, split.Datasets[1].Data)

	grouped := station.Views[1].Data
	require.NotNil(t, grouped)
	assert.Equal(t, split.Labels, grouped.Labels)
	require.Len(t, grouped.Datasets, 1)
	assert.Equal(t, "Hours", grouped.Datasets[0].Label)
	assert.Equal(t, []float64{1.67}, grouped.Datasets[0].Data)

	pie := station.Views[2].Data
	require.NotNil(t, pie)
	assert.Equal(t, []float64{1.67}, pie.Datasets[0].Data)
	assert.Len(t, pie.Datasets[0].BackgroundColor.PerPoint, 1)
}

func TestAggregateZeroPolicyAlignsSeries(t *testing.T) {
	opts := DefaultOptions()
	opts.Align = AlignZero
	defs := Aggregate(sampleEntries(), opts)

	split := defs[0].Views[0].Data
	require.NotNil(t, split)
	assert.Equal(t, []float64{1.17, 0, 0}, split.Datasets[0].Data)
	assert.Equal(t, []float64{0, 0.5, 0}, split.Datasets[1].Data)

	grouped := defs[0].Views[1].Data
	assert.Equal(t, []float64{1.17, 0.5, 0}, grouped.Datasets[0].Data)
}

func TestAggregatePlaceholders(t *testing.T) {
	defs := Aggregate(sampleEntries(), DefaultOptions())

	ratio := defs[2].Views[0].Data
	require.NotNil(t, ratio)
	assert.Equal(t, []string{"APC - Cut", "MFG - Turn", "APC - Stamp", "QA - Turn"}, ratio.Labels)
	assert.Equal(t, []float64{50, 20, 15, 10, 5, 10, 10}, ratio.Datasets[0].Data)

	apc := defs[3].Views[0].Data
	require.NotNil(t, apc)
	assert.Equal(t, []string{"Cut", "Stamp"}, apc.Labels)
	assert.Equal(t, []float64{500, 200, 150, 100, 50, 100}, apc.Datasets[0].Data)

	apc.Datasets[0].Data[0] = -1
	again := Aggregate(sampleEntries(), DefaultOptions())
	assert.Equal(t, 500.0, again[3].Views[0].Data.Datasets[0].Data[0], "placeholder data must not be shared")
}

func TestAggregateProjectsByMonth(t *testing.T) {
	defs := Aggregate(sampleEntries(), DefaultOptions())
	months := defs[4].Views[0].Data
	require.NotNil(t, months)
	assert.Equal(t, []string{"January", "February"}, months.Labels)
	assert.Equal(t, []float64{2, 2}, months.Datasets[0].Data)
}

func TestProjectsByMonthUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	entries := []core.TimeEntry{{
		ProjectID: "1",
		Time:      time.Date(2024, time.January, 31, 23, 0, 0, 0, time.UTC),
	}}
	data := projectsByMonth(entries, loc)
	assert.Equal(t, []string{"February"}, data.Labels)
}

func TestAggregateEmpty(t *testing.T) {
	defs := Aggregate(nil, DefaultOptions())
	require.Len(t, defs, 5)
	for _, d := range defs {
		for _, v := range d.Views {
			require.NotNil(t, v.Data, "%s/%s", d.Title, v.Name)
			assert.NotNil(t, v.Data.Labels)
			assert.Empty(t, v.Data.Labels)
		}
	}
	assert.Empty(t, defs[0].Views[0].Data.Datasets)
	assert.Equal(t, []float64{}, defs[0].Views[1].Data.Datasets[0].Data)
	assert.Equal(t, []float64{}, defs[0].Views[2].Data.Datasets[0].Data)
	assert.Equal(t, []float64{}, defs[4].Views[0].Data.Datasets[0].Data)
}

func TestAggregatePieIgnoresInputOrder(t *testing.T) {
	base := sampleEntries()
	opts := DefaultOptions()
	opts.Align = AlignZero
	want := Aggregate(base, opts)

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]core.TimeEntry(nil), base...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		got := Aggregate(shuffled, opts)

		wantPie := pieByLabel(want[0].Views[2].Data)
		gotPie := pieByLabel(got[0].Views[2].Data)
		assert.Equal(t, wantPie, gotPie)
	}
}

func pieByLabel(d *ChartData) map[string]float64 {
	out := make(map[string]float64)
	for i, v := range d.Datasets[0].Data {
		out[d.Labels[i]] = v
	}
	return out
}
