package analytics

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfloor/internal/core"
)

func TestBuildDatasetsPolicies(t *testing.T) {
	entries := []core.TimeEntry{
		entry("ana", "Saw", "APC", "09:00"),
		entry("ana", "Saw", "APC", "10:00"),
		entry("bo", "Lathe", "APC", "09:00"),
		entry("bo", "Lathe", "APC", "09:30"),
		entry("bo", "Saw", "APC", "11:00"),
		entry("bo", "Saw", "APC", "11:15"),
	}
	axis := BuildAxis(entries, ByStation)
	require.Equal(t, Axis{"Saw", "Lathe"}, axis)
	g := Group(entries, ByStation)
	keys := SeriesKeys(entries)

	compact := BuildDatasets(g, keys, axis, AlignCompact)
	require.Len(t, compact, 2)
	assert.Equal(t, "ana", compact[0].Label)
	assert.Equal(t, []float64{1}, compact[0].Data)
	assert.Equal(t, "bo", compact[1].Label)
	assert.Equal(t, []float64{0.25, 0.5}, compact[1].Data)

	zero := BuildDatasets(g, keys, axis, AlignZero)
	require.Len(t, zero, 2)
	assert.Equal(t, []float64{1, 0}, zero[0].Data)
	assert.Equal(t, []float64{0.25, 0.5}, zero[1].Data)
	for _, ds := range zero {
		assert.Len(t, ds.Data, len(axis))
	}
}

func TestBuildDatasetsColors(t *testing.T) {
	keys := make([]string, len(barPalette)+1)
	for i := range keys {
		keys[i] = string(rune('a' + i))
	}
	datasets := BuildDatasets(Grouping{}, keys, Axis{}, AlignCompact)
	require.Len(t, datasets, len(keys))

	first := datasets[0]
	assert.Equal(t, "rgba(150,186,232,0.6)", first.BackgroundColor.Solid)
	assert.Equal(t, "rgba(150,186,232,1)", first.BorderColor)
	assert.Equal(t, "rgba(150,186,232,0.4)", first.HoverBackgroundColor.Solid)
	assert.Equal(t, 1, first.BorderWidth)

	assert.Equal(t, "rgba(161,160,160,0.6)", datasets[1].BackgroundColor.Solid)

	wrapped := datasets[len(barPalette)]
	assert.Equal(t, first.BackgroundColor, wrapped.BackgroundColor, "palette must cycle")
	for _, ds := range datasets {
		assert.NotNil(t, ds.Data)
		assert.Empty(t, ds.Data)
	}
}

func TestPieColorsCycle(t *testing.T) {
	colors := PieColors(len(pieColors) + 2)
	assert.Equal(t, pieColors[0], colors[len(pieColors)])
	assert.Equal(t, pieColors[1], colors[len(pieColors)+1])
	assert.Empty(t, PieColors(0))
}

func TestPaintJSON(t *testing.T) {
	tests := []struct {
		name  string
		paint Paint
		want  string
	}{
		{"solid", SolidPaint("rgba(1,2,3,0.6)"), `"rgba(1,2,3,0.6)"`},
		{"per point", PointPaint([]string{"#a", "#b"}), `["#a","#b"]`},
		{"empty per point", PointPaint([]string{}), `[]`},
		{"unset", Paint{}, `null`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := json.Marshal(tt.paint)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(raw))

			var back Paint
			require.NoError(t, json.Unmarshal(raw, &back))
			assert.Equal(t, tt.paint.Solid, back.Solid)
			assert.Equal(t, len(tt.paint.PerPoint), len(back.PerPoint))
		})
	}

	var bad Paint
	assert.Error(t, json.Unmarshal([]byte(`42`), &bad))
}

func TestDatasetJSONShape(t *testing.T) {
	raw, err := json.Marshal(barDataset("ana", 0, []float64{1.5}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"label": "ana",
		"data": [1.5],
		"backgroundColor": "rgba(150,186,232,0.6)",
		"borderColor": "rgba(150,186,232,1)",
		"borderWidth": 1,
		"hoverBackgroundColor": "rgba(150,186,232,0.4)"
	}`, string(raw))

	raw, err = json.Marshal(pieDataset([]float64{3, 1}))
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"data": [3, 1],
		"backgroundColor": ["#96bae8", "#a1a0a0"],
		"hoverBackgroundColor": ["#96bae8", "#a1a0a0"]
	}`, string(raw))
}
