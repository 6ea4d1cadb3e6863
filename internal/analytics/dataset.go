package analytics

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Paint is either one color for the whole dataset or one color per point.
// It marshals to a JSON string or array respectively.
type Paint struct {
	Solid    string
	PerPoint []string
}

// SolidPaint paints every point with the same color.
func SolidPaint(color string) Paint { return Paint{Solid: color} }

// PointPaint paints each point with its own color.
func PointPaint(colors []string) Paint { return Paint{PerPoint: colors} }

func (p Paint) MarshalJSON() ([]byte, error) {
	if p.PerPoint != nil {
		return json.Marshal(p.PerPoint)
	}
	if p.Solid == "" {
		return []byte("null"), nil
	}
	return json.Marshal(p.Solid)
}

func (p *Paint) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*p = Paint{}
	case len(data) > 0 && data[0] == '[':
		var colors []string
		if err := json.Unmarshal(data, &colors); err != nil {
			return fmt.Errorf("decode paint: %w", err)
		}
		*p = Paint{PerPoint: colors}
	default:
		var color string
		if err := json.Unmarshal(data, &color); err != nil {
			return fmt.Errorf("decode paint: %w", err)
		}
		*p = Paint{Solid: color}
	}
	return nil
}

// Dataset is one chart series in Chart.js shape.
type Dataset struct {
	Label                string    `json:"label,omitempty"`
	Data                 []float64 `json:"data"`
	BackgroundColor      Paint     `json:"backgroundColor"`
	BorderColor          string    `json:"borderColor,omitempty"`
	BorderWidth          int       `json:"borderWidth,omitempty"`
	HoverBackgroundColor Paint     `json:"hoverBackgroundColor"`
}

// AlignPolicy decides what happens to categories pruned from a series.
type AlignPolicy string

const (
	// AlignCompact leaves pruned categories out, so a series only has as
	// many points as categories it has data for.
	AlignCompact AlignPolicy = "compact"
	// AlignZero emits 0 for pruned categories so every series spans the axis.
	AlignZero AlignPolicy = "zero"
)

// IsValid reports whether the policy is known.
func (p AlignPolicy) IsValid() bool {
	return p == AlignCompact || p == AlignZero
}

// BuildDatasets produces one bar dataset per series key, in key order.
// Points follow the axis order; pruned categories are handled per policy.
func BuildDatasets(g Grouping, seriesKeys []string, axis Axis, policy AlignPolicy) []Dataset {
	datasets := make([]Dataset, 0, len(seriesKeys))
	for i, key := range seriesKeys {
		data := make([]float64, 0, len(axis))
		for _, label := range axis {
			bucket, ok := g.Bucket(key, label)
			if !ok {
				if policy == AlignZero {
					data = append(data, 0)
				}
				continue
			}
			data = append(data, Elapsed(bucket).Scalar())
		}
		datasets = append(datasets, barDataset(key, i, data))
	}
	return datasets
}

func barDataset(label string, index int, data []float64) Dataset {
	return Dataset{
		Label:                label,
		Data:                 data,
		BackgroundColor:      SolidPaint(BarBackground(index)),
		BorderColor:          BarBorder(index),
		BorderWidth:          1,
		HoverBackgroundColor: SolidPaint(BarHover(index)),
	}
}

func pieDataset(data []float64) Dataset {
	return Dataset{
		Data:                 data,
		BackgroundColor:      PointPaint(PieColors(len(data))),
		HoverBackgroundColor: PointPaint(PieColors(len(data))),
	}
}
