package analytics

import "shopfloor/internal/core"

// Compose derives a secondary view's datasets from a primary view's datasets.
// Implementations must not modify their input.
type Compose func([]Dataset) []Dataset

// StackedSum collapses all series into one bar dataset labelled "Hours".
func StackedSum(datasets []Dataset) []Dataset {
	out := barDataset("Hours", 0, sumPositional(datasets))
	return []Dataset{out}
}

// PieSum collapses all series into one dataset styled for a pie chart.
func PieSum(datasets []Dataset) []Dataset {
	return []Dataset{pieDataset(sumPositional(datasets))}
}

// sumPositional adds data index by index. The first dataset with any data
// fixes the length; points past that length in later datasets are ignored
// and missing points contribute nothing. Sums are rounded to two decimals
// so the result does not depend on the order of the inputs.
func sumPositional(datasets []Dataset) []float64 {
	var sum []float64
	for _, ds := range datasets {
		if len(sum) == 0 {
			sum = append([]float64(nil), ds.Data...)
			continue
		}
		for i, v := range ds.Data {
			if i >= len(sum) {
				break
			}
			sum[i] += v
		}
	}
	if sum == nil {
		return []float64{}
	}
	for i := range sum {
		sum[i] = core.RoundTo2(sum[i])
	}
	return sum
}
