package analytics

import "fmt"

type rgb struct{ r, g, b int }

// barPalette is cycled by series index.
var barPalette = []rgb{
	{150, 186, 232},
	{161, 160, 160},
	{150, 232, 186},
	{232, 186, 150},
	{186, 150, 232},
	{232, 150, 186},
	{232, 222, 150},
	{120, 200, 210},
}

// pieColors is cycled by data point index.
var pieColors = []string{
	"#96bae8",
	"#a1a0a0",
	"#96e8ba",
	"#e8ba96",
	"#ba96e8",
	"#e896ba",
	"#e8de96",
	"#78c8d2",
	"#f4ba61",
	"#57d500",
}

func (c rgb) alpha(a float64) string {
	return fmt.Sprintf("rgba(%d,%d,%d,%g)", c.r, c.g, c.b, a)
}

func barSlot(index int) rgb {
	if index < 0 {
		index = -index
	}
	return barPalette[index%len(barPalette)]
}

// BarBackground, BarBorder and BarHover are the three coordinated colors of
// one bar palette slot.
func BarBackground(index int) string { return barSlot(index).alpha(0.6) }
func BarBorder(index int) string     { return barSlot(index).alpha(1) }
func BarHover(index int) string      { return barSlot(index).alpha(0.4) }

// PieColors returns n slice colors, wrapping around the pie palette.
func PieColors(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = pieColors[i%len(pieColors)]
	}
	return out
}
