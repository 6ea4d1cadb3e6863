package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"shopfloor/internal/analytics"
)

var (
	colorHeader = lipgloss.Color("#fe8019")
	colorDim    = lipgloss.Color("#928374")
	colorFg     = lipgloss.Color("#ebdbb2")
	colorGreen  = lipgloss.Color("#8ec07c")
	colorYellow = lipgloss.Color("#fabd2f")

	styleHeader = lipgloss.NewStyle().Foreground(colorHeader).Bold(true)
	styleDim    = lipgloss.NewStyle().Foreground(colorDim)
	styleBold   = lipgloss.NewStyle().Foreground(colorFg).Bold(true)
	styleGreen  = lipgloss.NewStyle().Foreground(colorGreen)
	styleYellow = lipgloss.NewStyle().Foreground(colorYellow)
)

// ShouldColor reports whether w is a terminal and NO_COLOR is unset.
func ShouldColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Renderer formats reports as text tables.
type Renderer struct {
	Color bool
}

func (r Renderer) paint(s lipgloss.Style, text string) string {
	if !r.Color {
		return text
	}
	return s.Render(text)
}

func (r Renderer) header(text string) string {
	upper := strings.ToUpper(text)
	return r.paint(styleHeader, upper) + "\n" + r.paint(styleDim, strings.Repeat("─", lipgloss.Width(upper)))
}

// Report renders the pass summary followed by every definition.
func (r Renderer) Report(report analytics.Report) string {
	var b strings.Builder
	b.WriteString(r.header("Analytics report"))
	b.WriteString("\n")
	b.WriteString(r.table([]string{"Field", "Value"}, [][]string{
		{"Pass", report.PassID},
		{"Generated", report.GeneratedAt.Format(time.RFC3339)},
		{"Entries", r.paint(styleGreen, strconv.Itoa(report.Entries))},
		{"Rejected", r.rejected(report.Rejected)},
	}))
	for _, def := range report.Definitions {
		b.WriteString("\n")
		b.WriteString(r.Definition(def))
	}
	return b.String()
}

func (r Renderer) rejected(n int) string {
	if n == 0 {
		return r.paint(styleDim, "0")
	}
	return r.paint(styleYellow, strconv.Itoa(n))
}

// Definition renders one catalog entry, one table per view.
func (r Renderer) Definition(def analytics.Definition) string {
	var b strings.Builder
	b.WriteString(r.header(def.Title))
	b.WriteString("\n")
	for _, v := range def.Views {
		b.WriteString(r.paint(styleBold, fmt.Sprintf("%s (%s)", v.Name, v.Type)))
		b.WriteString("\n")
		if v.Data == nil {
			b.WriteString(r.paint(styleDim, "  no data"))
			b.WriteString("\n")
			continue
		}
		if len(v.Data.Labels) == 0 {
			b.WriteString(r.paint(styleDim, "  empty"))
			b.WriteString("\n")
			continue
		}
		b.WriteString(r.viewTable(v))
	}
	return b.String()
}

// viewTable lays series out as rows and labels as columns. Pies have a
// single unnamed dataset, so they are transposed into label/value rows.
func (r Renderer) viewTable(v analytics.View) string {
	if v.Type == "pie" && len(v.Data.Datasets) == 1 {
		data := v.Data.Datasets[0].Data
		rows := make([][]string, 0, len(v.Data.Labels))
		for i, label := range v.Data.Labels {
			rows = append(rows, []string{label, valueAt(data, i)})
		}
		return r.table([]string{"Label", "Value"}, rows)
	}

	headers := append([]string{"Series"}, v.Data.Labels...)
	rows := make([][]string, 0, len(v.Data.Datasets))
	for _, ds := range v.Data.Datasets {
		row := []string{ds.Label}
		for i := range v.Data.Labels {
			row = append(row, valueAt(ds.Data, i))
		}
		rows = append(rows, row)
	}
	return r.table(headers, rows)
}

// valueAt formats data[i]; compact series can be shorter than the labels.
func valueAt(data []float64, i int) string {
	if i >= len(data) {
		return "-"
	}
	return strconv.FormatFloat(data[i], 'f', -1, 64)
}

func (r Renderer) table(headers []string, rows [][]string) string {
	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2
	var b strings.Builder
	writeRow := func(cells []string, style *lipgloss.Style) {
		b.WriteString("  ")
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if style != nil {
				cell = r.paint(*style, cell)
			}
			b.WriteString(cell)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, &styleHeader)
	seps := make([]string, cols)
	for i, w := range widths {
		seps[i] = strings.Repeat("─", w)
	}
	writeRow(seps, &styleDim)
	for _, row := range rows {
		writeRow(row, nil)
	}
	return b.String()
}
