package gantt

import (
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Marker wraps rendered content in a hit-testable zone. *zone.Manager
// satisfies it.
type Marker interface {
	Mark(id, v string) string
}

// NopMarker leaves content unmarked.
type NopMarker struct{}

func (NopMarker) Mark(_ string, v string) string { return v }

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

// Trace colors, assigned in trace order.
var palette = []lipgloss.AdaptiveColor{
	ac("#1f77b4", "#4c9be8"),
	ac("#d62728", "#ef6b6b"),
	ac("#2ca02c", "#5fcf5f"),
	ac("#9467bd", "#b892e0"),
	ac("#ff7f0e", "#ffa54f"),
	ac("#17becf", "#5fdcea"),
	ac("#8c564b", "#b97f73"),
	ac("#e377c2", "#f0a3d7"),
}

var (
	barFg       = ac("255", "235")
	styleLabel  = lipgloss.NewStyle().Foreground(ac("235", "252")).Bold(true)
	styleTick   = lipgloss.NewStyle().Foreground(ac("240", "245"))
	styleGuide  = lipgloss.NewStyle().Foreground(ac("252", "237"))
	styleLegend = lipgloss.NewStyle().Foreground(ac("240", "245"))
)

// TraceColor returns the color of trace i.
func TraceColor(i int) lipgloss.AdaptiveColor {
	return palette[i%len(palette)]
}

// Render draws the header, the worker labels and the bars. Bars and the plot
// area are wrapped in zones through m. Bars of highlight task ids are drawn
// reversed.
func (l *Layout) Render(m Marker, highlight ...string) string {
	if m == nil {
		m = NopMarker{}
	}
	if l.PlotWidth <= 0 || len(l.Workers) == 0 {
		return styleTick.Render("No workers to schedule.")
	}
	hl := map[string]bool{}
	for _, id := range highlight {
		hl[id] = true
	}

	byBand := make([][]BarBox, len(l.Workers))
	for _, b := range l.Bars {
		byBand[b.Band] = append(byBand[b.Band], b)
	}
	for i := range byBand {
		sort.SliceStable(byBand[i], func(a, b int) bool { return byBand[i][a].X0 < byBand[i][b].X0 })
	}

	gutter := make([]string, 0, l.PlotRows())
	plot := make([]string, 0, l.PlotRows())
	for band := range l.Workers {
		for r := 0; r < l.BandHeight; r++ {
			row := band*l.BandHeight + r
			if row == l.BarRow(band) {
				name := ansi.Truncate(l.Workers[band].Name, l.LabelWidth-1, "…")
				gutter = append(gutter, styleLabel.Width(l.LabelWidth).Render(name))
				plot = append(plot, l.renderBarRow(m, byBand[band], hl))
				continue
			}
			gutter = append(gutter, strings.Repeat(" ", l.LabelWidth))
			plot = append(plot, l.renderGuideRow())
		}
	}

	header := strings.Repeat(" ", l.LabelWidth) + styleTick.Render(l.tickLine())
	body := lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Join(gutter, "\n"),
		m.Mark(PlotZoneID, strings.Join(plot, "\n")),
	)
	return header + "\n" + body
}

// Legend lists traces with their colors.
func (l *Layout) Legend() string {
	parts := make([]string, 0, len(l.Traces))
	for i, tr := range l.Traces {
		sw := lipgloss.NewStyle().Foreground(TraceColor(i)).Render("■")
		parts = append(parts, sw+" "+tr.Service)
	}
	return styleLegend.Render(strings.Join(parts, "  "))
}

func (l *Layout) renderBarRow(m Marker, bars []BarBox, hl map[string]bool) string {
	var b strings.Builder
	cur := 0
	for _, bar := range bars {
		x0, x1 := bar.X0, bar.X1
		if x0 < cur {
			x0 = cur
		}
		if x1 > l.PlotWidth {
			x1 = l.PlotWidth
		}
		if x1 <= x0 {
			continue
		}
		b.WriteString(l.guide(cur, x0))
		w := x1 - x0
		text := ansi.Truncate(bar.Row.Customer, w, "")
		st := lipgloss.NewStyle().
			Background(TraceColor(bar.Ref.Trace)).
			Foreground(barFg).
			Width(w).
			MaxWidth(w)
		if hl[bar.Row.TaskID] {
			st = st.Reverse(true).Bold(true)
		}
		b.WriteString(m.Mark(BarZoneID(bar.Ref), st.Render(text)))
		cur = x1
	}
	b.WriteString(l.guide(cur, l.PlotWidth))
	return b.String()
}

func (l *Layout) renderGuideRow() string {
	return l.guide(0, l.PlotWidth)
}

// guide fills columns [from, to) with blanks, marking day boundaries.
func (l *Layout) guide(from, to int) string {
	if to <= from {
		return ""
	}
	cells := []rune(strings.Repeat(" ", to-from))
	for _, d := range l.dayStarts() {
		if c := l.Column(d); c >= from && c < to {
			cells[c-from] = '┆'
		}
	}
	return styleGuide.Render(string(cells))
}

func (l *Layout) dayStarts() []time.Time {
	var out []time.Time
	start := l.Window.Start
	first := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for d := first; d.Before(l.Window.End); d = d.AddDate(0, 0, 1) {
		if d.After(start) {
			out = append(out, d)
		}
	}
	return out
}

// tickLine labels each day and, where room allows, every other hour.
func (l *Layout) tickLine() string {
	cells := []rune(strings.Repeat(" ", l.PlotWidth))
	put := func(col int, s string) bool {
		rs := []rune(s)
		if col < 0 || col+len(rs) > len(cells) {
			return false
		}
		for i := col; i < col+len(rs)+1 && i < len(cells); i++ {
			if cells[i] != ' ' {
				return false
			}
		}
		copy(cells[col:], rs)
		return true
	}

	start := l.Window.Start
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	for d := day; d.Before(l.Window.End); d = d.AddDate(0, 0, 1) {
		col := l.Column(d)
		if col < 0 {
			col = 0
		}
		put(col, d.Format("Mon 01/02"))
	}
	for h := start.Truncate(time.Hour); h.Before(l.Window.End); h = h.Add(time.Hour) {
		if h.Before(start) || h.Hour()%2 != 0 {
			continue
		}
		put(l.Column(h), h.Format("15"))
	}
	return string(cells)
}
