// Package gantt lays out schedule rows as a cell-based timeline and exposes
// the layout through the drag-and-drop chart interfaces.
package gantt

import (
	"errors"
	"math"
	"strconv"
	"time"

	"roster-cli/internal/dnd"
	"roster-cli/internal/model"
	"roster-cli/internal/schedule"
)

// PlotZoneID names the plot area zone; bar zones are BarZoneID(ref).
const PlotZoneID = "gantt-plot"

const (
	maxLabelWidth = 12
	headerRows    = 1
)

// Trace groups the bars of one service, in order of first appearance.
type Trace struct {
	ServiceID string
	Service   string
	Points    []model.ScheduleRow
}

// BarBox is a bar's cell geometry relative to the plot area.
type BarBox struct {
	Ref  dnd.PointRef
	Row  model.ScheduleRow
	Band int
	X0   int // inclusive
	X1   int // exclusive
}

// Locator reports where a zone was last drawn on screen.
type Locator interface {
	Locate(id string) (dnd.Rect, bool)
}

type Layout struct {
	Workers []model.Worker
	Window  schedule.Window
	Traces  []Trace
	Bars    []BarBox

	Width      int
	Height     int
	LabelWidth int
	PlotWidth  int
	BandHeight int

	locator Locator
}

// Build lays rows out into width x height cells. One band per worker, top to
// bottom in catalog order.
func Build(rows []model.ScheduleRow, workers []model.Worker, window schedule.Window, width, height int) *Layout {
	l := &Layout{Workers: workers, Window: window, Width: width, Height: height}

	for _, w := range workers {
		if n := len([]rune(w.Name)) + 1; n > l.LabelWidth {
			l.LabelWidth = n
		}
	}
	if l.LabelWidth > maxLabelWidth {
		l.LabelWidth = maxLabelWidth
	}
	l.PlotWidth = width - l.LabelWidth
	if l.PlotWidth < 0 {
		l.PlotWidth = 0
	}
	l.BandHeight = 1
	if n := len(workers); n > 0 && height > headerRows {
		if bh := (height - headerRows) / n; bh > 1 {
			l.BandHeight = bh
		}
	}

	band := map[string]int{}
	for i, w := range workers {
		band[w.ID] = i
	}
	trace := map[string]int{}
	for _, r := range rows {
		ti, ok := trace[r.ServiceID]
		if !ok {
			ti = len(l.Traces)
			trace[r.ServiceID] = ti
			l.Traces = append(l.Traces, Trace{ServiceID: r.ServiceID, Service: r.Service})
		}
		l.Traces[ti].Points = append(l.Traces[ti].Points, r)
	}
	for ti, tr := range l.Traces {
		for pi, r := range tr.Points {
			b, ok := band[r.WorkerID]
			if !ok {
				continue
			}
			x0 := l.column(r.Start, math.Floor)
			x1 := l.column(r.Finish, math.Ceil)
			if x1 <= x0 {
				x1 = x0 + 1
			}
			l.Bars = append(l.Bars, BarBox{Ref: dnd.PointRef{Trace: ti, Point: pi}, Row: r, Band: b, X0: x0, X1: x1})
		}
	}
	return l
}

// SetLocator makes PlotArea report on-screen positions.
func (l *Layout) SetLocator(loc Locator) { l.locator = loc }

func (l *Layout) msPerCell() float64 {
	if l.PlotWidth <= 0 {
		return 0
	}
	return float64(l.Window.Duration().Milliseconds()) / float64(l.PlotWidth)
}

func (l *Layout) column(t time.Time, round func(float64) float64) int {
	per := l.msPerCell()
	if per <= 0 {
		return 0
	}
	return int(round(float64(t.Sub(l.Window.Start).Milliseconds()) / per))
}

// Column returns the plot column of t.
func (l *Layout) Column(t time.Time) int { return l.column(t, math.Floor) }

// BandCenter is the fractional row of a band's center, relative to the plot top.
func (l *Layout) BandCenter(i int) float64 {
	return float64(i*l.BandHeight) + float64(l.BandHeight-1)/2
}

// BarRow is the row bars of band i are drawn on.
func (l *Layout) BarRow(i int) int {
	return i*l.BandHeight + (l.BandHeight-1)/2
}

func (l *Layout) PlotRows() int { return len(l.Workers) * l.BandHeight }

// BarData implements dnd.BarAssociation.
func (l *Layout) BarData(ref dnd.PointRef) (dnd.Bar, bool) {
	if ref.Trace < 0 || ref.Trace >= len(l.Traces) {
		return dnd.Bar{}, false
	}
	pts := l.Traces[ref.Trace].Points
	if ref.Point < 0 || ref.Point >= len(pts) {
		return dnd.Bar{}, false
	}
	r := pts[ref.Point]
	return dnd.Bar{TaskID: r.TaskID, Category: r.Worker}, true
}

// PlotArea is the plot box on screen when a locator is set, otherwise
// relative to the layout's own top-left corner.
func (l *Layout) PlotArea() (dnd.Rect, bool) {
	if l.PlotWidth <= 0 || len(l.Workers) == 0 {
		return dnd.Rect{}, false
	}
	if l.locator != nil {
		return l.locator.Locate(PlotZoneID)
	}
	return dnd.Rect{
		Left:   float64(l.LabelWidth),
		Top:    float64(headerRows),
		Width:  float64(l.PlotWidth),
		Height: float64(l.PlotRows()),
	}, true
}

var errNoScale = errors.New("gantt: time axis has no scale")

// Axes implements dnd.Chart.
func (l *Layout) Axes() dnd.AxisBinding {
	start := float64(l.Window.Start.UnixMilli())
	per := l.msPerCell()
	x := &dnd.TimeAxis{
		Type: dnd.AxisTypeDate,
		PixelToLinear: func(px float64) (float64, error) {
			if per <= 0 {
				return 0, errNoScale
			}
			return start + px*per, nil
		},
		LinearToMillis: func(lin float64) (float64, error) { return lin, nil },
	}

	cats := make([]string, len(l.Workers))
	center := map[string]float64{}
	for i, w := range l.Workers {
		cats[i] = w.Name
		if _, dup := center[w.Name]; !dup {
			center[w.Name] = l.BandCenter(i)
		}
	}
	y := &dnd.CategoryAxis{
		Categories: cats,
		CategoryToPixel: func(label string) (float64, error) {
			c, ok := center[label]
			if !ok {
				return 0, errors.New("gantt: unknown category " + strconv.Quote(label))
			}
			return c, nil
		},
	}
	return dnd.AxisBinding{X: x, Y: y}
}

// BarZoneID is the zone id of a rendered bar.
func BarZoneID(ref dnd.PointRef) string {
	return "gantt-bar-" + strconv.Itoa(ref.Trace) + "-" + strconv.Itoa(ref.Point)
}

// BarElement describes a bar the way drag and drop expects it.
func BarElement(ref dnd.PointRef) dnd.Element {
	return dnd.Element{
		ID:      BarZoneID(ref),
		Classes: []string{dnd.ClassBar},
		Attrs: map[string]string{
			dnd.AttrTrace: strconv.Itoa(ref.Trace),
			dnd.AttrPoint: strconv.Itoa(ref.Point),
		},
	}
}

// Element is the chart host itself.
func (l *Layout) Element() dnd.Element {
	return dnd.Element{ID: PlotZoneID, Classes: []string{dnd.ClassGantt}}
}

var _ dnd.Chart = (*Layout)(nil)
