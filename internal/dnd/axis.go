package dnd

import (
	"strconv"
	"strings"
)

// AxisTypeDate marks a time axis whose linear space is milliseconds since the epoch.
const AxisTypeDate = "date"

// TimeAxis converts plot-area pixel offsets into timestamps. Conversion is two
// stages; either stage may be missing when the chart cannot provide it.
type TimeAxis struct {
	Type           string
	PixelToLinear  func(px float64) (float64, error)
	LinearToMillis func(lin float64) (float64, error)
}

// CategoryAxis enumerates discrete rows in native axis order.
type CategoryAxis struct {
	Categories      []string
	CategoryToPixel func(label string) (float64, error)
}

// AxisBinding is the read-only view of a chart's axes. Either axis may be nil.
type AxisBinding struct {
	X *TimeAxis
	Y *CategoryAxis
}

// PointRef addresses one rendered point (bar) of a chart.
type PointRef struct {
	Trace int
	Point int
}

// Bar is the custom data attached to a rendered bar.
type Bar struct {
	TaskID   string
	Category string
}

// BarAssociation maps a rendered point back to the task it draws.
type BarAssociation interface {
	BarData(ref PointRef) (Bar, bool)
}

// Rect is a box in client (viewport) coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Chart is everything the chart coordinator needs from a rendered chart.
type Chart interface {
	BarAssociation
	// PlotArea reports the plotting area's current box in client coordinates.
	PlotArea() (Rect, bool)
	Axes() AxisBinding
}

// Element attribute and class contract shared by every surface that hosts drag
// and drop.
const (
	AttrTrace  = "data-trace"
	AttrPoint  = "data-point"
	AttrListID = "data-list-id"
	AttrItemID = "data-item-id"

	ClassBar   = "dnd-bar"
	ClassList  = "dnd-list"
	ClassItem  = "dnd-item"
	ClassGantt = "dnd-gantt"
)

// Element is a node of the hosting surface as seen by drag and drop: a stable
// identity plus the classes and attributes it carries.
type Element struct {
	ID      string
	Classes []string
	Attrs   map[string]string
}

func (e Element) Attr(name string) (string, bool) {
	if e.Attrs == nil {
		return "", false
	}
	v, ok := e.Attrs[name]
	return v, ok
}

func (e Element) HasClass(class string) bool {
	for _, c := range e.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// BarRef extracts the point reference from a bar element. Elements that are not
// bars or carry unparseable indexes yield false.
func BarRef(el Element) (PointRef, bool) {
	if !el.HasClass(ClassBar) {
		return PointRef{}, false
	}
	trace, ok := indexAttr(el, AttrTrace)
	if !ok {
		return PointRef{}, false
	}
	point, ok := indexAttr(el, AttrPoint)
	if !ok {
		return PointRef{}, false
	}
	return PointRef{Trace: trace, Point: point}, true
}

func indexAttr(el Element, name string) (int, bool) {
	raw, ok := el.Attr(name)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
