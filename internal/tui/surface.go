package tui

import (
	"errors"

	"go.uber.org/zap"

	"roster-cli/internal/dnd"
	"roster-cli/internal/gantt"
)

const (
	hostApp      = "app"
	hostSchedule = "app/schedule"
	hostBoard    = "app/board"
	sortGroup    = "workers"
)

// surface is the drag-and-drop view of what is currently on screen: the
// chart host plus one list container per worker of the board day.
type surface struct {
	chart *dnd.Element
	lists []dnd.Element
}

func (s *surface) Query(class string) []dnd.Element {
	switch class {
	case dnd.ClassGantt:
		if s.chart == nil {
			return nil
		}
		return []dnd.Element{*s.chart}
	case dnd.ClassList:
		return append([]dnd.Element(nil), s.lists...)
	}
	return nil
}

// chartHost forwards to whatever layout is current, so one coordinator
// survives re-layouts.
type chartHost struct {
	rt *dndRuntime
}

func (c chartHost) BarData(ref dnd.PointRef) (dnd.Bar, bool) {
	if c.rt.layout == nil {
		return dnd.Bar{}, false
	}
	return c.rt.layout.BarData(ref)
}

func (c chartHost) PlotArea() (dnd.Rect, bool) {
	if c.rt.layout == nil {
		return dnd.Rect{}, false
	}
	return c.rt.layout.PlotArea()
}

func (c chartHost) Axes() dnd.AxisBinding {
	if c.rt.layout == nil {
		return dnd.AxisBinding{}
	}
	return c.rt.layout.Axes()
}

// boardSortable is the sortable provider behind the board columns.
type boardSortable struct {
	onEnd map[string][]func(dnd.SortEnd)
	group map[string]string
}

func newBoardSortable() *boardSortable {
	return &boardSortable{onEnd: map[string][]func(dnd.SortEnd){}, group: map[string]string{}}
}

func (b *boardSortable) Attach(container dnd.Element, group string, onEnd func(dnd.SortEnd)) error {
	if container.ID == "" {
		return errors.New("sortable: container has no id")
	}
	b.onEnd[container.ID] = append(b.onEnd[container.ID], onEnd)
	b.group[container.ID] = group
	return nil
}

func (b *boardSortable) attached(id string) bool { return len(b.onEnd[id]) > 0 }

// finish reports a completed card drag to the source container's handlers.
// Both containers must be attached and share a group.
func (b *boardSortable) finish(e dnd.SortEnd) bool {
	if !b.attached(e.From.ID) || !b.attached(e.To.ID) || b.group[e.From.ID] != b.group[e.To.ID] {
		return false
	}
	for _, fn := range b.onEnd[e.From.ID] {
		fn(e)
	}
	return true
}

// zoneGate holds list instrumentation back until the first frame has been
// drawn and zones can be hit-tested.
type zoneGate struct {
	loaded  bool
	waiters []func()
}

func (g *zoneGate) Available() bool { return g.loaded }

func (g *zoneGate) OnLoad(fn func()) { g.waiters = append(g.waiters, fn) }

func (g *zoneGate) load() {
	if g.loaded {
		return
	}
	g.loaded = true
	ws := g.waiters
	g.waiters = nil
	for _, fn := range ws {
		fn()
	}
}

// cardDrag is a board card being dragged.
type cardDrag struct {
	item dnd.Element
	from dnd.Element
}

type dndRuntime struct {
	log      *zap.Logger
	hits     hitTester
	bus      *dnd.Bus
	doc      *surface
	layout   *gantt.Layout
	chart    *dnd.ChartCoordinator
	lists    *dnd.ListCoordinator
	sortable *boardSortable
	gate     *zoneGate

	chartWatcher *dnd.Watcher
	listWatcher  *dnd.Watcher

	drag    *cardDrag
	pending []dnd.Event
}

func newDNDRuntime(hits hitTester, log *zap.Logger) *dndRuntime {
	rt := &dndRuntime{
		log:      log,
		hits:     hits,
		bus:      dnd.NewBus(),
		doc:      &surface{},
		sortable: newBoardSortable(),
		gate:     &zoneGate{},
	}
	rt.lists = dnd.NewListCoordinator(hostBoard, sortGroup, rt.sortable, rt.bus, dnd.WithLogger(log))
	rt.chartWatcher = dnd.NewWatcher(rt.doc, dnd.ClassGantt, rt.installChart, nil, dnd.WithLogger(log))
	rt.listWatcher = dnd.NewWatcher(rt.doc, dnd.ClassList, rt.lists.Install, rt.gate, dnd.WithLogger(log))

	collect := func(ev dnd.Event) { rt.pending = append(rt.pending, ev) }
	rt.bus.Listen(hostApp, dnd.EventGanttDrop, collect)
	rt.bus.Listen(hostApp, dnd.EventListReorder, collect)
	return rt
}

func (rt *dndRuntime) installChart(dnd.Element) error {
	if rt.chart == nil {
		rt.chart = dnd.NewChartCoordinator(hostSchedule, chartHost{rt: rt}, rt.bus, dnd.WithLogger(rt.log))
	}
	return nil
}

// publish swaps in the current surface and lets the watchers instrument
// anything new.
func (rt *dndRuntime) publish(layout *gantt.Layout, lists []dnd.Element, first bool) {
	prev := map[string]bool{}
	for _, el := range rt.doc.lists {
		prev[el.ID] = true
	}
	rt.layout = layout
	if layout != nil {
		if loc, ok := rt.hits.(gantt.Locator); ok {
			layout.SetLocator(loc)
		}
		el := layout.Element()
		rt.doc.chart = &el
	} else {
		rt.doc.chart = nil
	}
	rt.doc.lists = lists

	if first {
		rt.chartWatcher.Ready()
		rt.listWatcher.Ready()
		return
	}
	var added []dnd.Element
	for _, el := range lists {
		if !prev[el.ID] {
			added = append(added, el)
		}
	}
	if rt.doc.chart != nil && !rt.chartWatcher.Installed(rt.doc.chart.ID) {
		added = append(added, *rt.doc.chart)
	}
	rt.chartWatcher.Mutated(dnd.Mutation{Added: added})
	rt.listWatcher.Mutated(dnd.Mutation{Added: added})
}

func (rt *dndRuntime) takePending() []dnd.Event {
	evs := rt.pending
	rt.pending = nil
	return evs
}
