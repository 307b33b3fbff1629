package dnd

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// State of a chart coordinator.
type State int

const (
	StateIdle State = iota
	StateDragging
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDragging:
		return "dragging"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// InputKind enumerates pointer inputs.
type InputKind int

const (
	InputPress InputKind = iota
	InputMove
	InputRelease
)

// Input is one pointer notification fed to a coordinator.
type Input interface {
	Kind() InputKind
}

// Press is a primary-button press on Target at client coordinates.
type Press struct {
	Target  Element
	ClientX float64
	ClientY float64
}

// Move is pointer motion.
type Move struct {
	ClientX float64
	ClientY float64
}

// Release is a primary-button release anywhere.
type Release struct {
	ClientX float64
	ClientY float64
}

func (Press) Kind() InputKind   { return InputPress }
func (Move) Kind() InputKind    { return InputMove }
func (Release) Kind() InputKind { return InputRelease }

// DragSession lives from an accepted press to the next release.
type DragSession struct {
	TaskID string
	// Frame is the plot area observed at press time. Release math always uses it,
	// even if the layout shifted during the drag.
	Frame Rect
}

// DropResult is produced once per successful gesture.
type DropResult struct {
	TaskID           string
	DropCategory     string
	DropTimestampISO string
}

func (r DropResult) Detail() DropDetail {
	return DropDetail{TaskID: r.TaskID, DropWorkerName: r.DropCategory, DropXISO: r.DropTimestampISO}
}

// Outcome tells the caller what handling an input did.
type Outcome struct {
	// PreventDefault asks the host to suppress its native press behavior
	// (text selection, native drag).
	PreventDefault bool
	Drop           *DropResult
}

type transition func(c *ChartCoordinator, in Input) (State, Outcome)

// chartTransitions is the full state machine. Missing entries are no-ops.
var chartTransitions = map[State]map[InputKind]transition{
	StateIdle: {
		InputPress:   (*ChartCoordinator).press,
		InputMove:    (*ChartCoordinator).stay,
		InputRelease: (*ChartCoordinator).stay,
	},
	StateDragging: {
		InputPress:   (*ChartCoordinator).press,
		InputMove:    (*ChartCoordinator).move,
		InputRelease: (*ChartCoordinator).release,
	},
}

// ChartCoordinator turns press/move/release on one chart into at most one
// gantt-dnd-drop event per gesture.
type ChartCoordinator struct {
	host    string
	chart   Chart
	out     Dispatcher
	log     *zap.Logger
	state   State
	session *DragSession
}

// Option configures coordinators and watchers.
type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger routes diagnostics to l.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewChartCoordinator returns an idle coordinator dispatching drops on host.
func NewChartCoordinator(host string, chart Chart, out Dispatcher, opts ...Option) *ChartCoordinator {
	o := buildOptions(opts)
	return &ChartCoordinator{
		host:  normalizeHost(host),
		chart: chart,
		out:   out,
		log:   o.log.With(zap.String("host", normalizeHost(host))),
		state: StateIdle,
	}
}

func (c *ChartCoordinator) Host() string { return c.host }

func (c *ChartCoordinator) State() State { return c.state }

// Session returns a copy of the active session.
func (c *ChartCoordinator) Session() (DragSession, bool) {
	if c.session == nil {
		return DragSession{}, false
	}
	return *c.session, true
}

// Handle applies one input and returns what it did.
func (c *ChartCoordinator) Handle(in Input) Outcome {
	if in == nil {
		return Outcome{}
	}
	t, ok := chartTransitions[c.state][in.Kind()]
	if !ok {
		return Outcome{}
	}
	next, out := t(c, in)
	c.state = next
	return out
}

func (c *ChartCoordinator) stay(Input) (State, Outcome) {
	return c.state, Outcome{}
}

// move is observed but intentionally inert; visual feedback would hook in here.
func (c *ChartCoordinator) move(Input) (State, Outcome) {
	return StateDragging, Outcome{}
}

func (c *ChartCoordinator) press(in Input) (State, Outcome) {
	p, ok := in.(Press)
	if !ok {
		return StateIdle, Outcome{}
	}
	c.session = nil

	ref, ok := BarRef(p.Target)
	if !ok {
		return StateIdle, Outcome{}
	}
	var bar Bar
	if !c.guard("bar data", func() { bar, ok = c.chart.BarData(ref) }) || !ok || strings.TrimSpace(bar.TaskID) == "" {
		c.log.Debug("press ignored: no task for bar", zap.Int("trace", ref.Trace), zap.Int("point", ref.Point))
		return StateIdle, Outcome{}
	}
	var frame Rect
	if !c.guard("plot area", func() { frame, ok = c.chart.PlotArea() }) || !ok {
		c.log.Debug("press ignored: plot area unavailable", zap.String("task", bar.TaskID))
		return StateIdle, Outcome{}
	}

	c.session = &DragSession{TaskID: bar.TaskID, Frame: frame}
	return StateDragging, Outcome{PreventDefault: true}
}

func (c *ChartCoordinator) release(in Input) (State, Outcome) {
	r, ok := in.(Release)
	s := c.session
	c.session = nil
	if !ok || s == nil {
		return StateIdle, Outcome{}
	}

	px := r.ClientX - s.Frame.Left
	py := r.ClientY - s.Frame.Top

	var axes AxisBinding
	if !c.guard("axes", func() { axes = c.chart.Axes() }) {
		return StateIdle, Outcome{}
	}
	ts, ok := ResolveTimestamp(axes.X, px)
	if !ok {
		c.log.Debug("drop abandoned: time unresolved", zap.String("task", s.TaskID), zap.Float64("px", px))
		return StateIdle, Outcome{}
	}
	category, ok := ResolveCategory(axes.Y, py)
	if !ok {
		c.log.Debug("drop abandoned: category unresolved", zap.String("task", s.TaskID), zap.Float64("py", py))
		return StateIdle, Outcome{}
	}

	res := DropResult{TaskID: s.TaskID, DropCategory: category, DropTimestampISO: ts}
	if c.out != nil {
		c.out.Dispatch(Event{Type: EventGanttDrop, Host: c.host, Bubbles: true, Detail: res.Detail()})
	}
	return StateIdle, Outcome{Drop: &res}
}

// guard runs a chart call and reports false if it panicked.
func (c *ChartCoordinator) guard(what string, f func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("chart adapter panicked", zap.String("call", what), zap.Any("panic", r))
			ok = false
		}
	}()
	f()
	return true
}
