package dnd

import (
	"testing"
	"time"
)

type fakeChart struct {
	bars      map[PointRef]Bar
	frame     Rect
	noFrame   bool
	axes      AxisBinding
	plotCalls int
}

func (f *fakeChart) BarData(ref PointRef) (Bar, bool) {
	b, ok := f.bars[ref]
	return b, ok
}

func (f *fakeChart) PlotArea() (Rect, bool) {
	f.plotCalls++
	if f.noFrame {
		return Rect{}, false
	}
	return f.frame, true
}

func (f *fakeChart) Axes() AxisBinding { return f.axes }

type recorder struct {
	events []Event
}

func (r *recorder) Dispatch(ev Event) { r.events = append(r.events, ev) }

func barElement(trace, point string) Element {
	return Element{
		ID:      "bar-" + trace + "-" + point,
		Classes: []string{ClassBar},
		Attrs:   map[string]string{AttrTrace: trace, AttrPoint: point},
	}
}

// workerChart is the stub chart of the end-to-end scenario: one pixel is twelve
// minutes from 2024-01-01T00:00Z and worker rows sit at y 10/40/70.
func workerChart() *fakeChart {
	base := float64(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).UnixMilli())
	return &fakeChart{
		bars: map[PointRef]Bar{
			{Trace: 0, Point: 0}: {TaskID: "T7", Category: "worker-A"},
			{Trace: 1, Point: 0}: {TaskID: "", Category: "worker-C"},
		},
		frame: Rect{Left: 100, Top: 300, Width: 400, Height: 90},
		axes: AxisBinding{
			X: &TimeAxis{
				Type:           AxisTypeDate,
				PixelToLinear:  func(px float64) (float64, error) { return base + px*12*60*1000, nil },
				LinearToMillis: func(lin float64) (float64, error) { return lin, nil },
			},
			Y: categoryAxis(
				[]string{"worker-A", "worker-B", "worker-C"},
				map[string]float64{"worker-A": 10, "worker-B": 40, "worker-C": 70},
			),
		},
	}
}

func TestChartCoordinator_EndToEndDrop(t *testing.T) {
	ch := workerChart()
	rec := &recorder{}
	c := NewChartCoordinator("app/schedule/gantt", ch, rec)

	out := c.Handle(Press{Target: barElement("0", "0"), ClientX: 120, ClientY: 340})
	if !out.PreventDefault {
		t.Fatalf("expected accepted press to prevent default")
	}
	if c.State() != StateDragging {
		t.Fatalf("expected dragging, got %s", c.State())
	}

	c.Handle(Move{ClientX: 180, ClientY: 345})
	if len(rec.events) != 0 || c.State() != StateDragging {
		t.Fatalf("expected move to be inert; events=%d state=%s", len(rec.events), c.State())
	}

	out = c.Handle(Release{ClientX: 220, ClientY: 340})
	if c.State() != StateIdle {
		t.Fatalf("expected idle after release, got %s", c.State())
	}
	if out.Drop == nil {
		t.Fatalf("expected drop result")
	}
	if len(rec.events) != 1 {
		t.Fatalf("expected exactly one event, got %d", len(rec.events))
	}
	ev := rec.events[0]
	if ev.Type != EventGanttDrop || ev.Host != "app/schedule/gantt" || !ev.Bubbles {
		t.Fatalf("unexpected event envelope: %#v", ev)
	}
	want := DropDetail{TaskID: "T7", DropWorkerName: "worker-B", DropXISO: "2024-01-02T00:00:00.000Z"}
	if got, _ := ev.Detail.(DropDetail); got != want {
		t.Fatalf("expected %#v, got %#v", want, ev.Detail)
	}
}

func TestChartCoordinator_IgnoresPressWithoutIdentity(t *testing.T) {
	cases := map[string]Element{
		"not a bar":       {ID: "axis", Classes: []string{"ytick"}, Attrs: map[string]string{AttrTrace: "0", AttrPoint: "0"}},
		"missing point":   {ID: "b", Classes: []string{ClassBar}, Attrs: map[string]string{AttrTrace: "0"}},
		"garbage index":   barElement("x", "0"),
		"negative index":  barElement("0", "-1"),
		"unknown point":   barElement("4", "2"),
		"empty task id":   barElement("1", "0"),
		"no attrs at all": {ID: "bare", Classes: []string{ClassBar}},
	}
	for name, el := range cases {
		rec := &recorder{}
		c := NewChartCoordinator("gantt", workerChart(), rec)
		out := c.Handle(Press{Target: el, ClientX: 120, ClientY: 340})
		if out.PreventDefault || c.State() != StateIdle {
			t.Fatalf("%s: expected press to be ignored; out=%#v state=%s", name, out, c.State())
		}
		c.Handle(Release{ClientX: 220, ClientY: 340})
		if len(rec.events) != 0 {
			t.Fatalf("%s: expected no events, got %d", name, len(rec.events))
		}
	}
}

func TestChartCoordinator_UsesTaskCapturedAtPress(t *testing.T) {
	ch := workerChart()
	rec := &recorder{}
	c := NewChartCoordinator("gantt", ch, rec)

	c.Handle(Press{Target: barElement("0", "0"), ClientX: 120, ClientY: 340})
	// The chart re-renders mid-drag; the bar now belongs to another task.
	ch.bars[PointRef{Trace: 0, Point: 0}] = Bar{TaskID: "T99", Category: "worker-C"}
	c.Handle(Release{ClientX: 220, ClientY: 340})

	if len(rec.events) != 1 {
		t.Fatalf("expected one event, got %d", len(rec.events))
	}
	if got := rec.events[0].Detail.(DropDetail).TaskID; got != "T7" {
		t.Fatalf("expected press-time task T7, got %q", got)
	}
}

func TestChartCoordinator_FrameCapturedOnceAtPress(t *testing.T) {
	ch := workerChart()
	rec := &recorder{}
	c := NewChartCoordinator("gantt", ch, rec)

	c.Handle(Press{Target: barElement("0", "0"), ClientX: 120, ClientY: 340})
	ch.frame = Rect{Left: 0, Top: 0}
	c.Handle(Release{ClientX: 220, ClientY: 340})

	if ch.plotCalls != 1 {
		t.Fatalf("expected plot area to be queried once, got %d", ch.plotCalls)
	}
	if got := rec.events[0].Detail.(DropDetail); got.DropWorkerName != "worker-B" || got.DropXISO != "2024-01-02T00:00:00.000Z" {
		t.Fatalf("expected press-time frame to be used, got %#v", got)
	}
}

func TestChartCoordinator_NoEventWhenEitherAxisFails(t *testing.T) {
	cases := map[string]func(*fakeChart){
		"no time axis":     func(ch *fakeChart) { ch.axes.X = nil },
		"no category axis": func(ch *fakeChart) { ch.axes.Y = nil },
		"time not date":    func(ch *fakeChart) { ch.axes.X.Type = "linear" },
		"no categories":    func(ch *fakeChart) { ch.axes.Y.Categories = nil },
	}
	for name, mutate := range cases {
		ch := workerChart()
		mutate(ch)
		rec := &recorder{}
		c := NewChartCoordinator("gantt", ch, rec)
		c.Handle(Press{Target: barElement("0", "0"), ClientX: 120, ClientY: 340})
		out := c.Handle(Release{ClientX: 220, ClientY: 340})
		if out.Drop != nil || len(rec.events) != 0 {
			t.Fatalf("%s: expected no drop, got %#v events=%d", name, out.Drop, len(rec.events))
		}
		if c.State() != StateIdle {
			t.Fatalf("%s: expected idle after failed resolution", name)
		}

		// The next gesture starts fresh.
		if out := c.Handle(Press{Target: barElement("0", "0"), ClientX: 120, ClientY: 340}); !out.PreventDefault {
			t.Fatalf("%s: expected next press to be accepted", name)
		}
	}
}

func TestChartCoordinator_PressIgnoredWithoutPlotArea(t *testing.T) {
	ch := workerChart()
	ch.noFrame = true
	c := NewChartCoordinator("gantt", ch, &recorder{})
	if out := c.Handle(Press{Target: barElement("0", "0")}); out.PreventDefault || c.State() != StateIdle {
		t.Fatalf("expected press to be ignored without a plot area")
	}
}

func TestChartCoordinator_ReleaseWithoutPressIsNoop(t *testing.T) {
	rec := &recorder{}
	c := NewChartCoordinator("gantt", workerChart(), rec)
	out := c.Handle(Release{ClientX: 220, ClientY: 340})
	if out.Drop != nil || len(rec.events) != 0 || c.State() != StateIdle {
		t.Fatalf("expected no-op release")
	}
	c.Handle(Move{ClientX: 1, ClientY: 1})
	if c.State() != StateIdle {
		t.Fatalf("expected move while idle to be a no-op")
	}
}

func TestChartCoordinator_NewPressReplacesSession(t *testing.T) {
	ch := workerChart()
	ch.bars[PointRef{Trace: 2, Point: 5}] = Bar{TaskID: "T8", Category: "worker-C"}
	rec := &recorder{}
	c := NewChartCoordinator("gantt", ch, rec)

	c.Handle(Press{Target: barElement("0", "0")})
	c.Handle(Press{Target: barElement("2", "5")})
	if s, ok := c.Session(); !ok || s.TaskID != "T8" {
		t.Fatalf("expected newer session T8, got %#v ok=%v", s, ok)
	}
	c.Handle(Release{ClientX: 220, ClientY: 340})
	if len(rec.events) != 1 || rec.events[0].Detail.(DropDetail).TaskID != "T8" {
		t.Fatalf("expected a single drop for T8, got %#v", rec.events)
	}

	// An invalid press while dragging cancels the gesture.
	c.Handle(Press{Target: barElement("0", "0")})
	c.Handle(Press{Target: Element{ID: "background"}})
	if c.State() != StateIdle {
		t.Fatalf("expected idle after invalid press")
	}
	c.Handle(Release{ClientX: 220, ClientY: 340})
	if len(rec.events) != 1 {
		t.Fatalf("expected no extra events, got %d", len(rec.events))
	}
}

type panickyChart struct{ fakeChart }

func (p *panickyChart) Axes() AxisBinding { panic("layout not ready") }

func TestChartCoordinator_SurvivesPanickingAdapter(t *testing.T) {
	ch := &panickyChart{fakeChart: *workerChart()}
	rec := &recorder{}
	c := NewChartCoordinator("gantt", ch, rec)
	c.Handle(Press{Target: barElement("0", "0"), ClientX: 120, ClientY: 340})
	out := c.Handle(Release{ClientX: 220, ClientY: 340})
	if out.Drop != nil || len(rec.events) != 0 || c.State() != StateIdle {
		t.Fatalf("expected adapter panic to abandon the drop cleanly")
	}
}

func TestChartTransitions_CoverEveryStateAndInput(t *testing.T) {
	for _, s := range []State{StateIdle, StateDragging} {
		for _, k := range []InputKind{InputPress, InputMove, InputRelease} {
			if chartTransitions[s][k] == nil {
				t.Fatalf("missing transition for %s/%d", s, k)
			}
		}
	}
}
