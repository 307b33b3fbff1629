package gantt

import (
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"

	"roster-cli/internal/dnd"
	"roster-cli/internal/model"
	"roster-cli/internal/mutate"
	"roster-cli/internal/schedule"
	"roster-cli/internal/store"
)

const testDay = "2024-01-01"

// fixture: 6-cell gutter, 96 plot cells over 09:00-17:00 (5 minutes per
// cell), two rows per worker band.
func fixture(t *testing.T) (*store.DB, *Layout) {
	t.Helper()
	db := &store.DB{}
	store.Seed(db)
	_, _ = db.InsertTask(testDay, "w1", 0, model.Task{ID: "t1", Customer: "Nadia", ServiceID: "svc_thai"})
	_, _ = db.InsertTask(testDay, "w2", 0, model.Task{ID: "t2", Customer: "Oka", ServiceID: "svc_deep"})
	db.Seq = 2

	cfg := store.DefaultConfig()
	rows, err := schedule.BuildDay(db, cfg, testDay)
	if err != nil {
		t.Fatalf("BuildDay: %v", err)
	}
	win, err := schedule.WindowFor(cfg, testDay, 1, rows)
	if err != nil {
		t.Fatalf("WindowFor: %v", err)
	}
	return db, Build(rows, db.Workers, win, 102, 9)
}

func findBar(t *testing.T, l *Layout, taskID string) BarBox {
	t.Helper()
	for _, b := range l.Bars {
		if b.Row.TaskID == taskID {
			return b
		}
	}
	t.Fatalf("no bar for %s", taskID)
	return BarBox{}
}

func TestBuild_Geometry(t *testing.T) {
	_, l := fixture(t)
	if l.LabelWidth != 6 || l.PlotWidth != 96 || l.BandHeight != 2 {
		t.Fatalf("unexpected geometry: label=%d plot=%d band=%d", l.LabelWidth, l.PlotWidth, l.BandHeight)
	}
	if len(l.Traces) != 2 || l.Traces[0].ServiceID != "svc_thai" {
		t.Fatalf("expected one trace per service in order of appearance, got %+v", l.Traces)
	}
	b := findBar(t, l, "t2")
	if b.Band != 1 || b.X0 != 0 || b.X1 != 24 {
		t.Fatalf("unexpected bar box: %+v", b)
	}
	bar, ok := l.BarData(b.Ref)
	if !ok || bar.TaskID != "t2" || bar.Category != "Budi" {
		t.Fatalf("unexpected bar data: %+v", bar)
	}
	if _, ok := l.BarData(dnd.PointRef{Trace: 5}); ok {
		t.Fatalf("expected unknown trace to not resolve")
	}
}

func TestAxes_ResolveBandsAndTimes(t *testing.T) {
	_, l := fixture(t)
	axes := l.Axes()
	ts, ok := dnd.ResolveTimestamp(axes.X, 24)
	if !ok || ts != "2024-01-01T11:00:00.000Z" {
		t.Fatalf("unexpected timestamp %q", ts)
	}
	for py, want := range map[float64]string{0: "Ayu", 1: "Ayu", 2: "Budi", 3: "Budi", 6: "Dewa", 40: "Dewa"} {
		got, ok := dnd.ResolveCategory(axes.Y, py)
		if !ok || got != want {
			t.Fatalf("row %v: expected %s, got %q", py, want, got)
		}
	}
}

func TestChartCoordinator_DropThroughLayout(t *testing.T) {
	db, l := fixture(t)
	var got []dnd.DropDetail
	coord := dnd.NewChartCoordinator("app/gantt", l, dnd.DispatcherFunc(func(ev dnd.Event) {
		got = append(got, ev.Detail.(dnd.DropDetail))
	}))

	ref := findBar(t, l, "t1").Ref
	if out := coord.Handle(dnd.Press{Target: BarElement(ref), ClientX: 8, ClientY: 1}); !out.PreventDefault {
		t.Fatalf("expected the press to be accepted")
	}
	coord.Handle(dnd.Move{ClientX: 20, ClientY: 3})
	// Column 6+24 is 11:00; row 1+2 is Budi's band.
	coord.Handle(dnd.Release{ClientX: 30, ClientY: 3})

	want := dnd.DropDetail{TaskID: "t1", DropWorkerName: "Budi", DropXISO: "2024-01-01T11:00:00.000Z"}
	if len(got) != 1 || got[0] != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	res, err := mutate.ApplyGanttDrop(db, store.DefaultConfig(), got[0])
	if err != nil {
		t.Fatalf("ApplyGanttDrop: %v", err)
	}
	if res.ToWorkerID != "w2" || res.ToIndex != 1 {
		t.Fatalf("expected t1 after Oka's deep tissue, got %+v", res)
	}
}

type recordingMarker struct{ ids []string }

func (m *recordingMarker) Mark(id, v string) string {
	m.ids = append(m.ids, id)
	return v
}

func TestRender_MarksBarsAndKeepsWidth(t *testing.T) {
	_, l := fixture(t)
	m := &recordingMarker{}
	out := l.Render(m, "t1")

	lines := strings.Split(out, "\n")
	if len(lines) != 1+l.PlotRows() {
		t.Fatalf("expected %d lines, got %d", 1+l.PlotRows(), len(lines))
	}
	for i, line := range lines {
		if w := ansi.StringWidth(line); w != l.Width {
			t.Fatalf("line %d: expected width %d, got %d: %q", i, l.Width, w, line)
		}
	}
	if !strings.Contains(lines[0], "Mon 01/01") {
		t.Fatalf("expected day label in header: %q", lines[0])
	}
	if !strings.Contains(out, "Nadia") || !strings.Contains(out, "Budi") {
		t.Fatalf("expected customer and worker labels:\n%s", out)
	}
	want := map[string]bool{PlotZoneID: true, BarZoneID(findBar(t, l, "t1").Ref): true, BarZoneID(findBar(t, l, "t2").Ref): true}
	for _, id := range m.ids {
		delete(want, id)
	}
	if len(want) != 0 {
		t.Fatalf("missing zone marks: %v (got %v)", want, m.ids)
	}
}

func TestPlotArea_UsesLocator(t *testing.T) {
	_, l := fixture(t)
	r, ok := l.PlotArea()
	if !ok || r.Left != 6 || r.Top != 1 || r.Height != 8 {
		t.Fatalf("unexpected local plot area %+v", r)
	}
	l.SetLocator(fixedLocator{dnd.Rect{Left: 40, Top: 10, Width: 96, Height: 8}})
	r, _ = l.PlotArea()
	if r.Left != 40 || r.Top != 10 {
		t.Fatalf("expected located plot area, got %+v", r)
	}

	empty := Build(nil, nil, l.Window, 80, 10)
	if _, ok := empty.PlotArea(); ok {
		t.Fatalf("expected no plot area without workers")
	}
}

type fixedLocator struct{ r dnd.Rect }

func (f fixedLocator) Locate(string) (dnd.Rect, bool) { return f.r, true }
