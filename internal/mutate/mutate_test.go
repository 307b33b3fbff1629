package mutate

import (
	"errors"
	"testing"
	"time"

	"roster-cli/internal/dnd"
	"roster-cli/internal/model"
	"roster-cli/internal/store"
)

const day = "2024-01-01"

func fixture(t *testing.T) *store.DB {
	t.Helper()
	db := &store.DB{}
	store.Seed(db)
	add := func(worker, id, svc string) {
		col := 0
		if d, ok := db.FindDay(day); ok {
			if c, ok := store.Column(d, worker); ok {
				col = len(c.Tasks)
			}
		}
		if _, err := db.InsertTask(day, worker, col, model.Task{ID: id, Customer: "c-" + id, ServiceID: svc}); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	add("w1", "t1", "svc_thai")   // 09:00-10:00
	add("w1", "t2", "svc_reflex") // 10:00-10:30
	add("w2", "t3", "svc_deep")   // 09:00-11:00
	db.Seq = 3
	return db
}

func queue(t *testing.T, db *store.DB, date, worker string) []string {
	t.Helper()
	d, ok := db.FindDay(date)
	if !ok {
		return nil
	}
	c, ok := store.Column(d, worker)
	if !ok {
		return nil
	}
	var ids []string
	for _, task := range c.Tasks {
		ids = append(ids, task.ID)
	}
	return ids
}

func sameIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApplyGanttDrop_InsertsByStartTime(t *testing.T) {
	cases := []struct {
		at   string
		want []string
	}{
		{"2024-01-01T08:00:00.000Z", []string{"t3", "t1", "t2"}},
		{"2024-01-01T09:30:00.000Z", []string{"t1", "t3", "t2"}},
		{"2024-01-01T10:00:00.000Z", []string{"t1", "t2", "t3"}},
		{"2024-01-01T16:00:00.000Z", []string{"t1", "t2", "t3"}},
	}
	for _, c := range cases {
		db := fixture(t)
		res, err := ApplyGanttDrop(db, store.DefaultConfig(), dnd.DropDetail{TaskID: "t3", DropWorkerName: "Ayu", DropXISO: c.at})
		if err != nil {
			t.Fatalf("%s: ApplyGanttDrop: %v", c.at, err)
		}
		if got := queue(t, db, day, "w1"); !sameIDs(got, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.at, c.want, got)
		}
		if len(queue(t, db, day, "w2")) != 0 {
			t.Fatalf("%s: expected t3 removed from Budi", c.at)
		}
		if res.FromWorkerID != "w2" || res.ToWorkerID != "w1" || !res.Changed {
			t.Fatalf("%s: unexpected result %+v", c.at, res)
		}
	}
}

func TestApplyGanttDrop_SameRowMeasuresWithoutDraggedTask(t *testing.T) {
	db := fixture(t)
	// Without t1, t2 starts at 09:00, so a drop at 09:10 lands after it.
	res, err := ApplyGanttDrop(db, store.DefaultConfig(), dnd.DropDetail{TaskID: "t1", DropWorkerName: "ayu", DropXISO: "2024-01-01T09:10:00.000Z"})
	if err != nil {
		t.Fatalf("ApplyGanttDrop: %v", err)
	}
	if got := queue(t, db, day, "w1"); !sameIDs(got, []string{"t2", "t1"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if res.ToIndex != 1 {
		t.Fatalf("expected index 1, got %d", res.ToIndex)
	}
}

func TestApplyGanttDrop_MovesAcrossDays(t *testing.T) {
	db := fixture(t)
	res, err := ApplyGanttDrop(db, store.DefaultConfig(), dnd.DropDetail{TaskID: "t2", DropWorkerName: "Citra", DropXISO: "2024-01-02T11:00:00.000Z"})
	if err != nil {
		t.Fatalf("ApplyGanttDrop: %v", err)
	}
	if res.ToDay != "2024-01-02" || res.ToIndex != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if got := queue(t, db, "2024-01-02", "w3"); !sameIDs(got, []string{"t2"}) {
		t.Fatalf("expected t2 on the next day, got %v", got)
	}
	if got := queue(t, db, day, "w1"); !sameIDs(got, []string{"t1"}) {
		t.Fatalf("expected t2 gone from the first day, got %v", got)
	}
}

func TestApplyGanttDrop_FailuresLeavePlanUntouched(t *testing.T) {
	details := []dnd.DropDetail{
		{TaskID: "t9", DropWorkerName: "Ayu", DropXISO: "2024-01-01T09:00:00.000Z"},
		{TaskID: "t1", DropWorkerName: "Nobody", DropXISO: "2024-01-01T09:00:00.000Z"},
		{TaskID: "t1", DropWorkerName: "Budi", DropXISO: "yesterday"},
		{TaskID: "", DropWorkerName: "Budi", DropXISO: "2024-01-01T09:00:00.000Z"},
	}
	for _, d := range details {
		db := fixture(t)
		if _, err := ApplyGanttDrop(db, store.DefaultConfig(), d); err == nil {
			t.Fatalf("expected error for %+v", d)
		}
		if got := queue(t, db, day, "w1"); !sameIDs(got, []string{"t1", "t2"}) {
			t.Fatalf("expected plan unchanged for %+v, got %v", d, got)
		}
	}

	db := fixture(t)
	_, err := ApplyGanttDrop(db, store.DefaultConfig(), dnd.DropDetail{TaskID: "t9", DropWorkerName: "Ayu", DropXISO: "2024-01-01T09:00:00.000Z"})
	var nf NotFoundError
	if !errors.As(err, &nf) || nf.Kind != "task" {
		t.Fatalf("expected task NotFoundError, got %v", err)
	}
}

func TestApplyListReorder(t *testing.T) {
	db := fixture(t)
	res, err := ApplyListReorder(db, day, dnd.ReorderDetail{ItemID: "t3", FromID: "w2", ToID: "w1", NewIndex: 1})
	if err != nil {
		t.Fatalf("ApplyListReorder: %v", err)
	}
	if got := queue(t, db, day, "w1"); !sameIDs(got, []string{"t1", "t3", "t2"}) {
		t.Fatalf("unexpected order %v", got)
	}
	if res.FromIndex != 0 || res.ToIndex != 1 || !res.Changed {
		t.Fatalf("unexpected result %+v", res)
	}

	// Out-of-range indexes clamp to the end.
	if _, err := ApplyListReorder(db, day, dnd.ReorderDetail{ItemID: "t1", FromID: "w1", ToID: "w1", NewIndex: 42}); err != nil {
		t.Fatalf("ApplyListReorder: %v", err)
	}
	if got := queue(t, db, day, "w1"); !sameIDs(got, []string{"t3", "t2", "t1"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func TestApplyListReorder_RejectsStaleOrInvalidInput(t *testing.T) {
	bad := []struct {
		day string
		r   dnd.ReorderDetail
	}{
		{day, dnd.ReorderDetail{ItemID: "t1", FromID: "w2", ToID: "w3"}},
		{"2024-01-05", dnd.ReorderDetail{ItemID: "t1", FromID: "w1", ToID: "w3"}},
		{day, dnd.ReorderDetail{ItemID: "t1", FromID: "w1", ToID: "w9"}},
		{day, dnd.ReorderDetail{ItemID: "t1", FromID: "w1", ToID: "w3", NewIndex: -1}},
		{day, dnd.ReorderDetail{ItemID: "nope", FromID: "w1", ToID: "w3"}},
	}
	for _, b := range bad {
		db := fixture(t)
		if _, err := ApplyListReorder(db, b.day, b.r); err == nil {
			t.Fatalf("expected error for %+v", b)
		}
		if got := queue(t, db, day, "w1"); !sameIDs(got, []string{"t1", "t2"}) {
			t.Fatalf("expected plan unchanged, got %v", got)
		}
	}
}

func TestAddEditDeleteBooking(t *testing.T) {
	db := fixture(t)
	now := time.Date(2024, 1, 1, 7, 0, 0, 0, time.UTC)
	res, err := AddBooking(db, day, "Nadia", "svc_hot", "w2", now)
	if err != nil {
		t.Fatalf("AddBooking: %v", err)
	}
	if res.Task.ID != "t4" || res.Index != 1 || !res.Task.CreatedAt.Equal(now) {
		t.Fatalf("unexpected add result %+v", res)
	}
	if _, err := AddBooking(db, day, "", "svc_hot", "w2", now); err == nil {
		t.Fatalf("expected missing customer to fail")
	}
	if _, err := AddBooking(db, day, "X", "svc_nope", "w2", now); err == nil {
		t.Fatalf("expected unknown service to fail")
	}
	if _, err := AddBooking(db, "01/01/2024", "X", "svc_hot", "w2", now); err == nil {
		t.Fatalf("expected bad day to fail")
	}

	ed, err := EditBooking(db, "t4", "Nadia P.", "", "w1")
	if err != nil {
		t.Fatalf("EditBooking: %v", err)
	}
	if ed.WorkerID != "w1" || ed.Index != 2 || ed.Task.Customer != "Nadia P." {
		t.Fatalf("unexpected edit result %+v", ed)
	}
	if got := queue(t, db, day, "w2"); !sameIDs(got, []string{"t3"}) {
		t.Fatalf("expected t4 moved off Budi, got %v", got)
	}
	noop, err := EditBooking(db, "t4", "", "", "")
	if err != nil || noop.Changed {
		t.Fatalf("expected no-op edit, got %+v %v", noop, err)
	}

	del, err := DeleteBooking(db, "t4")
	if err != nil || del.WorkerID != "w1" {
		t.Fatalf("unexpected delete result %+v %v", del, err)
	}
	if _, err := DeleteBooking(db, "t4"); err == nil {
		t.Fatalf("expected second delete to fail")
	}
}
