package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"roster-cli/internal/model"
)

func TestStore_LoadSeedsEmptyCatalog(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(db.Workers) != 4 || db.Workers[0].Name != "Ayu" {
		t.Fatalf("unexpected workers: %+v", db.Workers)
	}
	if len(db.Services) != 6 {
		t.Fatalf("unexpected services: %+v", db.Services)
	}
	if sv, ok := db.FindService("svc_deep"); !ok || sv.DurationMin != 120 {
		t.Fatalf("expected deep tissue to be 120 minutes, got %+v", sv)
	}
}

func TestStore_SaveLoad_RoundTripKeepsColumnOrder(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	db, err := s.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	for _, c := range []string{"Nadia", "Oka", "Putu"} {
		id := db.NextTaskID()
		if _, err := db.InsertTask("2024-01-02", "w2", 99, model.Task{ID: id, Customer: c, ServiceID: "svc_thai", CreatedAt: now}); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if _, err := db.InsertTask("2024-01-02", "w2", 0, model.Task{ID: db.NextTaskID(), Customer: "Rina", ServiceID: "svc_reflex"}); err != nil {
		t.Fatalf("insert front: %v", err)
	}
	if err := s.Save(db); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load()
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if got.Seq != 4 {
		t.Fatalf("expected seq 4, got %d", got.Seq)
	}
	d, ok := got.FindDay("2024-01-02")
	if !ok {
		t.Fatalf("expected day to persist")
	}
	col, _ := Column(d, "w2")
	var names []string
	for _, task := range col.Tasks {
		names = append(names, task.Customer)
	}
	want := []string{"Rina", "Nadia", "Oka", "Putu"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}
	if len(d.Columns) != 4 {
		t.Fatalf("expected a column per worker, got %d", len(d.Columns))
	}
	if _, err := os.Stat(filepath.Join(s.Dir, "roster.sqlite")); err != nil {
		t.Fatalf("expected sqlite file: %v", err)
	}
}

func TestDB_RemoveAndFindTask(t *testing.T) {
	db := &DB{}
	Seed(db)
	_, _ = db.InsertTask("2024-01-01", "w1", 0, model.Task{ID: "t1"})
	_, _ = db.InsertTask("2024-01-01", "w1", 1, model.Task{ID: "t2"})

	ref, task, ok := db.RemoveTask("t1")
	if !ok || task.ID != "t1" || ref.Day != "2024-01-01" || ref.Index != 0 {
		t.Fatalf("unexpected remove result: %+v %+v %v", ref, task, ok)
	}
	if _, _, ok := db.FindTask("t1"); ok {
		t.Fatalf("expected t1 gone")
	}
	ref, _, ok = db.FindTask("t2")
	if !ok || ref.Index != 0 {
		t.Fatalf("expected t2 to shift to front, got %+v", ref)
	}
	if _, _, ok := db.RemoveTask("nope"); ok {
		t.Fatalf("expected unknown task to not be removed")
	}
}

func TestDB_InsertTaskRejectsUnknownWorker(t *testing.T) {
	db := &DB{}
	Seed(db)
	if _, err := db.InsertTask("2024-01-01", "w9", 0, model.Task{ID: "t1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDB_NextTaskIDSkipsTakenIDs(t *testing.T) {
	db := &DB{}
	Seed(db)
	_, _ = db.InsertTask("2024-01-01", "w1", 0, model.Task{ID: "t1"})
	if id := db.NextTaskID(); id != "t2" {
		t.Fatalf("expected t2, got %s", id)
	}
}

func TestDB_FindWorkerByNameIsCaseInsensitive(t *testing.T) {
	db := &DB{}
	Seed(db)
	w, ok := db.FindWorkerByName(" budi ")
	if !ok || w.ID != "w2" {
		t.Fatalf("expected Budi, got %+v", w)
	}
	if _, ok := db.FindWorkerByName(""); ok {
		t.Fatalf("expected empty name to not match")
	}
}

func TestEventLog_AppendAndRead(t *testing.T) {
	s := Store{Dir: t.TempDir()}
	if err := s.AppendEvent("", "booking.add", "t1", map[string]any{"customer": "Nadia"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent("desk", "task.drop", "t1", map[string]any{"worker": "w2"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent("desk", "task.reorder", "t2", nil); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := s.AppendEvent("desk", "", "t2", nil); err == nil {
		t.Fatalf("expected missing type to fail")
	}

	evs, err := s.ReadEvents(0)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(evs) != 3 || evs[0].Type != "booking.add" || evs[0].ActorID != "local" {
		t.Fatalf("unexpected events: %+v", evs)
	}
	forT1, err := s.ReadEventsForEntity("t1", 0)
	if err != nil {
		t.Fatalf("read entity: %v", err)
	}
	if len(forT1) != 2 {
		t.Fatalf("expected 2 events for t1, got %d", len(forT1))
	}
	limited, _ := s.ReadEvents(1)
	if len(limited) != 1 {
		t.Fatalf("expected limit to apply, got %d", len(limited))
	}
}
