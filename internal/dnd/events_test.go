package dnd

import (
	"reflect"
	"testing"
)

func TestBus_BubblesThroughAncestors(t *testing.T) {
	bus := NewBus()
	var seen []string
	for _, host := range []string{"app", "app/schedule", "app/schedule/gantt", "app/board"} {
		host := host
		bus.Listen(host, "", func(ev Event) { seen = append(seen, host+"<-"+ev.Host) })
	}

	bus.Dispatch(Event{Type: EventGanttDrop, Host: "app/schedule/gantt", Bubbles: true})
	want := []string{
		"app/schedule/gantt<-app/schedule/gantt",
		"app/schedule<-app/schedule/gantt",
		"app<-app/schedule/gantt",
	}
	if !reflect.DeepEqual(seen, want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}

	seen = nil
	bus.Dispatch(Event{Type: EventGanttDrop, Host: "app/schedule/gantt"})
	if len(seen) != 1 {
		t.Fatalf("expected non-bubbling event to stay on its host, got %v", seen)
	}
}

func TestBus_DisambiguatesHostsAndTypes(t *testing.T) {
	bus := NewBus()
	var left, right, reorders int
	bus.Listen("app/left", EventGanttDrop, func(Event) { left++ })
	bus.Listen("app/right", EventGanttDrop, func(Event) { right++ })
	cancel := bus.Listen("app", EventListReorder, func(Event) { reorders++ })

	bus.Dispatch(Event{Type: EventGanttDrop, Host: "app/right", Bubbles: true})
	if left != 0 || right != 1 || reorders != 0 {
		t.Fatalf("unexpected deliveries left=%d right=%d reorders=%d", left, right, reorders)
	}

	cancel()
	bus.Dispatch(Event{Type: EventListReorder, Host: "app/board", Bubbles: true})
	if reorders != 0 {
		t.Fatalf("expected cancelled listener to not run")
	}
}
