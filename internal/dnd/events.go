package dnd

import (
	"strings"
	"sync"
)

// Event types emitted by the coordinators.
const (
	EventGanttDrop   = "gantt-dnd-drop"
	EventListReorder = "dnd-reorder"
)

// DropDetail is the payload of a gantt-dnd-drop event.
type DropDetail struct {
	TaskID         string `json:"taskId"`
	DropWorkerName string `json:"dropWorkerName"`
	DropXISO       string `json:"dropXISO"`
}

// ReorderDetail is the payload of a dnd-reorder event.
type ReorderDetail struct {
	ItemID   string `json:"itemId"`
	FromID   string `json:"fromId"`
	ToID     string `json:"toId"`
	NewIndex int    `json:"newIndex"`
}

// Event is a normalized notification dispatched on a host.
type Event struct {
	Type    string
	Host    string
	Bubbles bool
	Detail  any

	// CurrentHost is the host whose listeners are running. It differs from Host
	// while the event bubbles through ancestors.
	CurrentHost string
}

// Dispatcher receives events from the coordinators.
type Dispatcher interface {
	Dispatch(ev Event)
}

// DispatcherFunc adapts a function to Dispatcher.
type DispatcherFunc func(Event)

func (f DispatcherFunc) Dispatch(ev Event) { f(ev) }

// Listener handles a dispatched event.
type Listener func(Event)

type listenerEntry struct {
	id  int
	typ string
	fn  Listener
}

// Bus delivers events to listeners on their host. Hosts are slash separated
// paths; a bubbling event dispatched on "app/schedule/gantt" also reaches
// listeners on "app/schedule" and then "app".
type Bus struct {
	mu        sync.Mutex
	nextID    int
	listeners map[string][]listenerEntry
}

func NewBus() *Bus {
	return &Bus{listeners: map[string][]listenerEntry{}}
}

// Listen registers fn for events of type typ reaching host. An empty typ
// matches every type. The returned func removes the listener.
func (b *Bus) Listen(host, typ string, fn Listener) func() {
	host = normalizeHost(host)
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[host] = append(b.listeners[host], listenerEntry{id: id, typ: typ, fn: fn})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		entries := b.listeners[host]
		for i := range entries {
			if entries[i].id == id {
				b.listeners[host] = append(entries[:i:i], entries[i+1:]...)
				return
			}
		}
	}
}

// Dispatch delivers ev to its host and, when it bubbles, to each ancestor.
func (b *Bus) Dispatch(ev Event) {
	ev.Host = normalizeHost(ev.Host)
	for _, host := range hostChain(ev.Host, ev.Bubbles) {
		b.mu.Lock()
		entries := append([]listenerEntry(nil), b.listeners[host]...)
		b.mu.Unlock()

		ev.CurrentHost = host
		for _, e := range entries {
			if e.typ == "" || e.typ == ev.Type {
				e.fn(ev)
			}
		}
	}
}

func hostChain(host string, bubbles bool) []string {
	if host == "" {
		return nil
	}
	chain := []string{host}
	if !bubbles {
		return chain
	}
	for {
		i := strings.LastIndex(host, "/")
		if i <= 0 {
			return chain
		}
		host = host[:i]
		chain = append(chain, host)
	}
}

func normalizeHost(host string) string {
	return strings.Trim(strings.TrimSpace(host), "/")
}
