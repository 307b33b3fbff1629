package dnd

import (
	"errors"
	"testing"
)

type fakeDoc struct {
	els []Element
}

func (d *fakeDoc) Query(class string) []Element {
	var out []Element
	for _, el := range d.els {
		if el.HasClass(class) {
			out = append(out, el)
		}
	}
	return out
}

func listElement(id string) Element {
	return Element{ID: id, Classes: []string{ClassList}, Attrs: map[string]string{AttrListID: id}}
}

type fakeSortable struct {
	attached map[string][]func(SortEnd)
}

func (f *fakeSortable) Attach(container Element, group string, onEnd func(SortEnd)) error {
	if f.attached == nil {
		f.attached = map[string][]func(SortEnd){}
	}
	f.attached[container.ID] = append(f.attached[container.ID], onEnd)
	return nil
}

func (f *fakeSortable) drop(containerID string, e SortEnd) {
	for _, fn := range f.attached[containerID] {
		fn(e)
	}
}

type fakeCapability struct {
	available bool
	waiters   []func()
}

func (c *fakeCapability) Available() bool   { return c.available }
func (c *fakeCapability) OnLoad(fn func()) { c.waiters = append(c.waiters, fn) }

func (c *fakeCapability) load() {
	c.available = true
	for _, fn := range c.waiters {
		fn()
	}
	c.waiters = nil
}

func TestWatcher_RescanIsNoopForInstrumentedElements(t *testing.T) {
	doc := &fakeDoc{els: []Element{listElement("L1"), listElement("L2")}}
	sortable := &fakeSortable{}
	rec := &recorder{}
	lc := NewListCoordinator("app/board", "workers", sortable, rec)
	w := NewWatcher(doc, ClassList, lc.Install, nil)

	if n := w.Ready(); n != 2 {
		t.Fatalf("expected 2 installs on ready, got %d", n)
	}
	if n := w.Ready(); n != 0 {
		t.Fatalf("expected re-scan to install nothing, got %d", n)
	}
	if n := w.Mutated(Mutation{Added: []Element{{ID: "unrelated"}}}); n != 0 {
		t.Fatalf("expected mutation re-scan to install nothing, got %d", n)
	}
	if got := len(sortable.attached["L1"]); got != 1 {
		t.Fatalf("expected one attachment on L1, got %d", got)
	}

	sortable.drop("L1", SortEnd{
		Item:     Element{Attrs: map[string]string{AttrItemID: "I1"}},
		From:     listElement("L1"),
		To:       listElement("L1"),
		NewIndex: 0,
	})
	if len(rec.events) != 1 {
		t.Fatalf("expected exactly one event per gesture, got %d", len(rec.events))
	}
}

func TestWatcher_InstrumentsDynamicallyInsertedElements(t *testing.T) {
	doc := &fakeDoc{els: []Element{listElement("L1")}}
	var installed []string
	w := NewWatcher(doc, ClassList, func(el Element) error {
		installed = append(installed, el.ID)
		return nil
	}, nil)
	w.Ready()

	added := listElement("L9")
	doc.els = append(doc.els, added)
	if n := w.Mutated(Mutation{Added: []Element{added}}); n != 1 {
		t.Fatalf("expected the inserted element to be instrumented, got %d", n)
	}
	if !w.Installed("L9") || len(installed) != 2 {
		t.Fatalf("expected L1 and L9 installed once each, got %v", installed)
	}
}

func TestWatcher_IgnoresMutationsBeforeReady(t *testing.T) {
	doc := &fakeDoc{els: []Element{listElement("L1")}}
	calls := 0
	w := NewWatcher(doc, ClassList, func(Element) error { calls++; return nil }, nil)
	w.Mutated(Mutation{Added: []Element{listElement("L1")}})
	if calls != 0 {
		t.Fatalf("expected no instrumentation before ready")
	}
}

func TestWatcher_DefersUntilCapabilityLoads(t *testing.T) {
	doc := &fakeDoc{els: []Element{listElement("L1")}}
	gate := &fakeCapability{}
	calls := 0
	w := NewWatcher(doc, ClassList, func(Element) error { calls++; return nil }, gate)

	w.Ready()
	w.Mutated(Mutation{Added: []Element{listElement("L1")}})
	if calls != 0 {
		t.Fatalf("expected instrumentation to wait for the capability")
	}
	if len(gate.waiters) != 1 {
		t.Fatalf("expected a single deferred load hook, got %d", len(gate.waiters))
	}

	gate.load()
	if calls != 1 || !w.Installed("L1") {
		t.Fatalf("expected instrumentation after load, calls=%d", calls)
	}
}

func TestWatcher_RetriesFailedInstallOnNextScan(t *testing.T) {
	doc := &fakeDoc{els: []Element{listElement("L1"), {Classes: []string{ClassList}}}}
	fail := true
	w := NewWatcher(doc, ClassList, func(Element) error {
		if fail {
			return errors.New("provider not attached")
		}
		return nil
	}, nil)
	if n := w.Ready(); n != 0 {
		t.Fatalf("expected failed install to not be registered")
	}
	fail = false
	if n := w.Mutated(Mutation{Added: []Element{listElement("L1")}}); n != 1 {
		t.Fatalf("expected retry on next scan, got %d", n)
	}
	if w.InstalledCount() != 1 {
		t.Fatalf("expected id-less element to be skipped")
	}
}
