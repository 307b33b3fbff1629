package dnd

import (
	"go.uber.org/zap"
)

// Document is the surface a watcher scans for qualifying elements.
type Document interface {
	Query(class string) []Element
}

// Mutation describes a structural change of the document.
type Mutation struct {
	Added   []Element
	Removed []Element
}

// Capability is an external provider that may load after the page is ready.
type Capability interface {
	Available() bool
	// OnLoad calls fn once the capability becomes available.
	OnLoad(fn func())
}

// Installer attaches behavior to one element.
type Installer func(Element) error

// Watcher instruments every element carrying class exactly once, including
// elements that appear after the initial scan.
type Watcher struct {
	doc     Document
	class   string
	install Installer
	gate    Capability
	log     *zap.Logger

	// installed is the registry of instrumented element ids.
	installed map[string]struct{}
	ready     bool
	waiting   bool
}

// NewWatcher returns a watcher that stays dormant until Ready. gate may be nil.
func NewWatcher(doc Document, class string, install Installer, gate Capability, opts ...Option) *Watcher {
	o := buildOptions(opts)
	return &Watcher{
		doc:       doc,
		class:     class,
		install:   install,
		gate:      gate,
		log:       o.log.With(zap.String("class", class)),
		installed: map[string]struct{}{},
	}
}

// Ready runs the initial scan and starts reacting to mutations.
func (w *Watcher) Ready() int {
	w.ready = true
	return w.scan()
}

// Mutated re-scans when the mutation added anything. It returns the number of
// newly instrumented elements.
func (w *Watcher) Mutated(m Mutation) int {
	if !w.ready || len(m.Added) == 0 {
		return 0
	}
	return w.scan()
}

func (w *Watcher) Installed(id string) bool {
	_, ok := w.installed[id]
	return ok
}

func (w *Watcher) InstalledCount() int { return len(w.installed) }

func (w *Watcher) scan() int {
	if w.doc == nil || w.install == nil {
		return 0
	}
	if w.gate != nil && !w.gate.Available() {
		if !w.waiting {
			w.waiting = true
			w.log.Debug("capability unavailable; deferring instrumentation")
			w.gate.OnLoad(w.capabilityLoaded)
		}
		return 0
	}

	n := 0
	for _, el := range w.doc.Query(w.class) {
		if el.ID == "" || !el.HasClass(w.class) {
			continue
		}
		if _, ok := w.installed[el.ID]; ok {
			continue
		}
		if err := w.install(el); err != nil {
			w.log.Warn("instrumentation failed", zap.String("element", el.ID), zap.Error(err))
			continue
		}
		w.installed[el.ID] = struct{}{}
		n++
	}
	return n
}

func (w *Watcher) capabilityLoaded() {
	w.waiting = false
	w.gate = nil
	w.scan()
}
