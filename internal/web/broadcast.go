package web

import (
	"sync"
	"time"

	"roster-cli/internal/store"
)

// scheduleHub fans change notifications out to open SSE streams.
type scheduleHub struct {
	mu   sync.Mutex
	subs map[chan struct{}]struct{}
}

func newScheduleHub() *scheduleHub {
	return &scheduleHub{subs: map[chan struct{}]struct{}{}}
}

func (h *scheduleHub) subscribe() (ch chan struct{}, cancel func()) {
	ch = make(chan struct{}, 8)
	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()
	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
		close(ch)
	}
}

func (h *scheduleHub) broadcast() {
	h.mu.Lock()
	for ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	h.mu.Unlock()
}

func (h *scheduleHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// storeWatcher notices writes made by other processes (the CLI, a TUI) and
// broadcasts them.
type storeWatcher struct {
	st       store.Store
	hub      *scheduleHub
	interval time.Duration

	mu   sync.Mutex
	last int64

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newStoreWatcher(st store.Store, hub *scheduleHub, interval time.Duration) *storeWatcher {
	return &storeWatcher{st: st, hub: hub, interval: interval, last: st.ModTime(), stopCh: make(chan struct{})}
}

func (w *storeWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

// note records a modification this process made itself.
func (w *storeWatcher) note() {
	w.mu.Lock()
	w.last = w.st.ModTime()
	w.mu.Unlock()
}

func (w *storeWatcher) poll() bool {
	mt := w.st.ModTime()
	w.mu.Lock()
	changed := mt != w.last
	w.last = mt
	w.mu.Unlock()
	if changed {
		w.hub.broadcast()
	}
	return changed
}

func (w *storeWatcher) loop() {
	t := time.NewTicker(w.interval)
	defer t.Stop()
	for {
		select {
		case <-w.stopCh:
			return
		case <-t.C:
			w.poll()
		}
	}
}
