package domain

import "sync"

// WatchSet tracks order identifiers that were placed but not yet observed in
// a terminal state. The OMS inserts on placement and the fill poller removes
// on resolution, so all mutation is mutex-guarded.
type WatchSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewWatchSet creates an empty watch set.
func NewWatchSet() *WatchSet {
	return &WatchSet{ids: make(map[string]struct{})}
}

// Add inserts an identifier.
func (w *WatchSet) Add(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.ids[id] = struct{}{}
}

// Remove deletes an identifier; removing an absent ID is a no-op.
func (w *WatchSet) Remove(id string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.ids, id)
}

// Contains reports membership.
func (w *WatchSet) Contains(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.ids[id]
	return ok
}

// Len returns the current size.
func (w *WatchSet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.ids)
}

// Snapshot returns a copy of the current members, safe to iterate while the
// set keeps mutating.
func (w *WatchSet) Snapshot() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.ids))
	for id := range w.ids {
		out = append(out, id)
	}
	return out
}
