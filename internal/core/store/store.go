// Package store owns the in-memory feature collection that grows while a
// stream is decoding. It replaces the original site's module-level arrays
// with an object that has an explicit lifecycle: a FeatureStore is created
// empty, appended to by exactly one load session, and replaced wholesale
// through a Holder when a fresh load begins.
package store

import (
	"sync"

	"github.com/chiblo/poimap/internal/core/model"
)

// FeatureStore is an append-only ordered sequence of features. Appends are
// O(1) amortized; snapshots stay valid while further appends occur because
// an append never mutates an index below a snapshot's length.
type FeatureStore struct {
	mu       sync.RWMutex
	features []model.Feature
	frozen   bool
}

// New returns an empty store.
func New() *FeatureStore {
	return &FeatureStore{}
}

// Append adds one feature. Appends after Freeze are dropped; a stale decode
// continuation must never grow a store that a newer session replaced.
func (s *FeatureStore) Append(f model.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.frozen {
		return
	}
	s.features = append(s.features, f)
}

// Snapshot returns a read-only view of the features appended so far. The
// returned slice is capacity-bounded to its own length, so a concurrent
// append reallocates instead of writing into the snapshot's backing array.
func (s *FeatureStore) Snapshot() []model.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.features)
	return s.features[:n:n]
}

// Len reports the number of features appended so far.
func (s *FeatureStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.features)
}

// Freeze makes the store read-only. Called when its stream completes, fails,
// or is abandoned in favor of a new load.
func (s *FeatureStore) Freeze() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frozen = true
}

// Frozen reports whether the store still accepts appends.
func (s *FeatureStore) Frozen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frozen
}

// Holder publishes the current store to consumers (filter engine, render
// sync, API). Swapping in a replacement is atomic: a reader sees either the
// old store or the new one, never a mix.
type Holder struct {
	mu      sync.RWMutex
	current *FeatureStore
}

// NewHolder starts with an empty store so consumers never see nil.
func NewHolder() *Holder {
	return &Holder{current: New()}
}

// Current returns the live store.
func (h *Holder) Current() *FeatureStore {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Swap freezes the outgoing store and publishes next. The old store is
// returned so a caller can log its final size.
func (h *Holder) Swap(next *FeatureStore) *FeatureStore {
	h.mu.Lock()
	defer h.mu.Unlock()
	old := h.current
	old.Freeze()
	h.current = next
	return old
}
