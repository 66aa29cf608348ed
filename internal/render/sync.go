package render

import (
	"sync"

	"github.com/chiblo/poimap/internal/core/model"
	"github.com/chiblo/poimap/internal/core/store"
	"github.com/chiblo/poimap/internal/filter"
	"github.com/chiblo/poimap/internal/util"
)

// Syncer pushes store snapshots identically to every registered layer. At
// most one flush runs at a time; a request arriving mid-flush is coalesced
// into a single trailing flush instead of queueing. Flushes are idempotent:
// if neither the store nor its length changed since the last push, layers
// are not touched.
type Syncer struct {
	holder *store.Holder
	layers []Layer

	mu       sync.Mutex
	flushing bool
	pending  bool

	lastStore *store.FeatureStore
	lastLen   int
	flushes   int
}

// NewSyncer builds a syncer over the published store.
func NewSyncer(holder *store.Holder, layers ...Layer) *Syncer {
	return &Syncer{holder: holder, layers: layers}
}

// RequestFlush pushes the current snapshot to all layers. When a flush is
// already in progress the request collapses into one trailing flush that
// runs after the active one finishes.
func (s *Syncer) RequestFlush() {
	s.mu.Lock()
	if s.flushing {
		s.pending = true
		s.mu.Unlock()
		return
	}
	s.flushing = true
	s.mu.Unlock()

	for {
		s.flushOnce()

		s.mu.Lock()
		if !s.pending {
			s.flushing = false
			s.mu.Unlock()
			return
		}
		s.pending = false
		s.mu.Unlock()
	}
}

// ApplyFilter installs a layer-filter expression on every layer. Nil clears
// the filters.
func (s *Syncer) ApplyFilter(expr filter.Expression) {
	for _, layer := range s.layers {
		layer.SetFilter(expr)
	}
}

// Flushes counts how many flushes actually reached the layers.
func (s *Syncer) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

func (s *Syncer) flushOnce() {
	current := s.holder.Current()
	snapshot := current.Snapshot()

	s.mu.Lock()
	if current == s.lastStore && len(snapshot) == s.lastLen {
		// Same snapshot already on the layers.
		s.mu.Unlock()
		return
	}
	s.lastStore = current
	s.lastLen = len(snapshot)
	s.flushes++
	s.mu.Unlock()

	for _, layer := range s.layers {
		layer.SetData(snapshot)
	}
	util.LogDebugf("render: flushed %d features to %d layers", len(snapshot), len(s.layers))
}

// Collection wraps the currently published snapshot for consumers that want
// the GeoJSON-shaped view (API responses, debugging dumps).
func (s *Syncer) Collection() model.Collection {
	return model.NewCollection(s.holder.Current().Snapshot())
}
