// Package render keeps the derived rendering layers synchronized with the
// feature store. The four layers (hit-test, point, heat, label) share one
// logical dataset and differ only in paint, which belongs to the external
// rendering engine; here a layer is just the boundary interface the engine
// implements.
package render

import (
	"sync"

	"github.com/chiblo/poimap/internal/core/model"
	"github.com/chiblo/poimap/internal/filter"
)

// Layer is one derived rendering layer. Implementations must make SetData
// and SetFilter idempotent: re-pushing identical input produces no visible
// change.
type Layer interface {
	Name() string
	SetData(features []model.Feature)
	SetFilter(expr filter.Expression)
}

// Standard layer names of the map style.
const (
	LayerHit   = "poi-hit"
	LayerPoint = "poi-point"
	LayerHeat  = "poi-heat"
	LayerLabel = "poi-label"
)

// MemoryLayer is the in-process layer used by the CLI, the API surface and
// tests. It records the last snapshot and filter expression pushed to it.
type MemoryLayer struct {
	name string

	mu       sync.RWMutex
	features []model.Feature
	expr     filter.Expression
	dataPush int
}

// NewMemoryLayer creates a named in-process layer.
func NewMemoryLayer(name string) *MemoryLayer {
	return &MemoryLayer{name: name}
}

// DefaultLayers returns the four standard layers.
func DefaultLayers() []*MemoryLayer {
	return []*MemoryLayer{
		NewMemoryLayer(LayerHit),
		NewMemoryLayer(LayerPoint),
		NewMemoryLayer(LayerHeat),
		NewMemoryLayer(LayerLabel),
	}
}

// Name returns the layer name.
func (l *MemoryLayer) Name() string {
	return l.name
}

// SetData replaces the layer's dataset.
func (l *MemoryLayer) SetData(features []model.Feature) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.features = features
	l.dataPush++
}

// SetFilter installs the layer-filter expression. Nil clears the filter.
func (l *MemoryLayer) SetFilter(expr filter.Expression) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.expr = expr
}

// Features returns the last pushed snapshot.
func (l *MemoryLayer) Features() []model.Feature {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.features
}

// Filter returns the last pushed expression.
func (l *MemoryLayer) Filter() filter.Expression {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.expr
}

// DataPushes counts SetData calls, for flush accounting in tests.
func (l *MemoryLayer) DataPushes() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.dataPush
}
