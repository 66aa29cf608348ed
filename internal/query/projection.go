// Package query derives the side-panel projections from the filter engine's
// viewport subset: a display-capped list plus the true result count, and the
// popup carousel state for stepping through nearby features.
package query

import "github.com/chiblo/poimap/internal/core/model"

// DefaultCap is the default number of list rows actually rendered.
const DefaultCap = 50

// ListResult is what the side panel renders: a bounded prefix of the
// viewport subset and the true subset size. The cap never leaks into Total
// and never affects the match sets used for layer filtering.
type ListResult struct {
	Items []model.Feature
	// Total is the true viewport subset size, which may exceed len(Items).
	Total int
	// Truncated is set when Items is a strict prefix.
	Truncated bool
}

// ListProjection caps viewport subsets for display.
type ListProjection struct {
	cap int
}

// NewListProjection builds a projection; cap <= 0 selects DefaultCap.
func NewListProjection(cap int) *ListProjection {
	if cap <= 0 {
		cap = DefaultCap
	}
	return &ListProjection{cap: cap}
}

// Cap returns the display cap.
func (p *ListProjection) Cap() int {
	return p.cap
}

// Build projects the viewport subset into a display-bounded list.
func (p *ListProjection) Build(subset []model.Feature) ListResult {
	result := ListResult{Total: len(subset)}
	if len(subset) > p.cap {
		result.Items = append(result.Items, subset[:p.cap]...)
		result.Truncated = true
		return result
	}
	result.Items = append(result.Items, subset...)
	return result
}
