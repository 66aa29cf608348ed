package query

import "github.com/chiblo/poimap/internal/core/model"

// PopupState is the carousel over features sharing a popup: an explicit
// {features, index} pair passed into the presentation layer by reference,
// replacing the globally registered next/prev callbacks of the legacy site.
type PopupState struct {
	features []model.Feature
	index    int
}

// NewPopupState starts a carousel at the first feature. An empty slice is a
// valid, permanently empty carousel.
func NewPopupState(features []model.Feature) *PopupState {
	return &PopupState{features: features}
}

// Len returns the carousel size.
func (p *PopupState) Len() int {
	return len(p.features)
}

// Index returns the current position.
func (p *PopupState) Index() int {
	return p.index
}

// Current returns the selected feature; ok is false for an empty carousel.
func (p *PopupState) Current() (model.Feature, bool) {
	if len(p.features) == 0 {
		return model.Feature{}, false
	}
	return p.features[p.index], true
}

// Next advances with wrap-around and returns the new selection.
func (p *PopupState) Next() (model.Feature, bool) {
	if len(p.features) == 0 {
		return model.Feature{}, false
	}
	p.index = (p.index + 1) % len(p.features)
	return p.features[p.index], true
}

// Prev steps back with wrap-around and returns the new selection.
func (p *PopupState) Prev() (model.Feature, bool) {
	if len(p.features) == 0 {
		return model.Feature{}, false
	}
	p.index = (p.index - 1 + len(p.features)) % len(p.features)
	return p.features[p.index], true
}

// Select jumps to index i when it is in range.
func (p *PopupState) Select(i int) bool {
	if i < 0 || i >= len(p.features) {
		return false
	}
	p.index = i
	return true
}
