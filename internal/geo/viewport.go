package geo

// DefaultBoxPx is the half-size of the viewport query box around the
// projected map center.
const DefaultBoxPx = 30

// ViewportQuery is the transient query box derived each time the map stops
// moving: a fixed pixel box centered on the projected map-center point. It
// is recomputed from current map state on demand and never persisted.
type ViewportQuery struct {
	CenterLon float64
	CenterLat float64
	Zoom      float64
	// BoxPx is the half-width/half-height of the box in screen pixels.
	BoxPx float64

	center Point
}

// NewViewportQuery builds a query for the given map center. boxPx <= 0
// selects DefaultBoxPx.
func NewViewportQuery(centerLon, centerLat, zoom, boxPx float64) ViewportQuery {
	if boxPx <= 0 {
		boxPx = DefaultBoxPx
	}
	return ViewportQuery{
		CenterLon: centerLon,
		CenterLat: centerLat,
		Zoom:      zoom,
		BoxPx:     boxPx,
		center:    Project(centerLon, centerLat, zoom),
	}
}

// Contains reports whether the given geographic point projects inside the
// pixel box.
func (v ViewportQuery) Contains(lon, lat float64) bool {
	p := Project(lon, lat, v.Zoom)
	dx := p.X - v.center.X
	dy := p.Y - v.center.Y
	return dx >= -v.BoxPx && dx <= v.BoxPx && dy >= -v.BoxPx && dy <= v.BoxPx
}
