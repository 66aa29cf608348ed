// Package geo carries the small amount of map math the filter engine needs:
// the Web Mercator projection used by the rendering engine, and the pixel
// box that defines the list panel's viewport query.
package geo

import "math"

const tileSize = 256

// Point is a projected position in world pixel coordinates at a given zoom.
type Point struct {
	X float64
	Y float64
}

// Project maps lon/lat (degrees, WGS84) to Web Mercator world pixels at the
// given zoom level. Latitudes are clamped to the Mercator limit so poles do
// not produce infinities.
func Project(lon, lat float64, zoom float64) Point {
	scale := tileSize * math.Exp2(zoom)

	lat = math.Max(-85.05112878, math.Min(85.05112878, lat))
	sinLat := math.Sin(lat * math.Pi / 180)

	x := (lon + 180) / 360 * scale
	y := (0.5 - math.Log((1+sinLat)/(1-sinLat))/(4*math.Pi)) * scale
	return Point{X: x, Y: y}
}
