// Package geo implements the map view's aggregation primitives: a running
// bounds tracker and a route segmenter over a chronologically ordered stream
// of geotagged items.
package geo

import (
	"math"

	"github.com/letmevibethatforyou/photomap"
)

// LatLng is a latitude/longitude pair in decimal degrees.
type LatLng struct {
	Lat float64
	Lon float64
}

const earthRadiusKm = 6371.0

// Distance returns the great-circle distance in kilometers between two
// coordinates, using the Haversine formula.
func Distance(a, b LatLng) float64 {
	lat1Rad := a.Lat * math.Pi / 180
	lat2Rad := b.Lat * math.Pi / 180
	deltaLat := (b.Lat - a.Lat) * math.Pi / 180
	deltaLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(deltaLat/2)*math.Sin(deltaLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(deltaLon/2)*math.Sin(deltaLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// Bounds is the minimal enclosing rectangle over every point folded into it.
// A fresh Bounds from NewBounds is inverted (south-west above and east of
// north-east) so the first folded point tightens all four edges; it only
// widens from there, never shrinks or re-centers.
type Bounds struct {
	SouthWest LatLng
	NorthEast LatLng
}

// NewBounds returns the inverted starting rectangle.
func NewBounds() Bounds {
	return Bounds{
		SouthWest: LatLng{Lat: 90, Lon: 180},
		NorthEast: LatLng{Lat: -90, Lon: -180},
	}
}

// Extend widens the rectangle so it encloses the given point. Folding the
// same point twice leaves the bounds unchanged.
func (b *Bounds) Extend(p LatLng) {
	if p.Lat < b.SouthWest.Lat {
		b.SouthWest.Lat = p.Lat
	}
	if p.Lon < b.SouthWest.Lon {
		b.SouthWest.Lon = p.Lon
	}
	if p.Lat > b.NorthEast.Lat {
		b.NorthEast.Lat = p.Lat
	}
	if p.Lon > b.NorthEast.Lon {
		b.NorthEast.Lon = p.Lon
	}
}

// FoldItem extends the bounds with the item's coordinate. Items without a
// location are a no-op.
func (b *Bounds) FoldItem(item photomap.ResultItem) {
	if !item.HasLocation() {
		return
	}
	b.Extend(LatLng{Lat: *item.Latitude, Lon: *item.Longitude})
}

// Empty reports whether no point has been folded yet.
func (b Bounds) Empty() bool {
	return b.SouthWest.Lat > b.NorthEast.Lat
}

// Contains reports whether the point lies within the rectangle.
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.SouthWest.Lat && p.Lat <= b.NorthEast.Lat &&
		p.Lon >= b.SouthWest.Lon && p.Lon <= b.NorthEast.Lon
}
