package geo

import (
	"sort"

	"github.com/letmevibethatforyou/photomap"
)

// Route is one contiguous travel segment: a run of geotagged items sharing a
// display date, rendered as a connected line. Committed routes always have at
// least two points.
type Route struct {
	// Key is the display date the segment is grouped under.
	Key string
	// Points holds the segment's coordinates in item order.
	Points []LatLng
}

// DateKeyFunc derives the grouping key for an item. The default uses the
// item's calendar date; tests inject their own for determinism.
type DateKeyFunc func(photomap.ResultItem) string

// SegmenterOption configures a Segmenter.
type SegmenterOption interface {
	Apply(*Segmenter)
}

// segmenterOptionFunc is a function that implements SegmenterOption.
type segmenterOptionFunc func(*Segmenter)

// Apply implements the SegmenterOption interface for segmenterOptionFunc.
func (f segmenterOptionFunc) Apply(s *Segmenter) {
	f(s)
}

// WithDateKey overrides how the grouping key is derived from an item.
func WithDateKey(fn DateKeyFunc) SegmenterOption {
	return segmenterOptionFunc(func(s *Segmenter) {
		if fn != nil {
			s.dateKey = fn
		}
	})
}

// Segmenter partitions a chronologically ordered stream of geotagged items
// into disjoint routes, one per run of items sharing a display date. It
// relies on receiving items in the exact order the server returned them; the
// session aggregator guarantees that by never interleaving pages.
type Segmenter struct {
	dateKey DateKeyFunc
	routes  map[string]Route
	active  []LatLng
	last    *photomap.ResultItem
}

// NewSegmenter creates a segmenter with no routes and no active segment.
func NewSegmenter(opts ...SegmenterOption) *Segmenter {
	s := &Segmenter{
		dateKey: photomap.ResultItem.DisplayDate,
		routes:  make(map[string]Route),
	}
	for _, opt := range opts {
		opt.Apply(s)
	}
	return s
}

// Fold processes one item in server order. Items without a location are
// skipped entirely; they neither extend nor break the active segment.
func (s *Segmenter) Fold(item photomap.ResultItem) {
	if !item.HasLocation() {
		return
	}

	newRoute := s.last == nil
	if s.last != nil {
		newRoute = s.dateKey(item) != s.dateKey(*s.last)
		// Consecutive photos taken from the same spot add nothing to a
		// route. Only the immediately previous item is compared; an item
		// returning to an earlier, non-adjacent coordinate is kept.
		if *s.last.Latitude == *item.Latitude && *s.last.Longitude == *item.Longitude {
			return
		}
	}

	if newRoute {
		s.commit(&item)
	}

	s.active = append(s.active, LatLng{Lat: *item.Latitude, Lon: *item.Longitude})
	last := item
	s.last = &last
}

// Finalize commits the trailing in-progress segment. The session aggregator
// calls it once, after the final page has been folded; without it the last
// segment of a session would be lost.
func (s *Segmenter) Finalize() {
	s.commit(s.last)
}

// commit materializes the active segment into the route collection, keyed by
// the display date of the segment's last item (falling back to the item that
// triggered the commit). A lone point cannot form a polyline, so segments
// with fewer than two points are dropped. A later segment sharing a key
// overwrites the earlier one.
func (s *Segmenter) commit(item *photomap.ResultItem) {
	if len(s.active) > 1 {
		var key string
		if item != nil {
			key = s.dateKey(*item)
		}
		if s.last != nil {
			key = s.dateKey(*s.last)
		}
		s.routes[key] = Route{Key: key, Points: s.active}
	}

	s.active = nil
}

// Routes returns the committed routes keyed by display date. The map is
// owned by the segmenter's session; treat it as read-only.
func (s *Segmenter) Routes() map[string]Route {
	return s.routes
}

// Keys returns the committed route keys in sorted order.
func (s *Segmenter) Keys() []string {
	keys := make([]string, 0, len(s.routes))
	for key := range s.routes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
