package geo

import (
	"testing"
	"time"

	"github.com/letmevibethatforyou/photomap"
)

// taggedItem builds a geotagged item whose display date is day (2006-01-02).
func taggedItem(t *testing.T, id, day string, lat, lon float64) photomap.ResultItem {
	t.Helper()
	created, err := time.Parse("2006-01-02", day)
	if err != nil {
		t.Fatalf("bad day %q: %v", day, err)
	}
	return photomap.ResultItem{
		ID:          id,
		CreatedDate: &created,
		Latitude:    &lat,
		Longitude:   &lon,
	}
}

func untaggedItem(id string) photomap.ResultItem {
	return photomap.ResultItem{ID: id}
}

func foldAll(s *Segmenter, items ...photomap.ResultItem) {
	for _, item := range items {
		s.Fold(item)
	}
}

func TestSegmenterDuplicateAndBoundary(t *testing.T) {
	// Two shots from the same spot, a move, then a single next-day point:
	// one committed route for day one, nothing for the lone trailing point.
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		taggedItem(t, "b", "2016-05-01", 1, 1),
		taggedItem(t, "c", "2016-05-01", 2, 2),
		taggedItem(t, "d", "2016-05-02", 3, 3),
	)
	s.Finalize()

	routes := s.Routes()
	if len(routes) != 1 {
		t.Fatalf("expected 1 route, got %d: %v", len(routes), s.Keys())
	}

	route, ok := routes["2016-05-01"]
	if !ok {
		t.Fatalf("missing route for 2016-05-01, keys: %v", s.Keys())
	}

	expected := []LatLng{{Lat: 1, Lon: 1}, {Lat: 2, Lon: 2}}
	if len(route.Points) != len(expected) {
		t.Fatalf("expected %d points, got %d", len(expected), len(route.Points))
	}
	for i, p := range expected {
		if route.Points[i] != p {
			t.Errorf("point %d: expected %+v, got %+v", i, p, route.Points[i])
		}
	}
}

func TestSegmenterLonePointDropped(t *testing.T) {
	s := NewSegmenter()
	s.Fold(taggedItem(t, "a", "2016-05-01", 1, 1))
	s.Finalize()

	if len(s.Routes()) != 0 {
		t.Errorf("a lone point must not form a route, got %v", s.Keys())
	}
}

func TestSegmenterRouteLengthInvariant(t *testing.T) {
	// Every day contributes one point except the third; only the third can
	// commit a route.
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		taggedItem(t, "b", "2016-05-02", 2, 2),
		taggedItem(t, "c", "2016-05-03", 3, 3),
		taggedItem(t, "d", "2016-05-03", 4, 4),
		taggedItem(t, "e", "2016-05-04", 5, 5),
	)
	s.Finalize()

	for key, route := range s.Routes() {
		if len(route.Points) < 2 {
			t.Errorf("route %q has %d points; committed routes must have at least 2", key, len(route.Points))
		}
	}
	if len(s.Routes()) != 1 {
		t.Errorf("expected only the two-point day to commit, got %v", s.Keys())
	}
}

func TestSegmenterDuplicateComparesPreviousItemOnly(t *testing.T) {
	// Returning to an earlier, non-adjacent coordinate is kept; only
	// back-to-back duplicates are skipped.
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		taggedItem(t, "b", "2016-05-01", 2, 2),
		taggedItem(t, "c", "2016-05-01", 1, 1),
	)
	s.Finalize()

	route, ok := s.Routes()["2016-05-01"]
	if !ok {
		t.Fatalf("missing route, keys: %v", s.Keys())
	}
	if len(route.Points) != 3 {
		t.Errorf("revisited coordinate should be kept, expected 3 points, got %d", len(route.Points))
	}
}

func TestSegmenterDuplicateAcrossDateBoundary(t *testing.T) {
	// A duplicate coordinate is skipped before the date change is acted on,
	// so it neither starts a new route nor updates the previous item.
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		taggedItem(t, "b", "2016-05-02", 1, 1),
	)
	s.Finalize()

	if len(s.Routes()) != 0 {
		t.Errorf("duplicate across the boundary must not commit anything, got %v", s.Keys())
	}
}

func TestSegmenterUntaggedItemsDoNotBreakSegment(t *testing.T) {
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		untaggedItem("skip-1"),
		untaggedItem("skip-2"),
		taggedItem(t, "b", "2016-05-01", 2, 2),
	)
	s.Finalize()

	route, ok := s.Routes()["2016-05-01"]
	if !ok {
		t.Fatalf("missing route, keys: %v", s.Keys())
	}
	if len(route.Points) != 2 {
		t.Errorf("expected 2 points, got %d", len(route.Points))
	}
}

func TestSegmenterStateCarriesAcrossPages(t *testing.T) {
	// Folding in two batches with no reset in between behaves exactly like
	// one batch; this is what lets the aggregator stream pages through.
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		taggedItem(t, "b", "2016-05-01", 2, 2),
	)
	foldAll(s,
		taggedItem(t, "c", "2016-05-01", 3, 3),
		taggedItem(t, "d", "2016-05-02", 4, 4),
		taggedItem(t, "e", "2016-05-02", 5, 5),
	)
	s.Finalize()

	if len(s.Routes()) != 2 {
		t.Fatalf("expected 2 routes, got %v", s.Keys())
	}
	if got := len(s.Routes()["2016-05-01"].Points); got != 3 {
		t.Errorf("first route: expected 3 points, got %d", got)
	}
	if got := len(s.Routes()["2016-05-02"].Points); got != 2 {
		t.Errorf("second route: expected 2 points, got %d", got)
	}
}

func TestSegmenterLastWriteWinsForRepeatedDates(t *testing.T) {
	// The stream is taken as given; when a date repeats later in the
	// stream, the later segment replaces the earlier route for that key.
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		taggedItem(t, "b", "2016-05-01", 2, 2),
		taggedItem(t, "c", "2016-05-02", 3, 3),
		taggedItem(t, "d", "2016-05-02", 4, 4),
		taggedItem(t, "e", "2016-05-01", 10, 10),
		taggedItem(t, "f", "2016-05-01", 11, 11),
	)
	s.Finalize()

	route, ok := s.Routes()["2016-05-01"]
	if !ok {
		t.Fatalf("missing route, keys: %v", s.Keys())
	}
	if route.Points[0] != (LatLng{Lat: 10, Lon: 10}) {
		t.Errorf("expected the later segment to win, got points %+v", route.Points)
	}
}

func TestSegmenterCommitKeyUsesSegmentsLastItem(t *testing.T) {
	// The committed key comes from the item folded last into the segment,
	// not from the item that triggered the commit.
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		taggedItem(t, "b", "2016-05-01", 2, 2),
		taggedItem(t, "c", "2016-06-15", 3, 3),
	)
	s.Finalize()

	if _, ok := s.Routes()["2016-05-01"]; !ok {
		t.Errorf("expected route keyed by the segment's own date, keys: %v", s.Keys())
	}
	if _, ok := s.Routes()["2016-06-15"]; ok {
		t.Errorf("the triggering item's date must not key the committed route")
	}
}

func TestSegmenterFinalizeTwiceIsHarmless(t *testing.T) {
	s := NewSegmenter()
	foldAll(s,
		taggedItem(t, "a", "2016-05-01", 1, 1),
		taggedItem(t, "b", "2016-05-01", 2, 2),
	)
	s.Finalize()
	s.Finalize()

	route := s.Routes()["2016-05-01"]
	if len(route.Points) != 2 {
		t.Errorf("expected 2 points, got %d", len(route.Points))
	}
}

func TestSegmenterCustomDateKey(t *testing.T) {
	s := NewSegmenter(WithDateKey(func(item photomap.ResultItem) string {
		trip, _ := item.Fields["trip"].(string)
		return trip
	}))

	tripItem := func(id, trip string, lat, lon float64) photomap.ResultItem {
		return photomap.ResultItem{
			ID:        id,
			Latitude:  &lat,
			Longitude: &lon,
			Fields:    map[string]interface{}{"trip": trip},
		}
	}

	foldAll(s,
		tripItem("a", "coast", 1, 1),
		tripItem("b", "coast", 2, 2),
		tripItem("c", "mountains", 3, 3),
		tripItem("d", "mountains", 4, 4),
	)
	s.Finalize()

	keys := s.Keys()
	if len(keys) != 2 || keys[0] != "coast" || keys[1] != "mountains" {
		t.Errorf("expected sorted keys [coast mountains], got %v", keys)
	}
}
