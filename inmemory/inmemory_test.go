package inmemory

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/letmevibethatforyou/photomap"
)

func item(id string, created time.Time, lat, lon float64, fields map[string]interface{}) photomap.ResultItem {
	return photomap.ResultItem{
		ID:          id,
		CreatedDate: &created,
		Latitude:    &lat,
		Longitude:   &lon,
		Fields:      fields,
	}
}

func day(month, dayOfMonth int) time.Time {
	return time.Date(2016, time.Month(month), dayOfMonth, 12, 0, 0, 0, time.UTC)
}

func TestTextSearchMatching(t *testing.T) {
	fetcher := New()
	fetcher.Add(
		item("sunset-1", day(5, 1), 1, 1, map[string]interface{}{"locationDisplayName": "Alki Beach"}),
		item("hike-2", day(5, 2), 2, 2, map[string]interface{}{"locationDisplayName": "Rattlesnake Ledge"}),
		item("sunset-3", day(5, 3), 3, 3, map[string]interface{}{"keywords": "beach"}),
	)

	tests := map[string]struct {
		query       string
		expectedIDs []string
	}{
		"empty_query_matches_all": {query: "", expectedIDs: []string{"sunset-1", "hike-2", "sunset-3"}},
		"matches_id":              {query: "SUNSET", expectedIDs: []string{"sunset-1", "sunset-3"}},
		"matches_field_value":     {query: "beach", expectedIDs: []string{"sunset-1", "sunset-3"}},
		"no_match":                {query: "snow", expectedIDs: nil},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			page, err := fetcher.FetchPage(context.Background(), photomap.NewTextSearch(tc.query))
			if err != nil {
				t.Fatalf("FetchPage failed: %v", err)
			}

			if page.TotalMatches != len(tc.expectedIDs) {
				t.Errorf("expected %d matches, got %d", len(tc.expectedIDs), page.TotalMatches)
			}
			for i, id := range tc.expectedIDs {
				if page.Items[i].ID != id {
					t.Errorf("item %d: expected %q, got %q", i, id, page.Items[i].ID)
				}
			}
		})
	}
}

func TestPaging(t *testing.T) {
	fetcher := New()
	for i := 0; i < 45; i++ {
		fetcher.Add(item("item", day(5, 1).Add(time.Duration(i)*time.Minute), 1, 1, nil))
	}

	req := photomap.NewTextSearch("", photomap.WithPageSize(20))

	tests := map[string]struct {
		first         int
		expectedCount int
	}{
		"first_page":   {first: 1, expectedCount: 20},
		"second_page":  {first: 21, expectedCount: 20},
		"partial_last": {first: 41, expectedCount: 5},
		"past_the_end": {first: 61, expectedCount: 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			paged := req.Clone()
			paged.First = tc.first

			page, err := fetcher.FetchPage(context.Background(), paged)
			if err != nil {
				t.Fatalf("FetchPage failed: %v", err)
			}
			if page.TotalMatches != 45 {
				t.Errorf("expected total 45, got %d", page.TotalMatches)
			}
			if page.ResultCount != tc.expectedCount {
				t.Errorf("expected %d results, got %d", tc.expectedCount, page.ResultCount)
			}
		})
	}
}

func TestByDayFilterIgnoresYear(t *testing.T) {
	fetcher := New()
	fetcher.Add(
		item("b-2019", time.Date(2019, time.May, 1, 8, 0, 0, 0, time.UTC), 1, 1, nil),
		item("a-2016", time.Date(2016, time.May, 1, 8, 0, 0, 0, time.UTC), 2, 2, nil),
		item("other-day", time.Date(2016, time.May, 2, 8, 0, 0, 0, time.UTC), 3, 3, nil),
		photomap.ResultItem{ID: "no-date"},
	)

	page, err := fetcher.FetchPage(context.Background(), photomap.NewByDaySearch(5, 1))
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if page.TotalMatches != 2 {
		t.Fatalf("expected 2 matches, got %d", page.TotalMatches)
	}

	// Chronological order, so the 2016 shot comes first.
	if page.Items[0].ID != "a-2016" || page.Items[1].ID != "b-2019" {
		t.Errorf("expected chronological order [a-2016 b-2019], got [%s %s]",
			page.Items[0].ID, page.Items[1].ID)
	}
}

func TestNearbyFilterByDistance(t *testing.T) {
	fetcher := New()
	fetcher.Add(
		item("downtown", day(5, 1), 47.6062, -122.3321, nil),
		item("ballard", day(5, 2), 47.6677, -122.3829, nil),
		item("portland", day(5, 3), 45.5152, -122.6784, nil),
		photomap.ResultItem{ID: "untagged"},
	)

	req := photomap.NewNearbySearch(47.6062, -122.3321)
	req.MaxKilometers = 15

	page, err := fetcher.FetchPage(context.Background(), req)
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}

	if page.TotalMatches != 2 {
		t.Fatalf("expected 2 matches within 15km, got %d", page.TotalMatches)
	}
	if page.Items[0].ID != "downtown" || page.Items[1].ID != "ballard" {
		t.Errorf("unexpected matches: [%s %s]", page.Items[0].ID, page.Items[1].ID)
	}
}

func TestFetchPageCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := New()
	_, err := fetcher.FetchPage(ctx, photomap.NewTextSearch(""))
	if !errors.Is(err, photomap.ErrCanceled) {
		t.Errorf("expected ErrCanceled, got %v", err)
	}
}

func TestFetchPageRejectsInvalidRequest(t *testing.T) {
	fetcher := New()
	_, err := fetcher.FetchPage(context.Background(), photomap.NewByDaySearch(0, 0))
	if !errors.Is(err, photomap.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

func TestAddJSON(t *testing.T) {
	data := []byte(`[
		{"id": "one", "createdDate": "2016-05-01T10:00:00Z", "latitude": 1, "longitude": 2,
		 "fields": {"imageName": "IMG_0001.jpg"}},
		{"id": "two"}
	]`)

	fetcher := New()
	if err := fetcher.AddJSON(data); err != nil {
		t.Fatalf("AddJSON failed: %v", err)
	}
	if fetcher.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", fetcher.Len())
	}

	page, err := fetcher.FetchPage(context.Background(), photomap.NewTextSearch("IMG_0001"))
	if err != nil {
		t.Fatalf("FetchPage failed: %v", err)
	}
	if page.TotalMatches != 1 || page.Items[0].ID != "one" {
		t.Errorf("unexpected match: %+v", page)
	}
	if !page.Items[0].HasLocation() {
		t.Error("loaded item lost its coordinates")
	}
	if page.Items[0].DisplayDate() != "2016-05-01" {
		t.Errorf("unexpected display date %q", page.Items[0].DisplayDate())
	}
}

func TestAddJSONRejectsBadItems(t *testing.T) {
	tests := map[string]string{
		"not_an_array":       `{"id": "one"}`,
		"missing_id":         `[{"latitude": 1, "longitude": 2}]`,
		"partial_coordinate": `[{"id": "one", "latitude": 1}]`,
	}

	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			fetcher := New()
			if err := fetcher.AddJSON([]byte(data)); err == nil {
				t.Error("expected an error")
			}
			if fetcher.Len() != 0 {
				t.Errorf("rejected input must not add items, got %d", fetcher.Len())
			}
		})
	}
}
