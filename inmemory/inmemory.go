// Package inmemory provides a PageFetcher over a static in-memory item set.
// It is useful for tests and for driving map sessions from fixture files
// without a running index server.
package inmemory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/letmevibethatforyou/photomap"
	"github.com/letmevibethatforyou/photomap/geo"
)

// Fetcher implements the photomap.PageFetcher interface over an in-memory
// item set.
type Fetcher struct {
	mu    sync.RWMutex
	items []photomap.ResultItem
}

// New creates an empty in-memory fetcher. The fetcher is ready to use and is
// safe for concurrent operations.
func New() *Fetcher {
	return &Fetcher{}
}

// Add appends items to the store. Items are matched in insertion order for
// text searches and chronologically for by-day and nearby searches, matching
// the order contract of the index server.
func (f *Fetcher) Add(items ...photomap.ResultItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, items...)
}

// Len returns the number of stored items.
func (f *Fetcher) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.items)
}

// jsonItem is the fixture file form of a result item.
type jsonItem struct {
	ID          string                 `json:"id"`
	CreatedDate *time.Time             `json:"createdDate"`
	Latitude    *float64               `json:"latitude"`
	Longitude   *float64               `json:"longitude"`
	Fields      map[string]interface{} `json:"fields"`
}

// AddJSON parses a JSON array of items and adds them to the store. This is
// the format cmd/generator emits.
func (f *Fetcher) AddJSON(data []byte) error {
	var parsed []jsonItem
	if err := json.Unmarshal(data, &parsed); err != nil {
		return errors.Wrap(err, "failed to unmarshal items")
	}

	items := make([]photomap.ResultItem, 0, len(parsed))
	for _, p := range parsed {
		if p.ID == "" {
			return errors.New("item has no id")
		}
		if (p.Latitude == nil) != (p.Longitude == nil) {
			return errors.Newf("item %s has a partial coordinate", p.ID)
		}
		items = append(items, photomap.ResultItem{
			ID:          p.ID,
			CreatedDate: p.CreatedDate,
			Latitude:    p.Latitude,
			Longitude:   p.Longitude,
			Fields:      p.Fields,
		})
	}

	f.Add(items...)
	return nil
}

// FetchPage implements the photomap.PageFetcher interface. It filters the
// stored items by the request's criteria and returns the page selected by
// the request's cursor and page size.
func (f *Fetcher) FetchPage(ctx context.Context, req *photomap.SearchRequest) (*photomap.ResultPage, error) {
	select {
	case <-ctx.Done():
		return nil, photomap.ErrCanceled
	default:
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	matched := f.match(req)

	// By-day and nearby results are served chronologically, like the index
	// server; items without a date sort last.
	if req.Kind != photomap.TextSearch {
		sort.SliceStable(matched, func(i, j int) bool {
			a, b := matched[i].CreatedDate, matched[j].CreatedDate
			if a == nil || b == nil {
				return b == nil && a != nil
			}
			return a.Before(*b)
		})
	}

	page := &photomap.ResultPage{TotalMatches: len(matched)}

	start := req.First - 1
	if start < len(matched) {
		end := start + req.PageSize
		if end > len(matched) {
			end = len(matched)
		}
		page.Items = append(page.Items, matched[start:end]...)
	}
	page.ResultCount = len(page.Items)

	return page, nil
}

func (f *Fetcher) match(req *photomap.SearchRequest) []photomap.ResultItem {
	var matched []photomap.ResultItem
	for _, item := range f.items {
		if f.matches(item, req) {
			matched = append(matched, item)
		}
	}
	return matched
}

func (f *Fetcher) matches(item photomap.ResultItem, req *photomap.SearchRequest) bool {
	switch req.Kind {
	case photomap.ByDaySearch:
		if item.CreatedDate == nil {
			return false
		}
		return int(item.CreatedDate.Month()) == req.Month && item.CreatedDate.Day() == req.Day

	case photomap.NearbySearch:
		if !item.HasLocation() {
			return false
		}
		center := geo.LatLng{Lat: req.Latitude, Lon: req.Longitude}
		point := geo.LatLng{Lat: *item.Latitude, Lon: *item.Longitude}
		return geo.Distance(center, point) <= req.MaxKilometers

	default:
		return matchesText(item, req.SearchText)
	}
}

// matchesText reports whether any field value contains the query term,
// case-insensitively. An empty query matches everything.
func matchesText(item photomap.ResultItem, query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}

	if strings.Contains(strings.ToLower(item.ID), query) {
		return true
	}
	for _, value := range item.Fields {
		if s, ok := value.(string); ok && strings.Contains(strings.ToLower(s), query) {
			return true
		}
	}
	return false
}
