package photomap

import "github.com/cockroachdb/errors"

// SearchKind identifies which index endpoint a request targets. The values
// match the single-letter search types used by the index server's URLs.
type SearchKind string

const (
	// TextSearch matches items against free text.
	TextSearch SearchKind = "s"
	// ByDaySearch matches items captured on a month/day across all years.
	ByDaySearch SearchKind = "d"
	// NearbySearch matches items within a distance of a coordinate.
	NearbySearch SearchKind = "l"
)

// DefaultPageSize is the page length used when no WithPageSize option is
// given.
const DefaultPageSize = 20

// MapPageSize is the page length the map view uses when driving a session;
// larger pages keep the number of round trips per session low.
const MapPageSize = 100

// DefaultNearbyKilometers is the search radius used for nearby requests when
// no explicit radius is given.
const DefaultNearbyKilometers = 10.5

// SearchRequest describes one search against the photo index. All fields
// except First are fixed for the lifetime of a session; First is the 1-based
// cursor the session aggregator advances between page fetches.
type SearchRequest struct {
	// Kind selects the endpoint and which criteria fields are meaningful.
	Kind SearchKind

	// SearchText is the query for text searches.
	SearchText string

	// Month and Day are the calendar criteria for by-day searches.
	Month int
	Day   int

	// Random requests server-side shuffling of by-day results.
	Random bool

	// Latitude, Longitude and MaxKilometers are the criteria for nearby
	// searches.
	Latitude      float64
	Longitude     float64
	MaxKilometers float64

	// Properties lists the field names the server should return per item.
	Properties []string

	// Categories requests category aggregations alongside the results.
	Categories []string

	// Drilldown narrows the results to specific field values.
	Drilldown *Drilldown

	// PageSize is the number of items requested per fetch.
	PageSize int

	// First is the 1-based index of the first result wanted by the next
	// fetch.
	First int
}

// RequestOption configures a SearchRequest at construction time.
type RequestOption interface {
	Apply(*SearchRequest)
}

// requestOptionFunc is a function that implements RequestOption.
type requestOptionFunc func(*SearchRequest)

// Apply implements the RequestOption interface for requestOptionFunc.
func (f requestOptionFunc) Apply(req *SearchRequest) {
	f(req)
}

// WithPageSize sets the number of items requested per fetch.
func WithPageSize(n int) RequestOption {
	return requestOptionFunc(func(req *SearchRequest) {
		req.PageSize = n
	})
}

// WithProperties sets the field names the server should return per item.
func WithProperties(names ...string) RequestOption {
	return requestOptionFunc(func(req *SearchRequest) {
		req.Properties = names
	})
}

// WithCategories requests category aggregations alongside the results.
func WithCategories(names ...string) RequestOption {
	return requestOptionFunc(func(req *SearchRequest) {
		req.Categories = names
	})
}

// WithDrilldown narrows the request to specific field values.
func WithDrilldown(d *Drilldown) RequestOption {
	return requestOptionFunc(func(req *SearchRequest) {
		req.Drilldown = d
	})
}

// WithRandom requests server-side shuffling; only meaningful for by-day
// searches.
func WithRandom(random bool) RequestOption {
	return requestOptionFunc(func(req *SearchRequest) {
		req.Random = random
	})
}

// NewTextSearch creates a text search request.
func NewTextSearch(text string, opts ...RequestOption) *SearchRequest {
	return newRequest(&SearchRequest{Kind: TextSearch, SearchText: text}, opts)
}

// NewByDaySearch creates a by-day search request for the given month and day
// of month.
func NewByDaySearch(month, day int, opts ...RequestOption) *SearchRequest {
	return newRequest(&SearchRequest{Kind: ByDaySearch, Month: month, Day: day}, opts)
}

// NewNearbySearch creates a proximity search request centered on the given
// coordinate with the default radius.
func NewNearbySearch(latitude, longitude float64, opts ...RequestOption) *SearchRequest {
	return newRequest(&SearchRequest{
		Kind:          NearbySearch,
		Latitude:      latitude,
		Longitude:     longitude,
		MaxKilometers: DefaultNearbyKilometers,
	}, opts)
}

func newRequest(req *SearchRequest, opts []RequestOption) *SearchRequest {
	req.PageSize = DefaultPageSize
	req.First = 1
	for _, opt := range opts {
		opt.Apply(req)
	}
	return req
}

// Clone returns a copy of the request. The session aggregator clones the
// request it is handed so advancing the cursor never mutates the caller's
// descriptor.
func (req *SearchRequest) Clone() *SearchRequest {
	clone := *req
	clone.Properties = append([]string(nil), req.Properties...)
	clone.Categories = append([]string(nil), req.Categories...)
	return &clone
}

// Validate reports whether the request is well formed. All returned errors
// match ErrInvalidRequest under errors.Is.
func (req *SearchRequest) Validate() error {
	if req.PageSize <= 0 {
		return errors.WithDetailf(ErrInvalidRequest, "page size must be positive, got %d", req.PageSize)
	}
	if req.First < 1 {
		return errors.WithDetailf(ErrInvalidRequest, "first must be 1-based, got %d", req.First)
	}

	switch req.Kind {
	case TextSearch:
		// An empty text search is valid; the server returns everything.
	case ByDaySearch:
		if req.Month < 1 || req.Month > 12 {
			return errors.WithDetailf(ErrInvalidRequest, "month out of range: %d", req.Month)
		}
		if req.Day < 1 || req.Day > 31 {
			return errors.WithDetailf(ErrInvalidRequest, "day out of range: %d", req.Day)
		}
	case NearbySearch:
		if req.Latitude < -90 || req.Latitude > 90 {
			return errors.WithDetailf(ErrInvalidRequest, "latitude out of range: %f", req.Latitude)
		}
		if req.Longitude < -180 || req.Longitude > 180 {
			return errors.WithDetailf(ErrInvalidRequest, "longitude out of range: %f", req.Longitude)
		}
		if req.MaxKilometers <= 0 {
			return errors.WithDetailf(ErrInvalidRequest, "max kilometers must be positive, got %f", req.MaxKilometers)
		}
	default:
		return errors.WithDetailf(ErrInvalidRequest, "unknown search kind: %q", string(req.Kind))
	}

	return nil
}
