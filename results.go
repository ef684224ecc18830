package photomap

import "time"

// ResultItem represents a single matched photo.
type ResultItem struct {
	// ID is the opaque stable identifier of the item in the index.
	ID string

	// CreatedDate is the capture time; nil when the index has no date for
	// the item.
	CreatedDate *time.Time

	// Latitude and Longitude form the item's geographic coordinate. Either
	// both are set or both are nil.
	Latitude  *float64
	Longitude *float64

	// Fields contains the item's fields as returned by the server, keyed by
	// the requested property names.
	Fields map[string]interface{}
}

// HasLocation reports whether the item carries a complete coordinate.
func (it ResultItem) HasLocation() bool {
	return it.Latitude != nil && it.Longitude != nil
}

// DisplayDate returns the calendar date of the item's capture time, used as
// the grouping key for travel routes. It returns "" when the item has no
// capture time.
func (it ResultItem) DisplayDate() string {
	if it.CreatedDate == nil {
		return ""
	}
	return it.CreatedDate.Format("2006-01-02")
}

// ResultPage represents one server response page.
type ResultPage struct {
	// Items contains the page's results in server order. The order is
	// chronological for by-day and nearby searches.
	Items []ResultItem

	// TotalMatches is the total number of matches available for the request,
	// independent of page size.
	TotalMatches int

	// ResultCount is the number of items in this page.
	ResultCount int
}
