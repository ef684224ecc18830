package findaphoto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/letmevibethatforyou/photomap"
)

// FetchPage implements the photomap.PageFetcher interface against the index
// server's search endpoints. Item order is preserved exactly as the server
// returned it; the server groups items and the groups are flattened in
// order.
func (c *Client) FetchPage(ctx context.Context, req *photomap.SearchRequest) (*photomap.ResultPage, error) {
	ctx, span := c.tracer.Start(ctx, "findaphoto.fetch_page",
		trace.WithAttributes(
			attribute.String("findaphoto.search_kind", string(req.Kind)),
			attribute.Int("findaphoto.first", req.First),
			attribute.Int("findaphoto.page_size", req.PageSize),
		),
	)
	defer span.End()

	if err := req.Validate(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid request")
		return nil, err
	}

	path, params := searchQuery(req)
	body, err := c.get(ctx, span, path, params)
	if err != nil {
		return nil, err
	}

	page, err := decodePage(body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode page")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("findaphoto.result_count", page.ResultCount),
		attribute.Int("findaphoto.total_matches", page.TotalMatches),
	)
	span.SetStatus(codes.Ok, "page fetched")
	return page, nil
}

// searchQuery maps a request to its endpoint path and query parameters. The
// descriptor fields pass through verbatim; parameter names are the wire
// contract with the index server.
func searchQuery(req *photomap.SearchRequest) (string, url.Values) {
	params := url.Values{}
	params.Set("first", strconv.Itoa(req.First))
	params.Set("count", strconv.Itoa(req.PageSize))
	if len(req.Properties) > 0 {
		params.Set("properties", strings.Join(req.Properties, ","))
	}
	if len(req.Categories) > 0 {
		params.Set("categories", strings.Join(req.Categories, ","))
	}
	if !req.Drilldown.IsEmpty() {
		params.Set("drilldown", req.Drilldown.String())
	}

	var path string
	switch req.Kind {
	case photomap.ByDaySearch:
		path = "/api/by-day"
		params.Set("month", strconv.Itoa(req.Month))
		params.Set("day", strconv.Itoa(req.Day))
		if req.Random {
			params.Set("random", "true")
		}
	case photomap.NearbySearch:
		path = "/api/nearby"
		params.Set("lat", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
		params.Set("lon", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
		params.Set("maxKilometers", strconv.FormatFloat(req.MaxKilometers, 'f', -1, 64))
	default:
		path = "/api/search"
		params.Set("q", req.SearchText)
	}

	return path, params
}

// decodePage parses a search response body. The server returns items in
// groups; flattening them in order preserves the server's item order.
func decodePage(body []byte) (*photomap.ResultPage, error) {
	var wire struct {
		TotalMatches int `json:"totalMatches"`
		ResultCount  int `json:"resultCount"`
		Groups       []struct {
			Items []json.RawMessage `json:"items"`
		} `json:"groups"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, errors.WithSecondaryError(photomap.ErrMalformedResponse, errors.Wrap(err, "decoding page"))
	}

	page := &photomap.ResultPage{
		TotalMatches: wire.TotalMatches,
		ResultCount:  wire.ResultCount,
	}

	for _, group := range wire.Groups {
		for _, raw := range group.Items {
			item, err := decodeItem(raw)
			if err != nil {
				return nil, err
			}
			page.Items = append(page.Items, item)
		}
	}

	return page, nil
}

// decodeItem parses one result item. The well-known fields are extracted and
// the full field map is kept so callers can read any property they requested.
func decodeItem(raw json.RawMessage) (photomap.ResultItem, error) {
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return photomap.ResultItem{}, errors.WithSecondaryError(photomap.ErrMalformedResponse, errors.Wrap(err, "decoding item"))
	}

	item := photomap.ResultItem{Fields: fields}

	if id, ok := fields["id"].(string); ok {
		item.ID = id
	}

	// An unparseable date is treated the same as a missing one; the item
	// still plots, it just cannot join a route.
	if created, ok := fields["createdDate"].(string); ok {
		if t, err := time.Parse(time.RFC3339, created); err == nil {
			item.CreatedDate = &t
		}
	}

	lat, latOK := fields["latitude"].(float64)
	lon, lonOK := fields["longitude"].(float64)
	if latOK && lonOK {
		item.Latitude = &lat
		item.Longitude = &lon
	}

	if item.ID == "" {
		return photomap.ResultItem{}, errors.WithSecondaryError(
			photomap.ErrMalformedResponse,
			errors.Newf("item has no id: %s", truncateForError(raw)),
		)
	}

	return item, nil
}

func truncateForError(raw json.RawMessage) string {
	const max = 120
	s := string(raw)
	if len(s) > max {
		return fmt.Sprintf("%s...", s[:max])
	}
	return s
}
