// Package findaphoto provides an HTTP page fetcher and index client for a
// FindAPhoto-style photo index server.
package findaphoto

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/letmevibethatforyou/photomap"
)

const defaultTimeout = 30 * time.Second

// ClientOption configures a Client.
type ClientOption interface {
	Apply(*Client)
}

// clientOptionFunc is a function that implements ClientOption.
type clientOptionFunc func(*Client)

// Apply implements the ClientOption interface for clientOptionFunc.
func (f clientOptionFunc) Apply(c *Client) {
	f(c)
}

// WithHTTPClient overrides the HTTP client used for every request. Timeouts
// are the HTTP client's responsibility; the session layer treats a fetch
// that never resolves the same as one that never started.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return clientOptionFunc(func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	})
}

// Client talks to one FindAPhoto index server.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewClient creates a client for the index server at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		tracer:     otel.Tracer("photomap-findaphoto"),
	}
	for _, opt := range opts {
		opt.Apply(c)
	}
	return c
}

// MediaURL returns the URL serving the original media bytes for an item.
func (c *Client) MediaURL(id string) string {
	return c.baseURL + "/api/media/" + url.PathEscape(id)
}

// FieldValue is one distinct value of an index field with its match count.
type FieldValue struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}

// FieldAndValues holds the top values for one index field.
type FieldAndValues struct {
	Name   string       `json:"name"`
	Values []FieldValue `json:"values"`
}

// FieldValues returns the top distinct values for the given index fields.
// maxCount limits how many values are returned per field; zero uses the
// server's default.
func (c *Client) FieldValues(ctx context.Context, fields []string, maxCount int) ([]FieldAndValues, error) {
	ctx, span := c.tracer.Start(ctx, "findaphoto.field_values",
		trace.WithAttributes(
			attribute.StringSlice("findaphoto.fields", fields),
			attribute.Int("findaphoto.max_count", maxCount),
		),
	)
	defer span.End()

	if len(fields) == 0 {
		err := errors.WithDetail(photomap.ErrInvalidRequest, "no fields given")
		span.RecordError(err)
		span.SetStatus(codes.Error, "no fields given")
		return nil, err
	}

	params := url.Values{}
	params.Set("fields", strings.Join(fields, ","))
	if maxCount > 0 {
		params.Set("max", fmt.Sprintf("%d", maxCount))
	}

	body, err := c.get(ctx, span, "/api/index/fieldvalues", params)
	if err != nil {
		return nil, err
	}

	var response struct {
		Fields []FieldAndValues `json:"fields"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode field values")
		return nil, errors.WithSecondaryError(photomap.ErrMalformedResponse, errors.Wrap(err, "decoding field values"))
	}

	span.SetStatus(codes.Ok, "field values retrieved")
	return response.Fields, nil
}

// IndexStats returns index-level properties such as imageCount or
// versionNumber. The result maps each requested property name to its value.
func (c *Client) IndexStats(ctx context.Context, properties []string) (map[string]interface{}, error) {
	ctx, span := c.tracer.Start(ctx, "findaphoto.index_stats",
		trace.WithAttributes(
			attribute.StringSlice("findaphoto.properties", properties),
		),
	)
	defer span.End()

	params := url.Values{}
	if len(properties) > 0 {
		params.Set("properties", strings.Join(properties, ","))
	}

	body, err := c.get(ctx, span, "/api/index", params)
	if err != nil {
		return nil, err
	}

	var stats map[string]interface{}
	if err := json.Unmarshal(body, &stats); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to decode index stats")
		return nil, errors.WithSecondaryError(photomap.ErrMalformedResponse, errors.Wrap(err, "decoding index stats"))
	}

	span.SetStatus(codes.Ok, "index stats retrieved")
	return stats, nil
}

// get issues one GET against the server and returns the response body.
// Non-2xx responses are converted through decodeServerError.
func (c *Client) get(ctx context.Context, span trace.Span, path string, params url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to build request")
		return nil, errors.WithSecondaryError(photomap.ErrInvalidRequest, errors.Wrap(err, "building request"))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, photomap.ErrCanceled
		}
		return nil, errors.WithSecondaryError(photomap.ErrNetwork, errors.Wrapf(err, "GET %s", path))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read response")
		return nil, errors.WithSecondaryError(photomap.ErrNetwork, errors.Wrapf(err, "reading %s response", path))
	}

	if resp.StatusCode != http.StatusOK {
		err := decodeServerError(resp.StatusCode, body)
		span.RecordError(err)
		span.SetStatus(codes.Error, fmt.Sprintf("server returned %d", resp.StatusCode))
		return nil, err
	}

	return body, nil
}

// decodeServerError maps a non-2xx response to the error taxonomy. The
// server reports failures as a JSON body with errorCode and errorMessage;
// anything else is surfaced with the raw body as the message.
func decodeServerError(statusCode int, body []byte) error {
	var serverBody struct {
		ErrorCode    string `json:"errorCode"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &serverBody); err == nil && serverBody.ErrorCode != "" {
		return photomap.NewServerError(serverBody.ErrorCode, serverBody.ErrorMessage)
	}

	return photomap.NewServerError(fmt.Sprintf("HTTP %d", statusCode), strings.TrimSpace(string(body)))
}
