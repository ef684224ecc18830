package photomap

import "context"

// PageFetcher defines the core page-fetch interface. Implementations perform
// one bounded fetch for the page described by the request's cursor and page
// size, preserving the item order returned by the remote index.
type PageFetcher interface {
	// FetchPage executes a single page fetch for the given request.
	FetchPage(ctx context.Context, req *SearchRequest) (*ResultPage, error)
}

// PageFetcherFunc is a function type that implements the PageFetcher
// interface. This allows using a function as a PageFetcher, similar to
// http.HandlerFunc.
type PageFetcherFunc func(context.Context, *SearchRequest) (*ResultPage, error)

// FetchPage implements the PageFetcher interface for PageFetcherFunc.
func (f PageFetcherFunc) FetchPage(ctx context.Context, req *SearchRequest) (*ResultPage, error) {
	return f(ctx, req)
}
