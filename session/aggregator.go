package session

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/segmentio/ksuid"

	"github.com/letmevibethatforyou/photomap"
	"github.com/letmevibethatforyou/photomap/geo"
)

// NearbyMaxMatches is the cap the map view applies to proximity searches.
// The server may hold far more matches near a point than are worth plotting.
const NearbyMaxMatches = 2000

// Option configures an Aggregator.
type Option interface {
	Apply(*Aggregator)
}

// optionFunc is a function that implements Option.
type optionFunc func(*Aggregator)

// Apply implements the Option interface for optionFunc.
func (f optionFunc) Apply(a *Aggregator) {
	f(a)
}

// WithSink sets the sink that receives plotted items, bounds and routes.
func WithSink(sink Sink) Option {
	return optionFunc(func(a *Aggregator) {
		if sink != nil {
			a.sink = sink
		}
	})
}

// WithDateKey overrides how route grouping keys are derived from items, for
// deterministic tests.
func WithDateKey(fn geo.DateKeyFunc) Option {
	return optionFunc(func(a *Aggregator) {
		a.dateKey = fn
	})
}

// StartOption configures a single session.
type StartOption interface {
	apply(*startConfig)
}

type startConfig struct {
	maxMatches           int
	fitBoundsOnFirstPage bool
}

// startOptionFunc is a function that implements StartOption.
type startOptionFunc func(*startConfig)

func (f startOptionFunc) apply(cfg *startConfig) {
	f(cfg)
}

// WithMaxMatches caps how many matches the session will report and fetch.
// Zero disables the cap.
func WithMaxMatches(n int) StartOption {
	return startOptionFunc(func(cfg *startConfig) {
		cfg.maxMatches = n
	})
}

// WithFitBoundsOnFirstPage controls whether the sink's FitBounds fires after
// the first page. It defaults to true; nearby searches pass false because
// the viewport is already centered on the search point.
func WithFitBoundsOnFirstPage(fit bool) StartOption {
	return startOptionFunc(func(cfg *startConfig) {
		cfg.fitBoundsOnFirstPage = fit
	})
}

// Aggregator owns one active search session at a time. It drives repeated
// page fetches, folds each page's items into the session's bounds and route
// segmenter, applies the result cap, and decides when the session is done.
//
// Fetches are strictly sequential and only one is in flight at any time: the
// route segmenter's correctness depends on receiving items in page order
// with no interleaving.
type Aggregator struct {
	fetcher    photomap.PageFetcher
	sink       Sink
	dateKey    geo.DateKeyFunc
	generation atomic.Uint64
}

// New creates an aggregator that fetches pages from the given fetcher.
func New(fetcher photomap.PageFetcher, opts ...Option) *Aggregator {
	a := &Aggregator{
		fetcher: fetcher,
		sink:    nopSink{},
	}
	for _, opt := range opts {
		opt.Apply(a)
	}
	return a
}

// Start begins a new session and drives it until every wanted page has been
// folded, a fetch fails, or a newer session supersedes it. Bounds, routes and
// counters always start from scratch; nothing carries over from a prior
// session.
//
// Starting a session invalidates any session still in flight on this
// aggregator: when the older session's outstanding fetch returns, its result
// is discarded and Start returns an error matching ErrSuperseded. There is no
// server-side cancellation; staleness is the only cancellation mechanism.
//
// The caller's request is cloned, so its cursor is never mutated. On fetch
// failure the session keeps the bounds and routes folded from earlier pages;
// partial results remain usable.
func (a *Aggregator) Start(ctx context.Context, req *photomap.SearchRequest, opts ...StartOption) (*Session, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := startConfig{fitBoundsOnFirstPage: true}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	request := req.Clone()
	request.First = 1

	segmenterOpts := []geo.SegmenterOption{}
	if a.dateKey != nil {
		segmenterOpts = append(segmenterOpts, geo.WithDateKey(a.dateKey))
	}

	s := &Session{
		ID:         ksuid.New().String(),
		Request:    request,
		State:      StateLoading,
		Bounds:     geo.NewBounds(),
		MaxMatches: cfg.maxMatches,
		segmenter:  geo.NewSegmenter(segmenterOpts...),
		generation: a.generation.Add(1),
	}

	for {
		if err := ctx.Err(); err != nil {
			s.State = StateError
			s.Err = photomap.ErrCanceled
			return s, errors.WithSecondaryError(photomap.ErrCanceled, err)
		}

		first := request.First
		page, err := a.fetcher.FetchPage(ctx, request)

		// A newer session may have started while the fetch was in flight.
		// Its state is authoritative now; this session's result is stale
		// and must not reach the sink.
		if a.generation.Load() != s.generation {
			s.State = StateIdle
			return s, errors.Wrapf(photomap.ErrSuperseded, "session %s", s.ID)
		}

		if err != nil {
			s.State = StateError
			s.Err = err
			return s, errors.Wrapf(err, "session %s: fetch at first=%d failed", s.ID, first)
		}

		a.foldPage(s, page)
		a.sink.PlotItems(page.Items, first)

		if cfg.fitBoundsOnFirstPage && first == 1 {
			a.sink.FitBounds(s.Bounds)
		}

		effectiveTotal := page.TotalMatches
		if s.MaxMatches > 0 && effectiveTotal > s.MaxMatches {
			effectiveTotal = s.MaxMatches
		}
		s.TotalMatches = effectiveTotal

		// Zero on an empty first page: nothing retrieved yet, not an error.
		s.MatchesRetrieved = first + page.ResultCount - 1

		if page.ResultCount > 0 && s.MatchesRetrieved < s.TotalMatches {
			request.First += request.PageSize
			continue
		}

		s.segmenter.Finalize()
		s.State = StateDone
		a.sink.Completed(s.Routes(), s.Bounds)
		return s, nil
	}
}

// foldPage streams one page's items, in order, through the bounds tracker
// and the route segmenter.
func (a *Aggregator) foldPage(s *Session, page *photomap.ResultPage) {
	for _, item := range page.Items {
		s.Bounds.FoldItem(item)
		s.segmenter.Fold(item)
	}
}
