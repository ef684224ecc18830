// Package session drives one capped, cancelable search session: a sequence
// of strictly ordered page fetches whose items are folded into running
// geographic bounds and travel routes.
package session

import (
	"math"

	"github.com/letmevibethatforyou/photomap"
	"github.com/letmevibethatforyou/photomap/geo"
)

// State identifies where a session is in its lifecycle.
type State int

const (
	// StateIdle means the session is not running; superseded sessions end
	// here.
	StateIdle State = iota
	// StateLoading means a page fetch is in flight or being folded.
	StateLoading
	// StateDone means every wanted page was fetched and the trailing route
	// segment committed.
	StateDone
	// StateError means a page fetch failed; aggregates from earlier pages
	// are preserved.
	StateError
)

// String returns the human-readable string representation of the state.
// This implements the fmt.Stringer interface.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Session is the unit of work: one complete search request-response cycle,
// including all paginated follow-up fetches, from start to completion or
// error. The aggregator exclusively owns and mutates it.
type Session struct {
	// ID uniquely identifies the session.
	ID string

	// Request is the session's descriptor; its First field is the paging
	// cursor and advances as pages arrive.
	Request *photomap.SearchRequest

	// State is the session's lifecycle state.
	State State

	// Err holds the failure that moved the session to StateError.
	Err error

	// Bounds is the minimal rectangle enclosing every geotagged item folded
	// so far.
	Bounds geo.Bounds

	// MatchesRetrieved counts how many results have been folded.
	MatchesRetrieved int

	// TotalMatches is the session's reported total: the server total,
	// truncated to MaxMatches when a cap is set.
	TotalMatches int

	// MaxMatches caps how many matches the session will report and fetch.
	// Zero means uncapped; nearby searches typically set it.
	MaxMatches int

	segmenter  *geo.Segmenter
	generation uint64
}

// Loading reports whether the session is still fetching pages.
func (s *Session) Loading() bool {
	return s.State == StateLoading
}

// Routes returns the committed routes keyed by display date. Later segments
// sharing a date key overwrite earlier ones (last write wins).
func (s *Session) Routes() map[string]geo.Route {
	return s.segmenter.Routes()
}

// RouteKeys returns the committed route keys in sorted order.
func (s *Session) RouteKeys() []string {
	return s.segmenter.Keys()
}

// PercentLoaded returns how far along the session is, as a whole percentage.
// A session that is not loading reports 100.
func (s *Session) PercentLoaded() int {
	if !s.Loading() || s.TotalMatches == 0 {
		return 100
	}
	return int(math.Round(float64(s.MatchesRetrieved) * 100 / float64(s.TotalMatches)))
}
