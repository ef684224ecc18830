package session

import (
	"github.com/letmevibethatforyou/photomap"
	"github.com/letmevibethatforyou/photomap/geo"
)

// Sink receives aggregated data as a session progresses, typically to plot
// markers and routes. The aggregator guarantees the data handed to the sink
// is consistent with the session's bounds and route invariants, and makes no
// assumption about rendering.
type Sink interface {
	// PlotItems receives one page's items after they have been folded,
	// together with the 1-based absolute index of the page's first item.
	PlotItems(items []photomap.ResultItem, firstIndex int)

	// FitBounds fires once, after the first page of a session started with
	// fit-on-first-page enabled. It never fires mid-session; refitting the
	// viewport while pages stream in makes the map jump around.
	FitBounds(bounds geo.Bounds)

	// Completed receives the final routes and bounds after the trailing
	// route segment has been committed.
	Completed(routes map[string]geo.Route, bounds geo.Bounds)
}

// nopSink is used when no sink is configured.
type nopSink struct{}

func (nopSink) PlotItems([]photomap.ResultItem, int)     {}
func (nopSink) FitBounds(geo.Bounds)                     {}
func (nopSink) Completed(map[string]geo.Route, geo.Bounds) {}
