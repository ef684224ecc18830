package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/letmevibethatforyou/photomap"
	"github.com/letmevibethatforyou/photomap/findaphoto"
	"github.com/letmevibethatforyou/photomap/geo"
	"github.com/letmevibethatforyou/photomap/inmemory"
	"github.com/letmevibethatforyou/photomap/session"
)

// The map view asks for exactly the properties it plots.
const queryProperties = "createdDate,id,imageName,latitude,longitude,locationDisplayName,thumbUrl"

const defaultTimeout = 5 * time.Minute

func main() {
	godotenv.Load()

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "mapquery",
		Usage: "Run a full map search session and print the aggregated bounds and routes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Usage:   "Base URL of the photo index server",
				EnvVars: []string{"FINDAPHOTO_SERVER"},
			},
			&cli.StringFlag{
				Name:    "fixture",
				Usage:   "JSON fixture file to search instead of a server (see the generator tool)",
				EnvVars: []string{"PHOTOMAP_FIXTURE"},
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Text to search for; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:  "month",
				Usage: "Month for a by-day search (requires --day)",
			},
			&cli.IntFlag{
				Name:  "day",
				Usage: "Day of month for a by-day search (requires --month)",
			},
			&cli.Float64Flag{
				Name:  "lat",
				Usage: "Latitude for a nearby search (requires --lon)",
			},
			&cli.Float64Flag{
				Name:  "lon",
				Usage: "Longitude for a nearby search (requires --lat)",
			},
			&cli.Float64Flag{
				Name:  "max-km",
				Usage: "Radius in kilometers for a nearby search",
				Value: photomap.DefaultNearbyKilometers,
			},
			&cli.IntFlag{
				Name:  "page-size",
				Usage: "Results requested per page fetch",
				Value: photomap.MapPageSize,
			},
			&cli.IntFlag{
				Name:  "max-matches",
				Usage: "Cap on matches to fetch; 0 means uncapped (nearby searches default to the map cap)",
				Value: -1,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the whole session",
				Value: defaultTimeout,
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.Warn("timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(c.Context, timeout)
	defer cancel()

	req, err := buildRequest(c)
	if err != nil {
		return err
	}

	fetcher, err := buildFetcher(c)
	if err != nil {
		return err
	}

	startOpts := []session.StartOption{}
	maxMatches := c.Int("max-matches")
	if maxMatches < 0 && req.Kind == photomap.NearbySearch {
		maxMatches = session.NearbyMaxMatches
	}
	if maxMatches > 0 {
		startOpts = append(startOpts, session.WithMaxMatches(maxMatches))
	}
	if req.Kind == photomap.NearbySearch {
		// The map is already centered on the search point.
		startOpts = append(startOpts, session.WithFitBoundsOnFirstPage(false))
	}

	slog.InfoContext(ctx, "starting session",
		"kind", string(req.Kind),
		"page_size", req.PageSize,
		"max_matches", maxMatches,
	)

	aggregator := session.New(fetcher, session.WithSink(&progressSink{}))

	s, err := aggregator.Start(ctx, req, startOpts...)
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	return printSession(s)
}

func buildRequest(c *cli.Context) (*photomap.SearchRequest, error) {
	opts := []photomap.RequestOption{
		photomap.WithPageSize(c.Int("page-size")),
		photomap.WithProperties(strings.Split(queryProperties, ",")...),
	}

	hasDay := c.IsSet("month") || c.IsSet("day")
	hasLocation := c.IsSet("lat") || c.IsSet("lon")

	switch {
	case hasDay && hasLocation:
		return nil, fmt.Errorf("choose one of --month/--day or --lat/--lon, not both")

	case hasDay:
		if !c.IsSet("month") || !c.IsSet("day") {
			return nil, fmt.Errorf("by-day search requires both --month and --day")
		}
		return photomap.NewByDaySearch(c.Int("month"), c.Int("day"), opts...), nil

	case hasLocation:
		if !c.IsSet("lat") || !c.IsSet("lon") {
			return nil, fmt.Errorf("nearby search requires both --lat and --lon")
		}
		req := photomap.NewNearbySearch(c.Float64("lat"), c.Float64("lon"), opts...)
		req.MaxKilometers = c.Float64("max-km")
		return req, nil

	default:
		query := strings.TrimSpace(c.String("query"))
		if query == "" && c.NArg() > 0 {
			query = strings.TrimSpace(c.Args().First())
		}
		return photomap.NewTextSearch(query, opts...), nil
	}
}

func buildFetcher(c *cli.Context) (photomap.PageFetcher, error) {
	server := strings.TrimSpace(c.String("server"))
	fixture := strings.TrimSpace(c.String("fixture"))

	switch {
	case server != "" && fixture != "":
		return nil, fmt.Errorf("choose one of --server or --fixture, not both")

	case fixture != "":
		data, err := os.ReadFile(fixture)
		if err != nil {
			return nil, fmt.Errorf("failed to read fixture: %w", err)
		}
		fetcher := inmemory.New()
		if err := fetcher.AddJSON(data); err != nil {
			return nil, fmt.Errorf("failed to load fixture: %w", err)
		}
		slog.Info("loaded fixture", "path", fixture, "items", fetcher.Len())
		return fetcher, nil

	case server != "":
		return findaphoto.NewClient(server), nil

	default:
		return nil, fmt.Errorf("either --server or --fixture is required")
	}
}

// progressSink logs each folded page as the session streams in.
type progressSink struct{}

func (p *progressSink) PlotItems(items []photomap.ResultItem, firstIndex int) {
	plotted := 0
	for _, item := range items {
		if item.HasLocation() {
			plotted++
		}
	}
	slog.Info("page folded", "first", firstIndex, "items", len(items), "plotted", plotted)
}

func (p *progressSink) FitBounds(bounds geo.Bounds) {
	slog.Info("fit bounds",
		"south_west_lat", bounds.SouthWest.Lat,
		"south_west_lon", bounds.SouthWest.Lon,
		"north_east_lat", bounds.NorthEast.Lat,
		"north_east_lon", bounds.NorthEast.Lon,
	)
}

func (p *progressSink) Completed(routes map[string]geo.Route, bounds geo.Bounds) {
	slog.Info("session complete", "routes", len(routes))
}

func printSession(s *session.Session) error {
	type routeSummary struct {
		Key    string      `json:"key"`
		Points []geo.LatLng `json:"points"`
	}

	routes := make([]routeSummary, 0, len(s.Routes()))
	for _, key := range s.RouteKeys() {
		route := s.Routes()[key]
		routes = append(routes, routeSummary{Key: route.Key, Points: route.Points})
	}

	payload := struct {
		SessionID        string         `json:"session_id"`
		State            string         `json:"state"`
		TotalMatches     int            `json:"total_matches"`
		MatchesRetrieved int            `json:"matches_retrieved"`
		Bounds           *geo.Bounds    `json:"bounds,omitempty"`
		Routes           []routeSummary `json:"routes"`
	}{
		SessionID:        s.ID,
		State:            s.State.String(),
		TotalMatches:     s.TotalMatches,
		MatchesRetrieved: s.MatchesRetrieved,
		Routes:           routes,
	}
	if !s.Bounds.Empty() {
		payload.Bounds = &s.Bounds
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	fmt.Println(string(data))
	return nil
}
