package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

// fixtureItem matches the JSON form the inmemory fetcher loads.
type fixtureItem struct {
	ID          string                 `json:"id"`
	CreatedDate *time.Time             `json:"createdDate"`
	Latitude    *float64               `json:"latitude,omitempty"`
	Longitude   *float64               `json:"longitude,omitempty"`
	Fields      map[string]interface{} `json:"fields"`
}

var placeNames = []string{
	"Harbor Steps", "Pike Place", "Alki Beach", "Discovery Park", "Gas Works",
	"Golden Gardens", "Snoqualmie Falls", "Rattlesnake Ledge", "Deception Pass",
	"Cape Flattery", "Hurricane Ridge", "Paradise", "Sunrise", "Artist Point",
}

func main() {
	app := &cli.App{
		Name:  "generator",
		Usage: "Generate geotagged photo fixtures for the mapquery tool",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"n"},
				Usage:   "Number of items to generate",
				Value:   200,
			},
			&cli.IntFlag{
				Name:  "days",
				Usage: "Number of consecutive days to spread the items across",
				Value: 5,
			},
			&cli.Float64Flag{
				Name:  "start-lat",
				Usage: "Latitude where the walk begins",
				Value: 47.6062,
			},
			&cli.Float64Flag{
				Name:  "start-lon",
				Usage: "Longitude where the walk begins",
				Value: -122.3321,
			},
			&cli.Float64Flag{
				Name:  "untagged-ratio",
				Usage: "Fraction of items emitted without a coordinate",
				Value: 0.1,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "File to write; stdout when omitted",
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
	count := c.Int("count")
	if count <= 0 {
		return fmt.Errorf("count must be positive, got %d", count)
	}
	days := c.Int("days")
	if days <= 0 {
		return fmt.Errorf("days must be positive, got %d", days)
	}
	untaggedRatio := c.Float64("untagged-ratio")
	if untaggedRatio < 0 || untaggedRatio >= 1 {
		return fmt.Errorf("untagged-ratio must be in [0, 1), got %f", untaggedRatio)
	}

	items := generateItems(count, days, c.Float64("start-lat"), c.Float64("start-lon"), untaggedRatio)

	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal items: %w", err)
	}

	output := c.String("output")
	if output == "" {
		fmt.Println(string(data))
		return nil
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	slog.Info("wrote fixture", "path", output, "items", len(items), "days", days)
	return nil
}

// generateItems emits a chronological random walk: each day starts near the
// previous day's end and wanders in small steps, the way a day of shooting
// photos does. A burst of items from the same spot appears now and then so
// duplicate-coordinate handling has something to chew on.
func generateItems(count, days int, lat, lon, untaggedRatio float64) []fixtureItem {
	items := make([]fixtureItem, 0, count)
	perDay := (count + days - 1) / days

	day := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

	for len(items) < count {
		remaining := count - len(items)
		if remaining > perDay {
			remaining = perDay
		}

		shot := day
		for i := 0; i < remaining; i++ {
			item := fixtureItem{
				ID:          ksuid.New().String(),
				CreatedDate: timePtr(shot),
				Fields: map[string]interface{}{
					"imageName":           fmt.Sprintf("IMG_%04d.jpg", len(items)+1),
					"locationDisplayName": placeNames[rand.Intn(len(placeNames))],
				},
			}

			if rand.Float64() >= untaggedRatio {
				item.Latitude = floatPtr(lat)
				item.Longitude = floatPtr(lon)
			}

			items = append(items, item)
			shot = shot.Add(time.Duration(1+rand.Intn(20)) * time.Minute)

			// Stay put for a few shots roughly a quarter of the time.
			if rand.Intn(4) != 0 {
				lat += (rand.Float64() - 0.5) * 0.01
				lon += (rand.Float64() - 0.5) * 0.01
			}
		}

		day = day.AddDate(0, 0, 1)
	}

	return items
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func floatPtr(f float64) *float64 {
	return &f
}
