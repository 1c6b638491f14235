package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"

	natsadapter "github.com/samirrijal/eiremap/internal/adapters/nats"
	"github.com/samirrijal/eiremap/internal/adapters/remote"
	"github.com/samirrijal/eiremap/internal/core/catalog"
	"github.com/samirrijal/eiremap/internal/core/domain"
	"github.com/samirrijal/eiremap/internal/core/usecases"
	"github.com/samirrijal/eiremap/internal/pkg/config"
	"github.com/samirrijal/eiremap/internal/pkg/geospatial"
	"github.com/samirrijal/eiremap/internal/pkg/logging"
)

func main() {
	cfg, err := config.Load("eiremap-probe")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	// Logs go to stderr so reports can be piped.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, "text"))

	app := &cli.App{
		Name:  "probe",
		Usage: "load the place catalog once and query it from the terminal",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table"},
		},
		Commands: []*cli.Command{
			{
				Name:  "categories",
				Usage: "list place types in dropdown order",
				Action: func(c *cli.Context) error {
					svc, err := load(c.Context, cfg)
					if err != nil {
						return err
					}
					return printCategories(c, svc.Categories())
				},
			},
			{
				Name:  "places",
				Usage: "list places, optionally of one category",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "category", Aliases: []string{"c"}, Usage: "category id"},
				},
				Action: func(c *cli.Context) error {
					svc, err := load(c.Context, cfg)
					if err != nil {
						return err
					}
					var view domain.ViewState
					if c.IsSet("category") {
						view = domain.Select(c.Int("category"))
					}
					return printPlaces(c, svc, svc.Places(view))
				},
			},
			{
				Name:  "near",
				Usage: "count places inside the degree box around a coordinate",
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "lat", Value: cfg.Map.CenterLat},
					&cli.Float64Flag{Name: "lon", Value: cfg.Map.CenterLon},
					&cli.Float64Flag{Name: "threshold", Aliases: []string{"t"}, Value: cfg.Map.NearbyThreshold, Usage: "box half-side in degrees"},
				},
				Action: func(c *cli.Context) error {
					lat, lon := c.Float64("lat"), c.Float64("lon")
					if !geospatial.Valid(lat, lon) {
						return cli.Exit("lat must be within -90..90 and lon within -180..180", 2)
					}
					svc, err := load(c.Context, cfg)
					if err != nil {
						return err
					}
					prox, err := svc.FindNearby(c.Context, domain.GeoPoint{Lat: lat, Lon: lon}, c.Float64("threshold"))
					if err != nil {
						return cli.Exit(err.Error(), 2)
					}
					return printProximity(c, svc, prox)
				},
			},
			{
				Name:  "watch",
				Usage: "print catalog events published by running API instances",
				Action: func(c *cli.Context) error {
					return watch(c, cfg)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// load fetches both documents and fails unless both arrived.
func load(ctx context.Context, cfg *config.Config) (*usecases.CatalogService, error) {
	source := remote.NewSource(cfg.Source.PlacesURL, cfg.Source.PlaceTypesURL,
		time.Duration(cfg.Source.Timeout)*time.Second)
	svc := usecases.NewCatalogService(source, nil, nil, usecases.CatalogOptions{
		PlaceholderImage: cfg.Map.PlaceholderImage,
	})

	svc.Load(ctx)

	st := svc.Status()
	if st.Overall() != domain.LoadReady {
		return nil, cli.Exit(fmt.Sprintf("catalog not loaded: places=%s %s categories=%s %s",
			st.Places.State, st.Places.Error, st.Categories.State, st.Categories.Error), 1)
	}
	return svc, nil
}

func printCategories(c *cli.Context, cats []domain.Category) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, cats)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPIN")
	for _, cat := range cats {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", cat.ID, cat.Name, catalog.PinColour(cat.ID))
	}
	return tw.Flush()
}

func printPlaces(c *cli.Context, svc *usecases.CatalogService, places []domain.Place) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, places)
	}
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGAELIC\tTYPE\tLAT\tLON")
	for _, p := range places {
		typ, _ := svc.CategoryName(p.CategoryID())
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%.4f\t%.4f\n", p.ID, p.Name, p.GaelicName, typ, p.Location.Lat, p.Location.Lon)
	}
	fmt.Fprintf(tw, "\n%d places\n", len(places))
	return tw.Flush()
}

func printProximity(c *cli.Context, svc *usecases.CatalogService, prox domain.Proximity) error {
	if c.Bool("json") {
		return writeJSON(c.App.Writer, prox)
	}
	w := c.App.Writer
	fmt.Fprintf(w, "%d places within %g° of %.4f, %.4f\n", prox.Count, prox.Threshold, prox.Center.Lat, prox.Center.Lon)
	if prox.Nearest != nil {
		fmt.Fprintf(w, "nearest: %s (#%d)\n\n", prox.Nearest.Name, prox.Nearest.ID)
	} else {
		fmt.Fprint(w, "nearest: none\n\n")
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tDISTANCE")
	for _, n := range prox.Neighbors {
		typ, _ := svc.CategoryName(n.Place.CategoryID())
		fmt.Fprintf(tw, "%d\t%s\t%s\t%.4f\n", n.Place.ID, n.Place.Name, typ, n.Distance)
	}
	return tw.Flush()
}

func watch(c *cli.Context, cfg *config.Config) error {
	sub, err := natsadapter.NewSubscriber(cfg.NATS.URL)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer sub.Close()

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	asJSON := c.Bool("json")
	err = sub.SubscribeCatalogEvents(ctx, func(ctx context.Context, ev *domain.CatalogEvent) error {
		if asJSON {
			return writeJSON(c.App.Writer, ev)
		}
		line := fmt.Sprintf("%s rev=%d %s", ev.Time.Format(time.RFC3339), ev.Revision, ev.Kind)
		switch {
		case ev.Place != nil:
			line += fmt.Sprintf(" #%d %.4f,%.4f", ev.Place.ID, ev.Place.Location.Lat, ev.Place.Location.Lon)
		case ev.Error != "":
			line += " error=" + ev.Error
		case ev.Count > 0:
			line += fmt.Sprintf(" count=%d", ev.Count)
		}
		_, err := fmt.Fprintln(c.App.Writer, line)
		return err
	})
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	slog.Info("watching catalog events", "subject", natsadapter.AllSubjects)
	<-ctx.Done()
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
