package main

import (
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch/inmemory"
	"github.com/segmentio/ksuid"
	"github.com/urfave/cli/v2"
)

var (
	catalog = map[string][]string{
		"trucks":     {"Anthem", "Granite", "Pinnacle", "TerraPro", "LR", "MD"},
		"powertrain": {"MP7 Engine", "MP8 Engine", "mDRIVE", "mDRIVE HD", "Axles"},
		"services":   {"Mack Financial", "GuardDog Connect", "Uptime Center", "Certified Uptime"},
		"parts":      {"Brakes", "Filters", "Batteries", "Lighting", "Cab Accessories"},
	}

	tags = []string{
		"highway", "vocational", "electric", "sleeper", "day cab", "dump", "refuse", "warranty", "dealer", "maintenance",
	}
)

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Generate random page documents and insert them into DynamoDB",
		Flags: []cli.Flag{
			tableFlag,
			indexFlag,
			&cli.IntFlag{
				Name:    "count",
				Aliases: []string{"c"},
				Usage:   "Number of documents to generate",
				Value:   1,
			},
		},
		Action: seedAction,
	}
}

func generateDocument(r *rand.Rand, now time.Time) inmemory.Document {
	categories := slices.Sorted(maps.Keys(catalog))

	category := categories[r.IntN(len(categories))]
	titles := catalog[category]
	title := titles[r.IntN(len(titles))]

	docTags := make([]string, 0, 2)
	for _, i := range r.Perm(len(tags))[:1+r.IntN(2)] {
		docTags = append(docTags, tags[i])
	}

	slug := strings.ToLower(strings.ReplaceAll(title, " ", "-"))
	return inmemory.Document{
		ID:           ksuid.New().String(),
		Title:        title,
		Description:  fmt.Sprintf("%s from the %s catalog.", title, category),
		URL:          fmt.Sprintf("/%s/%s", category, slug),
		LastModified: now.AddDate(0, 0, -r.IntN(720)).Format(time.DateOnly),
		Tags:         docTags,
		Category:     category,
	}
}

func seedAction(c *cli.Context) error {
	ctx := c.Context
	count := c.Int("count")
	indexName := c.String("index")

	store, err := newStore(c)
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Starting document generator",
		"table", c.String("table-name"),
		"index", indexName,
		"count", count,
	)

	r := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	now := time.Now()
	for i := 0; i < count; i++ {
		doc := generateDocument(r, now)
		if err := store.Put(ctx, indexName, doc); err != nil {
			return errors.Wrapf(err, "failed to insert document %d", i+1)
		}
		slog.InfoContext(ctx, "Inserted document", "id", doc.ID, "title", doc.Title, "category", doc.Category)
	}

	slog.InfoContext(ctx, "Successfully generated and inserted all documents", "count", count)
	return nil
}
