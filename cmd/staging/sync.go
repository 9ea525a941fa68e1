package main

import (
	"log/slog"

	"github.com/letmevibethatforyou/sitesearch/algolia"
	"github.com/letmevibethatforyou/sitesearch/internal/indexsync"
	"github.com/urfave/cli/v2"
)

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "Copy every page document from DynamoDB into its Algolia index",
		Flags: append([]cli.Flag{
			tableFlag,
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Objects per Algolia write",
				Value: indexsync.DefaultBatchSize,
			},
		}, credentialFlags...),
		Action: syncAction,
	}
}

func syncAction(c *cli.Context) error {
	ctx := c.Context

	store, err := newStore(c)
	if err != nil {
		return err
	}
	secrets, err := fetchSecrets(c)
	if err != nil {
		return err
	}

	syncer := indexsync.New(algolia.NewClient(secrets), indexsync.WithBatchSize(c.Int("batch-size")))
	n, err := syncer.Full(ctx, store, "")
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Sync complete", "table", c.String("table-name"), "objects", n)
	return nil
}
