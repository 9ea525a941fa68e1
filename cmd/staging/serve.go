package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/letmevibethatforyou/sitesearch"
	"github.com/letmevibethatforyou/sitesearch/algolia"
	"github.com/letmevibethatforyou/sitesearch/graphql"
	"github.com/letmevibethatforyou/sitesearch/inmemory"
	"github.com/letmevibethatforyou/sitesearch/internal/staging"
	"github.com/urfave/cli/v2"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the search endpoint over HTTP, or API Gateway when running in Lambda",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Usage:   "Listen address",
				EnvVars: []string{"ADDR"},
				Value:   ":8080",
			},
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Search backend: memory or algolia",
				EnvVars: []string{"SEARCH_BACKEND"},
				Value:   "memory",
			},
			&cli.StringSliceFlag{
				Name:    "documents",
				Aliases: []string{"d"},
				Usage:   "JSON file with an array of page documents for the memory backend; repeatable",
			},
			&cli.StringSliceFlag{
				Name:    "allow-origin",
				Usage:   "Allowed cross-origin caller; repeatable, default any",
				EnvVars: []string{"ALLOW_ORIGINS"},
			},
			&cli.StringFlag{
				Name:    "operation-field",
				Usage:   "Data field answers are keyed by",
				EnvVars: []string{"OPERATION_FIELD"},
				Value:   graphql.DefaultResultField,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for each search",
				Value: 10 * time.Second,
			},
			tableFlag,
			indexFlag,
		}, credentialFlags...),
		Action: serveAction,
	}
}

func serveAction(c *cli.Context) error {
	ctx := c.Context

	searcher, err := newSearcher(c)
	if err != nil {
		return err
	}

	handler := staging.NewHandler(searcher,
		staging.WithOperation(graphql.NewOperation(graphql.DefaultOperationName, c.String("operation-field"))),
		staging.WithTimeout(c.Duration("timeout")),
		staging.WithAllowOrigins(c.StringSlice("allow-origin")...),
	)

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		slog.InfoContext(ctx, "Running in Lambda environment")
		lambda.Start(handler.HandleAPIGateway)
		return nil
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    c.String("addr"),
		Handler: handler.Router(),
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "Server starting", "addr", srv.Addr, "backend", c.String("backend"))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.InfoContext(shutdownCtx, "Shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "server shutdown")
	}
	return nil
}

func newSearcher(c *cli.Context) (sitesearch.Searcher, error) {
	ctx := c.Context

	switch backend := c.String("backend"); backend {
	case "memory":
		searcher := inmemory.New()
		for _, path := range c.StringSlice("documents") {
			f, err := os.Open(path)
			if err != nil {
				return nil, errors.Wrap(err, "failed to open documents")
			}
			n, err := searcher.LoadJSON(f)
			f.Close()
			if err != nil {
				return nil, errors.Wrapf(err, "failed to load %s", path)
			}
			slog.InfoContext(ctx, "Loaded documents", "path", path, "count", n)
		}

		if c.String("table-name") != "" {
			store, err := newStore(c)
			if err != nil {
				return nil, err
			}
			n, err := store.Load(ctx, c.String("index"), searcher)
			if err != nil {
				return nil, err
			}
			slog.InfoContext(ctx, "Loaded documents from DynamoDB", "table", c.String("table-name"), "count", n)
		}
		return searcher, nil

	case "algolia":
		secrets, err := fetchSecrets(c)
		if err != nil {
			return nil, err
		}
		return algolia.NewSearcher(algolia.NewClient(secrets), c.String("index")), nil

	default:
		return nil, errors.Newf("unknown backend %q", backend)
	}
}
