package main

import (
	"io/fs"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	// Configure JSON logging for AWS environments
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	app := &cli.App{
		Name:  "staging",
		Usage: "Staging search endpoint and its page document tooling",
		Commands: []*cli.Command{
			serveCommand(),
			seedCommand(),
			syncCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

var tableFlag = &cli.StringFlag{
	Name:    "table-name",
	Aliases: []string{"t"},
	Usage:   "DynamoDB table holding page documents",
	EnvVars: []string{"TABLE_NAME"},
}

var indexFlag = &cli.StringFlag{
	Name:    "index",
	Aliases: []string{"i"},
	Usage:   "Search index name; stored as the document sort key",
	EnvVars: []string{"ALGOLIA_INDEX", "SEARCH_INDEX"},
	Value:   "pages",
}

var credentialFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "env",
		Usage:   "Environment name for AWS Secrets Manager (takes precedence over API key/ID flags)",
		EnvVars: []string{"ENV", "ENVIRONMENT"},
	},
	&cli.StringFlag{
		Name:    "algolia-secret-arn",
		Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
		EnvVars: []string{"ALGOLIA_SECRET_ARN"},
	},
	&cli.StringFlag{
		Name:    "algolia-app-id",
		Usage:   "Algolia application ID",
		EnvVars: []string{"ALGOLIA_APP_ID"},
	},
	&cli.StringFlag{
		Name:    "algolia-api-key",
		Usage:   "Algolia API key",
		EnvVars: []string{"ALGOLIA_API_KEY"},
	},
}
