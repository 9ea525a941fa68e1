package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch/algolia"
	"github.com/letmevibethatforyou/sitesearch/internal/indexsync"
	"github.com/urfave/cli/v2"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	app := &cli.App{
		Name:  "sync-algolia",
		Usage: "Apply page document stream events from DynamoDB to Algolia",
		Flags: []cli.Flag{
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
			&cli.IntFlag{
				Name:    "batch-size",
				Usage:   "Objects per Algolia write",
				EnvVars: []string{"BATCH_SIZE"},
				Value:   indexsync.DefaultBatchSize,
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
	ctx := c.Context
	env := c.String("env")
	secretArn := c.String("algolia-secret-arn")

	var fetchSecrets algolia.FetchSecrets
	switch {
	case env != "" || secretArn != "":
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to load AWS config")
		}
		client := secretsmanager.NewFromConfig(cfg)
		if env != "" {
			slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)
			fetchSecrets = algolia.AWSSecrets(ctx, client, env)
		} else {
			slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "secret_arn", secretArn)
			fetchSecrets = algolia.AWSSecretsFromARN(ctx, client, secretArn)
		}
	case c.String("algolia-app-id") != "" && c.String("algolia-api-key") != "":
		slog.InfoContext(ctx, "Using static credentials from flags")
		fetchSecrets = algolia.StaticSecrets(c.String("algolia-app-id"), c.String("algolia-api-key"))
	default:
		slog.InfoContext(ctx, "Using environment variables for credentials")
		fetchSecrets = algolia.EnvSecrets()
	}

	syncer := indexsync.New(algolia.NewClient(fetchSecrets), indexsync.WithBatchSize(c.Int("batch-size")))

	if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		return errors.New("sync-algolia only runs inside AWS Lambda")
	}
	lambda.Start(syncer.HandleStreamEvent)
	return nil
}
