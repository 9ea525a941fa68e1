package main

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch/algolia"
	"github.com/letmevibethatforyou/sitesearch/internal/ddb"
	"github.com/urfave/cli/v2"
)

var loadAWSConfig = sync.OnceValues(func() (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(context.Background())
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "failed to load AWS config")
	}
	return cfg, nil
})

func newStore(c *cli.Context) (*ddb.Store, error) {
	tableName := c.String("table-name")
	if tableName == "" {
		return nil, errors.New("--table-name is required")
	}

	cfg, err := loadAWSConfig()
	if err != nil {
		return nil, err
	}
	return ddb.NewStore(dynamodb.NewFromConfig(cfg), tableName), nil
}

// fetchSecrets picks the credential source: Secrets Manager by environment,
// then by ARN, then the flags, then the process environment.
func fetchSecrets(c *cli.Context) (algolia.FetchSecrets, error) {
	ctx := c.Context
	env := c.String("env")
	secretArn := c.String("algolia-secret-arn")
	appID := c.String("algolia-app-id")
	apiKey := c.String("algolia-api-key")

	switch {
	case env != "" || secretArn != "":
		cfg, err := loadAWSConfig()
		if err != nil {
			return nil, err
		}
		client := secretsmanager.NewFromConfig(cfg)
		if env != "" {
			slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "environment", env)
			return algolia.AWSSecrets(ctx, client, env), nil
		}
		slog.InfoContext(ctx, "Using AWS Secrets Manager for credentials", "secret_arn", secretArn)
		return algolia.AWSSecretsFromARN(ctx, client, secretArn), nil
	case appID != "" && apiKey != "":
		slog.InfoContext(ctx, "Using static credentials from flags")
		return algolia.StaticSecrets(appID, apiKey), nil
	default:
		slog.InfoContext(ctx, "Using environment variables for credentials")
		return algolia.EnvSecrets(), nil
	}
}
