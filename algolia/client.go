// Package algolia provides a lazily connected Algolia client with configurable
// secret management, and a sitesearch.Searcher backed by an Algolia index.
package algolia

import (
	"context"
	"os"
	"sync"

	"github.com/algolia/algoliasearch-client-go/v3/algolia/search"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Secrets holds the Algolia application credentials.
type Secrets struct {
	// AppID is the Algolia application ID.
	AppID string `json:"app_id"`
	// APIKey must allow search, and writes when used by sync.
	APIKey string `json:"api_key"`
}

// FetchSecrets is a function type that retrieves Algolia credentials.
// It allows for different secret retrieval strategies (static, environment variables, etc.).
type FetchSecrets func() (Secrets, error)

// StaticSecrets returns a FetchSecrets function that provides static credentials.
func StaticSecrets(appID, apiKey string) FetchSecrets {
	return func() (Secrets, error) {
		return Secrets{
			AppID:  appID,
			APIKey: apiKey,
		}, nil
	}
}

// EnvSecrets reads ALGOLIA_APP_ID and ALGOLIA_API_KEY.
func EnvSecrets() FetchSecrets {
	return func() (Secrets, error) {
		appID := os.Getenv("ALGOLIA_APP_ID")
		if appID == "" {
			return Secrets{}, errors.New("ALGOLIA_APP_ID environment variable is not set")
		}

		apiKey := os.Getenv("ALGOLIA_API_KEY")
		if apiKey == "" {
			return Secrets{}, errors.New("ALGOLIA_API_KEY environment variable is not set")
		}

		return Secrets{
			AppID:  appID,
			APIKey: apiKey,
		}, nil
	}
}

// Index is the part of *search.Index the package uses.
type Index interface {
	Search(query string, opts ...interface{}) (search.QueryRes, error)
	SaveObjects(objects interface{}, opts ...interface{}) (search.GroupBatchRes, error)
	DeleteObjects(objectIDs []string, opts ...interface{}) (search.BatchRes, error)
}

// Object is one page document as stored in an Algolia index.
type Object struct {
	ObjectID     string   `json:"objectID"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	URL          string   `json:"url"`
	LastModified string   `json:"lastModified"`
	Tags         []string `json:"tags"`
	Category     string   `json:"category"`
}

// Client connects to Algolia on first use.
type Client struct {
	index  func(name string) (Index, error)
	tracer trace.Tracer
}

// NewClient creates a client. Secrets are fetched once, on the first call
// that needs the connection.
func NewClient(fetchSecrets FetchSecrets) *Client {
	getClient := sync.OnceValues(func() (*search.Client, error) {
		secrets, err := fetchSecrets()
		if err != nil {
			return nil, errors.Wrap(err, "failed to fetch secrets")
		}

		if secrets.AppID == "" {
			return nil, errors.New("AppID is empty")
		}

		if secrets.APIKey == "" {
			return nil, errors.New("APIKey is empty")
		}

		return search.NewClient(secrets.AppID, secrets.APIKey), nil
	})

	return &Client{
		index: func(name string) (Index, error) {
			client, err := getClient()
			if err != nil {
				return nil, err
			}
			return client.InitIndex(name), nil
		},
		tracer: otel.Tracer("sitesearch-algolia"),
	}
}

// SaveObjects adds or replaces objects in indexName.
func (c *Client) SaveObjects(ctx context.Context, indexName string, objects []Object) error {
	if len(objects) == 0 {
		return nil
	}

	_, span := c.tracer.Start(ctx, "algolia.save_objects",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.Int("algolia.object_count", len(objects)),
		),
	)
	defer span.End()

	index, err := c.index(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if _, err := index.SaveObjects(objects); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to save objects")
		return errors.Wrapf(err, "failed to save %d objects to Algolia index %s", len(objects), indexName)
	}

	span.SetStatus(codes.Ok, "objects saved")
	return nil
}

// DeleteObjects removes objects from indexName by ID.
func (c *Client) DeleteObjects(ctx context.Context, indexName string, objectIDs []string) error {
	if len(objectIDs) == 0 {
		return nil
	}

	_, span := c.tracer.Start(ctx, "algolia.delete_objects",
		trace.WithAttributes(
			attribute.String("algolia.index_name", indexName),
			attribute.Int("algolia.object_count", len(objectIDs)),
		),
	)
	defer span.End()

	index, err := c.index(indexName)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to get Algolia client")
		return err
	}

	if _, err := index.DeleteObjects(objectIDs); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete objects")
		return errors.Wrapf(err, "failed to delete %d objects from Algolia index %s", len(objectIDs), indexName)
	}

	span.SetStatus(codes.Ok, "objects deleted")
	return nil
}
