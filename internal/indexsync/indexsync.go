// Package indexsync copies page documents from the DynamoDB table into
// Algolia indexes, either in full or from the table's stream.
package indexsync

import (
	"context"
	"log/slog"
	"sort"

	"github.com/aws/aws-lambda-go/events"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch/algolia"
	"github.com/letmevibethatforyou/sitesearch/inmemory"
	"github.com/letmevibethatforyou/sitesearch/internal/ddb"
)

// DefaultBatchSize is the number of objects sent per Algolia batch.
const DefaultBatchSize = 500

// Writer receives index changes. *algolia.Client implements it.
type Writer interface {
	SaveObjects(ctx context.Context, indexName string, objects []algolia.Object) error
	DeleteObjects(ctx context.Context, indexName string, objectIDs []string) error
}

// Source lists table records. *ddb.Store implements it.
type Source interface {
	Scan(ctx context.Context) ([]ddb.Record, error)
}

// Syncer writes table records to their indexes.
type Syncer struct {
	writer    Writer
	batchSize int
}

// Option configures a Syncer.
type Option func(*Syncer)

// WithBatchSize overrides DefaultBatchSize.
func WithBatchSize(n int) Option {
	return func(s *Syncer) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// New creates a Syncer writing to w.
func New(w Writer, opts ...Option) *Syncer {
	s := &Syncer{
		writer:    w,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ToObject converts a document to its index representation.
func ToObject(doc inmemory.Document) algolia.Object {
	return algolia.Object{
		ObjectID:     doc.ID,
		Title:        doc.Title,
		Description:  doc.Description,
		URL:          doc.URL,
		LastModified: doc.LastModified,
		Tags:         doc.Tags,
		Category:     doc.Category,
	}
}

// Full saves every record of src into its index. When indexName is set,
// records of other indexes are skipped. It returns the number of objects saved.
func (s *Syncer) Full(ctx context.Context, src Source, indexName string) (int, error) {
	records, err := src.Scan(ctx)
	if err != nil {
		return 0, err
	}

	byIndex := make(map[string][]algolia.Object)
	for _, r := range records {
		if indexName != "" && r.IndexName != indexName {
			continue
		}
		doc := r.Object
		if doc.ID == "" {
			doc.ID = r.ID
		}
		byIndex[r.IndexName] = append(byIndex[r.IndexName], ToObject(doc))
	}

	saved := 0
	for _, name := range sortedKeys(byIndex) {
		objects := byIndex[name]
		for start := 0; start < len(objects); start += s.batchSize {
			end := min(start+s.batchSize, len(objects))
			if err := s.writer.SaveObjects(ctx, name, objects[start:end]); err != nil {
				return saved, err
			}
			saved += end - start
		}
		slog.InfoContext(ctx, "Synced index", "index", name, "objects", len(objects))
	}
	return saved, nil
}

// HandleStreamEvent applies one batch of stream records. Records that cannot
// be decoded are logged and skipped; write failures abort so the batch is retried.
func (s *Syncer) HandleStreamEvent(ctx context.Context, e events.DynamoDBEvent) error {
	slog.InfoContext(ctx, "Processing DynamoDB stream records", "record_count", len(e.Records))

	for _, record := range e.Records {
		change, err := ddb.ParseStreamRecord(record)
		if err != nil {
			slog.WarnContext(ctx, "Skipping stream record", "event_id", record.EventID, "error", err)
			continue
		}

		if err := s.apply(ctx, change); err != nil {
			slog.ErrorContext(ctx, "Error processing record", "event_id", record.EventID, "error", err)
			return errors.Wrapf(err, "record %s", record.EventID)
		}
	}
	return nil
}

func (s *Syncer) apply(ctx context.Context, change ddb.Change) error {
	rec := change.Record
	switch change.Operation {
	case ddb.OperationUpsert:
		slog.InfoContext(ctx, "Saving object to Algolia", "object_id", rec.ID, "index", rec.IndexName)
		return s.writer.SaveObjects(ctx, rec.IndexName, []algolia.Object{ToObject(rec.Object)})
	case ddb.OperationRemove:
		slog.InfoContext(ctx, "Deleting object from Algolia", "object_id", rec.ID, "index", rec.IndexName)
		return s.writer.DeleteObjects(ctx, rec.IndexName, []string{rec.ID})
	default:
		return nil
	}
}

func sortedKeys(m map[string][]algolia.Object) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
