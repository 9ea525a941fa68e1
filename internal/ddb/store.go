// Package ddb stores page documents in DynamoDB and decodes the table's
// stream records.
//
// Items are keyed by pk (document ID) and sk (the search index the document
// belongs to); the document itself is kept under "object".
package ddb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
	"github.com/letmevibethatforyou/sitesearch/inmemory"
)

// API is the part of *dynamodb.Client the store uses.
type API interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// Record is one table item.
type Record struct {
	ID        string            `dynamodbav:"pk"`
	IndexName string            `dynamodbav:"sk"`
	Object    inmemory.Document `dynamodbav:"object"`
}

// Store reads and writes page documents in one table.
type Store struct {
	client    API
	tableName string
}

// NewStore creates a store over tableName.
func NewStore(client API, tableName string) *Store {
	return &Store{
		client:    client,
		tableName: tableName,
	}
}

// Put writes doc under indexName. doc.ID is the partition key.
func (s *Store) Put(ctx context.Context, indexName string, doc inmemory.Document) error {
	if doc.ID == "" {
		return errors.New("document has no id")
	}

	item, err := attributevalue.MarshalMap(Record{
		ID:        doc.ID,
		IndexName: indexName,
		Object:    doc,
	})
	if err != nil {
		return errors.Wrap(err, "failed to marshal document record")
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return errors.Wrapf(err, "failed to put document %s in DynamoDB", doc.ID)
	}
	return nil
}

// Scan reads every record of the table, following pagination.
func (s *Store) Scan(ctx context.Context) ([]Record, error) {
	var (
		records  []Record
		startKey map[string]types.AttributeValue
	)

	for {
		out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(s.tableName),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to scan table %s", s.tableName)
		}

		var page []Record
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal document records")
		}
		records = append(records, page...)

		if len(out.LastEvaluatedKey) == 0 {
			return records, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

// Documents returns the documents of indexName. An empty indexName returns all.
func (s *Store) Documents(ctx context.Context, indexName string) ([]inmemory.Document, error) {
	records, err := s.Scan(ctx)
	if err != nil {
		return nil, err
	}

	docs := make([]inmemory.Document, 0, len(records))
	for _, r := range records {
		if indexName != "" && r.IndexName != indexName {
			continue
		}
		doc := r.Object
		if doc.ID == "" {
			doc.ID = r.ID
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// Load adds the documents of indexName to searcher and returns how many were added.
func (s *Store) Load(ctx context.Context, indexName string, searcher *inmemory.Searcher) (int, error) {
	docs, err := s.Documents(ctx, indexName)
	if err != nil {
		return 0, err
	}
	for _, doc := range docs {
		searcher.AddDocument(doc)
	}
	return len(docs), nil
}
