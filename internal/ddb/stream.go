package ddb

import (
	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/cockroachdb/errors"
)

// Operation is the kind of change carried by a stream record.
type Operation string

const (
	OperationUpsert Operation = "UPSERT"
	OperationRemove Operation = "REMOVE"
	OperationIgnore Operation = "IGNORE"
)

// Change is a decoded stream record. Record.Object is only set for upserts.
type Change struct {
	Operation Operation
	Record    Record
}

// ParseStreamRecord decodes one stream record. Inserts and modifies decode
// NewImage; removes decode Keys only.
func ParseStreamRecord(record events.DynamoDBEventRecord) (Change, error) {
	switch events.DynamoDBOperationType(record.EventName) {
	case events.DynamoDBOperationTypeInsert, events.DynamoDBOperationTypeModify:
		if record.Change.NewImage == nil {
			return Change{}, errors.New("no new image for insert/modify operation")
		}
		rec, err := UnmarshalImage(record.Change.NewImage)
		if err != nil {
			return Change{}, err
		}
		if rec.ID == "" || rec.IndexName == "" {
			return Change{}, errors.New("missing pk or sk in new image")
		}
		if rec.Object.ID == "" {
			rec.Object.ID = rec.ID
		}
		return Change{Operation: OperationUpsert, Record: rec}, nil

	case events.DynamoDBOperationTypeRemove:
		rec, err := UnmarshalImage(record.Change.Keys)
		if err != nil {
			return Change{}, err
		}
		if rec.ID == "" || rec.IndexName == "" {
			return Change{}, errors.New("missing pk or sk in keys")
		}
		return Change{Operation: OperationRemove, Record: rec}, nil

	default:
		return Change{Operation: OperationIgnore}, nil
	}
}

// UnmarshalImage converts a stream image into a Record.
func UnmarshalImage(image map[string]events.DynamoDBAttributeValue) (Record, error) {
	item, err := convertMap(image)
	if err != nil {
		return Record{}, err
	}

	var record Record
	if err := attributevalue.UnmarshalMap(item, &record); err != nil {
		return Record{}, errors.Wrap(err, "failed to unmarshal stream image")
	}
	return record, nil
}

func convertMap(in map[string]events.DynamoDBAttributeValue) (map[string]types.AttributeValue, error) {
	out := make(map[string]types.AttributeValue, len(in))
	for k, v := range in {
		av, err := convert(v)
		if err != nil {
			return nil, errors.Wrapf(err, "attribute %q", k)
		}
		out[k] = av
	}
	return out, nil
}

// convert maps a stream attribute value to the SDK representation.
func convert(v events.DynamoDBAttributeValue) (types.AttributeValue, error) {
	switch v.DataType() {
	case events.DataTypeString:
		return &types.AttributeValueMemberS{Value: v.String()}, nil
	case events.DataTypeNumber:
		return &types.AttributeValueMemberN{Value: v.Number()}, nil
	case events.DataTypeBoolean:
		return &types.AttributeValueMemberBOOL{Value: v.Boolean()}, nil
	case events.DataTypeNull:
		return &types.AttributeValueMemberNULL{Value: true}, nil
	case events.DataTypeBinary:
		return &types.AttributeValueMemberB{Value: v.Binary()}, nil
	case events.DataTypeStringSet:
		return &types.AttributeValueMemberSS{Value: v.StringSet()}, nil
	case events.DataTypeNumberSet:
		return &types.AttributeValueMemberNS{Value: v.NumberSet()}, nil
	case events.DataTypeBinarySet:
		return &types.AttributeValueMemberBS{Value: v.BinarySet()}, nil
	case events.DataTypeList:
		list := v.List()
		out := make([]types.AttributeValue, 0, len(list))
		for _, item := range list {
			av, err := convert(item)
			if err != nil {
				return nil, err
			}
			out = append(out, av)
		}
		return &types.AttributeValueMemberL{Value: out}, nil
	case events.DataTypeMap:
		m, err := convertMap(v.Map())
		if err != nil {
			return nil, err
		}
		return &types.AttributeValueMemberM{Value: m}, nil
	default:
		return nil, errors.Newf("unsupported attribute type %v", v.DataType())
	}
}
