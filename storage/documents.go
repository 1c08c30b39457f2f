package storage

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kripanshu-singh/congkong-livescore/logging"
)

// DynamoDocumentStorage keeps each singleton document as one item: PK is the
// document name and Body holds the document marshalled through its json tags.
type DynamoDocumentStorage struct {
	Client    DynamoDBAPI
	TableName string
}

func (s *DynamoDocumentStorage) Load(ctx context.Context, name string, out any) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": name})
	if err != nil {
		logging.Log.Errorf("DOCUMENT: failed to marshal key for %s: %v", name, err)
		return err
	}

	res, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.TableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logging.Log.Errorf("DOCUMENT: GetItem for %s failed: %v", name, err)
		return err
	}
	body, ok := res.Item["Body"]
	if !ok {
		return ErrDocumentNotFound
	}

	if err := attributevalue.UnmarshalWithOptions(body, out, func(o *attributevalue.DecoderOptions) {
		o.TagKey = "json"
	}); err != nil {
		logging.Log.Errorf("DOCUMENT: failed to unmarshal %s: %v", name, err)
		return err
	}
	return nil
}

func (s *DynamoDocumentStorage) Save(ctx context.Context, name string, doc any) error {
	body, err := attributevalue.MarshalWithOptions(doc, func(o *attributevalue.EncoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		logging.Log.Errorf("DOCUMENT: failed to marshal %s: %v", name, err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item: map[string]types.AttributeValue{
			"PK":        &types.AttributeValueMemberS{Value: name},
			"Body":      body,
			"UpdatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		logging.Log.Errorf("DOCUMENT: failed to save %s: %v", name, err)
		return err
	}
	return nil
}
