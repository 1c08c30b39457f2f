package storage

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kripanshu-singh/congkong-livescore/logging"
)

type DynamoVotingCodesStorage struct {
	Client    DynamoDBAPI
	TableName string
}

func (s *DynamoVotingCodesStorage) Get(ctx context.Context, code string) (*VotingCode, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": code})
	if err != nil {
		logging.Log.Errorf("CODE: failed to marshal key: %v", err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("CODE: GET storage failed: %v", err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var vc VotingCode
	if err := attributevalue.UnmarshalMap(out.Item, &vc); err != nil {
		logging.Log.Errorf("CODE: failed to unmarshal result: %v", err)
		return nil, err
	}
	return &vc, nil
}

func (s *DynamoVotingCodesStorage) GetAll(ctx context.Context) ([]*VotingCode, error) {
	codes := make([]*VotingCode, 0)
	paginator := dynamodb.NewScanPaginator(s.Client, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logging.Log.Errorf("CODE: SCAN storage failed: %v", err)
			return nil, err
		}

		var batch []*VotingCode
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			logging.Log.Errorf("CODE: failed to unmarshal list: %v", err)
			return nil, err
		}
		codes = append(codes, batch...)
	}
	return codes, nil
}

func (s *DynamoVotingCodesStorage) Put(ctx context.Context, code *VotingCode) error {
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	code.Used = false
	item, err := attributevalue.MarshalMap(code)
	if err != nil {
		logging.Log.Errorf("CODE: failed to marshal code: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           &s.TableName,
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		var cce *types.ConditionalCheckFailedException
		if errors.As(err, &cce) {
			return ErrItemWithIDAlreadyExists
		}
		logging.Log.Errorf("CODE: PUT storage failed: %v", err)
		return err
	}
	return nil
}

func (s *DynamoVotingCodesStorage) ResetAll(ctx context.Context) (int, error) {
	codes, err := s.GetAll(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, code := range codes {
		if !code.Used {
			continue
		}
		_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName: aws.String(s.TableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: code.Code},
			},
			UpdateExpression:          aws.String("SET Used = :val"),
			ExpressionAttributeValues: map[string]types.AttributeValue{":val": &types.AttributeValueMemberBOOL{Value: false}},
		})
		if err != nil {
			logging.Log.Errorf("CODE: failed to reset code %s: %v", code.Code, err)
			return updated, err
		}
		updated++
	}
	return updated, nil
}

func (s *DynamoVotingCodesStorage) Delete(ctx context.Context, code string) error {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": code})
	if err != nil {
		logging.Log.Errorf("CODE: failed to marshal key: %v", err)
		return err
	}

	_, err = s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &s.TableName,
		Key:       key,
	})
	if err != nil {
		logging.Log.Errorf("CODE: DEL storage item failed: %v", err)
		return err
	}
	return nil
}
