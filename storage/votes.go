package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kripanshu-singh/congkong-livescore/logging"
)

// DynamoAudienceVoteStorage writes ballots in a transaction that also
// consumes the code in CodesTableName.
type DynamoAudienceVoteStorage struct {
	Client         DynamoDBAPI
	TableName      string
	CodesTableName string
}

// maxTransactItems is the TransactWriteItems limit; one slot goes to the code.
const maxTransactItems = 100

func (s *DynamoAudienceVoteStorage) GetAll(ctx context.Context) ([]*AudienceVote, error) {
	votes := make([]*AudienceVote, 0)
	paginator := dynamodb.NewScanPaginator(s.Client, &dynamodb.ScanInput{
		TableName: &s.TableName,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logging.Log.Errorf("VOTE: scan failed: %v", err)
			return nil, err
		}

		var batch []*AudienceVote
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			logging.Log.Errorf("VOTE: failed to unmarshal vote list: %v", err)
			return nil, err
		}
		votes = append(votes, batch...)
	}
	return votes, nil
}

func (s *DynamoAudienceVoteStorage) Cast(ctx context.Context, code string, votes []*AudienceVote) error {
	if len(votes)+1 > maxTransactItems {
		return fmt.Errorf("ballot has %d votes, at most %d fit one transaction", len(votes), maxTransactItems-1)
	}

	items := make([]types.TransactWriteItem, 0, len(votes)+1)
	items = append(items, types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(s.CodesTableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: code},
			},
			UpdateExpression:    aws.String("SET Used = :used"),
			ConditionExpression: aws.String("attribute_exists(PK) AND Used = :unused"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":used":   &types.AttributeValueMemberBOOL{Value: true},
				":unused": &types.AttributeValueMemberBOOL{Value: false},
			},
		},
	})
	for _, vote := range votes {
		item, err := attributevalue.MarshalMap(vote)
		if err != nil {
			logging.Log.Errorf("VOTE: failed to marshal vote: %v", err)
			return err
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.TableName),
				Item:                item,
				ConditionExpression: aws.String("attribute_not_exists(PK) AND attribute_not_exists(SK)"),
			},
		})
	}

	_, err := s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			return castCancellation(tce)
		}
		logging.Log.Errorf("VOTE: failed to cast ballot for %s: %v", code, err)
		return err
	}
	return nil
}

// castCancellation maps the per-item reasons of a cancelled cast. Reason 0 is
// the code update, the rest are the votes in order.
func castCancellation(tce *types.TransactionCanceledException) error {
	for i, reason := range tce.CancellationReasons {
		if aws.ToString(reason.Code) != "ConditionalCheckFailed" {
			continue
		}
		if i == 0 {
			return ErrNotFound
		}
		return ErrItemWithIDAlreadyExists
	}
	logging.Log.Errorf("VOTE: ballot transaction cancelled: %v", tce)
	return tce
}

func (s *DynamoAudienceVoteStorage) GetByCode(ctx context.Context, code string) ([]*AudienceVote, error) {
	input := &dynamodb.QueryInput{
		TableName:              &s.TableName,
		KeyConditionExpression: aws.String("PK = :code"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
		},
	}

	output, err := s.Client.Query(ctx, input)
	if err != nil {
		logging.Log.Errorf("VOTE: failed to query votes by code: %v", err)
		return nil, err
	}

	var votes []*AudienceVote
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &votes); err != nil {
		logging.Log.Errorf("VOTE: failed to unmarshal votes for code %s: %v", code, err)
		return nil, err
	}
	return votes, nil
}

func (s *DynamoAudienceVoteStorage) DeleteAll(ctx context.Context) error {
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		scanOutput, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            &s.TableName,
			ExclusiveStartKey:    lastEvaluatedKey,
			ProjectionExpression: aws.String("PK, SK"),
		})
		if err != nil {
			logging.Log.Errorf("VOTE: scan for delete failed: %v", err)
			return err
		}

		writeRequests := make([]types.WriteRequest, 0, len(scanOutput.Items))
		for _, item := range scanOutput.Items {
			writeRequests = append(writeRequests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{
						"PK": item["PK"],
						"SK": item["SK"],
					},
				},
			})
		}

		if err := batchDelete(ctx, s.Client, s.TableName, writeRequests); err != nil {
			logging.Log.Errorf("VOTE: batch delete failed: %v", err)
			return err
		}
		logging.Log.Infof("VOTE: deleted batch of %d items", len(writeRequests))

		if scanOutput.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = scanOutput.LastEvaluatedKey
	}

	return nil
}
