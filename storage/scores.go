package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kripanshu-singh/congkong-livescore/logging"
)

type DynamoScoreStorage struct {
	Client    DynamoDBAPI
	TableName string
}

func (s *DynamoScoreStorage) Get(ctx context.Context, id string) (*ScoreRecord, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"PK": id})
	if err != nil {
		logging.Log.Errorf("SCORE: failed to marshal key for ID %s: %v", id, err)
		return nil, err
	}

	out, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &s.TableName,
		Key:            key,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logging.Log.Errorf("SCORE: GetItem for ID %s failed: %v", id, err)
		return nil, err
	}
	if out.Item == nil {
		return nil, ErrNotFound
	}

	var record ScoreRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		logging.Log.Errorf("SCORE: failed to unmarshal score record: %v", err)
		return nil, err
	}
	return &record, nil
}

func (s *DynamoScoreStorage) GetAll(ctx context.Context) ([]*ScoreRecord, error) {
	records := make([]*ScoreRecord, 0)
	paginator := dynamodb.NewScanPaginator(s.Client, &dynamodb.ScanInput{
		TableName:      &s.TableName,
		ConsistentRead: aws.Bool(true),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			logging.Log.Errorf("SCORE: scan failed: %v", err)
			return nil, err
		}

		var batch []*ScoreRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &batch); err != nil {
			logging.Log.Errorf("SCORE: failed to unmarshal score list: %v", err)
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

// Put is a full-replace upsert keyed by the record ID.
func (s *DynamoScoreStorage) Put(ctx context.Context, record *ScoreRecord) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		logging.Log.Errorf("SCORE: failed to marshal score record: %v", err)
		return err
	}

	_, err = s.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.TableName,
		Item:      item,
	})
	if err != nil {
		logging.Log.Errorf("SCORE: failed to put score record %s: %v", record.ID, err)
		return err
	}
	return nil
}

func (s *DynamoScoreStorage) DeleteAll(ctx context.Context) error {
	var lastEvaluatedKey map[string]types.AttributeValue

	for {
		scanOutput, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            &s.TableName,
			ExclusiveStartKey:    lastEvaluatedKey,
			ProjectionExpression: aws.String("PK"),
		})
		if err != nil {
			logging.Log.Errorf("SCORE: scan for delete failed: %v", err)
			return err
		}

		writeRequests := make([]types.WriteRequest, 0, len(scanOutput.Items))
		for _, item := range scanOutput.Items {
			writeRequests = append(writeRequests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{
					Key: map[string]types.AttributeValue{"PK": item["PK"]},
				},
			})
		}

		if err := batchDelete(ctx, s.Client, s.TableName, writeRequests); err != nil {
			logging.Log.Errorf("SCORE: batch delete failed: %v", err)
			return err
		}

		if scanOutput.LastEvaluatedKey == nil {
			break
		}
		lastEvaluatedKey = scanOutput.LastEvaluatedKey
	}

	logging.Log.Infof("SCORE: cleared table %s", s.TableName)
	return nil
}

// Unprocessed batch items are retried with doubling backoff, batchAttempts times in all.
var (
	batchAttempts = 6
	batchBackoff  = 50 * time.Millisecond
)

// batchDelete sends delete requests in chunks of 25, the BatchWriteItem limit.
// It fails if DynamoDB still reports unprocessed items after the last attempt.
func batchDelete(ctx context.Context, client DynamoDBAPI, table string, requests []types.WriteRequest) error {
	for i := 0; i < len(requests); i += 25 {
		end := min(i+25, len(requests))
		if err := batchWrite(ctx, client, table, requests[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func batchWrite(ctx context.Context, client DynamoDBAPI, table string, pending []types.WriteRequest) error {
	wait := batchBackoff
	for attempt := 1; ; attempt++ {
		out, err := client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{table: pending},
		})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems[table]
		if len(pending) == 0 {
			return nil
		}
		if attempt == batchAttempts {
			return fmt.Errorf("%d items in %s still unprocessed after %d attempts", len(pending), table, attempt)
		}

		logging.Log.Warnf("STORAGE: %d unprocessed items in %s, retrying in %s", len(pending), table, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
}
