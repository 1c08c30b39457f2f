package storage

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/kripanshu-singh/congkong-livescore/logging"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Dynamo storages.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type DynamoConfig struct {
	Region             string
	Endpoint           string
	TableNameScores    string
	TableNameDocuments string
	TableNameCodes     string
	TableNameVotes     string
}

// NewDynamoBackend loads the default AWS config and wires every collection to its table.
// A non-empty Endpoint points the client at localstack or DynamoDB local.
func NewDynamoBackend(ctx context.Context, cfg DynamoConfig) (*Backend, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		logging.Log.Errorf("STORAGE: failed to load AWS config: %v", err)
		return nil, err
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewDynamoBackendWithClient(client, cfg), nil
}

func NewDynamoBackendWithClient(client DynamoDBAPI, cfg DynamoConfig) *Backend {
	return &Backend{
		Scores: &DynamoScoreStorage{
			Client:    client,
			TableName: cfg.TableNameScores,
		},
		Documents: &DynamoDocumentStorage{
			Client:    client,
			TableName: cfg.TableNameDocuments,
		},
		Codes: &DynamoVotingCodesStorage{
			Client:    client,
			TableName: cfg.TableNameCodes,
		},
		Votes: &DynamoAudienceVoteStorage{
			Client:         client,
			TableName:      cfg.TableNameVotes,
			CodesTableName: cfg.TableNameCodes,
		},
	}
}
