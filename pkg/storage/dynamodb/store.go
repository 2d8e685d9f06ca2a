package dynamodb

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/otp-transfers/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client                    DynamoDBAPI
	AccountsTableName         string
	PendingTransfersTableName string
	TransactionsTableName     string

	// SettlementRetries bounds how often a settlement is retried after a transaction conflict.
	SettlementRetries int
	// RetryBackoff is the base delay between settlement retries.
	RetryBackoff time.Duration
}

// New creates a new Store.
func New(client DynamoDBAPI, accountsTable, pendingTransfersTable, transactionsTable string) *Store {
	return &Store{
		Client:                    client,
		AccountsTableName:         accountsTable,
		PendingTransfersTableName: pendingTransfersTable,
		TransactionsTableName:     transactionsTable,
		SettlementRetries:         3,
		RetryBackoff:              50 * time.Millisecond,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)

const (
	phoneIndex     = "phone_number-index"
	emailIndex     = "email-index"
	senderIndex    = "sender_id-timestamp-index"
	recipientIndex = "recipient_id-timestamp-index"
)

// timestampLayout keeps every stored timestamp the same width, so string order
// on the timestamp sort keys is chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

func encodeTime(t time.Time) (types.AttributeValue, error) {
	return &types.AttributeValueMemberS{Value: t.UTC().Format(timestampLayout)}, nil
}

func withFixedTimestamps(o *attributevalue.EncoderOptions) {
	o.EncodeTime = encodeTime
}

// marshalMap is attributevalue.MarshalMap with fixed-width timestamps.
func marshalMap(in interface{}) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMapWithOptions(in, withFixedTimestamps)
}

// marshal is attributevalue.Marshal with fixed-width timestamps.
func marshal(in interface{}) (types.AttributeValue, error) {
	return attributevalue.MarshalWithOptions(in, withFixedTimestamps)
}
