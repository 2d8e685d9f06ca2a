package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/storage"
)

// GetTransaction retrieves a ledger entry by its transaction ID.
func (s *Store) GetTransaction(ctx context.Context, transactionID string) (*models.Transaction, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"transaction_id": transactionID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("transaction %s: %w", transactionID, storage.ErrNotFound)
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Item, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}

	return &tx, nil
}

// ListTransactionsByAccount queries the sender and recipient GSIs and merges
// the results, newest first, up to limit entries.
func (s *Store) ListTransactionsByAccount(ctx context.Context, accountID string, limit int32) ([]models.Transaction, error) {
	sent, err := s.queryLedgerIndex(ctx, senderIndex, "sender_id", accountID, limit)
	if err != nil {
		return nil, err
	}
	received, err := s.queryLedgerIndex(ctx, recipientIndex, "recipient_id", accountID, limit)
	if err != nil {
		return nil, err
	}

	all := append(sent, received...)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].Timestamp.Equal(all[j].Timestamp) {
			return all[i].Timestamp.After(all[j].Timestamp)
		}
		return all[i].TransactionID > all[j].TransactionID
	})
	if limit > 0 && int(limit) < len(all) {
		all = all[:limit]
	}

	return all, nil
}

func (s *Store) queryLedgerIndex(ctx context.Context, index, attribute, accountID string, limit int32) ([]models.Transaction, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.TransactionsTableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String("#attr = :account"),
		ExpressionAttributeNames: map[string]string{
			"#attr": attribute,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":account": &types.AttributeValueMemberS{Value: accountID},
		},
		ScanIndexForward: aws.Bool(false), // Sort by timestamp in descending order
	}
	if limit > 0 {
		input.Limit = aws.Int32(limit)
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", index, err)
	}

	var txs []models.Transaction
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &txs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
	}

	return txs, nil
}
