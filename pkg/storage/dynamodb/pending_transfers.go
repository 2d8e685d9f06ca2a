package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/storage"
)

// PutPendingTransfer stores a new pending transfer. The expires_at attribute doubles
// as the table's TTL attribute, so DynamoDB eventually removes abandoned records on its own.
func (s *Store) PutPendingTransfer(ctx context.Context, pt *models.PendingTransfer) error {
	if pt.Status == "" {
		pt.Status = models.LIVE
	}

	ptAV, err := marshalMap(pt)
	if err != nil {
		return fmt.Errorf("failed to marshal pending transfer: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.PendingTransfersTableName),
		Item:                ptAV,
		ConditionExpression: aws.String("attribute_not_exists(#token)"),
		ExpressionAttributeNames: map[string]string{
			"#token": "token",
		},
	}

	_, err = s.Client.PutItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to put pending transfer: %w", err)
	}

	return nil
}

// TakePendingTransfer removes the record in a single conditional DeleteItem call and
// inspects the old image it returns. Only one concurrent caller can receive the old image,
// so only one confirmer ever sees a given record.
func (s *Store) TakePendingTransfer(ctx context.Context, token string, now time.Time) (*models.PendingTransfer, error) {
	input := &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.PendingTransfersTableName),
		Key:                 tokenKey(token),
		ConditionExpression: aws.String("attribute_exists(#token) AND #status = :live"),
		ExpressionAttributeNames: map[string]string{
			"#token":  "token",
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":live": &types.AttributeValueMemberS{Value: string(models.LIVE)},
		},
		ReturnValues: types.ReturnValueAllOld,
	}

	result, err := s.Client.DeleteItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to take pending transfer: %w", err)
	}

	if len(result.Attributes) == 0 {
		return nil, storage.ErrNotFound
	}

	var pt models.PendingTransfer
	if err := attributevalue.UnmarshalMap(result.Attributes, &pt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pending transfer: %w", err)
	}

	if pt.IsExpired(now) {
		return nil, storage.ErrExpired
	}

	return &pt, nil
}

// DeletePendingTransfer removes a pending transfer regardless of its state.
func (s *Store) DeletePendingTransfer(ctx context.Context, token string) error {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(s.PendingTransfersTableName),
		Key:       tokenKey(token),
	}

	if _, err := s.Client.DeleteItem(ctx, input); err != nil {
		return fmt.Errorf("failed to delete pending transfer: %w", err)
	}

	return nil
}

// SweepExpiredPendingTransfers scans for records past expires_at and deletes them.
// Each delete re-checks the expiry so a record is never removed while still live.
func (s *Store) SweepExpiredPendingTransfers(ctx context.Context, now time.Time) (int, error) {
	nowAV := epochAV(now)

	var (
		removed   int
		startKey  map[string]types.AttributeValue
		firstPage = true
	)
	for firstPage || startKey != nil {
		firstPage = false

		result, err := s.Client.Scan(ctx, &dynamodb.ScanInput{
			TableName:            aws.String(s.PendingTransfersTableName),
			FilterExpression:     aws.String("expires_at < :now"),
			ProjectionExpression: aws.String("#token"),
			ExpressionAttributeNames: map[string]string{
				"#token": "token",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":now": nowAV,
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return removed, fmt.Errorf("failed to scan for expired pending transfers: %w", err)
		}
		startKey = result.LastEvaluatedKey

		for _, item := range result.Items {
			tokenAV, ok := item["token"].(*types.AttributeValueMemberS)
			if !ok {
				continue
			}

			_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
				TableName:           aws.String(s.PendingTransfersTableName),
				Key:                 tokenKey(tokenAV.Value),
				ConditionExpression: aws.String("expires_at < :now"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":now": nowAV,
				},
			})
			if err != nil {
				var condCheckFailed *types.ConditionalCheckFailedException
				if errors.As(err, &condCheckFailed) {
					// Already taken or swept by someone else.
					continue
				}
				return removed, fmt.Errorf("failed to delete expired pending transfer: %w", err)
			}
			removed++
		}
	}

	return removed, nil
}

func tokenKey(token string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"token": &types.AttributeValueMemberS{Value: token},
	}
}
