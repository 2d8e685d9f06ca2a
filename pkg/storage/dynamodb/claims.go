package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/storage"
	"github.com/google/uuid"
)

// ClaimPendingTransfer atomically moves a live record to CLAIMED under a fresh claim ID.
// A claim whose lease has lapsed can be taken over, so a crashed confirmer never strands a token.
func (s *Store) ClaimPendingTransfer(ctx context.Context, token string, now time.Time, lease time.Duration) (*models.PendingTransfer, error) {
	claimID := uuid.NewString()
	nowAV := epochAV(now)

	input := &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.PendingTransfersTableName),
		Key:                 tokenKey(token),
		UpdateExpression:    aws.String("SET #status = :claimed, claim_id = :claim_id, claim_expires_at = :lease_until"),
		ConditionExpression: aws.String("attribute_exists(#token) AND expires_at >= :now AND (#status = :live OR claim_expires_at < :now)"),
		ExpressionAttributeNames: map[string]string{
			"#token":  "token",
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":claimed":     &types.AttributeValueMemberS{Value: string(models.CLAIMED)},
			":live":        &types.AttributeValueMemberS{Value: string(models.LIVE)},
			":claim_id":    &types.AttributeValueMemberS{Value: claimID},
			":lease_until": epochAV(now.Add(lease)),
			":now":         nowAV,
		},
		ReturnValues:                        types.ReturnValueAllNew,
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return nil, s.classifyFailedClaim(ctx, token, condCheckFailed.Item, now)
		}
		return nil, fmt.Errorf("failed to claim pending transfer: %w", err)
	}

	var pt models.PendingTransfer
	if err := attributevalue.UnmarshalMap(result.Attributes, &pt); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claimed pending transfer: %w", err)
	}

	return &pt, nil
}

// classifyFailedClaim tells apart a missing token, an expired one and one held by another confirmer.
func (s *Store) classifyFailedClaim(ctx context.Context, token string, old map[string]types.AttributeValue, now time.Time) error {
	if len(old) == 0 {
		return storage.ErrNotFound
	}

	var pt models.PendingTransfer
	if err := attributevalue.UnmarshalMap(old, &pt); err != nil {
		return fmt.Errorf("failed to unmarshal pending transfer: %w", err)
	}

	if !pt.IsExpired(now) {
		return storage.ErrNotFound
	}

	_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.PendingTransfersTableName),
		Key:                 tokenKey(token),
		ConditionExpression: aws.String("expires_at < :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": epochAV(now),
		},
	})
	if err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if !errors.As(err, &condCheckFailed) {
			return fmt.Errorf("failed to delete expired pending transfer: %w", err)
		}
	}

	return storage.ErrExpired
}

// ReleasePendingTransfer gives up a claim. A failed attempt that reaches maxAttempts deletes the record instead.
func (s *Store) ReleasePendingTransfer(ctx context.Context, pt *models.PendingTransfer, failedAttempt bool, maxAttempts int) error {
	claimAV := &types.AttributeValueMemberS{Value: pt.ClaimID}

	if failedAttempt && maxAttempts > 0 && pt.Attempts+1 >= maxAttempts {
		_, err := s.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName:           aws.String(s.PendingTransfersTableName),
			Key:                 tokenKey(pt.Token),
			ConditionExpression: aws.String("claim_id = :claim_id"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":claim_id": claimAV,
			},
		})
		return releaseError(err)
	}

	attempts := pt.Attempts
	if failedAttempt {
		attempts++
	}

	_, err := s.Client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.PendingTransfersTableName),
		Key:                 tokenKey(pt.Token),
		UpdateExpression:    aws.String("SET #status = :live, attempts = :attempts REMOVE claim_id, claim_expires_at"),
		ConditionExpression: aws.String("claim_id = :claim_id"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":live":     &types.AttributeValueMemberS{Value: string(models.LIVE)},
			":attempts": &types.AttributeValueMemberN{Value: strconv.Itoa(attempts)},
			":claim_id": claimAV,
		},
	})
	return releaseError(err)
}

func releaseError(err error) error {
	if err == nil {
		return nil
	}
	var condCheckFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condCheckFailed) {
		return storage.ErrClaimLost
	}
	return fmt.Errorf("failed to release pending transfer claim: %w", err)
}

func epochAV(t time.Time) *types.AttributeValueMemberN {
	return &types.AttributeValueMemberN{Value: strconv.FormatInt(t.Unix(), 10)}
}
