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

var errTransactionConflict = errors.New("settlement transaction conflict")

// Positions of the items in the settlement transaction. Cancellation reasons are reported in the same order.
const (
	debitItem = iota
	creditItem
	ledgerItem
	pendingItem
)

// SettleTransfer performs the atomic settlement of a confirmed transfer.
// The sender debit, the recipient credit and the ledger entry are written in a single
// TransactWriteItems call. The debit carries the authoritative balance check, so two
// settlements racing on the same sender can never overdraw it. In claim mode the pending
// record is deleted in the same call, which makes the claim and the ledger entry commit together.
func (s *Store) SettleTransfer(ctx context.Context, settlement *models.Settlement) error {
	input, err := s.settlementInput(settlement)
	if err != nil {
		return err
	}

	for attempt := 0; ; attempt++ {
		_, err = s.Client.TransactWriteItems(ctx, input)
		if err == nil {
			return nil
		}

		err = settlementError(err)
		if !errors.Is(err, errTransactionConflict) || attempt >= s.SettlementRetries {
			return err
		}

		// Another transaction touched one of our items; back off and retry.
		select {
		case <-ctx.Done():
			return fmt.Errorf("settlement retry aborted: %w", ctx.Err())
		case <-time.After(s.RetryBackoff * time.Duration(attempt+1)):
		}
	}
}

func (s *Store) settlementInput(settlement *models.Settlement) (*dynamodb.TransactWriteItemsInput, error) {
	tx := settlement.Transaction

	amountAV, err := attributevalue.Marshal(tx.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal amount for settlement: %w", err)
	}
	nowAV, err := marshal(tx.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp for settlement: %w", err)
	}
	txAV, err := marshalMap(tx)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal ledger entry: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: Debit the sender, re-checking the balance inside the transaction.
			Update: &types.Update{
				TableName:           aws.String(s.AccountsTableName),
				Key:                 map[string]types.AttributeValue{"account_id": &types.AttributeValueMemberS{Value: tx.SenderID}},
				UpdateExpression:    aws.String("SET balances.#cur = balances.#cur - :amount, version = version + :inc, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(account_id) AND balances.#cur >= :amount"),
				ExpressionAttributeNames: map[string]string{
					"#cur": tx.Currency,
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":amount": amountAV,
					":inc":    &types.AttributeValueMemberN{Value: "1"},
					":now":    nowAV,
				},
				// The old item tells a short balance apart from a missing sender.
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			},
		},
		{
			// Operation 2: Credit the recipient.
			Update: &types.Update{
				TableName:           aws.String(s.AccountsTableName),
				Key:                 map[string]types.AttributeValue{"account_id": &types.AttributeValueMemberS{Value: tx.RecipientID}},
				UpdateExpression:    aws.String("SET balances.#cur = if_not_exists(balances.#cur, :zero) + :amount, version = version + :inc, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(account_id)"),
				ExpressionAttributeNames: map[string]string{
					"#cur": tx.Currency,
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":amount": amountAV,
					":zero":   &types.AttributeValueMemberN{Value: "0"},
					":inc":    &types.AttributeValueMemberN{Value: "1"},
					":now":    nowAV,
				},
			},
		},
		{
			// Operation 3: Append the ledger entry.
			Put: &types.Put{
				TableName:           aws.String(s.TransactionsTableName),
				Item:                txAV,
				ConditionExpression: aws.String("attribute_not_exists(transaction_id)"),
			},
		},
	}

	if settlement.ClaimID != "" {
		// Operation 4: Consume the claimed pending record.
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName:           aws.String(s.PendingTransfersTableName),
				Key:                 tokenKey(tx.Token),
				ConditionExpression: aws.String("claim_id = :claim_id"),
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":claim_id": &types.AttributeValueMemberS{Value: settlement.ClaimID},
				},
			},
		})
	}

	// The transaction ID doubles as the idempotency token: a retry of a write that
	// already committed returns success instead of failing its own conditions.
	return &dynamodb.TransactWriteItemsInput{
		TransactItems:      items,
		ClientRequestToken: aws.String(tx.TransactionID),
	}, nil
}

// settlementError maps a failed settlement onto the storage sentinels using the per-item cancellation reasons.
func settlementError(err error) error {
	var txc *types.TransactionCanceledException
	if !errors.As(err, &txc) {
		return fmt.Errorf("failed to execute settlement transaction: %w", err)
	}

	failed := make(map[int]bool, len(txc.CancellationReasons))
	senderMissing := false
	conflict := false
	for i, reason := range txc.CancellationReasons {
		switch aws.ToString(reason.Code) {
		case "ConditionalCheckFailed":
			failed[i] = true
			if i == debitItem && reason.Item == nil {
				senderMissing = true
			}
		case "TransactionConflict":
			conflict = true
		}
	}

	// An existing ledger entry means this settlement already committed; the
	// other conditions then fail only because of that commit.
	switch {
	case failed[ledgerItem]:
		return storage.ErrDuplicateTransaction
	case failed[debitItem] && senderMissing:
		return fmt.Errorf("sender: %w", storage.ErrAccountNotFound)
	case failed[debitItem]:
		return storage.ErrInsufficientFunds
	case failed[creditItem]:
		return fmt.Errorf("recipient: %w", storage.ErrAccountNotFound)
	case failed[pendingItem]:
		return storage.ErrClaimLost
	}

	if conflict {
		return fmt.Errorf("%w: %v", errTransactionConflict, err)
	}
	return fmt.Errorf("failed to execute settlement transaction: %w", err)
}
