package mapping

import (
	"fmt"
	"sort"

	"github.com/chris/otp-transfers/pkg/api"
	"github.com/chris/otp-transfers/pkg/models"
	"github.com/chris/otp-transfers/pkg/money"
	"github.com/chris/otp-transfers/pkg/transfers"
	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ToInitiateRequest converts an API transfer request into a service request, parsing the
// decimal amount into minor units of its currency.
func ToInitiateRequest(senderID string, body *api.InitiateTransferRequest) (transfers.InitiateRequest, error) {
	currency, err := money.NormalizeCurrency(body.Currency)
	if err != nil {
		return transfers.InitiateRequest{}, err
	}
	amount, err := money.ToMinorUnits(body.Amount, currency)
	if err != nil {
		return transfers.InitiateRequest{}, err
	}
	return transfers.InitiateRequest{
		SenderID:  senderID,
		Recipient: body.Recipient,
		Amount:    amount,
		Currency:  currency,
	}, nil
}

// ToConfirmRequest converts an API confirmation into a service request.
func ToConfirmRequest(senderID string, body *api.ConfirmTransferRequest) transfers.ConfirmRequest {
	return transfers.ConfirmRequest{
		SenderID:     senderID,
		PendingToken: body.PendingToken,
		Code:         body.Code,
	}
}

// ToApiPendingTransfer converts an initiation result to an API PendingTransfer.
func ToApiPendingTransfer(res *transfers.InitiateResult) *api.PendingTransfer {
	return &api.PendingTransfer{
		PendingToken: res.PendingToken,
		ExpiresAt:    res.ExpiresAt,
		Channel:      api.PendingTransferChannel(res.Channel),
		DeliveredTo:  res.DeliveredTo,
	}
}

// ToApiTransaction converts a domain Transaction model to an API Transaction model.
func ToApiTransaction(tx *models.Transaction) (*api.Transaction, error) {
	id, err := uuid.Parse(tx.TransactionID)
	if err != nil {
		return nil, fmt.Errorf("transaction %q has a malformed id: %w", tx.TransactionID, err)
	}
	return &api.Transaction{
		Id:          openapi_types.UUID(id),
		SenderId:    tx.SenderID,
		RecipientId: tx.RecipientID,
		Amount:      money.FromMinorUnits(tx.Amount, tx.Currency),
		Currency:    tx.Currency,
		Type:        api.TransactionType(tx.Type),
		Status:      api.TransactionStatus(tx.Status),
		Timestamp:   tx.Timestamp,
	}, nil
}

// ToApiAccount converts a domain Account to an API Account with balances ordered by currency.
func ToApiAccount(account *models.Account) *api.Account {
	balances := make([]api.Balance, 0, len(account.Balances))
	for currency, units := range account.Balances {
		balances = append(balances, api.Balance{
			Currency: currency,
			Amount:   money.FromMinorUnits(units, currency),
		})
	}
	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Currency < balances[j].Currency
	})

	apiAccount := &api.Account{
		AccountId: account.AccountID,
		Balances:  balances,
	}
	if account.Name != "" {
		name := account.Name
		apiAccount.Name = &name
	}
	return apiAccount
}
