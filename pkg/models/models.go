package models

import (
	"time"
)

// PendingStatus defines the possible states of a pending transfer record.
// Expired and consumed records are not represented: expiry is derived from
// CreatedAt and consumed records are deleted.
type PendingStatus string

const (
	LIVE    PendingStatus = "LIVE"
	CLAIMED PendingStatus = "CLAIMED"
)

// TransactionType defines the kind of money movement recorded in the ledger.
type TransactionType string

const (
	PEER_TRANSFER TransactionType = "PEER_TRANSFER"
)

// TransactionStatus defines the terminal state of a ledger entry.
type TransactionStatus string

const (
	COMPLETED TransactionStatus = "COMPLETED"
)

// DeliveryChannel is the out-of-band channel a confirmation code is sent over.
type DeliveryChannel string

const (
	SMS   DeliveryChannel = "SMS"
	EMAIL DeliveryChannel = "EMAIL"
)

// Account represents the internal domain model for a user's account.
// Balances are held in minor units keyed by ISO 4217 currency code.
type Account struct {
	AccountID   string           `json:"account_id" dynamodbav:"account_id"`
	Name        string           `json:"name" dynamodbav:"name"`
	PhoneNumber string           `json:"phone_number,omitempty" dynamodbav:"phone_number,omitempty"`
	Email       string           `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Balances    map[string]int64 `json:"balances" dynamodbav:"balances"`
	Version     int64            `json:"version" dynamodbav:"version"`
	CreatedAt   time.Time        `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" dynamodbav:"updated_at"`
}

// Balance returns the available balance in the given currency.
func (a *Account) Balance(currency string) int64 {
	if a == nil || a.Balances == nil {
		return 0
	}
	return a.Balances[currency]
}

// DeliveryAddress returns where confirmation codes for this account are sent.
// The phone number is preferred over email.
func (a *Account) DeliveryAddress() (DeliveryChannel, string, bool) {
	switch {
	case a.PhoneNumber != "":
		return SMS, a.PhoneNumber, true
	case a.Email != "":
		return EMAIL, a.Email, true
	default:
		return "", "", false
	}
}

// PendingTransfer is a validated transfer request waiting for its confirmation code.
type PendingTransfer struct {
	Token          string        `dynamodbav:"token"`
	SenderID       string        `dynamodbav:"sender_id"`
	RecipientID    string        `dynamodbav:"recipient_id"`
	Amount         int64         `dynamodbav:"amount"`
	Currency       string        `dynamodbav:"currency"`
	OTPSecret      string        `dynamodbav:"otp_secret"`
	Status         PendingStatus `dynamodbav:"status"`
	Attempts       int           `dynamodbav:"attempts"`
	ClaimID        string        `dynamodbav:"claim_id,omitempty"`
	ClaimExpiresAt int64         `dynamodbav:"claim_expires_at,omitempty"`
	CreatedAt      time.Time     `dynamodbav:"created_at"`
	// ExpiresAt is an epoch-seconds timestamp, also used as the table's TTL attribute.
	ExpiresAt int64 `dynamodbav:"expires_at"`
}

// IsExpired reports whether the record is past its validity window at now.
func (p *PendingTransfer) IsExpired(now time.Time) bool {
	return now.Unix() > p.ExpiresAt
}

// Transaction is an immutable ledger entry appended when a transfer settles.
type Transaction struct {
	TransactionID string            `json:"transaction_id" dynamodbav:"transaction_id"`
	SenderID      string            `json:"sender_id" dynamodbav:"sender_id"`
	RecipientID   string            `json:"recipient_id" dynamodbav:"recipient_id"`
	Amount        int64             `json:"amount" dynamodbav:"amount"`
	Currency      string            `json:"currency" dynamodbav:"currency"`
	Type          TransactionType   `json:"type" dynamodbav:"type"`
	Status        TransactionStatus `json:"status" dynamodbav:"status"`
	Token         string            `json:"-" dynamodbav:"token"`
	Timestamp     time.Time         `json:"timestamp" dynamodbav:"timestamp"`
}

// Settlement is the unit of work handed to the settlement store.
// ClaimID is set when the pending record is still held under a claim and
// must be deleted in the same atomic write.
type Settlement struct {
	Transaction Transaction
	ClaimID     string
}
