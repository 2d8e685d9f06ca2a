package storage

import "errors"

// ErrNotFound is returned when a pending transfer or ledger entry does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a record with the same key already exists.
var ErrAlreadyExists = errors.New("already exists")

// ErrExpired is returned when a pending transfer outlived its validity window.
var ErrExpired = errors.New("pending transfer expired")

// ErrAccountNotFound is returned when an account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrInsufficientFunds is returned when an account has an insufficient balance for a transfer.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrDuplicateTransaction is returned when a ledger entry with the same transaction ID already exists.
var ErrDuplicateTransaction = errors.New("transaction already settled")

// ErrClaimLost is returned when a claimed pending transfer is no longer held by the caller.
var ErrClaimLost = errors.New("pending transfer claim lost")
