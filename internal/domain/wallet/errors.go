package wallet

import "errors"

var (
	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrInsufficientFunds is returned when the balance cannot cover a debit
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrWalletNotFound is returned when the user has no wallet
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrInvalidKind is returned for an unknown transaction kind
	ErrInvalidKind = errors.New("invalid transaction kind")

	ErrInternal = errors.New("internal error")
)
