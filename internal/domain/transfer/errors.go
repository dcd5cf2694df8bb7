package transfer

import "errors"

var (
	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrSelfTransfer is returned when sender and recipient are the same wallet
	ErrSelfTransfer = errors.New("cannot transfer to own wallet")

	// ErrAlreadyFinalized is returned when executing a non-pending transfer
	ErrAlreadyFinalized = errors.New("transfer is not pending")

	// ErrTransferNotFound is returned when the transfer doesn't exist
	ErrTransferNotFound = errors.New("transfer not found")

	// ErrRecipientNotFound is returned when the recipient user has no account
	ErrRecipientNotFound = errors.New("recipient not found")

	ErrInternal = errors.New("internal error")
)
