package reward

import "errors"

var (
	// ErrInvalidAmount is returned when amount is <= 0
	ErrInvalidAmount = errors.New("invalid amount: must be greater than 0")

	// ErrAlreadyFinalized is returned when claiming an already-claimed reward
	ErrAlreadyFinalized = errors.New("reward already claimed")

	// ErrExpired is returned when claiming a reward past its expiry
	ErrExpired = errors.New("reward expired")

	// ErrRewardNotFound is returned when the reward doesn't exist
	ErrRewardNotFound = errors.New("reward not found")

	// ErrNotOwner is returned when claiming another user's reward
	ErrNotOwner = errors.New("reward belongs to another user")

	ErrInternal = errors.New("internal error")
)
