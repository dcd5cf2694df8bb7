package competition

import "errors"

var (
	// ErrNotActive is returned when joining outside the active window/status
	ErrNotActive = errors.New("competition is not active")

	// ErrCapacityExceeded is returned when joining a full competition
	ErrCapacityExceeded = errors.New("competition is full")

	// ErrAlreadyJoined is returned when the user is already a participant
	ErrAlreadyJoined = errors.New("already joined this competition")

	// ErrInvalidTransition is returned for a disallowed status change
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrCompetitionNotFound is returned when the competition doesn't exist
	ErrCompetitionNotFound = errors.New("competition not found")

	// ErrParticipationNotFound is returned when the user has no entry
	ErrParticipationNotFound = errors.New("participation not found")

	// ErrInvalidAmount is returned when a fee or prize is negative
	ErrInvalidAmount = errors.New("invalid amount")

	ErrInternal = errors.New("internal error")
)
