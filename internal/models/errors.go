package models

import "errors"

var (
	// ErrNotFound is returned when a referenced event, participant, expense
	// or debt pair does not exist.
	ErrNotFound = errors.New("not found")

	// ErrImproperState is returned when an operation targets state that has
	// changed underneath the caller (e.g. a debt flag the caller saw is stale).
	ErrImproperState = errors.New("improper state")

	// ErrTimeout is the normal expiry of a long poll. Callers re-issue.
	ErrTimeout = errors.New("long poll timed out")

	// ErrInvalidAmount is returned for negative amounts or amounts with more
	// than two decimal places.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAlreadyExists is returned when creating a participant whose name is
	// already taken in the event.
	ErrAlreadyExists = errors.New("already exists")
)
