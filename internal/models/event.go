package models

import "time"

// Event is a shared-expense session.
type Event struct {
	// Code is the unique 8-character identifier ([0-9A-Za-z]).
	Code string `json:"code"`

	// Name is the display name (e.g., "Ski trip").
	Name string `json:"name"`

	// CreatedAt is when the event was created.
	CreatedAt time.Time `json:"creationDate"`

	// LastActivity is bumped by every mutation inside the event.
	LastActivity time.Time `json:"lastActivity"`
}

// EventOrder selects how ListEvents sorts its result.
type EventOrder int

const (
	// OrderByName sorts by name ascending.
	OrderByName EventOrder = iota
	// OrderByCreation sorts by creation date ascending.
	OrderByCreation
	// OrderByLastActivity sorts by last activity, most recent first.
	OrderByLastActivity
)
