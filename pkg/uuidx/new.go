// Package uuidx generates the version 7 UUIDs used for subscription
// identifiers. V7 IDs are time-ordered, which keeps handles sortable by
// creation without a separate counter.
package uuidx

import "github.com/google/uuid"

// New returns a fresh version 7 UUID, panicking if generation fails.
func New() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

// NewString returns a fresh version 7 UUID in string form.
func NewString() string {
	return New().String()
}
