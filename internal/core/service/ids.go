package service

import "github.com/google/uuid"

// newID returns a time-ordered UUIDv7 so that sorting by ID matches insertion order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
