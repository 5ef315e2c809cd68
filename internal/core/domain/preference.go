package domain

import "time"

// UserPreference records the collection a user searches by default.
// Last write wins per user.
type UserPreference struct {
	UserID       string
	CollectionID string
	UpdatedAt    time.Time
}
