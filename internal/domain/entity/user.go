package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the core account entity. A user owns businesses, a notification
// preference, and the notification records addressed to them.
type User struct {
	ID           uuid.UUID `json:"id"`         // The Global Unique Identifier (GUID) for the user.
	Email        string    `json:"email"`      // The user's primary contact email, used as the login identifier and alert recipient.
	Name         string    `json:"name"`       // The user's display name.
	PasswordHash string    `json:"-"`          // Bcrypt hash of the user's password; never serialized.
	CreatedAt    time.Time `json:"created_at"` // Timestamp of when this account was created.
	UpdatedAt    time.Time `json:"updated_at"` // Timestamp of the last modification.
}
