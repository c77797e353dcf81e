package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account holder. Accounts are optional; they only add
// chat history persistence on top of the anonymous flow.
type User struct {
	ID        uuid.UUID `db:"id"`
	Username  string    `db:"username"`
	Email     string    `db:"email"`
	Password  string    `db:"password"`
	// PreferredLanguage is an ISO 639-1 code ("hi", "en") used as the
	// default reply language when a chat request does not set one.
	PreferredLanguage string    `db:"preferred_language"`
	CreatedAt         time.Time `db:"created_at"`
	UpdatedAt         time.Time `db:"updated_at"`
}
