package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	DisplayName  string
	LineUserID   *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileUpdate carries the fields a user may change on their own account.
// Nil pointers leave the column untouched; an empty LineUserID clears it.
type ProfileUpdate struct {
	DisplayName  *string
	LineUserID   *string
	PasswordHash *string
}
