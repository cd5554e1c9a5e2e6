package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the tenant boundary: every client, invoice, template and
// automation rule is owned by exactly one user.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Email        string    `json:"email" db:"email"`
	BusinessName *string   `json:"business_name" db:"business_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// DisplayName is the name used in outgoing emails. Falls back to the
// account name, then to a generic label when neither is set.
func (u *User) DisplayName() string {
	if u.BusinessName != nil && *u.BusinessName != "" {
		return *u.BusinessName
	}
	if u.Name != "" {
		return u.Name
	}
	return "Your Business"
}
