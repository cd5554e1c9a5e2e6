package models

import (
	"time"

	"github.com/google/uuid"
)

// EmailTemplate holds a user-authored subject and body. Both may
// contain {{token}} placeholders; templates are never mutated by
// rendering.
type EmailTemplate struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
