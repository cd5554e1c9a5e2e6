package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationStatusSent   = "sent"
	NotificationStatusFailed = "failed"
)

// Notification records a single dispatch attempt made by the
// automation engine. One triggering event produces at most one row.
type Notification struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"user_id" db:"user_id"`
	InvoiceID   uuid.UUID   `json:"invoice_id" db:"invoice_id"`
	TriggerKind TriggerKind `json:"trigger_kind" db:"trigger_kind"`
	Recipient   string      `json:"recipient" db:"recipient"`
	Subject     string      `json:"subject" db:"subject"`
	Status      string      `json:"status" db:"status"`
	MessageID   *string     `json:"message_id" db:"message_id"`
	Error       *string     `json:"error" db:"error"`
	SentAt      *time.Time  `json:"sent_at" db:"sent_at"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
}
