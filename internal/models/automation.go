package models

import (
	"time"

	"github.com/google/uuid"
)

// TriggerKind is the invoice lifecycle event an automation rule
// listens for.
type TriggerKind string

const (
	TriggerInvoiceSent    TriggerKind = "invoice_sent"
	TriggerInvoiceOverdue TriggerKind = "invoice_overdue"
)

// AllTriggerKinds lists every supported trigger, used for cache
// invalidation sweeps.
var AllTriggerKinds = []TriggerKind{TriggerInvoiceSent, TriggerInvoiceOverdue}

// ValidTriggerKind reports whether kind belongs to the closed set.
func ValidTriggerKind(kind TriggerKind) bool {
	switch kind {
	case TriggerInvoiceSent, TriggerInvoiceOverdue:
		return true
	}
	return false
}

// AutomationRule binds a trigger kind to an email template for one
// user. A rule without a template can never fire.
type AutomationRule struct {
	ID              uuid.UUID   `json:"id" db:"id"`
	UserID          uuid.UUID   `json:"user_id" db:"user_id"`
	TriggerKind     TriggerKind `json:"trigger_kind" db:"trigger_kind"`
	TriggerData     JSONB       `json:"trigger_data" db:"trigger_data"`
	EmailTemplateID *uuid.UUID  `json:"email_template_id" db:"email_template_id"`
	Active          bool        `json:"active" db:"active"`
	CreatedAt       time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at" db:"updated_at"`
}

// ResolvedRule is an active rule joined with its template, ready to
// render and dispatch.
type ResolvedRule struct {
	Rule     AutomationRule `json:"rule"`
	Template EmailTemplate  `json:"template"`
}

// JSONB represents a PostgreSQL JSONB column.
type JSONB map[string]interface{}
