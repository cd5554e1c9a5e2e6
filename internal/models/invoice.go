package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
	InvoiceStatusVoid    = "void"
)

// invoiceTransitions holds the allowed forward transitions. Overdue is
// reachable from sent only; nothing leaves paid, overdue or void.
var invoiceTransitions = map[string][]string{
	InvoiceStatusDraft: {InvoiceStatusSent, InvoiceStatusVoid},
	InvoiceStatusSent:  {InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusVoid},
}

// ValidInvoiceStatus reports whether status belongs to the closed set.
func ValidInvoiceStatus(status string) bool {
	switch status {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusVoid:
		return true
	}
	return false
}

// CanTransitionInvoiceStatus reports whether from -> to is a legal
// forward transition.
func CanTransitionInvoiceStatus(from, to string) bool {
	for _, next := range invoiceTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Invoice struct {
	ID            uuid.UUID         `json:"id" db:"id"`
	UserID        uuid.UUID         `json:"user_id" db:"user_id"`
	ClientID      uuid.UUID         `json:"client_id" db:"client_id"`
	InvoiceNumber string            `json:"invoice_number" db:"invoice_number"`
	Status        string            `json:"status" db:"status"`
	IssueDate     time.Time         `json:"issue_date" db:"issue_date"`
	DueDate       time.Time         `json:"due_date" db:"due_date"`
	Subtotal      float64           `json:"subtotal" db:"subtotal"`
	Tax           float64           `json:"tax" db:"tax"`
	Total         float64           `json:"total" db:"total"`
	LineItems     []InvoiceLineItem `json:"line_items" db:"-"`
	CreatedAt     time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at" db:"updated_at"`
}

type InvoiceLineItem struct {
	ID          uuid.UUID `json:"id" db:"id"`
	InvoiceID   uuid.UUID `json:"invoice_id" db:"invoice_id"`
	Position    int       `json:"position" db:"position"`
	Description string    `json:"description" db:"description"`
	Quantity    float64   `json:"quantity" db:"quantity"`
	UnitPrice   float64   `json:"unit_price" db:"unit_price"`
	Amount      float64   `json:"amount" db:"amount"`
}

// Validate checks the total invariant and the status value.
func (i *Invoice) Validate() error {
	if !ValidInvoiceStatus(i.Status) {
		return fmt.Errorf("invalid invoice status %q", i.Status)
	}
	if math.Abs(i.Total-(i.Subtotal+i.Tax)) > 0.005 {
		return fmt.Errorf("invoice total %.2f does not equal subtotal %.2f + tax %.2f", i.Total, i.Subtotal, i.Tax)
	}
	return nil
}

// InvoiceWithRelations carries an invoice joined with its client and
// owning user, the snapshot the automation engine renders from.
type InvoiceWithRelations struct {
	Invoice Invoice `json:"invoice"`
	Client  Client  `json:"client"`
	User    User    `json:"user"`
}
