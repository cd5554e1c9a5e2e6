package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionInvoiceStatus(t *testing.T) {
	tests := []struct {
		from    string
		to      string
		allowed bool
	}{
		{InvoiceStatusDraft, InvoiceStatusSent, true},
		{InvoiceStatusDraft, InvoiceStatusVoid, true},
		{InvoiceStatusDraft, InvoiceStatusPaid, false},
		{InvoiceStatusDraft, InvoiceStatusOverdue, false},
		{InvoiceStatusSent, InvoiceStatusPaid, true},
		{InvoiceStatusSent, InvoiceStatusOverdue, true},
		{InvoiceStatusSent, InvoiceStatusVoid, true},
		{InvoiceStatusSent, InvoiceStatusDraft, false},
		{InvoiceStatusPaid, InvoiceStatusOverdue, false},
		{InvoiceStatusPaid, InvoiceStatusSent, false},
		{InvoiceStatusOverdue, InvoiceStatusSent, false},
		{InvoiceStatusOverdue, InvoiceStatusPaid, false},
		{InvoiceStatusVoid, InvoiceStatusDraft, false},
		{InvoiceStatusSent, InvoiceStatusSent, false},
	}

	for _, tt := range tests {
		got := CanTransitionInvoiceStatus(tt.from, tt.to)
		assert.Equal(t, tt.allowed, got, "%s -> %s", tt.from, tt.to)
	}
}

func TestValidInvoiceStatus(t *testing.T) {
	for _, status := range []string{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue, InvoiceStatusVoid} {
		assert.True(t, ValidInvoiceStatus(status))
	}
	assert.False(t, ValidInvoiceStatus("pending"))
	assert.False(t, ValidInvoiceStatus(""))
}

func TestInvoiceValidate(t *testing.T) {
	invoice := &Invoice{
		Status:   InvoiceStatusDraft,
		Subtotal: 100.0,
		Tax:      18.0,
		Total:    118.0,
	}
	assert.NoError(t, invoice.Validate())

	invoice.Total = 120.0
	assert.Error(t, invoice.Validate())

	invoice.Total = 118.0
	invoice.Status = "unknown"
	assert.Error(t, invoice.Validate())
}

func TestUserDisplayName(t *testing.T) {
	biz := "Acme Consulting"
	user := &User{Name: "Jane", BusinessName: &biz}
	assert.Equal(t, "Acme Consulting", user.DisplayName())

	empty := ""
	user.BusinessName = &empty
	assert.Equal(t, "Jane", user.DisplayName())

	user.BusinessName = nil
	user.Name = ""
	assert.Equal(t, "Your Business", user.DisplayName())
}
