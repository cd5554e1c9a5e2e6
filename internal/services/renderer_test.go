package services

import (
	"testing"
	"time"

	"billora/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRenderTemplate(t *testing.T) {
	vars := map[string]string{
		"invoiceNumber": "INV-1",
		"clientName":    "Acme Corp",
	}

	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"simple substitution", "Invoice {{invoiceNumber}}", "Invoice INV-1"},
		{"multiple tokens", "{{clientName}}: {{invoiceNumber}}", "Acme Corp: INV-1"},
		{"unknown token passes through", "Hello {{firstName}}", "Hello {{firstName}}"},
		{"mixed known and unknown", "{{clientName}} owes {{amount}}", "Acme Corp owes {{amount}}"},
		{"no tokens", "plain text", "plain text"},
		{"empty template", "", ""},
		{"unclosed braces pass through", "Invoice {{invoiceNumber", "Invoice {{invoiceNumber"},
		{"stray closing braces", "}} {{invoiceNumber}}", "}} INV-1"},
		{"whitespace inside braces is not trimmed", "{{ invoiceNumber }}", "{{ invoiceNumber }}"},
		{"adjacent tokens", "{{invoiceNumber}}{{clientName}}", "INV-1Acme Corp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderTemplate(tt.tmpl, vars))
		})
	}
}

func TestRenderTemplateEmptyValue(t *testing.T) {
	// An empty value is a substitution, not a miss.
	got := RenderTemplate("total: {{total}}", map[string]string{"total": ""})
	assert.Equal(t, "total: ", got)
}

func TestInvoiceVariables(t *testing.T) {
	biz := "Jane's Studio"
	inv := &models.InvoiceWithRelations{
		Invoice: models.Invoice{
			InvoiceNumber: "INV-1",
			Total:         1250.5,
			IssueDate:     time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC),
		},
		Client: models.Client{Name: "Acme Corp"},
		User:   models.User{Name: "Jane", BusinessName: &biz},
	}

	vars := InvoiceVariables(inv)
	assert.Equal(t, "INV-1", vars["invoiceNumber"])
	assert.Equal(t, "Acme Corp", vars["clientName"])
	assert.Equal(t, "1250.50", vars["total"])
	assert.Equal(t, "2026-09-30", vars["dueDate"])
	assert.Equal(t, "2026-09-01", vars["issueDate"])
	assert.Equal(t, "Jane's Studio", vars["businessName"])
}

func TestRenderInvoiceSubject(t *testing.T) {
	inv := &models.InvoiceWithRelations{
		Invoice: models.Invoice{
			InvoiceNumber: "INV-1",
			Total:         100,
			IssueDate:     time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
			DueDate:       time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
		},
		Client: models.Client{Name: "Acme Corp"},
		User:   models.User{Name: "Jane"},
	}

	subject := RenderTemplate("Invoice {{invoiceNumber}} from {{businessName}}", InvoiceVariables(inv))
	assert.Equal(t, "Invoice INV-1 from Jane", subject)
}
