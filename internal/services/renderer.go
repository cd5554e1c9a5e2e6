package services

import (
	"fmt"
	"strings"

	"billora/internal/models"
)

// RenderTemplate substitutes {{token}} placeholders in tmpl with values
// from vars. Tokens without a matching variable are left in place so a
// typo in a template is visible in the output instead of silently
// producing an empty string. Text outside placeholders passes through
// untouched, including stray braces.
func RenderTemplate(tmpl string, vars map[string]string) string {
	var b strings.Builder
	b.Grow(len(tmpl))

	for {
		start := strings.Index(tmpl, "{{")
		if start < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end := strings.Index(tmpl[start+2:], "}}")
		if end < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		end += start + 2

		b.WriteString(tmpl[:start])
		// Keys are matched exactly: case-sensitive, no whitespace
		// trimming inside the braces.
		key := tmpl[start+2 : end]
		if val, ok := vars[key]; ok {
			b.WriteString(val)
		} else {
			b.WriteString(tmpl[start : end+2])
		}
		tmpl = tmpl[end+2:]
	}
}

// InvoiceVariables builds the substitution map for one invoice. These
// token names are part of the user-facing template contract and must
// not change.
func InvoiceVariables(inv *models.InvoiceWithRelations) map[string]string {
	return map[string]string{
		"invoiceNumber": inv.Invoice.InvoiceNumber,
		"clientName":    inv.Client.Name,
		"total":         fmt.Sprintf("%.2f", inv.Invoice.Total),
		"dueDate":       inv.Invoice.DueDate.Format("2006-01-02"),
		"issueDate":     inv.Invoice.IssueDate.Format("2006-01-02"),
		"businessName":  inv.User.DisplayName(),
	}
}
