package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"billora/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error)
	GetByIDWithRelations(ctx context.Context, userID, id uuid.UUID) (*models.InvoiceWithRelations, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error)
	// ListDueBefore returns every sent invoice, across all users, whose
	// due date has passed as of the given instant.
	ListDueBefore(ctx context.Context, asOf time.Time) ([]*models.InvoiceWithRelations, error)
	// TransitionStatus flips the invoice status only if the current
	// status still matches from. Returns false when another writer got
	// there first.
	TransitionStatus(ctx context.Context, userID, id uuid.UUID, from, to string) (bool, error)
	NextInvoiceNumber(ctx context.Context, userID uuid.UUID) (string, error)
}

type invoiceRepo struct {
	db DB
}

func NewInvoiceRepo(db DB) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) Create(ctx context.Context, invoice *models.Invoice) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO invoices (id, user_id, client_id, invoice_number, status, issue_date, due_date, subtotal, tax, total, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
	`
	_, err = tx.Exec(ctx, query,
		invoice.ID, invoice.UserID, invoice.ClientID, invoice.InvoiceNumber, invoice.Status,
		invoice.IssueDate, invoice.DueDate, invoice.Subtotal, invoice.Tax, invoice.Total)
	if err != nil {
		return err
	}

	itemQuery := `
		INSERT INTO invoice_line_items (id, invoice_id, position, description, quantity, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.InvoiceID = invoice.ID
		item.Position = i
		_, err = tx.Exec(ctx, itemQuery, item.ID, item.InvoiceID, item.Position, item.Description, item.Quantity, item.UnitPrice, item.Amount)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *invoiceRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	invoice := &models.Invoice{}
	query := `
		SELECT id, user_id, client_id, invoice_number, status, issue_date, due_date, subtotal, tax, total, created_at, updated_at
		FROM invoices
		WHERE user_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, id).Scan(
		&invoice.ID, &invoice.UserID, &invoice.ClientID, &invoice.InvoiceNumber, &invoice.Status,
		&invoice.IssueDate, &invoice.DueDate, &invoice.Subtotal, &invoice.Tax, &invoice.Total,
		&invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := r.lineItems(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	invoice.LineItems = items
	return invoice, nil
}

func (r *invoiceRepo) GetByIDWithRelations(ctx context.Context, userID, id uuid.UUID) (*models.InvoiceWithRelations, error) {
	inv := &models.InvoiceWithRelations{}
	query := `
		SELECT i.id, i.user_id, i.client_id, i.invoice_number, i.status, i.issue_date, i.due_date,
		       i.subtotal, i.tax, i.total, i.created_at, i.updated_at,
		       c.id, c.user_id, c.name, c.email, c.phone, c.address, c.created_at, c.updated_at,
		       u.id, u.name, u.email, u.business_name, u.created_at, u.updated_at
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		JOIN users u ON u.id = i.user_id
		WHERE i.user_id = $1 AND i.id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, id).Scan(
		&inv.Invoice.ID, &inv.Invoice.UserID, &inv.Invoice.ClientID, &inv.Invoice.InvoiceNumber, &inv.Invoice.Status,
		&inv.Invoice.IssueDate, &inv.Invoice.DueDate, &inv.Invoice.Subtotal, &inv.Invoice.Tax, &inv.Invoice.Total,
		&inv.Invoice.CreatedAt, &inv.Invoice.UpdatedAt,
		&inv.Client.ID, &inv.Client.UserID, &inv.Client.Name, &inv.Client.Email, &inv.Client.Phone, &inv.Client.Address,
		&inv.Client.CreatedAt, &inv.Client.UpdatedAt,
		&inv.User.ID, &inv.User.Name, &inv.User.Email, &inv.User.BusinessName, &inv.User.CreatedAt, &inv.User.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	items, err := r.lineItems(ctx, inv.Invoice.ID)
	if err != nil {
		return nil, err
	}
	inv.Invoice.LineItems = items
	return inv, nil
}

func (r *invoiceRepo) lineItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceLineItem, error) {
	query := `
		SELECT id, invoice_id, position, description, quantity, unit_price, amount
		FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.Query(ctx, query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.InvoiceLineItem
	for rows.Next() {
		var item models.InvoiceLineItem
		if err := rows.Scan(&item.ID, &item.InvoiceID, &item.Position, &item.Description, &item.Quantity, &item.UnitPrice, &item.Amount); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *invoiceRepo) Update(ctx context.Context, invoice *models.Invoice) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE invoices
		SET client_id = $1, issue_date = $2, due_date = $3, subtotal = $4, tax = $5, total = $6, updated_at = NOW()
		WHERE user_id = $7 AND id = $8
	`
	_, err = tx.Exec(ctx, query,
		invoice.ClientID, invoice.IssueDate, invoice.DueDate, invoice.Subtotal, invoice.Tax, invoice.Total,
		invoice.UserID, invoice.ID)
	if err != nil {
		return err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, invoice.ID); err != nil {
		return err
	}
	itemQuery := `
		INSERT INTO invoice_line_items (id, invoice_id, position, description, quantity, unit_price, amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		if item.ID == uuid.Nil {
			item.ID = uuid.New()
		}
		item.InvoiceID = invoice.ID
		item.Position = i
		if _, err = tx.Exec(ctx, itemQuery, item.ID, item.InvoiceID, item.Position, item.Description, item.Quantity, item.UnitPrice, item.Amount); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *invoiceRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM invoices WHERE user_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, userID, id)
	return err
}

func (r *invoiceRepo) List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	query := `
		SELECT id, user_id, client_id, invoice_number, status, issue_date, due_date, subtotal, tax, total, created_at, updated_at
		FROM invoices
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY issue_date DESC, created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, userID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.Invoice
	for rows.Next() {
		invoice := &models.Invoice{}
		if err := rows.Scan(
			&invoice.ID, &invoice.UserID, &invoice.ClientID, &invoice.InvoiceNumber, &invoice.Status,
			&invoice.IssueDate, &invoice.DueDate, &invoice.Subtotal, &invoice.Tax, &invoice.Total,
			&invoice.CreatedAt, &invoice.UpdatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) ListDueBefore(ctx context.Context, asOf time.Time) ([]*models.InvoiceWithRelations, error) {
	query := `
		SELECT i.id, i.user_id, i.client_id, i.invoice_number, i.status, i.issue_date, i.due_date,
		       i.subtotal, i.tax, i.total, i.created_at, i.updated_at,
		       c.id, c.user_id, c.name, c.email, c.phone, c.address, c.created_at, c.updated_at,
		       u.id, u.name, u.email, u.business_name, u.created_at, u.updated_at
		FROM invoices i
		JOIN clients c ON c.id = i.client_id
		JOIN users u ON u.id = i.user_id
		WHERE i.status = $1 AND i.due_date < $2
		ORDER BY i.due_date ASC
	`
	rows, err := r.db.Query(ctx, query, models.InvoiceStatusSent, asOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*models.InvoiceWithRelations
	for rows.Next() {
		inv := &models.InvoiceWithRelations{}
		if err := rows.Scan(
			&inv.Invoice.ID, &inv.Invoice.UserID, &inv.Invoice.ClientID, &inv.Invoice.InvoiceNumber, &inv.Invoice.Status,
			&inv.Invoice.IssueDate, &inv.Invoice.DueDate, &inv.Invoice.Subtotal, &inv.Invoice.Tax, &inv.Invoice.Total,
			&inv.Invoice.CreatedAt, &inv.Invoice.UpdatedAt,
			&inv.Client.ID, &inv.Client.UserID, &inv.Client.Name, &inv.Client.Email, &inv.Client.Phone, &inv.Client.Address,
			&inv.Client.CreatedAt, &inv.Client.UpdatedAt,
			&inv.User.ID, &inv.User.Name, &inv.User.Email, &inv.User.BusinessName, &inv.User.CreatedAt, &inv.User.UpdatedAt); err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, rows.Err()
}

func (r *invoiceRepo) TransitionStatus(ctx context.Context, userID, id uuid.UUID, from, to string) (bool, error) {
	query := `
		UPDATE invoices
		SET status = $1, updated_at = NOW()
		WHERE user_id = $2 AND id = $3 AND status = $4
	`
	tag, err := r.db.Exec(ctx, query, to, userID, id, from)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *invoiceRepo) NextInvoiceNumber(ctx context.Context, userID uuid.UUID) (string, error) {
	var seq int64
	query := `
		INSERT INTO invoice_sequences (user_id, next_value)
		VALUES ($1, 2)
		ON CONFLICT (user_id)
		DO UPDATE SET next_value = invoice_sequences.next_value + 1
		RETURNING next_value - 1
	`
	if err := r.db.QueryRow(ctx, query, userID).Scan(&seq); err != nil {
		return "", err
	}
	return fmt.Sprintf("INV-%d", seq), nil
}
