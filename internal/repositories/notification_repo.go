package repositories

import (
	"context"

	"billora/internal/models"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) ([]*models.Notification, error)
}

type notificationRepo struct {
	db DB
}

func NewNotificationRepo(db DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, invoice_id, trigger_kind, recipient, subject, status, message_id, error, sent_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
	`
	_, err := r.db.Exec(ctx, query,
		n.ID, n.UserID, n.InvoiceID, n.TriggerKind, n.Recipient, n.Subject, n.Status, n.MessageID, n.Error, n.SentAt)
	return err
}

func (r *notificationRepo) ListByInvoice(ctx context.Context, userID, invoiceID uuid.UUID) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, invoice_id, trigger_kind, recipient, subject, status, message_id, error, sent_at, created_at
		FROM notifications
		WHERE user_id = $1 AND invoice_id = $2
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(ctx, query, userID, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		if err := rows.Scan(&n.ID, &n.UserID, &n.InvoiceID, &n.TriggerKind, &n.Recipient, &n.Subject, &n.Status, &n.MessageID, &n.Error, &n.SentAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}
