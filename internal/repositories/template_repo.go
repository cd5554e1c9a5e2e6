package repositories

import (
	"context"
	"errors"

	"billora/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type EmailTemplateRepository interface {
	Create(ctx context.Context, tmpl *models.EmailTemplate) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.EmailTemplate, error)
	Update(ctx context.Context, tmpl *models.EmailTemplate) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.EmailTemplate, error)
}

type emailTemplateRepo struct {
	db DB
}

func NewEmailTemplateRepo(db DB) EmailTemplateRepository {
	return &emailTemplateRepo{db: db}
}

func (r *emailTemplateRepo) Create(ctx context.Context, tmpl *models.EmailTemplate) error {
	query := `
		INSERT INTO email_templates (id, user_id, name, subject, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, tmpl.ID, tmpl.UserID, tmpl.Name, tmpl.Subject, tmpl.Body)
	return err
}

func (r *emailTemplateRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.EmailTemplate, error) {
	tmpl := &models.EmailTemplate{}
	query := `
		SELECT id, user_id, name, subject, body, created_at, updated_at
		FROM email_templates
		WHERE user_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, id).Scan(&tmpl.ID, &tmpl.UserID, &tmpl.Name, &tmpl.Subject, &tmpl.Body, &tmpl.CreatedAt, &tmpl.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return tmpl, nil
}

func (r *emailTemplateRepo) Update(ctx context.Context, tmpl *models.EmailTemplate) error {
	query := `
		UPDATE email_templates
		SET name = $1, subject = $2, body = $3, updated_at = NOW()
		WHERE user_id = $4 AND id = $5
	`
	_, err := r.db.Exec(ctx, query, tmpl.Name, tmpl.Subject, tmpl.Body, tmpl.UserID, tmpl.ID)
	return err
}

func (r *emailTemplateRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM email_templates WHERE user_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, userID, id)
	return err
}

func (r *emailTemplateRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.EmailTemplate, error) {
	query := `
		SELECT id, user_id, name, subject, body, created_at, updated_at
		FROM email_templates
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.EmailTemplate
	for rows.Next() {
		tmpl := &models.EmailTemplate{}
		if err := rows.Scan(&tmpl.ID, &tmpl.UserID, &tmpl.Name, &tmpl.Subject, &tmpl.Body, &tmpl.CreatedAt, &tmpl.UpdatedAt); err != nil {
			return nil, err
		}
		templates = append(templates, tmpl)
	}
	return templates, rows.Err()
}
