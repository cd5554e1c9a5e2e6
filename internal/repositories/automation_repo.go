package repositories

import (
	"context"
	"errors"

	"billora/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AutomationRuleRepository interface {
	Create(ctx context.Context, rule *models.AutomationRule) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.AutomationRule, error)
	Update(ctx context.Context, rule *models.AutomationRule) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AutomationRule, error)
	// FindActiveByTrigger resolves the single rule that fires for a
	// trigger. Rules without a template never match. When several rules
	// are active for the same trigger the most recently created wins.
	// Returns (nil, nil) when no rule matches.
	FindActiveByTrigger(ctx context.Context, userID uuid.UUID, kind models.TriggerKind) (*models.ResolvedRule, error)
}

type automationRuleRepo struct {
	db DB
}

func NewAutomationRuleRepo(db DB) AutomationRuleRepository {
	return &automationRuleRepo{db: db}
}

func (r *automationRuleRepo) Create(ctx context.Context, rule *models.AutomationRule) error {
	query := `
		INSERT INTO automation_rules (id, user_id, trigger_kind, trigger_data, email_template_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, rule.ID, rule.UserID, rule.TriggerKind, rule.TriggerData, rule.EmailTemplateID, rule.Active)
	return err
}

func (r *automationRuleRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.AutomationRule, error) {
	rule := &models.AutomationRule{}
	query := `
		SELECT id, user_id, trigger_kind, trigger_data, email_template_id, active, created_at, updated_at
		FROM automation_rules
		WHERE user_id = $1 AND id = $2
	`
	err := r.db.QueryRow(ctx, query, userID, id).Scan(
		&rule.ID, &rule.UserID, &rule.TriggerKind, &rule.TriggerData, &rule.EmailTemplateID, &rule.Active,
		&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rule, nil
}

func (r *automationRuleRepo) Update(ctx context.Context, rule *models.AutomationRule) error {
	query := `
		UPDATE automation_rules
		SET trigger_kind = $1, trigger_data = $2, email_template_id = $3, active = $4, updated_at = NOW()
		WHERE user_id = $5 AND id = $6
	`
	_, err := r.db.Exec(ctx, query, rule.TriggerKind, rule.TriggerData, rule.EmailTemplateID, rule.Active, rule.UserID, rule.ID)
	return err
}

func (r *automationRuleRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	query := `DELETE FROM automation_rules WHERE user_id = $1 AND id = $2`
	_, err := r.db.Exec(ctx, query, userID, id)
	return err
}

func (r *automationRuleRepo) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AutomationRule, error) {
	query := `
		SELECT id, user_id, trigger_kind, trigger_data, email_template_id, active, created_at, updated_at
		FROM automation_rules
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.AutomationRule
	for rows.Next() {
		rule := &models.AutomationRule{}
		if err := rows.Scan(
			&rule.ID, &rule.UserID, &rule.TriggerKind, &rule.TriggerData, &rule.EmailTemplateID, &rule.Active,
			&rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *automationRuleRepo) FindActiveByTrigger(ctx context.Context, userID uuid.UUID, kind models.TriggerKind) (*models.ResolvedRule, error) {
	resolved := &models.ResolvedRule{}
	query := `
		SELECT r.id, r.user_id, r.trigger_kind, r.trigger_data, r.email_template_id, r.active, r.created_at, r.updated_at,
		       t.id, t.user_id, t.name, t.subject, t.body, t.created_at, t.updated_at
		FROM automation_rules r
		JOIN email_templates t ON t.id = r.email_template_id
		WHERE r.user_id = $1 AND r.trigger_kind = $2 AND r.active = true
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT 1
	`
	err := r.db.QueryRow(ctx, query, userID, kind).Scan(
		&resolved.Rule.ID, &resolved.Rule.UserID, &resolved.Rule.TriggerKind, &resolved.Rule.TriggerData,
		&resolved.Rule.EmailTemplateID, &resolved.Rule.Active, &resolved.Rule.CreatedAt, &resolved.Rule.UpdatedAt,
		&resolved.Template.ID, &resolved.Template.UserID, &resolved.Template.Name, &resolved.Template.Subject,
		&resolved.Template.Body, &resolved.Template.CreatedAt, &resolved.Template.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return resolved, nil
}
