package services

import (
	"context"
	"fmt"

	"billora/internal/caching"
	"billora/internal/models"
	"billora/internal/repositories"

	"github.com/google/uuid"
)

type AutomationRuleService interface {
	Create(ctx context.Context, rule *models.AutomationRule) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.AutomationRule, error)
	Update(ctx context.Context, rule *models.AutomationRule) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AutomationRule, error)
}

type automationRuleService struct {
	rules     repositories.AutomationRuleRepository
	templates repositories.EmailTemplateRepository
	cache     caching.CacheService
}

func NewAutomationRuleService(
	rules repositories.AutomationRuleRepository,
	templates repositories.EmailTemplateRepository,
	cache caching.CacheService,
) AutomationRuleService {
	return &automationRuleService{rules: rules, templates: templates, cache: cache}
}

func (s *automationRuleService) validate(ctx context.Context, rule *models.AutomationRule) error {
	if !models.ValidTriggerKind(rule.TriggerKind) {
		return fmt.Errorf("unknown trigger kind %q", rule.TriggerKind)
	}
	if rule.EmailTemplateID != nil {
		// The template must exist and belong to the same user.
		if _, err := s.templates.GetByID(ctx, rule.UserID, *rule.EmailTemplateID); err != nil {
			return fmt.Errorf("email template: %w", err)
		}
	}
	return nil
}

func (s *automationRuleService) Create(ctx context.Context, rule *models.AutomationRule) error {
	if err := s.validate(ctx, rule); err != nil {
		return err
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if err := s.rules.Create(ctx, rule); err != nil {
		return err
	}
	s.cache.InvalidateRules(ctx, rule.UserID)
	return nil
}

func (s *automationRuleService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.AutomationRule, error) {
	return s.rules.GetByID(ctx, userID, id)
}

func (s *automationRuleService) Update(ctx context.Context, rule *models.AutomationRule) error {
	if err := s.validate(ctx, rule); err != nil {
		return err
	}
	if err := s.rules.Update(ctx, rule); err != nil {
		return err
	}
	s.cache.InvalidateRules(ctx, rule.UserID)
	return nil
}

func (s *automationRuleService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.rules.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateRules(ctx, userID)
	return nil
}

func (s *automationRuleService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AutomationRule, error) {
	return s.rules.List(ctx, userID, limit, offset)
}
