package services

import (
	"context"
	"errors"

	"billora/internal/caching"
	"billora/internal/models"
	"billora/internal/repositories"

	"github.com/google/uuid"
)

type EmailTemplateService interface {
	Create(ctx context.Context, tmpl *models.EmailTemplate) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.EmailTemplate, error)
	Update(ctx context.Context, tmpl *models.EmailTemplate) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.EmailTemplate, error)
	// Preview renders a template against sample variables so users can
	// check their placeholders before binding the template to a rule.
	Preview(ctx context.Context, userID, id uuid.UUID) (subject, body string, err error)
}

type emailTemplateService struct {
	templates repositories.EmailTemplateRepository
	cache     caching.CacheService
}

func NewEmailTemplateService(templates repositories.EmailTemplateRepository, cache caching.CacheService) EmailTemplateService {
	return &emailTemplateService{templates: templates, cache: cache}
}

func validateTemplate(tmpl *models.EmailTemplate) error {
	if tmpl.Name == "" {
		return errors.New("template name is required")
	}
	if tmpl.Subject == "" {
		return errors.New("template subject is required")
	}
	if tmpl.Body == "" {
		return errors.New("template body is required")
	}
	return nil
}

func (s *emailTemplateService) Create(ctx context.Context, tmpl *models.EmailTemplate) error {
	if err := validateTemplate(tmpl); err != nil {
		return err
	}
	if tmpl.ID == uuid.Nil {
		tmpl.ID = uuid.New()
	}
	return s.templates.Create(ctx, tmpl)
}

func (s *emailTemplateService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.EmailTemplate, error) {
	return s.templates.GetByID(ctx, userID, id)
}

func (s *emailTemplateService) Update(ctx context.Context, tmpl *models.EmailTemplate) error {
	if err := validateTemplate(tmpl); err != nil {
		return err
	}
	if err := s.templates.Update(ctx, tmpl); err != nil {
		return err
	}
	// Cached resolved rules embed the template text.
	s.cache.InvalidateRules(ctx, tmpl.UserID)
	return nil
}

func (s *emailTemplateService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := s.templates.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.cache.InvalidateRules(ctx, userID)
	return nil
}

func (s *emailTemplateService) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.EmailTemplate, error) {
	return s.templates.List(ctx, userID, limit, offset)
}

var previewVars = map[string]string{
	"invoiceNumber": "INV-42",
	"clientName":    "Acme Corp",
	"total":         "1250.00",
	"dueDate":       "2026-09-30",
	"issueDate":     "2026-09-01",
	"businessName":  "Your Business",
}

func (s *emailTemplateService) Preview(ctx context.Context, userID, id uuid.UUID) (string, string, error) {
	tmpl, err := s.templates.GetByID(ctx, userID, id)
	if err != nil {
		return "", "", err
	}
	return RenderTemplate(tmpl.Subject, previewVars), RenderTemplate(tmpl.Body, previewVars), nil
}
