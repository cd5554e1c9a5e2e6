package handlers

import (
	"errors"
	"net/http"

	"billora/internal/common"
	"billora/internal/models"
	"billora/internal/repositories"
	"billora/internal/services"

	"github.com/labstack/echo/v4"
)

// TemplateHandlers handles HTTP requests for email templates
type TemplateHandlers struct {
	templateService services.EmailTemplateService
}

func NewTemplateHandlers(templateService services.EmailTemplateService) *TemplateHandlers {
	return &TemplateHandlers{templateService: templateService}
}

// CreateTemplate handles POST /v1/templates
func (h *TemplateHandlers) CreateTemplate(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req struct {
		Name    string `json:"name"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tmpl := &models.EmailTemplate{
		UserID:  userID,
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := h.templateService.Create(ctx, tmpl); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, tmpl)
}

// GetTemplate handles GET /v1/templates/:id
func (h *TemplateHandlers) GetTemplate(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	tmpl, err := h.templateService.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "Template")
		}
		return common.SendServerError(c, "Failed to fetch template")
	}
	return c.JSON(http.StatusOK, tmpl)
}

// UpdateTemplate handles PUT /v1/templates/:id
func (h *TemplateHandlers) UpdateTemplate(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req struct {
		Name    string `json:"name"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	tmpl := &models.EmailTemplate{
		ID:      id,
		UserID:  userID,
		Name:    req.Name,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := h.templateService.Update(ctx, tmpl); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, tmpl)
}

// DeleteTemplate handles DELETE /v1/templates/:id
func (h *TemplateHandlers) DeleteTemplate(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.templateService.Delete(ctx, userID, id); err != nil {
		return common.SendServerError(c, "Failed to delete template")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListTemplates handles GET /v1/templates
func (h *TemplateHandlers) ListTemplates(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	templates, err := h.templateService.List(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list templates")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"templates": templates,
		"limit":     limit,
		"offset":    offset,
	})
}

// PreviewTemplate handles GET /v1/templates/:id/preview
func (h *TemplateHandlers) PreviewTemplate(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	subject, body, err := h.templateService.Preview(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "Template")
		}
		return common.SendServerError(c, "Failed to preview template")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"subject": subject,
		"body":    body,
	})
}
