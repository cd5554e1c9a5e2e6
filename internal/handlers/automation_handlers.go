package handlers

import (
	"errors"
	"net/http"

	"billora/internal/common"
	"billora/internal/models"
	"billora/internal/repositories"
	"billora/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// AutomationHandlers handles HTTP requests for automation rules
type AutomationHandlers struct {
	ruleService services.AutomationRuleService
}

func NewAutomationHandlers(ruleService services.AutomationRuleService) *AutomationHandlers {
	return &AutomationHandlers{ruleService: ruleService}
}

type automationRuleRequest struct {
	TriggerKind     string       `json:"trigger_kind"`
	TriggerData     models.JSONB `json:"trigger_data"`
	EmailTemplateID *string      `json:"email_template_id"`
	Active          bool         `json:"active"`
}

func buildRule(userID uuid.UUID, req *automationRuleRequest) (*models.AutomationRule, error) {
	rule := &models.AutomationRule{
		UserID:      userID,
		TriggerKind: models.TriggerKind(req.TriggerKind),
		TriggerData: req.TriggerData,
		Active:      req.Active,
	}
	if req.EmailTemplateID != nil && *req.EmailTemplateID != "" {
		templateID, err := common.ValidateUUID(*req.EmailTemplateID, "email_template_id")
		if err != nil {
			return nil, err
		}
		rule.EmailTemplateID = &templateID
	}
	return rule, nil
}

// CreateRule handles POST /v1/automations
func (h *AutomationHandlers) CreateRule(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req automationRuleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	rule, err := buildRule(userID, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	if err := h.ruleService.Create(ctx, rule); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, rule)
}

// GetRule handles GET /v1/automations/:id
func (h *AutomationHandlers) GetRule(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	rule, err := h.ruleService.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "Automation rule")
		}
		return common.SendServerError(c, "Failed to fetch automation rule")
	}
	return c.JSON(http.StatusOK, rule)
}

// UpdateRule handles PUT /v1/automations/:id
func (h *AutomationHandlers) UpdateRule(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req automationRuleRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	rule, err := buildRule(userID, &req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	rule.ID = id

	if err := h.ruleService.Update(ctx, rule); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "Automation rule")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /v1/automations/:id
func (h *AutomationHandlers) DeleteRule(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.ruleService.Delete(ctx, userID, id); err != nil {
		return common.SendServerError(c, "Failed to delete automation rule")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRules handles GET /v1/automations
func (h *AutomationHandlers) ListRules(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	rules, err := h.ruleService.List(ctx, userID, limit, offset)
	if err != nil {
		return common.SendServerError(c, "Failed to list automation rules")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"rules":  rules,
		"limit":  limit,
		"offset": offset,
	})
}
