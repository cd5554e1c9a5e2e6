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

// InvoiceHandlers handles HTTP requests for invoices
type InvoiceHandlers struct {
	invoiceService services.InvoiceService
}

func NewInvoiceHandlers(invoiceService services.InvoiceService) *InvoiceHandlers {
	return &InvoiceHandlers{invoiceService: invoiceService}
}

type lineItemRequest struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

type invoiceRequest struct {
	ClientID  string            `json:"client_id"`
	IssueDate string            `json:"issue_date"`
	DueDate   string            `json:"due_date"`
	Tax       float64           `json:"tax"`
	LineItems []lineItemRequest `json:"line_items"`
}

func (h *InvoiceHandlers) buildInvoice(req *invoiceRequest) (*models.Invoice, error) {
	clientID, err := common.ValidateUUID(req.ClientID, "client_id")
	if err != nil {
		return nil, err
	}
	issueDate, err := common.ValidateDateFormat(req.IssueDate, "issue_date")
	if err != nil {
		return nil, err
	}
	dueDate, err := common.ValidateDateFormat(req.DueDate, "due_date")
	if err != nil {
		return nil, err
	}
	if dueDate.Before(issueDate) {
		return nil, errors.New("due_date cannot be before issue_date")
	}
	if len(req.LineItems) == 0 {
		return nil, errors.New("at least one line item is required")
	}

	invoice := &models.Invoice{
		ClientID:  clientID,
		IssueDate: issueDate,
		DueDate:   dueDate,
		Tax:       req.Tax,
	}
	for _, item := range req.LineItems {
		if item.Description == "" {
			return nil, errors.New("line item description is required")
		}
		if item.Quantity <= 0 || item.UnitPrice < 0 {
			return nil, errors.New("line item quantity must be positive and unit price non-negative")
		}
		invoice.LineItems = append(invoice.LineItems, models.InvoiceLineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		})
	}
	return invoice, nil
}

// CreateInvoice handles POST /v1/invoices
func (h *InvoiceHandlers) CreateInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.buildInvoice(&req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	invoice.UserID = userID

	if err := h.invoiceService.Create(ctx, invoice); err != nil {
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusCreated, invoice)
}

// GetInvoice handles GET /v1/invoices/:id
func (h *InvoiceHandlers) GetInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	invoice, err := h.invoiceService.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "Invoice")
		}
		return common.SendServerError(c, "Failed to fetch invoice")
	}
	return c.JSON(http.StatusOK, invoice)
}

// UpdateInvoice handles PUT /v1/invoices/:id
func (h *InvoiceHandlers) UpdateInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	var req invoiceRequest
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.buildInvoice(&req)
	if err != nil {
		return common.SendClientError(c, err.Error())
	}
	invoice.ID = id
	invoice.UserID = userID

	if err := h.invoiceService.Update(ctx, invoice); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return common.SendNotFoundError(c, "Invoice")
		}
		return common.SendClientError(c, err.Error())
	}
	return c.JSON(http.StatusOK, invoice)
}

// DeleteInvoice handles DELETE /v1/invoices/:id
func (h *InvoiceHandlers) DeleteInvoice(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	if err := h.invoiceService.Delete(ctx, userID, id); err != nil {
		return common.SendServerError(c, "Failed to delete invoice")
	}
	return c.NoContent(http.StatusNoContent)
}

// ListInvoices handles GET /v1/invoices
func (h *InvoiceHandlers) ListInvoices(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	limit, offset := common.Pagination(c)
	status := c.QueryParam("status")

	invoices, err := h.invoiceService.List(ctx, userID, status, limit, offset)
	if err != nil {
		if errors.Is(err, services.ErrInvalidStatus) {
			return common.SendValidationError(c, "status", "unknown invoice status")
		}
		return common.SendServerError(c, "Failed to list invoices")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"limit":    limit,
		"offset":   offset,
	})
}

// UpdateInvoiceStatus handles PUT /v1/invoices/:id/status
func (h *InvoiceHandlers) UpdateInvoiceStatus(c echo.Context) error {
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
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return common.SendClientError(c, "Invalid request format")
	}

	invoice, err := h.invoiceService.UpdateStatus(ctx, userID, id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return common.SendNotFoundError(c, "Invoice")
		case errors.Is(err, services.ErrInvalidStatus):
			return common.SendValidationError(c, "status", "unknown invoice status")
		case errors.Is(err, services.ErrIllegalTransition):
			return common.SendClientError(c, err.Error())
		case errors.Is(err, services.ErrConcurrentTransition):
			return common.SendConflictError(c, "Invoice status changed concurrently, retry")
		default:
			return common.SendServerError(c, "Failed to update invoice status")
		}
	}
	return c.JSON(http.StatusOK, invoice)
}

// GenerateInvoicePDF handles POST /v1/invoices/:id/generate-pdf
func (h *InvoiceHandlers) GenerateInvoicePDF(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	url, err := h.invoiceService.GeneratePDF(ctx, userID, id)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return common.SendNotFoundError(c, "Invoice")
		case errors.Is(err, services.ErrStorageUnavailable):
			return common.SendServiceUnavailableError(c, "PDF archival requires object storage, which is not configured")
		default:
			return common.SendServerError(c, "Failed to generate PDF")
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"download_url": url,
	})
}

// ListInvoiceNotifications handles GET /v1/invoices/:id/notifications
func (h *InvoiceHandlers) ListInvoiceNotifications(c echo.Context) error {
	ctx := c.Request().Context()
	userID, ok := common.UserIDFromContext(ctx)
	if !ok {
		return common.SendUnauthorizedError(c)
	}

	id, err := common.ValidateUUID(c.Param("id"), "id")
	if err != nil {
		return common.SendClientError(c, err.Error())
	}

	notifications, err := h.invoiceService.ListNotifications(ctx, userID, id)
	if err != nil {
		return common.SendServerError(c, "Failed to list notifications")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}
