package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"billora/internal/common"
	"billora/internal/services"

	"github.com/labstack/echo/v4"
)

// SweepHandlers exposes the overdue sweep to internal callers such as
// an external cron, guarded by a shared-secret header.
type SweepHandlers struct {
	engine     services.AutomationEngine
	sweepToken string
}

func NewSweepHandlers(engine services.AutomationEngine, sweepToken string) *SweepHandlers {
	return &SweepHandlers{engine: engine, sweepToken: sweepToken}
}

// RunSweep handles POST /internal/sweep. An optional as_of query
// parameter (YYYY-MM-DD) pins the sweep to a past date for backfills.
func (h *SweepHandlers) RunSweep(c echo.Context) error {
	token := c.Request().Header.Get("X-Sweep-Token")
	if h.sweepToken == "" || subtle.ConstantTimeCompare([]byte(token), []byte(h.sweepToken)) != 1 {
		return common.SendUnauthorizedError(c)
	}

	asOf := time.Now().UTC()
	if raw := c.QueryParam("as_of"); raw != "" {
		parsed, err := common.ValidateDateFormat(raw, "as_of")
		if err != nil {
			return common.SendClientError(c, err.Error())
		}
		asOf = parsed
	}

	report, err := h.engine.RunOverdueSweep(c.Request().Context(), asOf)
	if err != nil {
		return common.SendServerError(c, "Sweep failed")
	}
	return c.JSON(http.StatusOK, report)
}
