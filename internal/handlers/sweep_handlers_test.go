package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"billora/internal/models"
	"billora/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubEngine struct {
	report *services.SweepReport
	asOf   time.Time
}

func (s *stubEngine) HandleEvent(context.Context, services.TriggerEvent) {}

func (s *stubEngine) FireTrigger(context.Context, uuid.UUID, uuid.UUID, models.TriggerKind) (bool, error) {
	return false, nil
}

func (s *stubEngine) RunOverdueSweep(_ context.Context, asOf time.Time) (*services.SweepReport, error) {
	s.asOf = asOf
	return s.report, nil
}

func TestRunSweep_RejectsMissingToken(t *testing.T) {
	e := echo.New()
	h := NewSweepHandlers(&stubEngine{}, "secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/sweep", nil)
	rec := httptest.NewRecorder()

	err := h.RunSweep(e.NewContext(req, rec))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRunSweep_RejectsWrongToken(t *testing.T) {
	e := echo.New()
	h := NewSweepHandlers(&stubEngine{}, "secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/sweep", nil)
	req.Header.Set("X-Sweep-Token", "wrong")
	rec := httptest.NewRecorder()

	err := h.RunSweep(e.NewContext(req, rec))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRunSweep_ReturnsReport(t *testing.T) {
	e := echo.New()
	engine := &stubEngine{report: &services.SweepReport{Scanned: 3, Transitioned: 2, Notified: 2}}
	h := NewSweepHandlers(engine, "secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/sweep", nil)
	req.Header.Set("X-Sweep-Token", "secret")
	rec := httptest.NewRecorder()

	err := h.RunSweep(e.NewContext(req, rec))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var report services.SweepReport
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Transitioned)
}

func TestRunSweep_AsOfOverride(t *testing.T) {
	e := echo.New()
	engine := &stubEngine{report: &services.SweepReport{}}
	h := NewSweepHandlers(engine, "secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/sweep?as_of=2026-07-01", nil)
	req.Header.Set("X-Sweep-Token", "secret")
	rec := httptest.NewRecorder()

	err := h.RunSweep(e.NewContext(req, rec))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC), engine.asOf)
}

func TestRunSweep_BadAsOf(t *testing.T) {
	e := echo.New()
	h := NewSweepHandlers(&stubEngine{report: &services.SweepReport{}}, "secret")

	req := httptest.NewRequest(http.MethodPost, "/internal/sweep?as_of=01-07-2026", nil)
	req.Header.Set("X-Sweep-Token", "secret")
	rec := httptest.NewRecorder()

	err := h.RunSweep(e.NewContext(req, rec))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
