package services

import (
	"context"
	"time"

	"billora/internal/models"
	"billora/internal/repositories"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TriggerEvent is a unit of automation work: an invoice reached a
// status that may have a rule bound to it.
type TriggerEvent struct {
	UserID    uuid.UUID
	InvoiceID uuid.UUID
	Status    string
}

// TriggerQueue decouples the request path from notification dispatch.
// Implementations must never block the caller indefinitely.
type TriggerQueue interface {
	Enqueue(event TriggerEvent)
}

// SweepReport summarises one overdue sweep run.
type SweepReport struct {
	Scanned      int       `json:"scanned"`
	Transitioned int       `json:"transitioned"`
	Notified     int       `json:"notified"`
	Failures     int       `json:"failures"`
	AsOf         time.Time `json:"as_of"`
}

// AutomationEngine reacts to invoice lifecycle events: it resolves the
// matching rule, renders the template and dispatches the notification.
type AutomationEngine interface {
	// HandleEvent processes a queued trigger event. Called by the
	// dispatch workers.
	HandleEvent(ctx context.Context, event TriggerEvent)
	// FireTrigger runs the resolve-render-send pipeline for one invoice.
	// A user without a matching rule is a silent skip, not an error;
	// the bool reports whether a notification actually went out.
	FireTrigger(ctx context.Context, userID, invoiceID uuid.UUID, kind models.TriggerKind) (bool, error)
	// RunOverdueSweep marks every sent invoice past its due date as
	// overdue and fires the overdue trigger for each one transitioned.
	RunOverdueSweep(ctx context.Context, asOf time.Time) (*SweepReport, error)
}

type automationEngine struct {
	invoices      repositories.InvoiceRepository
	notifications repositories.NotificationRepository
	resolver      RuleResolver
	sender        Sender
	fromEmail     string
}

func NewAutomationEngine(
	invoices repositories.InvoiceRepository,
	notifications repositories.NotificationRepository,
	resolver RuleResolver,
	sender Sender,
	fromEmail string,
) AutomationEngine {
	return &automationEngine{
		invoices:      invoices,
		notifications: notifications,
		resolver:      resolver,
		sender:        sender,
		fromEmail:     fromEmail,
	}
}

func (e *automationEngine) HandleEvent(ctx context.Context, event TriggerEvent) {
	// Status changes only raise the sent trigger; overdue is raised
	// exclusively by the sweep so a manual transition cannot double up
	// with the sweep's notification.
	if event.Status != models.InvoiceStatusSent {
		return
	}
	kind := models.TriggerInvoiceSent
	if _, err := e.FireTrigger(ctx, event.UserID, event.InvoiceID, kind); err != nil {
		log.Error().Err(err).
			Str("invoice_id", event.InvoiceID.String()).
			Str("trigger", string(kind)).
			Msg("trigger dispatch failed")
	}
}

func (e *automationEngine) FireTrigger(ctx context.Context, userID, invoiceID uuid.UUID, kind models.TriggerKind) (bool, error) {
	resolved, err := e.resolver.Resolve(ctx, userID, kind)
	if err != nil {
		return false, err
	}
	if resolved == nil {
		log.Debug().
			Str("user_id", userID.String()).
			Str("trigger", string(kind)).
			Msg("no active rule for trigger, skipping")
		return false, nil
	}

	inv, err := e.invoices.GetByIDWithRelations(ctx, userID, invoiceID)
	if err != nil {
		return false, err
	}

	vars := InvoiceVariables(inv)
	subject := RenderTemplate(resolved.Template.Subject, vars)
	body := RenderTemplate(resolved.Template.Body, vars)

	// From is set here so every sender, sandbox included, records the
	// same originating address.
	email := Email{
		From:    e.fromEmail,
		To:      inv.Client.Email,
		Subject: subject,
		HTML:    body,
	}

	record := &models.Notification{
		ID:          uuid.New(),
		UserID:      userID,
		InvoiceID:   invoiceID,
		TriggerKind: kind,
		Recipient:   email.To,
		Subject:     subject,
	}

	receipt, sendErr := e.sender.Send(ctx, email)
	if sendErr != nil {
		msg := sendErr.Error()
		record.Status = models.NotificationStatusFailed
		record.Error = &msg
	} else {
		now := time.Now().UTC()
		record.Status = models.NotificationStatusSent
		record.MessageID = &receipt.MessageID
		record.SentAt = &now
	}

	if err := e.notifications.Create(ctx, record); err != nil {
		log.Error().Err(err).
			Str("invoice_id", invoiceID.String()).
			Msg("failed to record notification attempt")
	}
	if sendErr != nil {
		return false, sendErr
	}

	log.Info().
		Str("invoice_id", invoiceID.String()).
		Str("trigger", string(kind)).
		Str("recipient", email.To).
		Str("message_id", receipt.MessageID).
		Msg("notification dispatched")
	return true, nil
}

func (e *automationEngine) RunOverdueSweep(ctx context.Context, asOf time.Time) (*SweepReport, error) {
	report := &SweepReport{AsOf: asOf}

	due, err := e.invoices.ListDueBefore(ctx, asOf)
	if err != nil {
		return nil, err
	}
	report.Scanned = len(due)

	for _, inv := range due {
		moved, err := e.invoices.TransitionStatus(ctx, inv.Invoice.UserID, inv.Invoice.ID,
			models.InvoiceStatusSent, models.InvoiceStatusOverdue)
		if err != nil {
			report.Failures++
			log.Error().Err(err).
				Str("invoice_id", inv.Invoice.ID.String()).
				Msg("overdue transition failed")
			continue
		}
		if !moved {
			// Another writer changed the status since the scan; the
			// invoice is no longer ours to notify about.
			continue
		}
		report.Transitioned++

		fired, err := e.FireTrigger(ctx, inv.Invoice.UserID, inv.Invoice.ID, models.TriggerInvoiceOverdue)
		if err != nil {
			report.Failures++
			log.Error().Err(err).
				Str("invoice_id", inv.Invoice.ID.String()).
				Msg("overdue notification failed")
			continue
		}
		if fired {
			report.Notified++
		}
	}

	log.Info().
		Int("scanned", report.Scanned).
		Int("transitioned", report.Transitioned).
		Int("notified", report.Notified).
		Int("failures", report.Failures).
		Time("as_of", asOf).
		Msg("overdue sweep finished")
	return report, nil
}
