package services

import (
	"context"
	"testing"
	"time"

	"billora/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type recordingQueue struct {
	events []TriggerEvent
}

func (q *recordingQueue) Enqueue(event TriggerEvent) {
	q.events = append(q.events, event)
}

func newInvoiceServiceForTest(invoices *MockInvoiceRepository, queue TriggerQueue) InvoiceService {
	return NewInvoiceService(invoices, &MockNotificationRepository{}, nil, queue, "invoice-pdfs")
}

func TestUpdateStatus_EnqueuesTriggerEvent(t *testing.T) {
	invoices := &MockInvoiceRepository{}
	queue := &recordingQueue{}
	svc := newInvoiceServiceForTest(invoices, queue)

	userID := uuid.New()
	invoiceID := uuid.New()
	invoice := &models.Invoice{
		ID:     invoiceID,
		UserID: userID,
		Status: models.InvoiceStatusDraft,
	}

	invoices.On("GetByID", mock.Anything, userID, invoiceID).Return(invoice, nil)
	invoices.On("TransitionStatus", mock.Anything, userID, invoiceID, models.InvoiceStatusDraft, models.InvoiceStatusSent).Return(true, nil)

	updated, err := svc.UpdateStatus(context.Background(), userID, invoiceID, models.InvoiceStatusSent)
	assert.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, updated.Status)

	assert.Len(t, queue.events, 1)
	assert.Equal(t, invoiceID, queue.events[0].InvoiceID)
	assert.Equal(t, models.InvoiceStatusSent, queue.events[0].Status)
}

func TestUpdateStatus_RejectsIllegalTransition(t *testing.T) {
	invoices := &MockInvoiceRepository{}
	queue := &recordingQueue{}
	svc := newInvoiceServiceForTest(invoices, queue)

	userID := uuid.New()
	invoiceID := uuid.New()
	invoices.On("GetByID", mock.Anything, userID, invoiceID).Return(&models.Invoice{
		ID:     invoiceID,
		UserID: userID,
		Status: models.InvoiceStatusPaid,
	}, nil)

	_, err := svc.UpdateStatus(context.Background(), userID, invoiceID, models.InvoiceStatusOverdue)
	assert.ErrorIs(t, err, ErrIllegalTransition)
	assert.Empty(t, queue.events)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc := newInvoiceServiceForTest(&MockInvoiceRepository{}, &recordingQueue{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), uuid.New(), "pending")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateStatus_ConcurrentChangeIsConflict(t *testing.T) {
	invoices := &MockInvoiceRepository{}
	queue := &recordingQueue{}
	svc := newInvoiceServiceForTest(invoices, queue)

	userID := uuid.New()
	invoiceID := uuid.New()
	invoices.On("GetByID", mock.Anything, userID, invoiceID).Return(&models.Invoice{
		ID:     invoiceID,
		UserID: userID,
		Status: models.InvoiceStatusSent,
	}, nil)
	invoices.On("TransitionStatus", mock.Anything, userID, invoiceID, models.InvoiceStatusSent, models.InvoiceStatusPaid).Return(false, nil)

	_, err := svc.UpdateStatus(context.Background(), userID, invoiceID, models.InvoiceStatusPaid)
	assert.ErrorIs(t, err, ErrConcurrentTransition)
	assert.Empty(t, queue.events)
}

func TestGeneratePDF_StorageNotConfigured(t *testing.T) {
	// Deployments without MINIO_ENDPOINT wire the service with no
	// storage backend; the endpoint must fail cleanly, not panic.
	invoices := &MockInvoiceRepository{}
	svc := newInvoiceServiceForTest(invoices, &recordingQueue{})

	var url string
	var err error
	assert.NotPanics(t, func() {
		url, err = svc.GeneratePDF(context.Background(), uuid.New(), uuid.New())
	})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Empty(t, url)
	invoices.AssertNotCalled(t, "GetByIDWithRelations", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateInvoice_ComputesTotals(t *testing.T) {
	invoices := &MockInvoiceRepository{}
	svc := newInvoiceServiceForTest(invoices, &recordingQueue{})

	userID := uuid.New()
	invoices.On("NextInvoiceNumber", mock.Anything, userID).Return("INV-1", nil)
	invoices.On("Create", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.InvoiceNumber == "INV-1" &&
			inv.Status == models.InvoiceStatusDraft &&
			inv.Subtotal == 300.0 &&
			inv.Total == 318.0
	})).Return(nil)

	invoice := &models.Invoice{
		UserID:    userID,
		ClientID:  uuid.New(),
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 1, 0),
		Tax:       18.0,
		LineItems: []models.InvoiceLineItem{
			{Description: "Design", Quantity: 2, UnitPrice: 100},
			{Description: "Hosting", Quantity: 1, UnitPrice: 100},
		},
	}
	assert.NoError(t, svc.Create(context.Background(), invoice))
	invoices.AssertExpectations(t)
}
