package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"billora/internal/models"
	"billora/internal/repositories"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidStatus        = errors.New("invalid invoice status")
	ErrIllegalTransition    = errors.New("illegal status transition")
	ErrConcurrentTransition = errors.New("invoice status changed concurrently")
	ErrStorageUnavailable   = errors.New("object storage is not configured")
)

const pdfURLExpiry = 24 * time.Hour

type InvoiceService interface {
	Create(ctx context.Context, invoice *models.Invoice) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error)
	Update(ctx context.Context, invoice *models.Invoice) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error)
	// UpdateStatus validates and applies a status transition, then
	// queues the matching automation trigger. The transition commits
	// even if notification dispatch later fails.
	UpdateStatus(ctx context.Context, userID, id uuid.UUID, newStatus string) (*models.Invoice, error)
	// GeneratePDF renders the invoice as a PDF, archives it in object
	// storage and returns a presigned download URL.
	GeneratePDF(ctx context.Context, userID, id uuid.UUID) (string, error)
	ListNotifications(ctx context.Context, userID, invoiceID uuid.UUID) ([]*models.Notification, error)
}

type invoiceService struct {
	invoices      repositories.InvoiceRepository
	notifications repositories.NotificationRepository
	storage       StorageService
	queue         TriggerQueue
	pdfBucket     string
}

func NewInvoiceService(
	invoices repositories.InvoiceRepository,
	notifications repositories.NotificationRepository,
	storage StorageService,
	queue TriggerQueue,
	pdfBucket string,
) InvoiceService {
	return &invoiceService{
		invoices:      invoices,
		notifications: notifications,
		storage:       storage,
		queue:         queue,
		pdfBucket:     pdfBucket,
	}
}

func (s *invoiceService) Create(ctx context.Context, invoice *models.Invoice) error {
	if invoice.ID == uuid.Nil {
		invoice.ID = uuid.New()
	}
	invoice.Status = models.InvoiceStatusDraft

	number, err := s.invoices.NextInvoiceNumber(ctx, invoice.UserID)
	if err != nil {
		return fmt.Errorf("allocate invoice number: %w", err)
	}
	invoice.InvoiceNumber = number

	var subtotal float64
	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		item.Amount = item.Quantity * item.UnitPrice
		subtotal += item.Amount
	}
	invoice.Subtotal = subtotal
	invoice.Total = invoice.Subtotal + invoice.Tax

	if err := invoice.Validate(); err != nil {
		return err
	}
	return s.invoices.Create(ctx, invoice)
}

func (s *invoiceService) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.Invoice, error) {
	return s.invoices.GetByID(ctx, userID, id)
}

func (s *invoiceService) Update(ctx context.Context, invoice *models.Invoice) error {
	existing, err := s.invoices.GetByID(ctx, invoice.UserID, invoice.ID)
	if err != nil {
		return err
	}
	if existing.Status != models.InvoiceStatusDraft {
		return fmt.Errorf("only draft invoices can be edited, invoice is %s", existing.Status)
	}

	var subtotal float64
	for i := range invoice.LineItems {
		item := &invoice.LineItems[i]
		item.Amount = item.Quantity * item.UnitPrice
		subtotal += item.Amount
	}
	invoice.Subtotal = subtotal
	invoice.Total = invoice.Subtotal + invoice.Tax
	invoice.Status = existing.Status
	invoice.InvoiceNumber = existing.InvoiceNumber

	if err := invoice.Validate(); err != nil {
		return err
	}
	return s.invoices.Update(ctx, invoice)
}

func (s *invoiceService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	return s.invoices.Delete(ctx, userID, id)
}

func (s *invoiceService) List(ctx context.Context, userID uuid.UUID, status string, limit, offset int) ([]*models.Invoice, error) {
	if status != "" && !models.ValidInvoiceStatus(status) {
		return nil, ErrInvalidStatus
	}
	return s.invoices.List(ctx, userID, status, limit, offset)
}

func (s *invoiceService) UpdateStatus(ctx context.Context, userID, id uuid.UUID, newStatus string) (*models.Invoice, error) {
	if !models.ValidInvoiceStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	invoice, err := s.invoices.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !models.CanTransitionInvoiceStatus(invoice.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, invoice.Status, newStatus)
	}

	moved, err := s.invoices.TransitionStatus(ctx, userID, id, invoice.Status, newStatus)
	if err != nil {
		return nil, err
	}
	if !moved {
		return nil, ErrConcurrentTransition
	}
	invoice.Status = newStatus

	s.queue.Enqueue(TriggerEvent{
		UserID:    userID,
		InvoiceID: id,
		Status:    newStatus,
	})
	return invoice, nil
}

func (s *invoiceService) GeneratePDF(ctx context.Context, userID, id uuid.UUID) (string, error) {
	// Object storage is optional at deploy time; without it the PDF
	// endpoint degrades to an explicit error instead of a panic.
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}

	inv, err := s.invoices.GetByIDWithRelations(ctx, userID, id)
	if err != nil {
		return "", err
	}

	data, err := renderInvoicePDF(inv)
	if err != nil {
		return "", fmt.Errorf("render pdf: %w", err)
	}

	objectName := fmt.Sprintf("%s/%s.pdf", userID, inv.Invoice.InvoiceNumber)
	if err := s.storage.UploadPDF(ctx, s.pdfBucket, objectName, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("archive pdf: %w", err)
	}

	url, err := s.storage.GetPresignedURL(ctx, s.pdfBucket, objectName, pdfURLExpiry)
	if err != nil {
		return "", fmt.Errorf("presign pdf url: %w", err)
	}

	log.Info().
		Str("invoice_id", id.String()).
		Str("object", objectName).
		Msg("invoice pdf archived")
	return url, nil
}

func (s *invoiceService) ListNotifications(ctx context.Context, userID, invoiceID uuid.UUID) ([]*models.Notification, error) {
	return s.notifications.ListByInvoice(ctx, userID, invoiceID)
}

func renderInvoicePDF(inv *models.InvoiceWithRelations) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	marginX := 20.0
	marginY := 20.0
	pdf.SetMargins(marginX, marginY, marginX)
	pdf.SetAutoPageBreak(true, marginY)

	pdf.SetFont("Arial", "B", 16)
	pdf.SetTextColor(33, 37, 41)
	pdf.SetXY(marginX, marginY)
	pdf.Cell(0, 10, inv.User.DisplayName())
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Invoice Number: %s", inv.Invoice.InvoiceNumber))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Issue Date: %s", inv.Invoice.IssueDate.Format("02-Jan-2006")))
	pdf.Ln(8)
	pdf.Cell(0, 8, fmt.Sprintf("Due Date: %s", inv.Invoice.DueDate.Format("02-Jan-2006")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 8, "BILL TO:")
	pdf.Ln(6)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, inv.Client.Name)
	pdf.Ln(6)
	pdf.Cell(0, 6, inv.Client.Email)
	pdf.Ln(6)
	if inv.Client.Address != nil && *inv.Client.Address != "" {
		pdf.Cell(0, 6, *inv.Client.Address)
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	headers := []string{"Description", "Qty", "Rate", "Amount"}
	colWidths := []float64{80, 20, 30, 40}
	for i, header := range headers {
		pdf.CellFormat(colWidths[i], 8, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(255, 255, 255)
	for _, item := range inv.Invoice.LineItems {
		pdf.CellFormat(colWidths[0], 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colWidths[1], 8, fmt.Sprintf("%.2f", item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(colWidths[2], 8, fmt.Sprintf("%.2f", item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", item.Amount), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(colWidths[0]+colWidths[1]+colWidths[2], 8, "Subtotal", "0", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", inv.Invoice.Subtotal), "1", 0, "R", false, 0, "")
	pdf.Ln(8)
	pdf.CellFormat(colWidths[0]+colWidths[1]+colWidths[2], 8, "Tax", "0", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", inv.Invoice.Tax), "1", 0, "R", false, 0, "")
	pdf.Ln(8)
	pdf.CellFormat(colWidths[0]+colWidths[1]+colWidths[2], 8, "Total", "0", 0, "R", false, 0, "")
	pdf.CellFormat(colWidths[3], 8, fmt.Sprintf("%.2f", inv.Invoice.Total), "1", 0, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
