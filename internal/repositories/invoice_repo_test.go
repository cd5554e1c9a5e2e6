package repositories

import (
	"context"
	"testing"
	"time"

	"billora/internal/models"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type InvoiceRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      InvoiceRepository
	userID    uuid.UUID
	invoiceID uuid.UUID
	ctx       context.Context
}

func (suite *InvoiceRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewInvoiceRepo(mock)
	suite.userID = uuid.New()
	suite.invoiceID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *InvoiceRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestInvoiceRepoTestSuite(t *testing.T) {
	suite.Run(t, new(InvoiceRepoTestSuite))
}

func (suite *InvoiceRepoTestSuite) TestTransitionStatus_Applied() {
	suite.mock.ExpectExec(`UPDATE invoices`).
		WithArgs(models.InvoiceStatusOverdue, suite.userID, suite.invoiceID, models.InvoiceStatusSent).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	moved, err := suite.repo.TransitionStatus(suite.ctx, suite.userID, suite.invoiceID,
		models.InvoiceStatusSent, models.InvoiceStatusOverdue)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), moved)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *InvoiceRepoTestSuite) TestTransitionStatus_StaleStatusDoesNotMove() {
	suite.mock.ExpectExec(`UPDATE invoices`).
		WithArgs(models.InvoiceStatusOverdue, suite.userID, suite.invoiceID, models.InvoiceStatusSent).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	moved, err := suite.repo.TransitionStatus(suite.ctx, suite.userID, suite.invoiceID,
		models.InvoiceStatusSent, models.InvoiceStatusOverdue)
	assert.NoError(suite.T(), err)
	assert.False(suite.T(), moved)
}

func (suite *InvoiceRepoTestSuite) TestListDueBefore() {
	asOf := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	clientID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "client_id", "invoice_number", "status", "issue_date", "due_date",
		"subtotal", "tax", "total", "created_at", "updated_at",
		"c_id", "c_user_id", "c_name", "c_email", "c_phone", "c_address", "c_created_at", "c_updated_at",
		"u_id", "u_name", "u_email", "u_business_name", "u_created_at", "u_updated_at",
	}).AddRow(
		suite.invoiceID, suite.userID, clientID, "INV-7", models.InvoiceStatusSent,
		asOf.AddDate(0, -1, 0), asOf.AddDate(0, 0, -5),
		100.0, 18.0, 118.0, now, now,
		clientID, suite.userID, "Acme Corp", "billing@acme.test", nil, nil, now, now,
		suite.userID, "Jane", "jane@example.com", nil, now, now,
	)

	suite.mock.ExpectQuery(`FROM invoices i`).
		WithArgs(models.InvoiceStatusSent, asOf).
		WillReturnRows(rows)

	due, err := suite.repo.ListDueBefore(suite.ctx, asOf)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), due, 1)
	assert.Equal(suite.T(), "INV-7", due[0].Invoice.InvoiceNumber)
	assert.Equal(suite.T(), "Acme Corp", due[0].Client.Name)
	assert.Equal(suite.T(), "jane@example.com", due[0].User.Email)
}

func (suite *InvoiceRepoTestSuite) TestListDueBefore_Empty() {
	asOf := time.Now().UTC()
	rows := pgxmock.NewRows([]string{
		"id", "user_id", "client_id", "invoice_number", "status", "issue_date", "due_date",
		"subtotal", "tax", "total", "created_at", "updated_at",
		"c_id", "c_user_id", "c_name", "c_email", "c_phone", "c_address", "c_created_at", "c_updated_at",
		"u_id", "u_name", "u_email", "u_business_name", "u_created_at", "u_updated_at",
	})

	suite.mock.ExpectQuery(`FROM invoices i`).
		WithArgs(models.InvoiceStatusSent, asOf).
		WillReturnRows(rows)

	due, err := suite.repo.ListDueBefore(suite.ctx, asOf)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), due)
}

func (suite *InvoiceRepoTestSuite) TestNextInvoiceNumber() {
	rows := pgxmock.NewRows([]string{"next_value"}).AddRow(int64(1))
	suite.mock.ExpectQuery(`INSERT INTO invoice_sequences`).
		WithArgs(suite.userID).
		WillReturnRows(rows)

	number, err := suite.repo.NextInvoiceNumber(suite.ctx, suite.userID)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "INV-1", number)
}

func (suite *InvoiceRepoTestSuite) TestGetByID_NotFound() {
	suite.mock.ExpectQuery(`FROM invoices`).
		WithArgs(suite.userID, suite.invoiceID).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	_, err := suite.repo.GetByID(suite.ctx, suite.userID, suite.invoiceID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}
