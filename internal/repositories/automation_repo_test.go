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

type AutomationRepoTestSuite struct {
	suite.Suite
	mock   pgxmock.PgxPoolIface
	repo   AutomationRuleRepository
	userID uuid.UUID
	ctx    context.Context
}

func (suite *AutomationRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAutomationRuleRepo(mock)
	suite.userID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *AutomationRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestAutomationRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AutomationRepoTestSuite))
}

func (suite *AutomationRepoTestSuite) TestFindActiveByTrigger_ReturnsRuleWithTemplate() {
	ruleID := uuid.New()
	templateID := uuid.New()
	now := time.Now()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "trigger_kind", "trigger_data", "email_template_id", "active", "created_at", "updated_at",
		"t_id", "t_user_id", "t_name", "t_subject", "t_body", "t_created_at", "t_updated_at",
	}).AddRow(
		ruleID, suite.userID, models.TriggerInvoiceSent, models.JSONB{}, &templateID, true, now, now,
		templateID, suite.userID, "Invoice sent", "Invoice {{invoiceNumber}}", "<p>Hi {{clientName}}</p>", now, now,
	)

	suite.mock.ExpectQuery(`ORDER BY r\.created_at DESC, r\.id DESC`).
		WithArgs(suite.userID, models.TriggerInvoiceSent).
		WillReturnRows(rows)

	resolved, err := suite.repo.FindActiveByTrigger(suite.ctx, suite.userID, models.TriggerInvoiceSent)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), resolved)
	assert.Equal(suite.T(), ruleID, resolved.Rule.ID)
	assert.Equal(suite.T(), templateID, resolved.Template.ID)
	assert.Equal(suite.T(), "Invoice {{invoiceNumber}}", resolved.Template.Subject)
}

func (suite *AutomationRepoTestSuite) TestFindActiveByTrigger_NoMatchIsNilNil() {
	suite.mock.ExpectQuery(`FROM automation_rules r`).
		WithArgs(suite.userID, models.TriggerInvoiceOverdue).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	resolved, err := suite.repo.FindActiveByTrigger(suite.ctx, suite.userID, models.TriggerInvoiceOverdue)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), resolved)
}

func (suite *AutomationRepoTestSuite) TestCreate() {
	templateID := uuid.New()
	rule := &models.AutomationRule{
		ID:              uuid.New(),
		UserID:          suite.userID,
		TriggerKind:     models.TriggerInvoiceOverdue,
		TriggerData:     models.JSONB{},
		EmailTemplateID: &templateID,
		Active:          true,
	}

	suite.mock.ExpectExec(`INSERT INTO automation_rules`).
		WithArgs(rule.ID, rule.UserID, rule.TriggerKind, rule.TriggerData, rule.EmailTemplateID, rule.Active).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(suite.T(), suite.repo.Create(suite.ctx, rule))
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *AutomationRepoTestSuite) TestDelete() {
	ruleID := uuid.New()
	suite.mock.ExpectExec(`DELETE FROM automation_rules`).
		WithArgs(suite.userID, ruleID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(suite.T(), suite.repo.Delete(suite.ctx, suite.userID, ruleID))
}
