package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"billora/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAutomationRuleRepository struct {
	mock.Mock
}

func (m *MockAutomationRuleRepository) Create(ctx context.Context, rule *models.AutomationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockAutomationRuleRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*models.AutomationRule, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AutomationRule), args.Error(1)
}

func (m *MockAutomationRuleRepository) Update(ctx context.Context, rule *models.AutomationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockAutomationRuleRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *MockAutomationRuleRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*models.AutomationRule, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]*models.AutomationRule), args.Error(1)
}

func (m *MockAutomationRuleRepository) FindActiveByTrigger(ctx context.Context, userID uuid.UUID, kind models.TriggerKind) (*models.ResolvedRule, error) {
	args := m.Called(ctx, userID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ResolvedRule), args.Error(1)
}

// memoryCache is an in-memory CacheService for tests.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*models.ResolvedRule
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*models.ResolvedRule)}
}

func (c *memoryCache) key(userID uuid.UUID, kind models.TriggerKind) string {
	return userID.String() + ":" + string(kind)
}

func (c *memoryCache) GetResolvedRule(_ context.Context, userID uuid.UUID, kind models.TriggerKind) (*models.ResolvedRule, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rule, ok := c.entries[c.key(userID, kind)]
	return rule, ok
}

func (c *memoryCache) SetResolvedRule(_ context.Context, userID uuid.UUID, kind models.TriggerKind, rule *models.ResolvedRule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[c.key(userID, kind)] = rule
}

func (c *memoryCache) InvalidateRules(_ context.Context, userID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, kind := range models.AllTriggerKinds {
		delete(c.entries, c.key(userID, kind))
	}
}

func TestRuleResolver_CacheMissHitsRepository(t *testing.T) {
	repo := &MockAutomationRuleRepository{}
	cache := newMemoryCache()
	resolver := NewRuleResolver(repo, cache)

	userID := uuid.New()
	templateID := uuid.New()
	resolved := &models.ResolvedRule{
		Rule:     models.AutomationRule{ID: uuid.New(), UserID: userID, TriggerKind: models.TriggerInvoiceSent, EmailTemplateID: &templateID, Active: true},
		Template: models.EmailTemplate{ID: templateID, UserID: userID, Subject: "s", Body: "b", Name: "n"},
	}
	repo.On("FindActiveByTrigger", mock.Anything, userID, models.TriggerInvoiceSent).Return(resolved, nil).Once()

	got, err := resolver.Resolve(context.Background(), userID, models.TriggerInvoiceSent)
	assert.NoError(t, err)
	assert.Equal(t, resolved, got)

	// Second resolve is served from cache; repo is not called again.
	got2, err := resolver.Resolve(context.Background(), userID, models.TriggerInvoiceSent)
	assert.NoError(t, err)
	assert.Equal(t, resolved, got2)
	repo.AssertExpectations(t)
}

func TestRuleResolver_NoRuleIsNotCached(t *testing.T) {
	repo := &MockAutomationRuleRepository{}
	cache := newMemoryCache()
	resolver := NewRuleResolver(repo, cache)

	userID := uuid.New()
	repo.On("FindActiveByTrigger", mock.Anything, userID, models.TriggerInvoiceOverdue).Return(nil, nil).Twice()

	got, err := resolver.Resolve(context.Background(), userID, models.TriggerInvoiceOverdue)
	assert.NoError(t, err)
	assert.Nil(t, got)

	// A miss goes back to the repository so a newly created rule takes
	// effect immediately.
	got2, err := resolver.Resolve(context.Background(), userID, models.TriggerInvoiceOverdue)
	assert.NoError(t, err)
	assert.Nil(t, got2)
	repo.AssertExpectations(t)
}

func TestRuleResolver_RepositoryErrorPropagates(t *testing.T) {
	repo := &MockAutomationRuleRepository{}
	resolver := NewRuleResolver(repo, newMemoryCache())

	userID := uuid.New()
	repo.On("FindActiveByTrigger", mock.Anything, userID, models.TriggerInvoiceSent).Return(nil, errors.New("db down"))

	_, err := resolver.Resolve(context.Background(), userID, models.TriggerInvoiceSent)
	assert.Error(t, err)
}
