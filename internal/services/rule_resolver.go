package services

import (
	"context"

	"billora/internal/caching"
	"billora/internal/models"
	"billora/internal/repositories"

	"github.com/google/uuid"
)

// RuleResolver finds the automation rule that should fire for a
// trigger. Resolution is cache-aside: Redis first, Postgres on miss.
// A user with no matching rule is not an error; the engine simply
// skips the notification.
type RuleResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID, kind models.TriggerKind) (*models.ResolvedRule, error)
}

type ruleResolver struct {
	rules repositories.AutomationRuleRepository
	cache caching.CacheService
}

func NewRuleResolver(rules repositories.AutomationRuleRepository, cache caching.CacheService) RuleResolver {
	return &ruleResolver{rules: rules, cache: cache}
}

func (r *ruleResolver) Resolve(ctx context.Context, userID uuid.UUID, kind models.TriggerKind) (*models.ResolvedRule, error) {
	if resolved, ok := r.cache.GetResolvedRule(ctx, userID, kind); ok {
		return resolved, nil
	}

	resolved, err := r.rules.FindActiveByTrigger(ctx, userID, kind)
	if err != nil {
		return nil, err
	}
	if resolved != nil {
		r.cache.SetResolvedRule(ctx, userID, kind, resolved)
	}
	return resolved, nil
}
