package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"billora/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const ruleTTL = 10 * time.Minute

// CacheService caches resolved automation rules per user and trigger.
// A cache miss is always safe; the resolver falls through to Postgres.
type CacheService interface {
	GetResolvedRule(ctx context.Context, userID uuid.UUID, kind models.TriggerKind) (*models.ResolvedRule, bool)
	SetResolvedRule(ctx context.Context, userID uuid.UUID, kind models.TriggerKind, rule *models.ResolvedRule)
	InvalidateRules(ctx context.Context, userID uuid.UUID)
}

type redisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the given Redis address. Accepts both a
// bare host:port and a redis:// URL.
func NewRedisCache(addr string) (CacheService, error) {
	var opts *redis.Options
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &redisCache{client: client}, nil
}

func ruleKey(userID uuid.UUID, kind models.TriggerKind) string {
	return fmt.Sprintf("billora:rule:%s:%s", userID, kind)
}

func (c *redisCache) GetResolvedRule(ctx context.Context, userID uuid.UUID, kind models.TriggerKind) (*models.ResolvedRule, bool) {
	raw, err := c.client.Get(ctx, ruleKey(userID, kind)).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Msg("rule cache read failed")
		}
		return nil, false
	}
	resolved := &models.ResolvedRule{}
	if err := json.Unmarshal(raw, resolved); err != nil {
		log.Warn().Err(err).Msg("rule cache entry corrupt, dropping")
		c.client.Del(ctx, ruleKey(userID, kind))
		return nil, false
	}
	return resolved, true
}

func (c *redisCache) SetResolvedRule(ctx context.Context, userID uuid.UUID, kind models.TriggerKind, rule *models.ResolvedRule) {
	raw, err := json.Marshal(rule)
	if err != nil {
		log.Warn().Err(err).Msg("rule cache encode failed")
		return
	}
	if err := c.client.Set(ctx, ruleKey(userID, kind), raw, ruleTTL).Err(); err != nil {
		log.Warn().Err(err).Msg("rule cache write failed")
	}
}

func (c *redisCache) InvalidateRules(ctx context.Context, userID uuid.UUID) {
	keys := make([]string, 0, len(models.AllTriggerKinds))
	for _, kind := range models.AllTriggerKinds {
		keys = append(keys, ruleKey(userID, kind))
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("rule cache invalidation failed")
	}
}

// NoopCache satisfies CacheService when Redis is not configured.
type NoopCache struct{}

func (NoopCache) GetResolvedRule(context.Context, uuid.UUID, models.TriggerKind) (*models.ResolvedRule, bool) {
	return nil, false
}
func (NoopCache) SetResolvedRule(context.Context, uuid.UUID, models.TriggerKind, *models.ResolvedRule) {
}
func (NoopCache) InvalidateRules(context.Context, uuid.UUID) {}
