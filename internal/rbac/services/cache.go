package services

import (
	"context"
	"log/slog"
	"time"

	"go-sahay/pkg/config"
	"go-sahay/pkg/database"
)

const heldSetKeyPrefix = "sahay:rbac:held:"

// heldSetCache keeps a user's resolved permission-name set in Redis for
// a short window. The TTL is the staleness bound for role definition
// changes; assignment changes invalidate the entry directly.
type heldSetCache struct {
	redis *database.Redis
	ttl   time.Duration
}

func newHeldSetCache(redis *database.Redis) *heldSetCache {
	return &heldSetCache{
		redis: redis,
		ttl:   config.GetDurationEnv("RBAC_CACHE_TTL", 30*time.Second),
	}
}

func (c *heldSetCache) get(ctx context.Context, userID string) (map[string]struct{}, bool) {
	if c == nil {
		return nil, false
	}
	var names []string
	if err := c.redis.GetJSON(ctx, heldSetKeyPrefix+userID, &names); err != nil {
		return nil, false
	}
	held := make(map[string]struct{}, len(names))
	for _, name := range names {
		held[name] = struct{}{}
	}
	return held, true
}

func (c *heldSetCache) set(ctx context.Context, userID string, held map[string]struct{}) {
	if c == nil {
		return
	}
	names := make([]string, 0, len(held))
	for name := range held {
		names = append(names, name)
	}
	if err := c.redis.SetJSON(ctx, heldSetKeyPrefix+userID, names, c.ttl); err != nil {
		slog.Warn("[RBAC] Failed to cache permission set", "user_id", userID, "error", err)
	}
}

func (c *heldSetCache) invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	if err := c.redis.Delete(ctx, heldSetKeyPrefix+userID); err != nil {
		slog.Warn("[RBAC] Failed to invalidate permission cache", "user_id", userID, "error", err)
	}
}
