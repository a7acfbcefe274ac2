package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"inkwell/internal/metrics"
	"inkwell/internal/models"
)

// Badge caches the "new notification available" flag per recipient.
// Lookups that fail or miss return ok=false and the caller recomputes.
type Badge interface {
	Get(ctx context.Context, user models.ID) (available bool, ok bool)
	Set(ctx context.Context, user models.ID, available bool)
	Invalidate(ctx context.Context, user models.ID)
}

type LocalBadge struct {
	c *TTL[models.ID, bool]
}

func NewLocalBadge(size int, ttl time.Duration) (*LocalBadge, error) {
	c, err := NewTTL[models.ID, bool](size, ttl)
	if err != nil {
		return nil, fmt.Errorf("badge cache: %w", err)
	}
	return &LocalBadge{c: c}, nil
}

func (b *LocalBadge) Get(_ context.Context, user models.ID) (bool, bool) {
	v, ok := b.c.Get(user)
	observe(ok)
	return v, ok
}

func (b *LocalBadge) Set(_ context.Context, user models.ID, available bool) {
	b.c.Set(user, available)
}

func (b *LocalBadge) Invalidate(_ context.Context, user models.ID) {
	b.c.Delete(user)
}

// RedisBadge shares the flag between API replicas.
type RedisBadge struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisBadge(rdb *redis.Client, ttl time.Duration) *RedisBadge {
	return &RedisBadge{rdb: rdb, ttl: ttl}
}

func badgeKey(user models.ID) string {
	return "inkwell:badge:" + user.String()
}

func (b *RedisBadge) Get(ctx context.Context, user models.ID) (bool, bool) {
	v, err := b.rdb.Get(ctx, badgeKey(user)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			metrics.BadgeCache.WithLabelValues("error").Inc()
			return false, false
		}
		observe(false)
		return false, false
	}
	observe(true)
	return v == "1", true
}

func (b *RedisBadge) Set(ctx context.Context, user models.ID, available bool) {
	v := "0"
	if available {
		v = "1"
	}
	_ = b.rdb.Set(ctx, badgeKey(user), v, b.ttl).Err()
}

func (b *RedisBadge) Invalidate(ctx context.Context, user models.ID) {
	_ = b.rdb.Del(ctx, badgeKey(user)).Err()
}

func observe(hit bool) {
	if hit {
		metrics.BadgeCache.WithLabelValues("hit").Inc()
		return
	}
	metrics.BadgeCache.WithLabelValues("miss").Inc()
}

// Nop never caches.
type Nop struct{}

func (Nop) Get(context.Context, models.ID) (bool, bool) { return false, false }
func (Nop) Set(context.Context, models.ID, bool)        {}
func (Nop) Invalidate(context.Context, models.ID)       {}
