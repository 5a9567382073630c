// Package redis stores generated quick tests in Redis with an explicit TTL.
package redis

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

const keyPrefix = "quicktest:"

// QuickTestCache implements domain.QuickTestCache on a Redis client.
type QuickTestCache struct {
	rdb goredis.Cmdable
}

// NewQuickTestCache constructs a QuickTestCache using rdb.
func NewQuickTestCache(rdb goredis.Cmdable) *QuickTestCache { return &QuickTestCache{rdb: rdb} }

var _ domain.QuickTestCache = (*QuickTestCache)(nil)

// Put stores t under its id for ttl.
func (c *QuickTestCache) Put(ctx domain.Context, t domain.QuickTest, ttl time.Duration) error {
	ctx, span := otel.Tracer("cache.quicktest").Start(ctx, "quicktest.Put")
	defer span.End()

	if t.ID == "" {
		return fmt.Errorf("op=quicktest.put: %w: empty id", domain.ErrInvalidArgument)
	}
	if ttl <= 0 {
		return fmt.Errorf("op=quicktest.put: %w: ttl must be positive", domain.ErrInvalidArgument)
	}
	b, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("op=quicktest.put: %w", err)
	}
	if err := c.rdb.Set(ctx, keyPrefix+t.ID, b, ttl).Err(); err != nil {
		return fmt.Errorf("op=quicktest.put: %w", err)
	}
	return nil
}

// Get returns domain.ErrNotFound for unknown or expired ids.
func (c *QuickTestCache) Get(ctx domain.Context, id string) (domain.QuickTest, error) {
	ctx, span := otel.Tracer("cache.quicktest").Start(ctx, "quicktest.Get")
	defer span.End()

	b, err := c.rdb.Get(ctx, keyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return domain.QuickTest{}, fmt.Errorf("op=quicktest.get: %w", domain.ErrNotFound)
		}
		return domain.QuickTest{}, fmt.Errorf("op=quicktest.get: %w", err)
	}
	var t domain.QuickTest
	if err := json.Unmarshal(b, &t); err != nil {
		return domain.QuickTest{}, fmt.Errorf("op=quicktest.get: %w", err)
	}
	return t, nil
}

func (c *QuickTestCache) Delete(ctx domain.Context, id string) error {
	ctx, span := otel.Tracer("cache.quicktest").Start(ctx, "quicktest.Delete")
	defer span.End()

	if err := c.rdb.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("op=quicktest.delete: %w", err)
	}
	return nil
}
