package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	httpserver "github.com/fairyhunter13/career-readiness/internal/adapter/httpserver"
	"github.com/fairyhunter13/career-readiness/internal/config"
)

// Pinger is the minimal interface for a database pool capable of Ping.
type Pinger interface{ Ping(ctx context.Context) error }

// RedisClient is the minimal interface for a Redis client needed for readiness.
type RedisClient interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// BuildReadinessChecks returns the /readyz checks for the configured backends.
// The database check is omitted for the memory store and the Redis check when
// no client is configured; the extractor is always checked since resume
// uploads need it.
func BuildReadinessChecks(cfg config.Config, pool Pinger, rdb RedisClient, tika Pinger) []httpserver.ReadinessCheck {
	checks := make([]httpserver.ReadinessCheck, 0, 3)
	if !cfg.UseMemoryStore() {
		checks = append(checks, httpserver.ReadinessCheck{Name: "db", Check: func(ctx context.Context) error {
			if pool == nil {
				return fmt.Errorf("db not configured")
			}
			return pool.Ping(ctx)
		}})
	}
	if rdb != nil {
		checks = append(checks, httpserver.ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	checks = append(checks, httpserver.ReadinessCheck{Name: "tika", Check: func(ctx context.Context) error {
		if tika == nil {
			return fmt.Errorf("tika url not configured")
		}
		return tika.Ping(ctx)
	}})
	return checks
}
