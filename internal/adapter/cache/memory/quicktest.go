// Package memory is an in-process TTL cache for generated quick tests, used
// when no Redis is configured.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

type entry struct {
	test    domain.QuickTest
	expires time.Time
}

// QuickTestCache implements domain.QuickTestCache with lazy expiry.
type QuickTestCache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewQuickTestCache constructs an empty cache.
func NewQuickTestCache() *QuickTestCache {
	return &QuickTestCache{entries: map[string]entry{}, now: time.Now}
}

var _ domain.QuickTestCache = (*QuickTestCache)(nil)

func (c *QuickTestCache) Put(_ domain.Context, t domain.QuickTest, ttl time.Duration) error {
	if t.ID == "" {
		return fmt.Errorf("op=memory.quicktest.put: %w: empty id", domain.ErrInvalidArgument)
	}
	if ttl <= 0 {
		return fmt.Errorf("op=memory.quicktest.put: %w: ttl must be positive", domain.ErrInvalidArgument)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sweep()
	t.Questions = append([]domain.GeneratedQuestion(nil), t.Questions...)
	c.entries[t.ID] = entry{test: t, expires: c.now().Add(ttl)}
	return nil
}

func (c *QuickTestCache) Get(_ domain.Context, id string) (domain.QuickTest, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok || !c.now().Before(e.expires) {
		delete(c.entries, id)
		return domain.QuickTest{}, fmt.Errorf("op=memory.quicktest.get: %w", domain.ErrNotFound)
	}
	out := e.test
	out.Questions = append([]domain.GeneratedQuestion(nil), e.test.Questions...)
	return out, nil
}

func (c *QuickTestCache) Delete(_ domain.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

// sweep drops expired entries; callers hold mu.
func (c *QuickTestCache) sweep() {
	now := c.now()
	for id, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, id)
		}
	}
}

// Len reports the number of entries, expired ones included until the next sweep.
func (c *QuickTestCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
