// Package randx provides injectable random choice so callers can be tested deterministically.
package randx

import (
	"math/rand"
	"sync"
	"time"
)

// Chooser picks an index in [0, n).
type Chooser interface {
	Intn(n int) int
}

// Source is a goroutine-safe Chooser backed by a seeded generator.
type Source struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeeded returns a Source whose sequence is fully determined by seed.
func NewSeeded(seed int64) *Source {
	return &Source{rnd: rand.New(rand.NewSource(seed))} //nolint:gosec // not used for secrets
}

// New returns a Source seeded from the clock, or from seed when non-zero.
func New(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewSeeded(seed)
}

// Intn returns a value in [0, n). It returns 0 when n <= 0.
func (s *Source) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(n)
}

// Shuffle returns a shuffled copy of items using c (Fisher-Yates).
func Shuffle[T any](c Chooser, items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	for i := len(out) - 1; i > 0; i-- {
		j := c.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Pick returns a random element of items, or false when empty.
func Pick[T any](c Chooser, items []T) (T, bool) {
	var zero T
	if len(items) == 0 {
		return zero, false
	}
	return items[c.Intn(len(items))], true
}

// Fixed is a Chooser that replays a fixed sequence; useful in tests.
type Fixed struct {
	mu     sync.Mutex
	Values []int
	next   int
}

// Intn returns the next value modulo n, cycling through Values.
func (f *Fixed) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Values) == 0 {
		return 0
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	if v < 0 {
		v = -v
	}
	return v % n
}
