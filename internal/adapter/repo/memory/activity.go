package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// ActivityRepo stores the activity timeline.
type ActivityRepo struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
	now     func() time.Time
}

// NewActivityRepo constructs an empty ActivityRepo.
func NewActivityRepo() *ActivityRepo { return &ActivityRepo{now: time.Now} }

func (r *ActivityRepo) Create(_ domain.Context, e domain.ActivityEntry) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}
	r.entries = append(r.entries, e)
	return e.ID, nil
}

// ListByUser returns the newest entries first; limit <= 0 returns all.
func (r *ActivityRepo) ListByUser(_ domain.Context, userID string, limit int) ([]domain.ActivityEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []domain.ActivityEntry{}
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
