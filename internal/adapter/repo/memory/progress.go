package memory

import (
	"sync"
	"time"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// ProgressRepo keeps one progress record per user.
type ProgressRepo struct {
	mu    sync.Mutex
	users map[string]*domain.UserProgress
	now   func() time.Time
}

// NewProgressRepo constructs an empty ProgressRepo.
func NewProgressRepo() *ProgressRepo {
	return &ProgressRepo{users: map[string]*domain.UserProgress{}, now: time.Now}
}

func (r *ProgressRepo) FindOrCreate(_ domain.Context, userID string) (domain.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return copyProgress(r.findOrCreate(userID)), nil
}

func (r *ProgressRepo) RecordModule(_ domain.Context, userID, module string, score float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.findOrCreate(userID)
	now := r.now().UTC()
	mp := p.Modules[module]
	mp.Module = module
	mp.LatestScore = score
	mp.Completions++
	mp.UpdatedAt = now
	p.Modules[module] = mp
	p.UpdatedAt = now
	return nil
}

func (r *ProgressRepo) findOrCreate(userID string) *domain.UserProgress {
	if p, ok := r.users[userID]; ok {
		return p
	}
	now := r.now().UTC()
	p := &domain.UserProgress{UserID: userID, Modules: map[string]domain.ModuleProgress{}, CreatedAt: now, UpdatedAt: now}
	r.users[userID] = p
	return p
}

func copyProgress(p *domain.UserProgress) domain.UserProgress {
	out := *p
	out.Modules = make(map[string]domain.ModuleProgress, len(p.Modules))
	for k, v := range p.Modules {
		out.Modules[k] = v
	}
	return out
}
