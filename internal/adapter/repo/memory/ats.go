package memory

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// ATSRepo stores resume analyses as encoded JSON, the same shape the
// PostgreSQL table keeps, so reads never alias the caller's maps.
type ATSRepo struct {
	mu    sync.Mutex
	items map[string][]byte
	now   func() time.Time
}

// NewATSRepo constructs an empty ATSRepo.
func NewATSRepo() *ATSRepo {
	return &ATSRepo{items: map[string][]byte{}, now: time.Now}
}

func (r *ATSRepo) Create(_ domain.Context, a domain.ATSAnalysis) (string, error) {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.CreatedAt = r.now().UTC()
	b, err := json.Marshal(a)
	if err != nil {
		return "", fmt.Errorf("op=memory.ats.create: %w", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[a.ID] = b
	return a.ID, nil
}

func (r *ATSRepo) Get(_ domain.Context, id string) (domain.ATSAnalysis, error) {
	r.mu.Lock()
	b, ok := r.items[id]
	r.mu.Unlock()
	if !ok {
		return domain.ATSAnalysis{}, fmt.Errorf("op=memory.ats.get: %w", domain.ErrNotFound)
	}
	var a domain.ATSAnalysis
	if err := json.Unmarshal(b, &a); err != nil {
		return domain.ATSAnalysis{}, fmt.Errorf("op=memory.ats.get: %w", err)
	}
	return a, nil
}
