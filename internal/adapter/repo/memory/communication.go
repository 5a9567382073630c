package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// CommunicationRepo stores communication tests and their task results.
type CommunicationRepo struct {
	mu    sync.Mutex
	tests map[string]*domain.CommunicationTest
	now   func() time.Time
}

// NewCommunicationRepo constructs an empty CommunicationRepo.
func NewCommunicationRepo() *CommunicationRepo {
	return &CommunicationRepo{tests: map[string]*domain.CommunicationTest{}, now: time.Now}
}

func (r *CommunicationRepo) Create(_ domain.Context, t domain.CommunicationTest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = domain.StatusInProgress
	}
	now := r.now().UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	t.Tasks = nil
	r.tests[t.ID] = &t
	return t.ID, nil
}

func (r *CommunicationRepo) Get(_ domain.Context, id string) (domain.CommunicationTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return domain.CommunicationTest{}, fmt.Errorf("op=memory.communication.get: %w", domain.ErrNotFound)
	}
	out := *t
	out.Tasks = make([]domain.TaskResult, len(t.Tasks))
	for i, tr := range t.Tasks {
		tr.Metrics.MatchedPoints = append([]string(nil), tr.Metrics.MatchedPoints...)
		out.Tasks[i] = tr
	}
	return out, nil
}

func (r *CommunicationRepo) AddTaskResult(_ domain.Context, testID string, tr domain.TaskResult) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[testID]
	if !ok {
		return "", fmt.Errorf("op=memory.communication.add_task: %w", domain.ErrNotFound)
	}
	if t.Status == domain.StatusCompleted {
		return "", fmt.Errorf("op=memory.communication.add_task: test already completed: %w", domain.ErrConflict)
	}
	for _, prev := range t.Tasks {
		if prev.TaskID == tr.TaskID {
			return "", fmt.Errorf("op=memory.communication.add_task: task %s already submitted: %w", tr.TaskID, domain.ErrConflict)
		}
	}
	if tr.ID == "" {
		tr.ID = uuid.New().String()
	}
	tr.TestID = testID
	tr.CreatedAt = r.now().UTC()
	tr.Metrics.MatchedPoints = append([]string(nil), tr.Metrics.MatchedPoints...)
	t.Tasks = append(t.Tasks, tr)
	t.UpdatedAt = tr.CreatedAt
	return tr.ID, nil
}

func (r *CommunicationRepo) Complete(_ domain.Context, summary domain.CommunicationTest) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[summary.ID]
	if !ok {
		return false, fmt.Errorf("op=memory.communication.complete: %w", domain.ErrNotFound)
	}
	if t.Status == domain.StatusCompleted {
		return false, nil
	}
	t.Status = domain.StatusCompleted
	t.TotalScore = summary.TotalScore
	t.MaxScore = summary.MaxScore
	t.Percentage = summary.Percentage
	t.Label = summary.Label
	t.OverallFeedback = summary.OverallFeedback
	t.UpdatedAt = r.now().UTC()
	return true, nil
}
