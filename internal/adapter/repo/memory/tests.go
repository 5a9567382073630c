package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// TechnicalTestRepo stores bank-drawn tests.
type TechnicalTestRepo struct {
	mu    sync.Mutex
	tests map[string]*domain.TechnicalTest
	now   func() time.Time
}

// NewTechnicalTestRepo constructs an empty TechnicalTestRepo.
func NewTechnicalTestRepo() *TechnicalTestRepo {
	return &TechnicalTestRepo{tests: map[string]*domain.TechnicalTest{}, now: time.Now}
}

func (r *TechnicalTestRepo) Create(_ domain.Context, t domain.TechnicalTest) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = domain.StatusInProgress
	}
	t.CreatedAt = r.now().UTC()
	t.QuestionIDs = append([]string(nil), t.QuestionIDs...)
	t.Answers = nil
	t.Score = 0
	r.tests[t.ID] = &t
	return t.ID, nil
}

func (r *TechnicalTestRepo) Get(_ domain.Context, id string) (domain.TechnicalTest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return domain.TechnicalTest{}, fmt.Errorf("op=memory.test.get: %w", domain.ErrNotFound)
	}
	return copyTest(t), nil
}

func (r *TechnicalTestRepo) RecordAnswer(_ domain.Context, id string, a domain.TestAnswer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return fmt.Errorf("op=memory.test.record_answer: %w", domain.ErrNotFound)
	}
	if t.Answered(a.QuestionID) {
		return fmt.Errorf("op=memory.test.record_answer: question %s already answered: %w", a.QuestionID, domain.ErrConflict)
	}
	a.CreatedAt = r.now().UTC()
	a.Selected = append([]string(nil), a.Selected...)
	t.Answers = append(t.Answers, a)
	t.Score += a.MarksAwarded
	return nil
}

func (r *TechnicalTestRepo) Complete(_ domain.Context, id string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tests[id]
	if !ok {
		return false, fmt.Errorf("op=memory.test.complete: %w", domain.ErrNotFound)
	}
	if t.Status == domain.StatusCompleted {
		return false, nil
	}
	t.Status = domain.StatusCompleted
	at = at.UTC()
	t.CompletedAt = &at
	return true, nil
}

func copyTest(t *domain.TechnicalTest) domain.TechnicalTest {
	out := *t
	out.QuestionIDs = append([]string(nil), t.QuestionIDs...)
	out.Answers = make([]domain.TestAnswer, len(t.Answers))
	for i, a := range t.Answers {
		a.Selected = append([]string(nil), a.Selected...)
		out.Answers[i] = a
	}
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		out.CompletedAt = &at
	}
	return out
}
