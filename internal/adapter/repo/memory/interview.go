// Package memory provides mutex-guarded repositories for local runs and tests.
// Every read returns a copy, so callers never share state with the store.
package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// InterviewRepo stores interview sessions and their attempts.
type InterviewRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.InterviewSession
	now      func() time.Time
}

// NewInterviewRepo constructs an empty InterviewRepo.
func NewInterviewRepo() *InterviewRepo {
	return &InterviewRepo{sessions: map[string]*domain.InterviewSession{}, now: time.Now}
}

// Create stores s and returns its id.
func (r *InterviewRepo) Create(_ domain.Context, s domain.InterviewSession) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if _, ok := r.sessions[s.ID]; ok {
		return "", fmt.Errorf("op=memory.interview.create: %w", domain.ErrConflict)
	}
	if s.Stage == "" {
		s.Stage = domain.StageGreeting
	}
	if s.Status == "" {
		s.Status = domain.StatusInProgress
	}
	now := r.now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	s.Attempts = append([]domain.QuestionAttempt(nil), s.Attempts...)
	r.sessions[s.ID] = &s
	return s.ID, nil
}

// Get returns a copy of the session.
func (r *InterviewRepo) Get(_ domain.Context, id string) (domain.InterviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.InterviewSession{}, fmt.Errorf("op=memory.interview.get: %w", domain.ErrNotFound)
	}
	return copySession(s), nil
}

// Transition moves the stage only when it still equals from.
func (r *InterviewRepo) Transition(_ domain.Context, id string, from, to domain.Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("op=memory.interview.transition: %w", domain.ErrNotFound)
	}
	if s.Stage != from {
		return fmt.Errorf("op=memory.interview.transition: stage is %s not %s: %w", s.Stage, from, domain.ErrConflict)
	}
	r.setStage(s, to)
	return nil
}

// RecordAttempt appends a and moves the stage in one locked step.
func (r *InterviewRepo) RecordAttempt(_ domain.Context, id string, from domain.Stage, a domain.QuestionAttempt, to domain.Stage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return fmt.Errorf("op=memory.interview.record_attempt: %w", domain.ErrNotFound)
	}
	if s.Stage != from {
		return fmt.Errorf("op=memory.interview.record_attempt: stage is %s not %s: %w", s.Stage, from, domain.ErrConflict)
	}
	if s.Attempted(a.QuestionID) {
		return fmt.Errorf("op=memory.interview.record_attempt: question %s already answered: %w", a.QuestionID, domain.ErrConflict)
	}
	if len(s.Attempts) >= domain.MaxInterviewAttempts {
		return fmt.Errorf("op=memory.interview.record_attempt: attempt limit reached: %w", domain.ErrConflict)
	}
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	a.SessionID = id
	a.CreatedAt = r.now().UTC()
	a.MatchedKeywords = append([]string(nil), a.MatchedKeywords...)
	s.Attempts = append(s.Attempts, a)
	s.TotalScore += a.Score
	r.setStage(s, to)
	return nil
}

// Complete forces the session to COMPLETED from any stage.
func (r *InterviewRepo) Complete(_ domain.Context, id string) (domain.InterviewSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return domain.InterviewSession{}, fmt.Errorf("op=memory.interview.complete: %w", domain.ErrNotFound)
	}
	r.setStage(s, domain.StageCompleted)
	return copySession(s), nil
}

func (r *InterviewRepo) setStage(s *domain.InterviewSession, to domain.Stage) {
	s.Stage = to
	if to == domain.StageCompleted {
		s.Status = domain.StatusCompleted
	}
	s.UpdatedAt = r.now().UTC()
}

func copySession(s *domain.InterviewSession) domain.InterviewSession {
	out := *s
	out.Attempts = make([]domain.QuestionAttempt, len(s.Attempts))
	for i, a := range s.Attempts {
		a.MatchedKeywords = append([]string(nil), a.MatchedKeywords...)
		out.Attempts[i] = a
	}
	return out
}
