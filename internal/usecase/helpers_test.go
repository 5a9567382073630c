package usecase_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// staticBank serves fixed interview questions and test pools.
type staticBank struct {
	technical []domain.Question
	hr        []domain.Question
	pools     map[string][]domain.Question
	poolErr   error
}

func (b staticBank) TechnicalQuestions(string) []domain.Question { return b.technical }
func (b staticBank) HRQuestions(string) []domain.Question        { return b.hr }

func (b staticBank) Question(id string) (domain.Question, bool) {
	for _, q := range append(append([]domain.Question{}, b.technical...), b.hr...) {
		if q.ID == id {
			return q, true
		}
	}
	return domain.Question{}, false
}

func (b staticBank) Subjects() []string { return []string{"dbms", "java"} }

func (b staticBank) TestQuestions(_ context.Context, subject, difficulty string) ([]domain.Question, error) {
	if b.poolErr != nil {
		return nil, b.poolErr
	}
	return append([]domain.Question(nil), b.pools[strings.ToLower(subject)+"/"+strings.ToLower(difficulty)]...), nil
}

type staticTasks []domain.CommunicationTask

func (t staticTasks) Tasks() []domain.CommunicationTask { return t }

func (t staticTasks) Task(id string) (domain.CommunicationTask, bool) {
	for _, task := range t {
		if task.ID == id {
			return task, true
		}
	}
	return domain.CommunicationTask{}, false
}

type staticRules struct{ roles []domain.ATSRole }

func (r staticRules) Roles() []domain.ATSRole { return r.roles }

func (r staticRules) Role(name string) (domain.ATSRole, bool) {
	for _, role := range r.roles {
		if strings.EqualFold(role.Name, name) {
			return role, true
		}
	}
	return domain.ATSRole{}, false
}

func (r staticRules) SectionKeywords() []domain.SectionKeywords { return nil }

// recordingPublisher captures published entries.
type recordingPublisher struct {
	mu      sync.Mutex
	entries []domain.ActivityEntry
	err     error
}

func (p *recordingPublisher) Publish(_ context.Context, e domain.ActivityEntry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries = append(p.entries, e)
	return p.err
}

func (p *recordingPublisher) Entries() []domain.ActivityEntry {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.ActivityEntry(nil), p.entries...)
}

// failingActivityRepo fails every write.
type failingActivityRepo struct{}

func (failingActivityRepo) Create(context.Context, domain.ActivityEntry) (string, error) {
	return "", errors.New("db down")
}

func (failingActivityRepo) ListByUser(context.Context, string, int) ([]domain.ActivityEntry, error) {
	return nil, errors.New("db down")
}

// mockGenerator is a testify mock of domain.ContentGenerator.
type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) GenerateJSON(ctx context.Context, prompt, schemaName string, out any) error {
	args := m.Called(ctx, prompt, schemaName, out)
	return args.Error(0)
}

// mockLimiter is a testify mock of usecase.Limiter.
type mockLimiter struct{ mock.Mock }

func (m *mockLimiter) Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error) {
	args := m.Called(ctx, key, cost)
	return args.Bool(0), args.Get(1).(time.Duration), args.Error(2)
}
