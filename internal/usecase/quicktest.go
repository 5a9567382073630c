package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/observability"
)

// QuickTestSize is the number of questions generated per quick test.
const QuickTestSize = 3

// DefaultQuickTestTTL applies when the service is built without a TTL.
const DefaultQuickTestTTL = 30 * time.Minute

const quickTestPrompt = `You are a senior interviewer writing a scenario-based multiple choice question.
Skill: %s
Difficulty: %s
Variation id: %s

Return one JSON object with fields:
- "id": a short identifier
- "question": a realistic scenario question about the skill
- "options": exactly 4 distinct answer strings
- "correctAnswer": the option text that is correct, copied exactly
- "explanation": one or two sentences explaining why it is correct
Return only the JSON object.`

// Limiter admits cost units for key or reports how long to wait.
type Limiter interface {
	Allow(ctx context.Context, key string, cost int64) (bool, time.Duration, error)
}

// QuickTestInput asks for a generated test.
type QuickTestInput struct {
	UserID     string `json:"userId"`
	Skill      string `json:"skill" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required"`
}

// PublicGeneratedQuestion is a generated question without its answer.
type PublicGeneratedQuestion struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// StartedQuickTest is returned by Start.
type StartedQuickTest struct {
	TestID    string                    `json:"testId"`
	Questions []PublicGeneratedQuestion `json:"questions"`
	ExpiresAt time.Time                 `json:"expiresAt"`
}

// QuickAnswerDetail explains one scored answer.
type QuickAnswerDetail struct {
	QuestionID    string `json:"questionId"`
	IsCorrect     bool   `json:"isCorrect"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	Explanation   string `json:"explanation"`
}

// QuickTestResult is returned by Submit.
type QuickTestResult struct {
	Score   int                 `json:"score"`
	Total   int                 `json:"total"`
	Details []QuickAnswerDetail `json:"details"`
}

// RateLimitError carries the wait suggested by the limiter.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: retry after %s", domain.ErrRateLimited, e.RetryAfter.Round(time.Second))
}

// Unwrap lets errors.Is match domain.ErrRateLimited.
func (e *RateLimitError) Unwrap() error { return domain.ErrRateLimited }

// QuickTestService generates short MCQ tests and scores them from the cache.
type QuickTestService struct {
	Generator domain.ContentGenerator
	Cache     domain.QuickTestCache
	Limiter   Limiter
	TTL       time.Duration
	Activity  ActivityLogger
}

// NewQuickTestService constructs a QuickTestService. limiter may be nil.
func NewQuickTestService(gen domain.ContentGenerator, cache domain.QuickTestCache, limiter Limiter, ttl time.Duration, act ActivityLogger) QuickTestService {
	if ttl <= 0 {
		ttl = DefaultQuickTestTTL
	}
	return QuickTestService{Generator: gen, Cache: cache, Limiter: limiter, TTL: ttl, Activity: act}
}

// Start generates QuickTestSize questions in parallel. Any failure fails the
// whole test; nothing is cached.
func (s QuickTestService) Start(ctx domain.Context, in QuickTestInput) (StartedQuickTest, error) {
	skill, difficulty := strings.TrimSpace(in.Skill), strings.TrimSpace(in.Difficulty)
	if skill == "" || difficulty == "" {
		return StartedQuickTest{}, domainErr(domain.ErrInvalidArgument, "skill and difficulty required")
	}
	if err := s.admit(ctx, in.UserID); err != nil {
		return StartedQuickTest{}, err
	}

	questions := make([]domain.GeneratedQuestion, QuickTestSize)
	g, gctx := errgroup.WithContext(ctx)
	for i := range questions {
		g.Go(func() error {
			prompt := fmt.Sprintf(quickTestPrompt, skill, difficulty, uuid.NewString())
			var q domain.GeneratedQuestion
			if err := s.Generator.GenerateJSON(gctx, prompt, domain.SchemaQuickTestQuestion, &q); err != nil {
				return err
			}
			questions[i] = q
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		observability.LoggerFromContext(ctx).Warn("quick test generation failed",
			slog.String("skill", skill), slog.Any("error", err))
		return StartedQuickTest{}, err
	}
	assignQuestionIDs(questions)

	now := time.Now().UTC()
	test := domain.QuickTest{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		Skill:      skill,
		Difficulty: difficulty,
		Questions:  questions,
		CreatedAt:  now,
	}
	if err := s.Cache.Put(ctx, test, s.TTL); err != nil {
		return StartedQuickTest{}, err
	}

	out := StartedQuickTest{TestID: test.ID, ExpiresAt: now.Add(s.TTL), Questions: make([]PublicGeneratedQuestion, 0, len(questions))}
	for _, q := range questions {
		out.Questions = append(out.Questions, PublicGeneratedQuestion{ID: q.ID, Question: q.Question, Options: q.Options})
	}
	s.Activity.Log(ctx, domain.ActivityEntry{
		UserID:   in.UserID,
		Module:   domain.ModuleTechnical,
		Action:   domain.ActionGenerate,
		Summary:  fmt.Sprintf("Quick test generated for %s (%s)", skill, difficulty),
		Status:   ActivityInProgress,
		Metadata: map[string]any{"quick_test_id": test.ID},
	})
	return out, nil
}

// Submit scores answers (question id to option text) with one point per
// exact match and removes the test. Unknown or expired tests are ErrNotFound.
func (s QuickTestService) Submit(ctx domain.Context, testID string, answers map[string]string) (QuickTestResult, error) {
	test, err := s.Cache.Get(ctx, testID)
	if err != nil {
		return QuickTestResult{}, err
	}
	res := QuickTestResult{Total: len(test.Questions), Details: make([]QuickAnswerDetail, 0, len(test.Questions))}
	for _, q := range test.Questions {
		ans := answers[q.ID]
		ok := ans == q.CorrectAnswer
		if ok {
			res.Score++
		}
		res.Details = append(res.Details, QuickAnswerDetail{
			QuestionID:    q.ID,
			IsCorrect:     ok,
			UserAnswer:    ans,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
		})
	}
	if err := s.Cache.Delete(ctx, testID); err != nil {
		observability.LoggerFromContext(ctx).Warn("quick test delete failed",
			slog.String("test_id", testID), slog.Any("error", err))
	}
	s.Activity.Log(ctx, domain.ActivityEntry{
		UserID:   test.UserID,
		Module:   domain.ModuleTechnical,
		Action:   domain.ActionComplete,
		Summary:  fmt.Sprintf("Quick test on %s completed - Score: %d/%d", test.Skill, res.Score, res.Total),
		Score:    scorePtr(float64(res.Score)),
		Status:   ActivityCompleted,
		Metadata: map[string]any{"quick_test_id": test.ID},
	})
	return res, nil
}

func (s QuickTestService) admit(ctx domain.Context, userID string) error {
	if s.Limiter == nil {
		return nil
	}
	key := userID
	if key == "" {
		key = GuestUserID
	}
	ok, wait, err := s.Limiter.Allow(ctx, key, 1)
	if err != nil {
		observability.LoggerFromContext(ctx).Warn("quick test limiter failed, allowing", slog.Any("error", err))
		return nil
	}
	if !ok {
		return &RateLimitError{RetryAfter: wait}
	}
	return nil
}

// assignQuestionIDs makes ids unique within a test; models often reuse "q1".
func assignQuestionIDs(qs []domain.GeneratedQuestion) {
	seen := make(map[string]struct{}, len(qs))
	for i := range qs {
		id := strings.TrimSpace(qs[i].ID)
		if _, dup := seen[id]; id == "" || dup {
			id = fmt.Sprintf("q%d", i+1)
			for {
				if _, dup := seen[id]; !dup {
					break
				}
				id += "x"
			}
		}
		qs[i].ID = id
		seen[id] = struct{}{}
	}
}
