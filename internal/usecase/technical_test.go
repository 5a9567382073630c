package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	obsmetrics "github.com/fairyhunter13/career-readiness/internal/adapter/observability"
	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/evaluator"
	"github.com/fairyhunter13/career-readiness/internal/observability"
	"github.com/fairyhunter13/career-readiness/pkg/randx"
)

// GuestUserID owns tests started without a user.
const GuestUserID = "guest"

// Difficulties offered by the technical test.
var Difficulties = []string{"Easy", "Medium", "Hard"}

var questionsPerDifficulty = map[string]int{"easy": 10, "medium": 15, "hard": 20}

// TestConfig lists what a technical test can be started with.
type TestConfig struct {
	Subjects     []string `json:"subjects"`
	Difficulties []string `json:"difficulties"`
}

// StartTestInput selects a bank pool.
type StartTestInput struct {
	UserID     string `json:"userId"`
	Subject    string `json:"subject" validate:"required"`
	Difficulty string `json:"difficulty" validate:"required"`
}

// PublicQuestion is a bank question with its answers stripped.
type PublicQuestion struct {
	ID      string              `json:"id"`
	Text    string              `json:"text"`
	Options []string            `json:"options"`
	Type    domain.QuestionKind `json:"type"`
}

// StartedTest is returned by Start.
type StartedTest struct {
	TestID    string           `json:"testId"`
	Questions []PublicQuestion `json:"questions"`
	Total     int              `json:"total"`
	MaxScore  int              `json:"maxScore"`
}

// AnswerResult is the evaluation of one submitted answer.
type AnswerResult struct {
	IsCorrect    bool `json:"isCorrect"`
	MarksAwarded int  `json:"marksAwarded"`
}

// TestResult summarizes a technical test.
type TestResult struct {
	TestID     string    `json:"testId"`
	Subject    string    `json:"subject"`
	Difficulty string    `json:"difficulty"`
	Score      int       `json:"score"`
	MaxScore   int       `json:"maxScore"`
	Accuracy   float64   `json:"accuracy"`
	Label      string    `json:"label"`
	Feedback   string    `json:"feedback"`
	Answered   int       `json:"answered"`
	Timestamp  time.Time `json:"timestamp"`
}

// TechnicalTestService runs bank-drawn multiple choice tests.
type TechnicalTestService struct {
	Repo     domain.TechnicalTestRepository
	Bank     domain.TestBank
	Rand     randx.Chooser
	Activity ActivityLogger
	Progress ProgressService
	Now      func() time.Time
}

// NewTechnicalTestService constructs a TechnicalTestService.
func NewTechnicalTestService(repo domain.TechnicalTestRepository, bank domain.TestBank, rnd randx.Chooser, act ActivityLogger, prog ProgressService) TechnicalTestService {
	if rnd == nil {
		rnd = randx.New(0)
	}
	return TechnicalTestService{Repo: repo, Bank: bank, Rand: rnd, Activity: act, Progress: prog, Now: time.Now}
}

// Config lists subjects and difficulties.
func (s TechnicalTestService) Config() TestConfig {
	return TestConfig{Subjects: s.Bank.Subjects(), Difficulties: append([]string(nil), Difficulties...)}
}

// Start draws a shuffled pool sized by difficulty and persists the test.
func (s TechnicalTestService) Start(ctx domain.Context, in StartTestInput) (StartedTest, error) {
	if strings.TrimSpace(in.Subject) == "" || strings.TrimSpace(in.Difficulty) == "" {
		return StartedTest{}, domainErr(domain.ErrInvalidArgument, "subject and difficulty required")
	}
	pool, err := s.Bank.TestQuestions(ctx, in.Subject, in.Difficulty)
	if err != nil {
		return StartedTest{}, err
	}
	if len(pool) == 0 {
		return StartedTest{}, domainErr(domain.ErrNotFound, "no questions found for this selection")
	}
	n, ok := questionsPerDifficulty[strings.ToLower(strings.TrimSpace(in.Difficulty))]
	if !ok {
		n = questionsPerDifficulty["easy"]
	}
	pool = randx.Shuffle(s.Rand, pool)
	if len(pool) > n {
		pool = pool[:n]
	}

	userID := in.UserID
	if userID == "" {
		userID = GuestUserID
	}
	t := domain.TechnicalTest{
		UserID:      userID,
		Subject:     in.Subject,
		Difficulty:  in.Difficulty,
		Status:      domain.StatusInProgress,
		QuestionIDs: make([]string, 0, len(pool)),
		CreatedAt:   s.now(),
	}
	out := StartedTest{Questions: make([]PublicQuestion, 0, len(pool)), Total: len(pool)}
	for _, q := range pool {
		t.QuestionIDs = append(t.QuestionIDs, q.ID)
		t.MaxScore += marksOf(q)
		out.Questions = append(out.Questions, PublicQuestion{ID: q.ID, Text: q.Prompt, Options: q.Options, Type: q.Kind})
	}
	id, err := s.Repo.Create(ctx, t)
	if err != nil {
		return StartedTest{}, err
	}
	out.TestID, out.MaxScore = id, t.MaxScore
	observability.LoggerFromContext(ctx).Info("technical test started",
		slog.String("test_id", id), slog.String("subject", in.Subject),
		slog.String("difficulty", in.Difficulty), slog.Int("questions", len(pool)))
	return out, nil
}

// SubmitAnswer evaluates and records one answer.
func (s TechnicalTestService) SubmitAnswer(ctx domain.Context, testID, questionID string, selected []string) (AnswerResult, error) {
	t, defs, err := s.load(ctx, testID)
	if err != nil {
		return AnswerResult{}, err
	}
	if t.Status == domain.StatusCompleted {
		return AnswerResult{}, domainErr(domain.ErrConflict, "test %s already completed", testID)
	}
	q, ok := defs[questionID]
	if !ok || !t.Includes(questionID) {
		return AnswerResult{}, domainErr(domain.ErrNotFound, "question %q", questionID)
	}
	res, err := s.record(ctx, testID, q, selected)
	if err != nil {
		return AnswerResult{}, err
	}
	return AnswerResult{IsCorrect: res.IsCorrect, MarksAwarded: res.MarksAwarded}, nil
}

// SubmitBulk records every known, unanswered question in answers and
// completes the test.
func (s TechnicalTestService) SubmitBulk(ctx domain.Context, testID string, answers map[string][]string) (TestResult, error) {
	t, defs, err := s.load(ctx, testID)
	if err != nil {
		return TestResult{}, err
	}
	if t.Status != domain.StatusCompleted {
		// Record in draw order so retries see the same sequence.
		for _, qid := range t.QuestionIDs {
			sel, ok := answers[qid]
			q, known := defs[qid]
			if !ok || !known || t.Answered(qid) {
				continue
			}
			if _, err := s.record(ctx, testID, q, sel); err != nil {
				return TestResult{}, err
			}
		}
	}
	return s.Result(ctx, testID)
}

// Result completes the test once, logging and recording progress on the call
// that completed it.
func (s TechnicalTestService) Result(ctx domain.Context, testID string) (TestResult, error) {
	t, err := s.Repo.Get(ctx, testID)
	if err != nil {
		return TestResult{}, err
	}
	res := summarizeTest(t)
	if t.Status == domain.StatusCompleted {
		return res, nil
	}
	did, err := s.Repo.Complete(ctx, testID, s.now())
	if err != nil {
		return TestResult{}, err
	}
	if did {
		obsmetrics.ObserveEvaluation(obsmetrics.EvalChoice, res.Accuracy/10)
		s.Activity.Log(ctx, domain.ActivityEntry{
			UserID:   t.UserID,
			Module:   domain.ModuleTechnical,
			Action:   domain.ActionComplete,
			Summary:  fmt.Sprintf("%s (%s) Test completed - Score: %d", t.Subject, t.Difficulty, t.Score),
			Score:    scorePtr(float64(t.Score)),
			Status:   ActivityCompleted,
			Metadata: map[string]any{"test_id": t.ID, "accuracy": res.Accuracy},
		})
		s.Progress.recordBestEffort(ctx, t.UserID, domain.ModuleTechnical, res.Accuracy)
	}
	return res, nil
}

func (s TechnicalTestService) record(ctx domain.Context, testID string, q domain.Question, selected []string) (domain.ChoiceResult, error) {
	res := evaluator.EvaluateChoice(q, selected)
	a := domain.TestAnswer{
		QuestionID:   q.ID,
		Selected:     append([]string{}, selected...),
		IsCorrect:    res.IsCorrect,
		MarksAwarded: res.MarksAwarded,
		CreatedAt:    s.now(),
	}
	if err := s.Repo.RecordAnswer(ctx, testID, a); err != nil {
		return domain.ChoiceResult{}, err
	}
	return res, nil
}

// load returns the test and its pool indexed by question id.
func (s TechnicalTestService) load(ctx domain.Context, testID string) (domain.TechnicalTest, map[string]domain.Question, error) {
	t, err := s.Repo.Get(ctx, testID)
	if err != nil {
		return domain.TechnicalTest{}, nil, err
	}
	pool, err := s.Bank.TestQuestions(ctx, t.Subject, t.Difficulty)
	if err != nil {
		return domain.TechnicalTest{}, nil, err
	}
	defs := make(map[string]domain.Question, len(pool))
	for _, q := range pool {
		defs[q.ID] = q
	}
	return t, defs, nil
}

func (s TechnicalTestService) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}

func summarizeTest(t domain.TechnicalTest) TestResult {
	acc := evaluator.Round1(evaluator.Percentage(float64(t.Score), float64(t.MaxScore)))
	label, msg := evaluator.TestLabel(acc)
	return TestResult{
		TestID:     t.ID,
		Subject:    t.Subject,
		Difficulty: t.Difficulty,
		Score:      t.Score,
		MaxScore:   t.MaxScore,
		Accuracy:   acc,
		Label:      label,
		Feedback:   msg,
		Answered:   len(t.Answers),
		Timestamp:  t.CreatedAt,
	}
}

func marksOf(q domain.Question) int {
	if q.Marks <= 0 {
		return evaluator.DefaultMarks
	}
	return q.Marks
}
