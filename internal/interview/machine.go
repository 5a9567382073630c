// Package interview drives a mock interview session through its stages:
// GREETING, READINESS, INTRO, MAIN, CLOSING and COMPLETED.
//
// The machine holds no session state of its own. Every step reads the session
// from the repository and writes back with a conditional update keyed on the
// stage it read, so concurrent callers cannot advance a session twice.
package interview

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/evaluator"
	"github.com/fairyhunter13/career-readiness/internal/observability"
	"github.com/fairyhunter13/career-readiness/pkg/randx"
)

// MaxAttempts bounds the session, the intro attempt included.
const MaxAttempts = domain.MaxInterviewAttempts

const (
	ReadinessQuestionID = "readiness_check"
	IntroQuestionID     = "intro_q1"

	readinessPrompt = "Are you ready to begin?"
	introPrompt     = "Great. Let's begin. Tell me about yourself."
	introQuestion   = "Tell me about yourself."
	introFeedback   = "Good introduction."
	introScore      = 10.0
	readyReply      = "Great!"
	waitReply       = "Take your time."
	closingMessage  = "That concludes the questions section."
	completedText   = "Thank you for your time. I'll now evaluate your responses and generate your feedback report."
)

// Affirmations advance READINESS when any appears in the answer.
var Affirmations = []string{"yes", "yeah", "ready", "sure", "ok", "start", "begin"}

// InteractionType tells the client how to render an Interaction.
type InteractionType string

const (
	TypeMessage   InteractionType = "MESSAGE"
	TypeQuestion  InteractionType = "QUESTION"
	TypeCompleted InteractionType = "completed"
)

// Interaction is what the candidate sees next.
type Interaction struct {
	Type       InteractionType
	QuestionID string
	Text       string
	// Stage is the stage the session was in when the interaction was produced.
	Stage    domain.Stage
	Progress int
	Total    int
}

// Finished reports whether the session has nothing more to ask.
func (i Interaction) Finished() bool { return i.Type == TypeCompleted }

// Outcome is the result of submitting an answer.
type Outcome struct {
	Score    float64
	Feedback string
	Matched  []string
	// Stay asks the client to re-prompt without a stage change.
	Stay bool
	// Ignored is set when the session was not in a stage that accepts answers.
	Ignored bool
	Stage   domain.Stage
}

// Summary is returned when a session ends.
type Summary struct {
	Session  domain.InterviewSession
	Attempts int
	Average  float64
}

// Machine is safe for concurrent use.
type Machine struct {
	repo domain.InterviewRepository
	bank domain.QuestionBank
	rnd  randx.Chooser
}

// NewMachine constructs a Machine. rnd picks MAIN questions.
func NewMachine(repo domain.InterviewRepository, bank domain.QuestionBank, rnd randx.Chooser) *Machine {
	if rnd == nil {
		rnd = randx.New(0)
	}
	return &Machine{repo: repo, bank: bank, rnd: rnd}
}

// Greeting is the welcome line for a role.
func Greeting(role string) string {
	return fmt.Sprintf("Welcome to your %s Interview. My name is Ava, your AI interviewer. This session will simulate a real interview experience.", role)
}

// Next returns the next interaction for the session, advancing the stage
// where the interaction itself is a transition (GREETING and the end of MAIN).
func (m *Machine) Next(ctx domain.Context, sessionID string) (Interaction, error) {
	s, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		return Interaction{}, err
	}
	it, err := m.next(ctx, s)
	if errors.Is(err, domain.ErrConflict) {
		// Another caller moved the session first; answer from the state it left.
		observability.LoggerFromContext(ctx).Debug("interview stage raced, re-reading",
			slog.String("session_id", sessionID), slog.String("stage", string(s.Stage)))
		if s, err = m.repo.Get(ctx, sessionID); err != nil {
			return Interaction{}, err
		}
		it, err = m.next(ctx, s)
	}
	if err != nil {
		return Interaction{}, err
	}
	it.Stage = s.Stage
	it.Progress = progress(s)
	it.Total = MaxAttempts
	return it, nil
}

func (m *Machine) next(ctx domain.Context, s domain.InterviewSession) (Interaction, error) {
	switch s.Stage {
	case domain.StageGreeting:
		if err := m.repo.Transition(ctx, s.ID, domain.StageGreeting, domain.StageReadiness); err != nil {
			return Interaction{}, err
		}
		return Interaction{Type: TypeMessage, Text: Greeting(s.Role)}, nil
	case domain.StageReadiness:
		return Interaction{Type: TypeQuestion, QuestionID: ReadinessQuestionID, Text: readinessPrompt}, nil
	case domain.StageIntro:
		return Interaction{Type: TypeQuestion, QuestionID: IntroQuestionID, Text: introPrompt}, nil
	case domain.StageMain:
		available := m.available(s)
		if len(s.Attempts) >= MaxAttempts || len(available) == 0 {
			if err := m.repo.Transition(ctx, s.ID, domain.StageMain, domain.StageClosing); err != nil {
				return Interaction{}, err
			}
			return Interaction{Type: TypeMessage, Text: closingMessage}, nil
		}
		q, _ := randx.Pick(m.rnd, available)
		return Interaction{Type: TypeQuestion, QuestionID: q.ID, Text: q.Prompt}, nil
	case domain.StageClosing, domain.StageCompleted:
		return Interaction{Type: TypeCompleted, Text: completedText}, nil
	default:
		return Interaction{}, fmt.Errorf("%w: session %s has stage %q", domain.ErrInvalidStage, s.ID, s.Stage)
	}
}

// Submit applies an answer to the session's current stage. Answers outside
// READINESS, INTRO and MAIN are ignored rather than rejected.
func (m *Machine) Submit(ctx domain.Context, sessionID, questionID, answer string) (Outcome, error) {
	s, err := m.repo.Get(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	if !s.Stage.Valid() {
		return Outcome{}, fmt.Errorf("%w: session %s has stage %q", domain.ErrInvalidStage, s.ID, s.Stage)
	}

	switch s.Stage {
	case domain.StageReadiness:
		if !affirmed(answer) {
			return Outcome{Feedback: waitReply, Stay: true, Stage: s.Stage}, nil
		}
		if err := m.repo.Transition(ctx, s.ID, domain.StageReadiness, domain.StageIntro); err != nil {
			return Outcome{}, err
		}
		return Outcome{Feedback: readyReply, Stage: domain.StageIntro}, nil

	case domain.StageIntro:
		a := domain.QuestionAttempt{
			QuestionID:      IntroQuestionID,
			QuestionText:    introQuestion,
			Answer:          answer,
			Score:           introScore,
			Feedback:        introFeedback,
			MatchedKeywords: []string{},
		}
		if err := m.repo.RecordAttempt(ctx, s.ID, domain.StageIntro, a, domain.StageMain); err != nil {
			return Outcome{}, err
		}
		return Outcome{Score: a.Score, Feedback: a.Feedback, Matched: a.MatchedKeywords, Stage: domain.StageMain}, nil

	case domain.StageMain:
		// Once the cap is reached only Next may move the session on to CLOSING.
		if len(s.Attempts) >= MaxAttempts {
			return Outcome{Ignored: true, Stage: s.Stage}, nil
		}
		q, ok := m.bank.Question(questionID)
		if !ok {
			return Outcome{}, fmt.Errorf("%w: question %q", domain.ErrNotFound, questionID)
		}
		if s.Attempted(q.ID) {
			return Outcome{}, fmt.Errorf("%w: question %q already answered", domain.ErrConflict, q.ID)
		}
		if !m.offers(s, q.ID) {
			return Outcome{}, fmt.Errorf("%w: question %q is not asked in a %s %s session", domain.ErrInvalidArgument, q.ID, s.Role, s.Type)
		}
		res := m.evaluate(s, q, answer)
		a := domain.QuestionAttempt{
			QuestionID:      q.ID,
			QuestionText:    q.Prompt,
			Answer:          answer,
			Score:           res.Score,
			Feedback:        res.Feedback,
			MatchedKeywords: res.Matched,
		}
		if err := m.repo.RecordAttempt(ctx, s.ID, domain.StageMain, a, domain.StageMain); err != nil {
			return Outcome{}, err
		}
		return Outcome{Score: res.Score, Feedback: res.Feedback, Matched: res.Matched, Stage: domain.StageMain}, nil
	}

	return Outcome{Ignored: true, Stage: s.Stage}, nil
}

// End forces the session to COMPLETED and summarizes it.
func (m *Machine) End(ctx domain.Context, sessionID string) (Summary, error) {
	s, err := m.repo.Complete(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	out := Summary{Session: s, Attempts: len(s.Attempts)}
	if out.Attempts > 0 {
		out.Average = evaluator.Round1(s.TotalScore / float64(out.Attempts))
	}
	return out, nil
}

// evaluate scores a MAIN answer. Rotation follows the attempt count, and
// interview answers carry no per-question length minimum.
func (m *Machine) evaluate(s domain.InterviewSession, q domain.Question, answer string) domain.EvaluationResult {
	key := len(s.Attempts)
	if s.Type == domain.SessionHR {
		spec := evaluator.EffortSpecFor(q, key)
		spec.TargetLength = 0
		return evaluator.EvaluateEffort(answer, spec)
	}
	spec := evaluator.KeywordSpecFor(q, key)
	spec.MinLength = 0
	return evaluator.EvaluateKeywords(answer, spec)
}

func (m *Machine) questions(s domain.InterviewSession) []domain.Question {
	if s.Type == domain.SessionHR {
		return m.bank.HRQuestions(s.Role)
	}
	return m.bank.TechnicalQuestions(s.Role)
}

// offers reports whether questionID belongs to the session's role and type.
func (m *Machine) offers(s domain.InterviewSession, questionID string) bool {
	for _, q := range m.questions(s) {
		if q.ID == questionID {
			return true
		}
	}
	return false
}

func (m *Machine) available(s domain.InterviewSession) []domain.Question {
	seen := s.AttemptedIDs()
	all := m.questions(s)
	out := make([]domain.Question, 0, len(all))
	for _, q := range all {
		if _, ok := seen[q.ID]; !ok {
			out = append(out, q)
		}
	}
	return out
}

func affirmed(answer string) bool {
	lower := strings.ToLower(answer)
	for _, w := range Affirmations {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func progress(s domain.InterviewSession) int {
	p := len(s.Attempts)
	if s.Stage == domain.StageMain {
		p++
	}
	return min(p, MaxAttempts)
}
