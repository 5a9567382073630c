package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	obsmetrics "github.com/fairyhunter13/career-readiness/internal/adapter/observability"
	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/interview"
	"github.com/fairyhunter13/career-readiness/internal/observability"
)

// StartInterviewInput opens a mock interview.
type StartInterviewInput struct {
	UserID string
	Role   string
	Type   domain.SessionType
}

// InterviewService wraps the session state machine with persistence of new
// sessions, metrics and completion side effects.
type InterviewService struct {
	Repo     domain.InterviewRepository
	Machine  *interview.Machine
	Activity ActivityLogger
	Progress ProgressService
}

// NewInterviewService constructs an InterviewService.
func NewInterviewService(repo domain.InterviewRepository, m *interview.Machine, act ActivityLogger, prog ProgressService) InterviewService {
	return InterviewService{Repo: repo, Machine: m, Activity: act, Progress: prog}
}

// Start creates a session in GREETING. Type defaults to TECHNICAL.
func (s InterviewService) Start(ctx domain.Context, in StartInterviewInput) (domain.InterviewSession, error) {
	role := strings.TrimSpace(in.Role)
	if role == "" {
		return domain.InterviewSession{}, domainErr(domain.ErrInvalidArgument, "role required")
	}
	typ := domain.SessionType(strings.ToUpper(string(in.Type)))
	switch typ {
	case "":
		typ = domain.SessionTechnical
	case domain.SessionTechnical, domain.SessionHR:
	default:
		return domain.InterviewSession{}, domainErr(domain.ErrInvalidArgument, "unknown session type %q", in.Type)
	}
	now := time.Now().UTC()
	sess := domain.InterviewSession{
		UserID:    in.UserID,
		Role:      role,
		Type:      typ,
		Stage:     domain.StageGreeting,
		Status:    domain.StatusInProgress,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.Repo.Create(ctx, sess)
	if err != nil {
		return domain.InterviewSession{}, err
	}
	sess.ID = id
	observability.LoggerFromContext(ctx).Info("interview session started",
		slog.String("session_id", id), slog.String("role", role), slog.String("type", string(typ)))
	return sess, nil
}

// Get returns a session with its attempts.
func (s InterviewService) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	return s.Repo.Get(ctx, id)
}

// Next returns the next interaction and counts any stage change it caused.
func (s InterviewService) Next(ctx domain.Context, sessionID string) (interview.Interaction, error) {
	ctx = observability.ContextWithAttrs(ctx, slog.String("session_id", sessionID))
	it, err := s.Machine.Next(ctx, sessionID)
	if err != nil {
		return interview.Interaction{}, err
	}
	switch it.Stage {
	case domain.StageGreeting:
		obsmetrics.RecordInterviewTransition(string(domain.StageGreeting), string(domain.StageReadiness))
	case domain.StageMain:
		if it.Type == interview.TypeMessage {
			obsmetrics.RecordInterviewTransition(string(domain.StageMain), string(domain.StageClosing))
		}
	}
	return it, nil
}

// Submit applies an answer and observes the score of evaluated answers.
func (s InterviewService) Submit(ctx domain.Context, sessionID, questionID, answer string) (interview.Outcome, error) {
	ctx = observability.ContextWithAttrs(ctx, slog.String("session_id", sessionID))
	before, err := s.Repo.Get(ctx, sessionID)
	if err != nil {
		return interview.Outcome{}, err
	}
	out, err := s.Machine.Submit(ctx, sessionID, questionID, answer)
	if err != nil {
		return interview.Outcome{}, err
	}
	if out.Ignored || out.Stay {
		return out, nil
	}
	if out.Stage != before.Stage {
		obsmetrics.RecordInterviewTransition(string(before.Stage), string(out.Stage))
	}
	if before.Stage == domain.StageMain {
		kind := obsmetrics.EvalKeyword
		if before.Type == domain.SessionHR {
			kind = obsmetrics.EvalEffort
		}
		obsmetrics.ObserveEvaluation(kind, out.Score)
	}
	return out, nil
}

// End completes the session, logs the activity and records progress with the
// average attempt score.
func (s InterviewService) End(ctx domain.Context, sessionID string) (interview.Summary, error) {
	ctx = observability.ContextWithAttrs(ctx, slog.String("session_id", sessionID))
	sum, err := s.Machine.End(ctx, sessionID)
	if err != nil {
		return interview.Summary{}, err
	}
	sess := sum.Session
	s.Activity.Log(ctx, domain.ActivityEntry{
		UserID:  sess.UserID,
		Module:  domain.ModuleInterview,
		Action:  domain.ActionComplete,
		Summary: fmt.Sprintf("%s %s interview completed - Average: %.1f", sess.Role, strings.ToLower(string(sess.Type)), sum.Average),
		Score:   scorePtr(sum.Average),
		Status:  ActivityCompleted,
		Metadata: map[string]any{
			"session_id": sess.ID,
			"attempts":   sum.Attempts,
		},
	})
	s.Progress.recordBestEffort(ctx, sess.UserID, domain.ModuleInterview, sum.Average)
	return sum, nil
}
