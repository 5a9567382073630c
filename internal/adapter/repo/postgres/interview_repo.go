package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// InterviewRepo persists interview sessions and their attempts.
type InterviewRepo struct{ Pool PgxPool }

// NewInterviewRepo constructs an InterviewRepo with the given pool.
func NewInterviewRepo(p PgxPool) *InterviewRepo { return &InterviewRepo{Pool: p} }

var _ domain.InterviewRepository = (*InterviewRepo)(nil)

// Create inserts a new session and returns its id.
func (r *InterviewRepo) Create(ctx domain.Context, s domain.InterviewSession) (string, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Create")
	defer span.End()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Stage == "" {
		s.Stage = domain.StageGreeting
	}
	if s.Status == "" {
		s.Status = domain.StatusInProgress
	}
	now := time.Now().UTC()
	q := `INSERT INTO interview_sessions (id, user_id, role, type, current_stage, status, total_score, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,0,$7,$7)`
	if _, err := r.Pool.Exec(ctx, q, s.ID, s.UserID, s.Role, string(s.Type), string(s.Stage), string(s.Status), now); err != nil {
		return "", fmt.Errorf("op=interview.create: %w", err)
	}
	return s.ID, nil
}

// Get loads a session with its attempts in answer order.
func (r *InterviewRepo) Get(ctx domain.Context, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Get")
	defer span.End()

	var s domain.InterviewSession
	var typ, stage, status string
	q := `SELECT id, user_id, role, type, current_stage, status, total_score, created_at, updated_at
		FROM interview_sessions WHERE id=$1`
	err := r.Pool.QueryRow(ctx, q, id).Scan(&s.ID, &s.UserID, &s.Role, &typ, &stage, &status, &s.TotalScore, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.InterviewSession{}, fmt.Errorf("op=interview.get: %w", domain.ErrNotFound)
		}
		return domain.InterviewSession{}, fmt.Errorf("op=interview.get: %w", err)
	}
	s.Type, s.Stage, s.Status = domain.SessionType(typ), domain.Stage(stage), domain.Status(status)

	rows, err := r.Pool.Query(ctx, `SELECT id, session_id, question_id, question_text, answer, score, feedback, matched_keywords, created_at
		FROM question_attempts WHERE session_id=$1 ORDER BY created_at, id`, id)
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.get_attempts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.QuestionAttempt
		if err := rows.Scan(&a.ID, &a.SessionID, &a.QuestionID, &a.QuestionText, &a.Answer, &a.Score, &a.Feedback, &a.MatchedKeywords, &a.CreatedAt); err != nil {
			return domain.InterviewSession{}, fmt.Errorf("op=interview.get_attempts: %w", err)
		}
		s.Attempts = append(s.Attempts, a)
	}
	if err := rows.Err(); err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.get_attempts: %w", err)
	}
	return s, nil
}

// Transition moves the stage only when the stored stage still equals from.
func (r *InterviewRepo) Transition(ctx domain.Context, id string, from, to domain.Stage) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Transition")
	defer span.End()

	q := `UPDATE interview_sessions SET current_stage=$3, status=$4, updated_at=$5 WHERE id=$1 AND current_stage=$2`
	tag, err := r.Pool.Exec(ctx, q, id, string(from), string(to), string(statusFor(to)), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("op=interview.transition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, id, "op=interview.transition")
	}
	return nil
}

// RecordAttempt appends the attempt, adds its score and moves the stage in one transaction.
// The session row is locked so concurrent submissions serialize.
func (r *InterviewRepo) RecordAttempt(ctx domain.Context, id string, from domain.Stage, a domain.QuestionAttempt, to domain.Stage) error {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.RecordAttempt")
	defer span.End()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	if a.MatchedKeywords == nil {
		a.MatchedKeywords = []string{}
	}
	now := time.Now().UTC()
	err := withTx(ctx, r.Pool, func(tx pgx.Tx) error {
		var (
			stage    string
			attempts int
		)
		err := tx.QueryRow(ctx, `SELECT current_stage, (SELECT count(*) FROM question_attempts WHERE session_id=$1)
			FROM interview_sessions WHERE id=$1 FOR UPDATE`, id).Scan(&stage, &attempts)
		if err != nil {
			if isNoRows(err) {
				return domain.ErrNotFound
			}
			return err
		}
		if domain.Stage(stage) != from {
			return fmt.Errorf("stage is %s not %s: %w", stage, from, domain.ErrConflict)
		}
		if attempts >= domain.MaxInterviewAttempts {
			return fmt.Errorf("attempt limit reached: %w", domain.ErrConflict)
		}
		tag, err := tx.Exec(ctx, `INSERT INTO question_attempts (id, session_id, question_id, question_text, answer, score, feedback, matched_keywords, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) ON CONFLICT (session_id, question_id) DO NOTHING`,
			a.ID, id, a.QuestionID, a.QuestionText, a.Answer, a.Score, a.Feedback, a.MatchedKeywords, now)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("question %s already answered: %w", a.QuestionID, domain.ErrConflict)
		}
		_, err = tx.Exec(ctx, `UPDATE interview_sessions SET total_score=total_score+$2, current_stage=$3, status=$4, updated_at=$5 WHERE id=$1`,
			id, a.Score, string(to), string(statusFor(to)), now)
		return err
	})
	if err != nil {
		return fmt.Errorf("op=interview.record_attempt: %w", err)
	}
	return nil
}

// Complete marks the session completed and returns it.
func (r *InterviewRepo) Complete(ctx domain.Context, id string) (domain.InterviewSession, error) {
	tracer := otel.Tracer("repo.interviews")
	ctx, span := tracer.Start(ctx, "interviews.Complete")
	defer span.End()

	tag, err := r.Pool.Exec(ctx, `UPDATE interview_sessions SET current_stage=$2, status=$3, updated_at=$4 WHERE id=$1`,
		id, string(domain.StageCompleted), string(domain.StatusCompleted), time.Now().UTC())
	if err != nil {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.complete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.InterviewSession{}, fmt.Errorf("op=interview.complete: %w", domain.ErrNotFound)
	}
	return r.Get(ctx, id)
}

func (r *InterviewRepo) missingOrConflict(ctx context.Context, id, op string) error {
	var one int
	err := r.Pool.QueryRow(ctx, `SELECT 1 FROM interview_sessions WHERE id=$1`, id).Scan(&one)
	switch {
	case isNoRows(err):
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	case err != nil:
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w", op, domain.ErrConflict)
}

func statusFor(s domain.Stage) domain.Status {
	if s == domain.StageCompleted {
		return domain.StatusCompleted
	}
	return domain.StatusInProgress
}
