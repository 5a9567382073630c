package postgres

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// TechnicalTestRepo persists bank-drawn tests and their answers.
type TechnicalTestRepo struct{ Pool PgxPool }

// NewTechnicalTestRepo constructs a TechnicalTestRepo with the given pool.
func NewTechnicalTestRepo(p PgxPool) *TechnicalTestRepo { return &TechnicalTestRepo{Pool: p} }

var _ domain.TechnicalTestRepository = (*TechnicalTestRepo)(nil)

// Create inserts a new in-progress test and returns its id.
func (r *TechnicalTestRepo) Create(ctx domain.Context, t domain.TechnicalTest) (string, error) {
	tracer := otel.Tracer("repo.tests")
	ctx, span := tracer.Start(ctx, "tests.Create")
	defer span.End()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = domain.StatusInProgress
	}
	if t.QuestionIDs == nil {
		t.QuestionIDs = []string{}
	}
	q := `INSERT INTO technical_tests (id, user_id, subject, difficulty, status, question_ids, score, max_score, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,0,$7,$8)`
	if _, err := r.Pool.Exec(ctx, q, t.ID, t.UserID, t.Subject, t.Difficulty, string(t.Status), t.QuestionIDs, t.MaxScore, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=test.create: %w", err)
	}
	return t.ID, nil
}

// Get loads a test with its answers in submission order.
func (r *TechnicalTestRepo) Get(ctx domain.Context, id string) (domain.TechnicalTest, error) {
	tracer := otel.Tracer("repo.tests")
	ctx, span := tracer.Start(ctx, "tests.Get")
	defer span.End()

	var t domain.TechnicalTest
	var status string
	q := `SELECT id, user_id, subject, difficulty, status, question_ids, score, max_score, created_at, completed_at
		FROM technical_tests WHERE id=$1`
	err := r.Pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.UserID, &t.Subject, &t.Difficulty, &status, &t.QuestionIDs, &t.Score, &t.MaxScore, &t.CreatedAt, &t.CompletedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.TechnicalTest{}, fmt.Errorf("op=test.get: %w", domain.ErrNotFound)
		}
		return domain.TechnicalTest{}, fmt.Errorf("op=test.get: %w", err)
	}
	t.Status = domain.Status(status)

	rows, err := r.Pool.Query(ctx, `SELECT question_id, selected, is_correct, marks, created_at
		FROM test_answers WHERE test_id=$1 ORDER BY created_at, question_id`, id)
	if err != nil {
		return domain.TechnicalTest{}, fmt.Errorf("op=test.get_answers: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var a domain.TestAnswer
		if err := rows.Scan(&a.QuestionID, &a.Selected, &a.IsCorrect, &a.MarksAwarded, &a.CreatedAt); err != nil {
			return domain.TechnicalTest{}, fmt.Errorf("op=test.get_answers: %w", err)
		}
		t.Answers = append(t.Answers, a)
	}
	if err := rows.Err(); err != nil {
		return domain.TechnicalTest{}, fmt.Errorf("op=test.get_answers: %w", err)
	}
	return t, nil
}

// RecordAnswer stores the answer and increments the score in one transaction.
func (r *TechnicalTestRepo) RecordAnswer(ctx domain.Context, id string, a domain.TestAnswer) error {
	tracer := otel.Tracer("repo.tests")
	ctx, span := tracer.Start(ctx, "tests.RecordAnswer")
	defer span.End()

	if a.Selected == nil {
		a.Selected = []string{}
	}
	now := time.Now().UTC()
	err := withTx(ctx, r.Pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `UPDATE technical_tests SET score=score+$2 WHERE id=$1`, id, a.MarksAwarded)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		tag, err = tx.Exec(ctx, `INSERT INTO test_answers (test_id, question_id, selected, is_correct, marks, created_at)
			VALUES ($1,$2,$3,$4,$5,$6) ON CONFLICT (test_id, question_id) DO NOTHING`,
			id, a.QuestionID, a.Selected, a.IsCorrect, a.MarksAwarded, now)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("question %s already answered: %w", a.QuestionID, domain.ErrConflict)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("op=test.record_answer: %w", err)
	}
	return nil
}

// Complete marks the test completed; it reports false when it already was.
func (r *TechnicalTestRepo) Complete(ctx domain.Context, id string, at time.Time) (bool, error) {
	tracer := otel.Tracer("repo.tests")
	ctx, span := tracer.Start(ctx, "tests.Complete")
	defer span.End()

	tag, err := r.Pool.Exec(ctx, `UPDATE technical_tests SET status=$2, completed_at=$3 WHERE id=$1 AND status<>$2`,
		id, string(domain.StatusCompleted), at.UTC())
	if err != nil {
		return false, fmt.Errorf("op=test.complete: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	var one int
	if err := r.Pool.QueryRow(ctx, `SELECT 1 FROM technical_tests WHERE id=$1`, id).Scan(&one); err != nil {
		if isNoRows(err) {
			return false, fmt.Errorf("op=test.complete: %w", domain.ErrNotFound)
		}
		return false, fmt.Errorf("op=test.complete: %w", err)
	}
	return false, nil
}
