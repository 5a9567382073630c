package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// CommunicationRepo persists communication tests and task results.
type CommunicationRepo struct{ Pool PgxPool }

// NewCommunicationRepo constructs a CommunicationRepo with the given pool.
func NewCommunicationRepo(p PgxPool) *CommunicationRepo { return &CommunicationRepo{Pool: p} }

var _ domain.CommunicationRepository = (*CommunicationRepo)(nil)

func (r *CommunicationRepo) Create(ctx domain.Context, t domain.CommunicationTest) (string, error) {
	tracer := otel.Tracer("repo.communication")
	ctx, span := tracer.Start(ctx, "communication.Create")
	defer span.End()

	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Status == "" {
		t.Status = domain.StatusInProgress
	}
	q := `INSERT INTO communication_tests (id, user_id, status, created_at, updated_at) VALUES ($1,$2,$3,$4,$4)`
	if _, err := r.Pool.Exec(ctx, q, t.ID, t.UserID, string(t.Status), time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=communication.create: %w", err)
	}
	return t.ID, nil
}

func (r *CommunicationRepo) Get(ctx domain.Context, id string) (domain.CommunicationTest, error) {
	tracer := otel.Tracer("repo.communication")
	ctx, span := tracer.Start(ctx, "communication.Get")
	defer span.End()

	var t domain.CommunicationTest
	var status string
	q := `SELECT id, user_id, status, total_score, max_score, percentage, label, overall_feedback, created_at, updated_at
		FROM communication_tests WHERE id=$1`
	err := r.Pool.QueryRow(ctx, q, id).Scan(&t.ID, &t.UserID, &status, &t.TotalScore, &t.MaxScore, &t.Percentage, &t.Label, &t.OverallFeedback, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return domain.CommunicationTest{}, fmt.Errorf("op=communication.get: %w", domain.ErrNotFound)
		}
		return domain.CommunicationTest{}, fmt.Errorf("op=communication.get: %w", err)
	}
	t.Status = domain.Status(status)

	rows, err := r.Pool.Query(ctx, `SELECT id, test_id, task_id, transcript, duration, score, feedback, metrics, created_at
		FROM communication_task_results WHERE test_id=$1 ORDER BY created_at, id`, id)
	if err != nil {
		return domain.CommunicationTest{}, fmt.Errorf("op=communication.get_tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tr domain.TaskResult
		var metrics []byte
		if err := rows.Scan(&tr.ID, &tr.TestID, &tr.TaskID, &tr.Transcript, &tr.Duration, &tr.Score, &tr.Feedback, &metrics, &tr.CreatedAt); err != nil {
			return domain.CommunicationTest{}, fmt.Errorf("op=communication.get_tasks: %w", err)
		}
		if len(metrics) > 0 {
			if err := json.Unmarshal(metrics, &tr.Metrics); err != nil {
				return domain.CommunicationTest{}, fmt.Errorf("op=communication.get_tasks: %w", err)
			}
		}
		t.Tasks = append(t.Tasks, tr)
	}
	if err := rows.Err(); err != nil {
		return domain.CommunicationTest{}, fmt.Errorf("op=communication.get_tasks: %w", err)
	}
	return t, nil
}

func (r *CommunicationRepo) AddTaskResult(ctx domain.Context, testID string, tr domain.TaskResult) (string, error) {
	tracer := otel.Tracer("repo.communication")
	ctx, span := tracer.Start(ctx, "communication.AddTaskResult")
	defer span.End()

	if tr.ID == "" {
		tr.ID = uuid.New().String()
	}
	metrics, err := json.Marshal(tr.Metrics)
	if err != nil {
		return "", fmt.Errorf("op=communication.add_task: %w", err)
	}
	q := `INSERT INTO communication_task_results (id, test_id, task_id, transcript, duration, score, feedback, metrics, created_at)
		SELECT $1,$2,$3,$4,$5,$6,$7,$8,$9 WHERE EXISTS (SELECT 1 FROM communication_tests WHERE id=$2 AND status<>'COMPLETED')
		ON CONFLICT (test_id, task_id) DO NOTHING`
	tag, err := r.Pool.Exec(ctx, q, tr.ID, testID, tr.TaskID, tr.Transcript, tr.Duration, tr.Score, tr.Feedback, metrics, time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("op=communication.add_task: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return tr.ID, nil
	}
	var status string
	if err := r.Pool.QueryRow(ctx, `SELECT status FROM communication_tests WHERE id=$1`, testID).Scan(&status); err != nil {
		if isNoRows(err) {
			return "", fmt.Errorf("op=communication.add_task: %w", domain.ErrNotFound)
		}
		return "", fmt.Errorf("op=communication.add_task: %w", err)
	}
	if status == string(domain.StatusCompleted) {
		return "", fmt.Errorf("op=communication.add_task: test already completed: %w", domain.ErrConflict)
	}
	return "", fmt.Errorf("op=communication.add_task: task %s already submitted: %w", tr.TaskID, domain.ErrConflict)
}

// Complete stores the summary once; later calls report false.
func (r *CommunicationRepo) Complete(ctx domain.Context, t domain.CommunicationTest) (bool, error) {
	tracer := otel.Tracer("repo.communication")
	ctx, span := tracer.Start(ctx, "communication.Complete")
	defer span.End()

	q := `UPDATE communication_tests SET status=$2, total_score=$3, max_score=$4, percentage=$5, label=$6, overall_feedback=$7, updated_at=$8
		WHERE id=$1 AND status<>$2`
	tag, err := r.Pool.Exec(ctx, q, t.ID, string(domain.StatusCompleted), t.TotalScore, t.MaxScore, t.Percentage, t.Label, t.OverallFeedback, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("op=communication.complete: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	var one int
	if err := r.Pool.QueryRow(ctx, `SELECT 1 FROM communication_tests WHERE id=$1`, t.ID).Scan(&one); err != nil {
		if isNoRows(err) {
			return false, fmt.Errorf("op=communication.complete: %w", domain.ErrNotFound)
		}
		return false, fmt.Errorf("op=communication.complete: %w", err)
	}
	return false, nil
}
