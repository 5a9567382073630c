package postgres

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// ProgressRepo keeps one user_progress row per user plus one module_progress row per module.
type ProgressRepo struct{ Pool PgxPool }

// NewProgressRepo constructs a ProgressRepo with the given pool.
func NewProgressRepo(p PgxPool) *ProgressRepo { return &ProgressRepo{Pool: p} }

var _ domain.ProgressRepository = (*ProgressRepo)(nil)

const upsertUserProgress = `INSERT INTO user_progress (user_id, created_at, updated_at) VALUES ($1,$2,$2)
	ON CONFLICT (user_id) DO NOTHING`

// FindOrCreate relies on ON CONFLICT so concurrent first calls create one row.
func (r *ProgressRepo) FindOrCreate(ctx domain.Context, userID string) (domain.UserProgress, error) {
	tracer := otel.Tracer("repo.progress")
	ctx, span := tracer.Start(ctx, "progress.FindOrCreate")
	defer span.End()

	if _, err := r.Pool.Exec(ctx, upsertUserProgress, userID, time.Now().UTC()); err != nil {
		return domain.UserProgress{}, fmt.Errorf("op=progress.find_or_create: %w", err)
	}
	p := domain.UserProgress{UserID: userID, Modules: map[string]domain.ModuleProgress{}}
	if err := r.Pool.QueryRow(ctx, `SELECT created_at, updated_at FROM user_progress WHERE user_id=$1`, userID).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.UserProgress{}, fmt.Errorf("op=progress.find_or_create: %w", err)
	}
	rows, err := r.Pool.Query(ctx, `SELECT module, latest_score, completions, updated_at FROM module_progress WHERE user_id=$1`, userID)
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("op=progress.modules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m domain.ModuleProgress
		if err := rows.Scan(&m.Module, &m.LatestScore, &m.Completions, &m.UpdatedAt); err != nil {
			return domain.UserProgress{}, fmt.Errorf("op=progress.modules: %w", err)
		}
		p.Modules[m.Module] = m
	}
	if err := rows.Err(); err != nil {
		return domain.UserProgress{}, fmt.Errorf("op=progress.modules: %w", err)
	}
	return p, nil
}

func (r *ProgressRepo) RecordModule(ctx domain.Context, userID, module string, score float64) error {
	tracer := otel.Tracer("repo.progress")
	ctx, span := tracer.Start(ctx, "progress.RecordModule")
	defer span.End()

	now := time.Now().UTC()
	err := withTx(ctx, r.Pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertUserProgress, userID, now); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `INSERT INTO module_progress (user_id, module, latest_score, completions, updated_at)
			VALUES ($1,$2,$3,1,$4)
			ON CONFLICT (user_id, module) DO UPDATE SET latest_score=EXCLUDED.latest_score,
				completions=module_progress.completions+1, updated_at=EXCLUDED.updated_at`,
			userID, module, score, now); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `UPDATE user_progress SET updated_at=$2 WHERE user_id=$1`, userID, now)
		return err
	})
	if err != nil {
		return fmt.Errorf("op=progress.record_module: %w", err)
	}
	return nil
}
