package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// ActivityRepo persists the activity timeline.
type ActivityRepo struct{ Pool PgxPool }

// NewActivityRepo constructs an ActivityRepo with the given pool.
func NewActivityRepo(p PgxPool) *ActivityRepo { return &ActivityRepo{Pool: p} }

var _ domain.ActivityRepository = (*ActivityRepo)(nil)

func (r *ActivityRepo) Create(ctx domain.Context, e domain.ActivityEntry) (string, error) {
	tracer := otel.Tracer("repo.activity")
	ctx, span := tracer.Start(ctx, "activity.Create")
	defer span.End()

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return "", fmt.Errorf("op=activity.create: %w", err)
	}
	q := `INSERT INTO activity_log (id, user_id, module, action, summary, score, status, metadata, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	if _, err := r.Pool.Exec(ctx, q, e.ID, e.UserID, e.Module, e.Action, e.Summary, e.Score, e.Status, b, e.CreatedAt); err != nil {
		return "", fmt.Errorf("op=activity.create: %w", err)
	}
	return e.ID, nil
}

// ListByUser returns the newest entries first; limit <= 0 returns all of them.
func (r *ActivityRepo) ListByUser(ctx domain.Context, userID string, limit int) ([]domain.ActivityEntry, error) {
	tracer := otel.Tracer("repo.activity")
	ctx, span := tracer.Start(ctx, "activity.ListByUser")
	defer span.End()

	q := `SELECT id, user_id, module, action, summary, score, status, metadata, created_at
		FROM activity_log WHERE user_id=$1 ORDER BY created_at DESC, id DESC`
	args := []any{userID}
	if limit > 0 {
		q += ` LIMIT $2`
		args = append(args, limit)
	}
	rows, err := r.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("op=activity.list: %w", err)
	}
	defer rows.Close()
	out := make([]domain.ActivityEntry, 0)
	for rows.Next() {
		var e domain.ActivityEntry
		var meta []byte
		if err := rows.Scan(&e.ID, &e.UserID, &e.Module, &e.Action, &e.Summary, &e.Score, &e.Status, &meta, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("op=activity.list: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &e.Metadata); err != nil {
				return nil, fmt.Errorf("op=activity.list: metadata: %w", err)
			}
		}
		if len(e.Metadata) == 0 {
			e.Metadata = nil
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("op=activity.list: %w", err)
	}
	return out, nil
}
