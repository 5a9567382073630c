package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

// ATSRepo persists resume analyses; sections and report are JSONB columns.
type ATSRepo struct{ Pool PgxPool }

// NewATSRepo constructs an ATSRepo with the given pool.
func NewATSRepo(p PgxPool) *ATSRepo { return &ATSRepo{Pool: p} }

var _ domain.ATSRepository = (*ATSRepo)(nil)

func (r *ATSRepo) Create(ctx domain.Context, a domain.ATSAnalysis) (string, error) {
	tracer := otel.Tracer("repo.ats")
	ctx, span := tracer.Start(ctx, "ats.Create")
	defer span.End()

	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	sections, err := json.Marshal(a.Sections)
	if err != nil {
		return "", fmt.Errorf("op=ats.create: %w", err)
	}
	report, err := json.Marshal(a.Report)
	if err != nil {
		return "", fmt.Errorf("op=ats.create: %w", err)
	}
	q := `INSERT INTO ats_analyses (id, user_id, target_role, filename, sections, report, created_at) VALUES ($1,$2,$3,$4,$5,$6,$7)`
	if _, err := r.Pool.Exec(ctx, q, a.ID, a.UserID, a.TargetRole, a.Filename, sections, report, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("op=ats.create: %w", err)
	}
	return a.ID, nil
}

func (r *ATSRepo) Get(ctx domain.Context, id string) (domain.ATSAnalysis, error) {
	tracer := otel.Tracer("repo.ats")
	ctx, span := tracer.Start(ctx, "ats.Get")
	defer span.End()

	var a domain.ATSAnalysis
	var sections, report []byte
	q := `SELECT id, user_id, target_role, filename, sections, report, created_at FROM ats_analyses WHERE id=$1`
	if err := r.Pool.QueryRow(ctx, q, id).Scan(&a.ID, &a.UserID, &a.TargetRole, &a.Filename, &sections, &report, &a.CreatedAt); err != nil {
		if isNoRows(err) {
			return domain.ATSAnalysis{}, fmt.Errorf("op=ats.get: %w", domain.ErrNotFound)
		}
		return domain.ATSAnalysis{}, fmt.Errorf("op=ats.get: %w", err)
	}
	if err := json.Unmarshal(sections, &a.Sections); err != nil {
		return domain.ATSAnalysis{}, fmt.Errorf("op=ats.get: sections: %w", err)
	}
	if err := json.Unmarshal(report, &a.Report); err != nil {
		return domain.ATSAnalysis{}, fmt.Errorf("op=ats.get: report: %w", err)
	}
	return a, nil
}
