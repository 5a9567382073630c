package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
)

// CleanupService removes finished work older than the retention period.
type CleanupService struct {
	Pool          PgxPool
	RetentionDays int
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(pool PgxPool, retentionDays int) *CleanupService {
	if retentionDays <= 0 {
		retentionDays = 180
	}
	return &CleanupService{Pool: pool, RetentionDays: retentionDays}
}

// cleanupStatements run in order; child rows go through ON DELETE CASCADE.
var cleanupStatements = []struct {
	name string
	sql  string
}{
	{"interview_sessions", `DELETE FROM interview_sessions WHERE status='COMPLETED' AND updated_at < $1`},
	{"technical_tests", `DELETE FROM technical_tests WHERE status='COMPLETED' AND completed_at < $1`},
	{"communication_tests", `DELETE FROM communication_tests WHERE status='COMPLETED' AND updated_at < $1`},
	{"ats_analyses", `DELETE FROM ats_analyses WHERE created_at < $1`},
	{"activity_log", `DELETE FROM activity_log WHERE created_at < $1`},
}

// CleanupOldData removes data older than retention period and returns the
// number of rows deleted per table.
func (s *CleanupService) CleanupOldData(ctx context.Context) (map[string]int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.RetentionDays)
	deleted := make(map[string]int64, len(cleanupStatements))

	err := withTx(ctx, s.Pool, func(tx pgx.Tx) error {
		for _, st := range cleanupStatements {
			tag, err := tx.Exec(ctx, st.sql, cutoff)
			if err != nil {
				return fmt.Errorf("%s: %w", st.name, err)
			}
			deleted[st.name] = tag.RowsAffected()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("op=cleanup.run: %w", err)
	}

	attrs := []any{slog.Time("cutoff", cutoff)}
	for _, st := range cleanupStatements {
		attrs = append(attrs, slog.Int64("deleted_"+st.name, deleted[st.name]))
	}
	slog.Info("data cleanup completed", attrs...)
	return deleted, nil
}

// RunPeriodic starts a periodic cleanup job
func (s *CleanupService) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour // daily by default
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := s.CleanupOldData(ctx); err != nil {
		slog.Error("initial cleanup failed", slog.Any("error", err))
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup service stopping")
			return
		case <-ticker.C:
			if _, err := s.CleanupOldData(ctx); err != nil {
				slog.Error("periodic cleanup failed", slog.Any("error", err))
			}
		}
	}
}
