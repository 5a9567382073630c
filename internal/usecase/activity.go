// Package usecase contains application business logic services.
package usecase

import (
	"log/slog"
	"strings"

	obsmetrics "github.com/fairyhunter13/career-readiness/internal/adapter/observability"
	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/observability"
)

// Activity statuses.
const (
	ActivityCompleted  = "COMPLETED"
	ActivityFailed     = "FAILED"
	ActivityInProgress = "IN_PROGRESS"
)

// DefaultActivityLimit bounds timeline reads when the caller passes no limit.
const DefaultActivityLimit = 50

// ActivityLogger writes the unified activity timeline. Logging never fails the
// caller: storage and publish errors are logged as warnings.
type ActivityLogger struct {
	Repo      domain.ActivityRepository
	Publisher domain.ActivityPublisher
}

// NewActivityLogger constructs an ActivityLogger. Either dependency may be nil.
func NewActivityLogger(repo domain.ActivityRepository, pub domain.ActivityPublisher) ActivityLogger {
	return ActivityLogger{Repo: repo, Publisher: pub}
}

// Log stores and publishes e. Entries without a user are skipped.
func (l ActivityLogger) Log(ctx domain.Context, e domain.ActivityEntry) {
	lg := observability.LoggerFromContext(ctx).With(
		slog.String("module", e.Module), slog.String("action", e.Action))
	if strings.TrimSpace(e.UserID) == "" {
		lg.Warn("skipping activity log: no user id")
		obsmetrics.RecordActivity(e.Module, "skipped")
		return
	}
	if e.Status == "" {
		e.Status = ActivityCompleted
	}
	if l.Repo != nil {
		id, err := l.Repo.Create(ctx, e)
		if err != nil {
			lg.Warn("activity log store failed", slog.Any("error", err))
			obsmetrics.RecordActivity(e.Module, "failed")
		} else {
			e.ID = id
			obsmetrics.RecordActivity(e.Module, "stored")
		}
	}
	if l.Publisher != nil {
		if err := l.Publisher.Publish(ctx, e); err != nil {
			lg.Warn("activity publish failed", slog.Any("error", err))
			obsmetrics.RecordActivity(e.Module, "failed")
			return
		}
		obsmetrics.RecordActivity(e.Module, "published")
	}
	lg.Info("activity logged", slog.String("summary", e.Summary))
}

// Timeline returns a user's newest entries first.
func (l ActivityLogger) Timeline(ctx domain.Context, userID string, limit int) ([]domain.ActivityEntry, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, domainErr(domain.ErrInvalidArgument, "user id required")
	}
	if l.Repo == nil {
		return []domain.ActivityEntry{}, nil
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return l.Repo.ListByUser(ctx, userID, limit)
}

func scorePtr(v float64) *float64 { return &v }
