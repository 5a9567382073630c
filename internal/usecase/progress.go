package usecase

import (
	"log/slog"
	"strings"

	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/observability"
)

// ProgressService keeps per-user readiness progress. Scores are stored on
// each module's native scale; communication is stored as a percentage.
type ProgressService struct {
	Repo domain.ProgressRepository
}

// NewProgressService constructs a ProgressService.
func NewProgressService(repo domain.ProgressRepository) ProgressService {
	return ProgressService{Repo: repo}
}

// Get returns the user's progress, creating an empty record on first use.
func (s ProgressService) Get(ctx domain.Context, userID string) (domain.UserProgress, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.UserProgress{}, domainErr(domain.ErrInvalidArgument, "user id required")
	}
	return s.Repo.FindOrCreate(ctx, userID)
}

// Record counts one completion of module with its latest score.
func (s ProgressService) Record(ctx domain.Context, userID, module string, score float64) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(module) == "" {
		return domainErr(domain.ErrInvalidArgument, "user id and module required")
	}
	if _, err := s.Repo.FindOrCreate(ctx, userID); err != nil {
		return err
	}
	return s.Repo.RecordModule(ctx, userID, module, score)
}

// recordBestEffort is used by services on completion; failures only warn.
func (s ProgressService) recordBestEffort(ctx domain.Context, userID, module string, score float64) {
	if s.Repo == nil || strings.TrimSpace(userID) == "" {
		return
	}
	if err := s.Record(ctx, userID, module, score); err != nil {
		observability.LoggerFromContext(ctx).Warn("progress update failed",
			slog.String("user_id", userID), slog.String("module", module), slog.Any("error", err))
	}
}
