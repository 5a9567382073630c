package usecase

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	obsmetrics "github.com/fairyhunter13/career-readiness/internal/adapter/observability"
	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/observability"
	"github.com/fairyhunter13/career-readiness/internal/resume"
)

// ResumeInput is an extracted resume awaiting analysis.
type ResumeInput struct {
	UserID     string
	TargetRole string
	Filename   string
	Text       string
}

// ResumeAnalysis is the persisted analysis returned to the caller.
type ResumeAnalysis struct {
	AnalysisID string                `json:"analysisId"`
	Report     domain.ATSReport      `json:"report"`
	Sections   domain.ResumeSections `json:"parsed_sections"`
}

// ResumeService parses and scores resumes.
type ResumeService struct {
	Repo     domain.ATSRepository
	Rules    domain.ResumeRules
	Parser   *resume.Parser
	Scorer   *resume.Scorer
	Activity ActivityLogger
	Progress ProgressService
}

// NewResumeService builds the parser and scorer from rules.
func NewResumeService(repo domain.ATSRepository, rules domain.ResumeRules, act ActivityLogger, prog ProgressService) ResumeService {
	return ResumeService{
		Repo:     repo,
		Rules:    rules,
		Parser:   resume.NewParser(rules.SectionKeywords()),
		Scorer:   resume.NewScorer(rules),
		Activity: act,
		Progress: prog,
	}
}

// Roles lists the target roles that can be scored against.
func (s ResumeService) Roles() []string {
	roles := s.Rules.Roles()
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, r.Name)
	}
	return out
}

// Analyze parses, scores and stores a resume. Invalid input stores nothing.
func (s ResumeService) Analyze(ctx domain.Context, in ResumeInput) (ResumeAnalysis, error) {
	if strings.TrimSpace(in.TargetRole) == "" {
		return ResumeAnalysis{}, domainErr(domain.ErrInvalidArgument, "Target Job Role must be selected before analysis.")
	}
	if strings.TrimSpace(in.Text) == "" {
		return ResumeAnalysis{}, domainErr(domain.ErrInvalidArgument, "Resume file is required.")
	}
	sections := s.Parser.Parse(in.Text)
	report, err := s.Scorer.Score(sections, in.TargetRole)
	if err != nil {
		return ResumeAnalysis{}, err
	}
	id, err := s.Repo.Create(ctx, domain.ATSAnalysis{
		UserID:     in.UserID,
		TargetRole: in.TargetRole,
		Filename:   in.Filename,
		Sections:   sections,
		Report:     report,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		return ResumeAnalysis{}, err
	}
	obsmetrics.ObserveEvaluation(obsmetrics.EvalATS, float64(report.Score)/10)
	observability.LoggerFromContext(ctx).Info("resume analyzed",
		slog.String("analysis_id", id), slog.String("role", in.TargetRole), slog.Int("score", report.Score))

	s.Activity.Log(ctx, domain.ActivityEntry{
		UserID:   in.UserID,
		Module:   domain.ModuleResume,
		Action:   domain.ActionUpload,
		Summary:  fmt.Sprintf("Resume analyzed for %s - Score: %d", in.TargetRole, report.Score),
		Score:    scorePtr(float64(report.Score)),
		Status:   ActivityCompleted,
		Metadata: map[string]any{"analysis_id": id, "filename": in.Filename},
	})
	s.Progress.recordBestEffort(ctx, in.UserID, domain.ModuleResume, float64(report.Score))
	return ResumeAnalysis{AnalysisID: id, Report: report, Sections: sections}, nil
}

// Get returns a stored analysis.
func (s ResumeService) Get(ctx domain.Context, id string) (domain.ATSAnalysis, error) {
	return s.Repo.Get(ctx, id)
}
