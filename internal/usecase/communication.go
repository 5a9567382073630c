package usecase

import (
	"fmt"
	"log/slog"
	"strings"

	obsmetrics "github.com/fairyhunter13/career-readiness/internal/adapter/observability"
	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/evaluator"
	"github.com/fairyhunter13/career-readiness/internal/observability"
)

// maxTaskScore is the ceiling of a single spoken task.
const maxTaskScore = 10

// PublicTask is a communication task without its evaluation data.
type PublicTask struct {
	ID             string  `json:"id"`
	Type           string  `json:"type"`
	Prompt         string  `json:"prompt"`
	MinDuration    float64 `json:"minDuration"`
	StrongResponse string  `json:"strongResponse,omitempty"`
}

// StartedCommunicationTest is returned by Start.
type StartedCommunicationTest struct {
	TestID string       `json:"testId"`
	Tasks  []PublicTask `json:"tasks"`
}

// TaskOutcome is the evaluation of one spoken task.
type TaskOutcome struct {
	ResultID string               `json:"resultId"`
	Score    float64              `json:"score"`
	Feedback string               `json:"feedback"`
	Metrics  domain.SpokenMetrics `json:"metrics"`
}

// CommunicationResult summarizes a test. Percentage is 0-100.
type CommunicationResult struct {
	TestID           string              `json:"testId"`
	TotalScore       float64             `json:"totalScore"`
	MaxScore         float64             `json:"maxScore"`
	Percentage       float64             `json:"percentage"`
	PerformanceLabel string              `json:"performanceLabel"`
	OverallFeedback  string              `json:"overallFeedback"`
	Tasks            []domain.TaskResult `json:"tasks"`
}

// CommunicationService runs spoken-response tests.
type CommunicationService struct {
	Repo     domain.CommunicationRepository
	Tasks    domain.TaskCatalog
	Activity ActivityLogger
	Progress ProgressService
}

// NewCommunicationService constructs a CommunicationService.
func NewCommunicationService(repo domain.CommunicationRepository, tasks domain.TaskCatalog, act ActivityLogger, prog ProgressService) CommunicationService {
	return CommunicationService{Repo: repo, Tasks: tasks, Activity: act, Progress: prog}
}

// Start opens a test and lists every task prompt.
func (s CommunicationService) Start(ctx domain.Context, userID string) (StartedCommunicationTest, error) {
	id, err := s.Repo.Create(ctx, domain.CommunicationTest{UserID: userID, Status: domain.StatusInProgress})
	if err != nil {
		return StartedCommunicationTest{}, err
	}
	tasks := s.Tasks.Tasks()
	out := StartedCommunicationTest{TestID: id, Tasks: make([]PublicTask, 0, len(tasks))}
	for _, t := range tasks {
		out.Tasks = append(out.Tasks, PublicTask{
			ID: t.ID, Type: t.Type, Prompt: t.Prompt, MinDuration: t.MinDuration, StrongResponse: t.StrongResponse,
		})
	}
	observability.LoggerFromContext(ctx).Info("communication test started",
		slog.String("test_id", id), slog.Int("tasks", len(out.Tasks)))
	return out, nil
}

// SubmitTask scores a transcript and stores the result. duration is seconds.
// Each task is accepted once and only while the test is in progress.
func (s CommunicationService) SubmitTask(ctx domain.Context, testID, taskID, transcript string, duration float64) (TaskOutcome, error) {
	if strings.TrimSpace(testID) == "" {
		return TaskOutcome{}, domainErr(domain.ErrInvalidArgument, "test id required")
	}
	task, ok := s.Tasks.Task(taskID)
	if !ok {
		return TaskOutcome{}, domainErr(domain.ErrNotFound, "task %q", taskID)
	}
	if duration < 0 {
		return TaskOutcome{}, domainErr(domain.ErrInvalidArgument, "duration must not be negative")
	}
	t, err := s.Repo.Get(ctx, testID)
	if err != nil {
		return TaskOutcome{}, err
	}
	if t.Status == domain.StatusCompleted {
		return TaskOutcome{}, domainErr(domain.ErrConflict, "test %s already completed", testID)
	}
	for _, prev := range t.Tasks {
		if prev.TaskID == task.ID {
			return TaskOutcome{}, domainErr(domain.ErrConflict, "task %q already submitted", task.ID)
		}
	}
	res := evaluator.EvaluateSpoken(task, transcript, duration)
	var metrics domain.SpokenMetrics
	if res.Metrics != nil {
		metrics = *res.Metrics
	}
	id, err := s.Repo.AddTaskResult(ctx, testID, domain.TaskResult{
		TaskID:     task.ID,
		Transcript: transcript,
		Duration:   duration,
		Score:      res.Score,
		Feedback:   res.Feedback,
		Metrics:    metrics,
	})
	if err != nil {
		return TaskOutcome{}, err
	}
	obsmetrics.ObserveEvaluation(obsmetrics.EvalSpoken, res.Score)
	return TaskOutcome{ResultID: id, Score: res.Score, Feedback: res.Feedback, Metrics: metrics}, nil
}

// Result totals the stored task results and completes the test. The activity
// and progress side effects run only on the completing call.
func (s CommunicationService) Result(ctx domain.Context, testID string) (CommunicationResult, error) {
	t, err := s.Repo.Get(ctx, testID)
	if err != nil {
		return CommunicationResult{}, err
	}
	var total float64
	for _, tr := range t.Tasks {
		total += tr.Score
	}
	total = evaluator.Round1(total)
	maxScore := float64(len(t.Tasks) * maxTaskScore)
	label := evaluator.PerformanceLabel(total, maxScore)
	out := CommunicationResult{
		TestID:           t.ID,
		TotalScore:       total,
		MaxScore:         maxScore,
		Percentage:       evaluator.Round1(evaluator.Percentage(total, maxScore)),
		PerformanceLabel: label,
		OverallFeedback:  evaluator.CommunicationFeedback(label),
		Tasks:            t.Tasks,
	}
	if t.Status == domain.StatusCompleted {
		return out, nil
	}

	t.TotalScore, t.MaxScore, t.Percentage = out.TotalScore, out.MaxScore, out.Percentage
	t.Label, t.OverallFeedback = out.PerformanceLabel, out.OverallFeedback
	did, err := s.Repo.Complete(ctx, t)
	if err != nil {
		return CommunicationResult{}, err
	}
	if did {
		s.Activity.Log(ctx, domain.ActivityEntry{
			UserID:   t.UserID,
			Module:   domain.ModuleCommunication,
			Action:   domain.ActionComplete,
			Summary:  fmt.Sprintf("Communication test completed - %s (%.0f%%)", label, out.Percentage),
			Score:    scorePtr(out.Percentage),
			Status:   ActivityCompleted,
			Metadata: map[string]any{"test_id": t.ID, "tasks": len(t.Tasks)},
		})
		s.Progress.recordBestEffort(ctx, t.UserID, domain.ModuleCommunication, out.Percentage)
	}
	return out, nil
}
