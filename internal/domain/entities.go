package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Error taxonomy (sentinels)
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTimeout   = errors.New("upstream timeout")
	ErrUpstreamRateLimit = errors.New("upstream rate limit")
	ErrSchemaInvalid     = errors.New("schema invalid")
	ErrInvalidStage      = errors.New("invalid stage")
	ErrInternal          = errors.New("internal error")
)

// QuestionKind enumerates how a question is answered.
type QuestionKind string

const (
	KindSingle QuestionKind = "single"
	KindMulti  QuestionKind = "multi"
	KindOpen   QuestionKind = "open-ended"
)

// FeedbackTemplates are per-question overrides keyed by band. A slice with
// more than one entry is rotated by the caller-supplied key.
type FeedbackTemplates struct {
	Poor      []string
	Average   []string
	Excellent []string
}

// Question is an immutable bank record. Choice questions use Options and
// CorrectAnswers; open-ended questions use Keywords, Weights and MinLength.
// For HR questions Keywords holds the expected talking points.
type Question struct {
	ID             string
	Prompt         string
	Kind           QuestionKind
	Difficulty     string
	Category       string
	Options        []string
	CorrectAnswers []string
	Marks          int
	Keywords       []string
	Weights        map[string]float64
	MinLength      int
	Templates      *FeedbackTemplates
}

// ChoiceResult is the outcome of a single/multi choice evaluation.
type ChoiceResult struct {
	IsCorrect    bool
	MarksAwarded int
}

// SpokenMetrics describe a transcript evaluation.
type SpokenMetrics struct {
	WordCount      int      `json:"word_count"`
	ConnectorCount int      `json:"connector_count"`
	SentenceCount  int      `json:"sentence_count"`
	RelevanceRatio float64  `json:"relevance_ratio"`
	Duration       float64  `json:"duration"`
	MatchedPoints  []string `json:"matched_points"`
}

// EvaluationResult is returned by the open-answer and spoken evaluators.
type EvaluationResult struct {
	Score    float64
	Matched  []string
	Missing  []string
	Feedback string
	Metrics  *SpokenMetrics
}

// Stage is a node of the interview state machine.
type Stage string

const (
	StageGreeting  Stage = "GREETING"
	StageReadiness Stage = "READINESS"
	StageIntro     Stage = "INTRO"
	StageMain      Stage = "MAIN"
	StageClosing   Stage = "CLOSING"
	StageCompleted Stage = "COMPLETED"
)

// Valid reports whether s is one of the known stages.
func (s Stage) Valid() bool {
	switch s {
	case StageGreeting, StageReadiness, StageIntro, StageMain, StageClosing, StageCompleted:
		return true
	}
	return false
}

// SessionType selects the question bank and evaluator used in MAIN.
type SessionType string

const (
	SessionTechnical SessionType = "TECHNICAL"
	SessionHR        SessionType = "HR"
)

// Status is shared by interview sessions and tests.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
)

// MaxInterviewAttempts bounds the attempts of one session, the intro included.
const MaxInterviewAttempts = 5

// InterviewSession owns its attempts; attempts are only ever appended.
type InterviewSession struct {
	ID         string
	UserID     string
	Role       string
	Type       SessionType
	Stage      Stage
	Status     Status
	TotalScore float64
	Attempts   []QuestionAttempt
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Attempted reports whether questionID already has an attempt in the session.
func (s InterviewSession) Attempted(questionID string) bool {
	for _, a := range s.Attempts {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// AttemptedIDs returns the question ids answered so far.
func (s InterviewSession) AttemptedIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(s.Attempts))
	for _, a := range s.Attempts {
		out[a.QuestionID] = struct{}{}
	}
	return out
}

// QuestionAttempt is one immutable question/answer/evaluation record.
type QuestionAttempt struct {
	ID              string
	SessionID       string
	QuestionID      string
	QuestionText    string
	Answer          string
	Score           float64
	Feedback        string
	MatchedKeywords []string
	CreatedAt       time.Time
}

// CommunicationFeedback holds a task's own band texts.
type CommunicationFeedback struct {
	High string
	Mid  string
	Low  string
}

// CommunicationTask is a spoken-response prompt.
type CommunicationTask struct {
	ID                string
	Type              string
	Prompt            string
	MinDuration       float64
	StructurePoints   []string
	FeedbackTemplates CommunicationFeedback
	StrongResponse    string
}

// TaskResult is the stored evaluation of one spoken task.
type TaskResult struct {
	ID         string
	TestID     string
	TaskID     string
	Transcript string
	Duration   float64
	Score      float64
	Feedback   string
	Metrics    SpokenMetrics
	CreatedAt  time.Time
}

// CommunicationTest groups task results. TotalScore and MaxScore are on the
// per-task 0-10 scale summed; Percentage is the 0-100 normalization.
type CommunicationTest struct {
	ID              string
	UserID          string
	Status          Status
	Tasks           []TaskResult
	TotalScore      float64
	MaxScore        float64
	Percentage      float64
	Label           string
	OverallFeedback string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TechnicalTest is a bank-drawn MCQ test.
type TechnicalTest struct {
	ID          string
	UserID      string
	Subject     string
	Difficulty  string
	Status      Status
	QuestionIDs []string
	Answers     []TestAnswer
	Score       int
	MaxScore    int
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Answered reports whether questionID already has a recorded answer.
func (t TechnicalTest) Answered(questionID string) bool {
	for _, a := range t.Answers {
		if a.QuestionID == questionID {
			return true
		}
	}
	return false
}

// Includes reports whether questionID was drawn for this test.
func (t TechnicalTest) Includes(questionID string) bool {
	for _, id := range t.QuestionIDs {
		if id == questionID {
			return true
		}
	}
	return false
}

// TestAnswer is one evaluated choice submission.
type TestAnswer struct {
	QuestionID   string
	Selected     []string
	IsCorrect    bool
	MarksAwarded int
	CreatedAt    time.Time
}

// Section names a resume section.
type Section string

const (
	SectionName           Section = "Name"
	SectionEmail          Section = "Email"
	SectionPhone          Section = "Phone"
	SectionSkills         Section = "Skills"
	SectionEducation      Section = "Education"
	SectionExperience     Section = "Experience"
	SectionProjects       Section = "Projects"
	SectionCertifications Section = "Certifications"
)

// SectionMissing marks a section that was never found.
const SectionMissing = "Missing"

// SectionOrder is the fixed order sections are reported and checked in.
var SectionOrder = []Section{
	SectionName, SectionEmail, SectionPhone, SectionSkills,
	SectionEducation, SectionExperience, SectionProjects, SectionCertifications,
}

// IsContact reports whether s is filled by the contact scan rather than a header.
func (s Section) IsContact() bool {
	return s == SectionName || s == SectionEmail || s == SectionPhone
}

// ResumeSections maps every section to its text or SectionMissing.
type ResumeSections map[Section]string

// NewResumeSections returns a map with every section marked missing.
func NewResumeSections() ResumeSections {
	rs := make(ResumeSections, len(SectionOrder))
	for _, s := range SectionOrder {
		rs[s] = SectionMissing
	}
	return rs
}

// Has reports whether the section holds text.
func (r ResumeSections) Has(s Section) bool {
	v, ok := r[s]
	return ok && v != SectionMissing
}

// SectionKeywords is one header trigger rule; rules are checked in order.
type SectionKeywords struct {
	Section  Section
	Triggers []string
}

// ATSRole is a target role and its required skills.
type ATSRole struct {
	Name           string
	RequiredSkills []string
}

// Impact levels for ATS rows.
const (
	ImpactHigh   = "High"
	ImpactMedium = "Medium"
	ImpactLow    = "Low"
)

// ATSFeedbackRow is one fixed-shape check result.
type ATSFeedbackRow struct {
	Section            string `json:"section"`
	Error              string `json:"error"`
	Correction         string `json:"correction"`
	Impact             string `json:"impact"`
	PotentialScoreGain int    `json:"potentialScoreGain"`
}

// MatchStats summarizes required-skill coverage.
type MatchStats struct {
	Found   []string `json:"found"`
	Missing []string `json:"missing"`
	Pct     int      `json:"pct"`
}

// ATSReport is the scored resume analysis.
type ATSReport struct {
	Score           int              `json:"score"`
	Rows            []ATSFeedbackRow `json:"atsFeedbackRows"`
	Summary         string           `json:"summary"`
	MatchStats      MatchStats       `json:"matchStats"`
	AchievableScore int              `json:"achievableScore"`
}

// ATSAnalysis is a persisted resume analysis.
type ATSAnalysis struct {
	ID         string
	UserID     string
	TargetRole string
	Filename   string
	Sections   ResumeSections
	Report     ATSReport
	CreatedAt  time.Time
}

// Activity modules and actions.
const (
	ModuleResume        = "Resume"
	ModuleTechnical     = "Technical"
	ModuleCommunication = "Communication"
	ModuleInterview     = "MockInterview"

	ActionUpload   = "UPLOAD"
	ActionComplete = "COMPLETE"
	ActionGenerate = "GENERATE"
)

// ActivityEntry is one row of a user's activity timeline.
type ActivityEntry struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Module    string         `json:"module"`
	Action    string         `json:"action"`
	Summary   string         `json:"summary"`
	Score     *float64       `json:"score,omitempty"`
	Status    string         `json:"status"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// ModuleProgress is the latest result of one module for a user.
type ModuleProgress struct {
	Module      string
	LatestScore float64
	Completions int
	UpdatedAt   time.Time
}

// UserProgress is created once per user and updated as modules complete.
type UserProgress struct {
	UserID    string
	Modules   map[string]ModuleProgress
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GeneratedQuestion is a model-generated MCQ held only in the quick-test cache.
type GeneratedQuestion struct {
	ID            string   `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Explanation   string   `json:"explanation"`
}

// SchemaQuickTestQuestion names the generator schema for one GeneratedQuestion.
const SchemaQuickTestQuestion = "quick_test_question"

// Validate checks the shape the quick test relies on: four distinct options
// and a correct answer that is one of them.
func (q GeneratedQuestion) Validate() error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: empty question", ErrSchemaInvalid)
	}
	if len(q.Options) != 4 {
		return fmt.Errorf("%w: want 4 options, got %d", ErrSchemaInvalid, len(q.Options))
	}
	seen := make(map[string]struct{}, len(q.Options))
	for _, o := range q.Options {
		if strings.TrimSpace(o) == "" {
			return fmt.Errorf("%w: empty option", ErrSchemaInvalid)
		}
		if _, dup := seen[o]; dup {
			return fmt.Errorf("%w: duplicate option %q", ErrSchemaInvalid, o)
		}
		seen[o] = struct{}{}
	}
	if _, ok := seen[q.CorrectAnswer]; !ok {
		return fmt.Errorf("%w: correct answer is not an option", ErrSchemaInvalid)
	}
	return nil
}

// QuickTest is a generated test awaiting submission.
type QuickTest struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"`
	Skill      string              `json:"skill"`
	Difficulty string              `json:"difficulty"`
	Questions  []GeneratedQuestion `json:"questions"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Context is an alias to keep ports readable; adapters pass context.Context through.
type Context = context.Context
