package domain

import "time"

// Dataset store (ports). Implementations are loaded once and read-only.

// QuestionBank serves interview questions.
type QuestionBank interface {
	// TechnicalQuestions returns the bank for the first role containing role
	// (case-insensitive), or every technical question when none matches.
	TechnicalQuestions(role string) []Question
	// HRQuestions returns the bank for the first matching category, or every
	// HR question when none matches.
	HRQuestions(category string) []Question
	// Question looks a question up by id across both banks.
	Question(id string) (Question, bool)
}

// TestBank serves subject/difficulty MCQ pools.
type TestBank interface {
	Subjects() []string
	TestQuestions(ctx Context, subject, difficulty string) ([]Question, error)
}

// TaskCatalog serves communication tasks.
type TaskCatalog interface {
	Tasks() []CommunicationTask
	Task(id string) (CommunicationTask, bool)
}

// ResumeRules serves the ATS role table and section header triggers.
type ResumeRules interface {
	Roles() []ATSRole
	Role(name string) (ATSRole, bool)
	SectionKeywords() []SectionKeywords
}

// Repositories (ports)

// InterviewRepository persists sessions. Stage changes are conditional on the
// stage the caller read, so a lost race surfaces as ErrConflict.
type InterviewRepository interface {
	Create(ctx Context, s InterviewSession) (string, error)
	Get(ctx Context, id string) (InterviewSession, error)
	Transition(ctx Context, id string, from, to Stage) error
	// RecordAttempt appends a, adds a.Score to the total and moves the stage
	// from -> to in one step. Re-answering a question is ErrConflict.
	RecordAttempt(ctx Context, id string, from Stage, a QuestionAttempt, to Stage) error
	Complete(ctx Context, id string) (InterviewSession, error)
}

// TechnicalTestRepository persists bank-drawn tests.
type TechnicalTestRepository interface {
	Create(ctx Context, t TechnicalTest) (string, error)
	Get(ctx Context, id string) (TechnicalTest, error)
	// RecordAnswer appends a and increments the score atomically.
	RecordAnswer(ctx Context, id string, a TestAnswer) error
	// Complete marks the test completed and reports whether this call did it.
	Complete(ctx Context, id string, at time.Time) (bool, error)
}

// CommunicationRepository persists communication tests and task results.
type CommunicationRepository interface {
	Create(ctx Context, t CommunicationTest) (string, error)
	Get(ctx Context, id string) (CommunicationTest, error)
	AddTaskResult(ctx Context, testID string, r TaskResult) (string, error)
	// Complete stores the summary fields and reports whether this call did it.
	Complete(ctx Context, t CommunicationTest) (bool, error)
}

// ATSRepository persists resume analyses.
type ATSRepository interface {
	Create(ctx Context, a ATSAnalysis) (string, error)
	Get(ctx Context, id string) (ATSAnalysis, error)
}

// ActivityRepository persists the activity timeline.
type ActivityRepository interface {
	Create(ctx Context, e ActivityEntry) (string, error)
	ListByUser(ctx Context, userID string, limit int) ([]ActivityEntry, error)
}

// ProgressRepository keeps one progress record per user.
type ProgressRepository interface {
	// FindOrCreate is idempotent: concurrent first calls yield one record.
	FindOrCreate(ctx Context, userID string) (UserProgress, error)
	// RecordModule increments the module's completions and stores score.
	RecordModule(ctx Context, userID, module string, score float64) error
}

// Collaborators (ports)

// ActivityPublisher emits activity events to downstream consumers.
type ActivityPublisher interface {
	Publish(ctx Context, e ActivityEntry) error
}

// ContentGenerator returns structured model output decoded into out, or fails.
// It never returns partial content.
type ContentGenerator interface {
	GenerateJSON(ctx Context, prompt, schemaName string, out any) error
}

// TextExtractor (port)
// ExtractPath extracts text from a file at path with provided original filename.
type TextExtractor interface {
	ExtractPath(ctx Context, fileName, path string) (string, error)
}

// QuickTestCache holds generated tests until they are submitted or expire.
type QuickTestCache interface {
	Put(ctx Context, t QuickTest, ttl time.Duration) error
	// Get returns ErrNotFound for unknown or expired ids.
	Get(ctx Context, id string) (QuickTest, error)
	Delete(ctx Context, id string) error
}
