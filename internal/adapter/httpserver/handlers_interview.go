package httpserver

import (
	"net/http"
	"time"

	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/interview"
	"github.com/fairyhunter13/career-readiness/internal/usecase"
)

type attemptResponse struct {
	QuestionID      string    `json:"questionId"`
	QuestionText    string    `json:"questionText"`
	Answer          string    `json:"answer"`
	Score           float64   `json:"score"`
	Feedback        string    `json:"feedback"`
	MatchedKeywords []string  `json:"matchedKeywords"`
	CreatedAt       time.Time `json:"createdAt"`
}

type sessionResponse struct {
	ID         string            `json:"id"`
	UserID     string            `json:"userId,omitempty"`
	Role       string            `json:"role"`
	Type       string            `json:"type"`
	Stage      string            `json:"stage"`
	Status     string            `json:"status"`
	TotalScore float64           `json:"totalScore"`
	Attempts   []attemptResponse `json:"attempts"`
	CreatedAt  time.Time         `json:"createdAt"`
}

func toSessionResponse(s domain.InterviewSession) sessionResponse {
	out := sessionResponse{
		ID:         s.ID,
		UserID:     s.UserID,
		Role:       s.Role,
		Type:       string(s.Type),
		Stage:      string(s.Stage),
		Status:     string(s.Status),
		TotalScore: s.TotalScore,
		Attempts:   make([]attemptResponse, 0, len(s.Attempts)),
		CreatedAt:  s.CreatedAt,
	}
	for _, a := range s.Attempts {
		out.Attempts = append(out.Attempts, attemptResponse{
			QuestionID:      a.QuestionID,
			QuestionText:    a.QuestionText,
			Answer:          a.Answer,
			Score:           a.Score,
			Feedback:        a.Feedback,
			MatchedKeywords: a.MatchedKeywords,
			CreatedAt:       a.CreatedAt,
		})
	}
	return out
}

type interactionResponse struct {
	Type       string `json:"type"`
	QuestionID string `json:"questionId,omitempty"`
	Text       string `json:"text"`
	Stage      string `json:"stage"`
	Progress   int    `json:"progress,omitempty"`
	Total      int    `json:"total,omitempty"`
	Finished   bool   `json:"finished"`
}

func toInteractionResponse(it interview.Interaction) interactionResponse {
	return interactionResponse{
		Type:       string(it.Type),
		QuestionID: it.QuestionID,
		Text:       it.Text,
		Stage:      string(it.Stage),
		Progress:   it.Progress,
		Total:      it.Total,
		Finished:   it.Finished(),
	}
}

type outcomeResponse struct {
	Score    float64  `json:"score"`
	Feedback string   `json:"feedback"`
	Matched  []string `json:"matchedKeywords,omitempty"`
	Stay     bool     `json:"stay"`
	Ignored  bool     `json:"ignored"`
	Stage    string   `json:"stage"`
}

// StartInterviewHandler opens a session in GREETING.
func (s *Server) StartInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"userId" validate:"omitempty,max=100"`
			Role   string `json:"role" validate:"required,max=200"`
			Type   string `json:"type" validate:"max=20"`
		}
		if !bind(w, r, &body) {
			return
		}
		sess, err := s.Interviews.Start(r.Context(), usecase.StartInterviewInput{
			UserID: body.UserID, Role: body.Role, Type: domain.SessionType(body.Type),
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, toSessionResponse(sess))
	}
}

// GetInterviewHandler returns a session with its attempts.
func (s *Server) GetInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		sess, err := s.Interviews.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toSessionResponse(sess))
	}
}

// NextInteractionHandler advances the session and returns what to show next.
func (s *Server) NextInteractionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		it, err := s.Interviews.Next(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, toInteractionResponse(it))
	}
}

// SubmitInterviewAnswerHandler evaluates one answer.
func (s *Server) SubmitInterviewAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var body struct {
			QuestionID string `json:"questionId" validate:"required,max=100"`
			Answer     string `json:"answer" validate:"max=10000"`
		}
		if !bind(w, r, &body) {
			return
		}
		out, err := s.Interviews.Submit(r.Context(), id, body.QuestionID, body.Answer)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, outcomeResponse{
			Score: out.Score, Feedback: out.Feedback, Matched: out.Matched,
			Stay: out.Stay, Ignored: out.Ignored, Stage: string(out.Stage),
		})
	}
}

// EndInterviewHandler completes the session and returns its summary.
func (s *Server) EndInterviewHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		sum, err := s.Interviews.End(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"session":  toSessionResponse(sum.Session),
			"attempts": sum.Attempts,
			"average":  sum.Average,
		})
	}
}
