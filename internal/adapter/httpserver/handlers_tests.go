package httpserver

import (
	"net/http"

	"github.com/fairyhunter13/career-readiness/internal/usecase"
)

// TestConfigHandler lists subjects and difficulties.
func (s *Server) TestConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, s.Tests.Config())
	}
}

// StartTestHandler draws a technical test from the bank.
func (s *Server) StartTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body usecase.StartTestInput
		if !bind(w, r, &body) {
			return
		}
		out, err := s.Tests.Start(r.Context(), body)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// SubmitTestAnswerHandler scores a single answer.
func (s *Server) SubmitTestAnswerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var body struct {
			QuestionID string   `json:"questionId" validate:"required,max=100"`
			Selected   []string `json:"selected" validate:"max=10"`
		}
		if !bind(w, r, &body) {
			return
		}
		out, err := s.Tests.SubmitAnswer(r.Context(), id, body.QuestionID, body.Selected)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// SubmitTestHandler scores every supplied answer and completes the test.
func (s *Server) SubmitTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var body struct {
			Answers map[string][]string `json:"answers" validate:"required"`
		}
		if !bind(w, r, &body) {
			return
		}
		out, err := s.Tests.SubmitBulk(r.Context(), id, body.Answers)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// TestResultHandler completes the test if needed and returns its summary.
func (s *Server) TestResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		out, err := s.Tests.Result(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// StartCommunicationHandler opens a spoken-response test.
func (s *Server) StartCommunicationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			UserID string `json:"userId" validate:"omitempty,max=100"`
		}
		if !bind(w, r, &body) {
			return
		}
		out, err := s.Communication.Start(r.Context(), body.UserID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// SubmitCommunicationTaskHandler scores one transcript.
func (s *Server) SubmitCommunicationTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		taskID, ok := pathID(w, r, "taskId")
		if !ok {
			return
		}
		var body struct {
			Transcript string  `json:"transcript" validate:"max=20000"`
			Duration   float64 `json:"duration" validate:"gte=0"`
		}
		if !bind(w, r, &body) {
			return
		}
		out, err := s.Communication.SubmitTask(r.Context(), id, taskID, body.Transcript, body.Duration)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// CommunicationResultHandler totals the test.
func (s *Server) CommunicationResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		out, err := s.Communication.Result(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// StartQuickTestHandler generates a short test for a skill.
func (s *Server) StartQuickTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body usecase.QuickTestInput
		if !bind(w, r, &body) {
			return
		}
		out, err := s.QuickTests.Start(r.Context(), body)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	}
}

// SubmitQuickTestHandler scores a generated test.
func (s *Server) SubmitQuickTestHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		var body struct {
			Answers map[string]string `json:"answers" validate:"required"`
		}
		if !bind(w, r, &body) {
			return
		}
		out, err := s.QuickTests.Submit(r.Context(), id, body.Answers)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}
