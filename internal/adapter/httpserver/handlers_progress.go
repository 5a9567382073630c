package httpserver

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/career-readiness/internal/domain"
)

type moduleProgressResponse struct {
	Module      string    `json:"module"`
	LatestScore float64   `json:"latestScore"`
	Completions int       `json:"completions"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func userIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "userId")
	if res := ValidateUserID(id); !res.Valid {
		writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, res.Errors[0].Message), res.Errors)
		return "", false
	}
	return id, true
}

// ProgressHandler returns the user's progress record, creating it on first use.
func (s *Server) ProgressHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		userID, ok := userIDParam(w, r)
		if !ok {
			return
		}
		p, err := s.Progress.Get(r.Context(), userID)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		modules := make([]moduleProgressResponse, 0, len(p.Modules))
		for _, m := range p.Modules {
			modules = append(modules, moduleProgressResponse{
				Module: m.Module, LatestScore: m.LatestScore, Completions: m.Completions, UpdatedAt: m.UpdatedAt,
			})
		}
		sort.Slice(modules, func(i, j int) bool { return modules[i].Module < modules[j].Module })
		writeJSON(w, http.StatusOK, map[string]any{
			"userId":    p.UserID,
			"modules":   modules,
			"createdAt": p.CreatedAt,
			"updatedAt": p.UpdatedAt,
		})
	}
}

// ActivityHandler returns the user's most recent activity entries.
func (s *Server) ActivityHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		userID, ok := userIDParam(w, r)
		if !ok {
			return
		}
		limit, res := ParseLimit(r.URL.Query().Get("limit"))
		if !res.Valid {
			writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, res.Errors[0].Message), res.Errors)
			return
		}
		entries, err := s.Activity.Timeline(r.Context(), userID, limit)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		if entries == nil {
			entries = []domain.ActivityEntry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"userId": userID, "activities": entries})
	}
}
