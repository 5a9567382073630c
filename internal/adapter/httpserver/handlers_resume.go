package httpserver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/fairyhunter13/career-readiness/internal/domain"
	"github.com/fairyhunter13/career-readiness/internal/usecase"
	"github.com/fairyhunter13/career-readiness/pkg/textx"
)

const (
	resumeField     = "resume"
	multipartSlack  = 512 << 10
	mimeDOCX        = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimePDF         = "application/pdf"
	defaultUploadMB = 2
)

// allowedExt enforces an allowlist for uploads: .txt, .pdf, .docx
func allowedExt(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".pdf", ".docx":
		return true
	}
	return false
}

// allowedMIMEFor checks the sniffed type agrees with the extension family.
// DOCX is a zip container, so the zip type is accepted for .docx too.
func allowedMIMEFor(m, filename string) bool {
	m = strings.ToLower(m)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return strings.HasPrefix(m, "text/")
	case ".pdf":
		return m == mimePDF
	case ".docx":
		return m == mimeDOCX || m == "application/zip"
	}
	return false
}

// extractUploadedText turns an uploaded file into plain text.
// PDF and DOCX go through the extractor via a temp file; TXT is cleaned in place.
func extractUploadedText(ctx context.Context, extractor domain.TextExtractor, h *multipart.FileHeader, data []byte) (string, error) {
	ext := strings.ToLower(filepath.Ext(h.Filename))
	if ext != ".pdf" && ext != ".docx" {
		return textx.Clean(string(data)), nil
	}
	if extractor == nil {
		return "", fmt.Errorf("%w: %s requires extractor", domain.ErrInvalidArgument, strings.TrimPrefix(ext, "."))
	}
	tmp, err := os.CreateTemp("", "resume-*"+ext)
	if err != nil {
		return "", err
	}
	defer func() { _ = tmp.Close(); _ = os.Remove(tmp.Name()) }()
	if _, err := io.Copy(tmp, bytes.NewReader(data)); err != nil {
		return "", err
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	return extractor.ExtractPath(ctx, h.Filename, tmp.Name())
}

func (s *Server) uploadLimit() int64 {
	if n := s.Cfg.MaxUploadBytes(); n > 0 {
		return n
	}
	return defaultUploadMB << 20
}

func writeTooLarge(w http.ResponseWriter, limit int64) {
	writeJSON(w, http.StatusRequestEntityTooLarge, errorEnvelope{Error: apiError{
		Code: "INVALID_ARGUMENT", Message: "File size exceeds the 2MB limit.", Details: map[string]any{"max_bytes": limit},
	}})
}

func writeUnsupported(w http.ResponseWriter, msg string, details map[string]any) {
	writeJSON(w, http.StatusUnsupportedMediaType, errorEnvelope{Error: apiError{
		Code: "INVALID_ARGUMENT", Message: msg, Details: details,
	}})
}

// AnalyzeResumeHandler accepts a multipart resume upload and scores it against targetRole.
func (s *Server) AnalyzeResumeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		if !strings.Contains(r.Header.Get("Content-Type"), "multipart/form-data") {
			writeError(w, r, fmt.Errorf("%w: content-type must be multipart/form-data", domain.ErrInvalidArgument), nil)
			return
		}
		limit := s.uploadLimit()
		r.Body = http.MaxBytesReader(w, r.Body, limit+multipartSlack)
		if err := r.ParseMultipartForm(limit + multipartSlack); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) || strings.Contains(strings.ToLower(err.Error()), "too large") {
				writeTooLarge(w, limit)
				return
			}
			writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		defer func() {
			if r.MultipartForm != nil {
				_ = r.MultipartForm.RemoveAll()
			}
		}()

		targetRole := strings.TrimSpace(r.FormValue("targetRole"))
		if targetRole == "" {
			writeError(w, r, fmt.Errorf("%w: Target Job Role must be selected before analysis.", domain.ErrInvalidArgument), map[string]string{"field": "targetRole"})
			return
		}
		userID := strings.TrimSpace(r.FormValue("userId"))
		if userID != "" {
			if res := ValidateUserID(userID); !res.Valid {
				writeError(w, r, fmt.Errorf("%w: %s", domain.ErrInvalidArgument, res.Errors[0].Message), res.Errors)
				return
			}
		}

		file, header, err := r.FormFile(resumeField)
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: Resume file is required.", domain.ErrInvalidArgument), map[string]string{"field": resumeField})
			return
		}
		defer func() { _ = file.Close() }()
		if header.Size > limit {
			writeTooLarge(w, limit)
			return
		}
		if !allowedExt(header.Filename) {
			writeUnsupported(w, "Only PDF, DOCX and TXT resumes are supported.", map[string]any{"filename": header.Filename})
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, limit+1))
		if err != nil {
			writeError(w, r, fmt.Errorf("%w: resume read: %v", domain.ErrInvalidArgument, err), nil)
			return
		}
		if int64(len(data)) > limit {
			writeTooLarge(w, limit)
			return
		}
		detected := mimetype.Detect(data)
		if !allowedMIMEFor(detected.String(), header.Filename) {
			writeUnsupported(w, "Resume content does not match its extension.", map[string]any{"mime": detected.String(), "filename": header.Filename})
			return
		}

		text, err := extractUploadedText(r.Context(), s.Extractor, header, data)
		if err != nil {
			writeError(w, r, fmt.Errorf("resume extract: %w", err), nil)
			return
		}
		out, err := s.Resumes.Analyze(r.Context(), usecase.ResumeInput{
			UserID: userID, TargetRole: targetRole, Filename: header.Filename, Text: text,
		})
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// ResumeRolesHandler lists the roles a resume can be scored against.
func (s *Server) ResumeRolesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		writeJSON(w, http.StatusOK, map[string][]string{"roles": s.Resumes.Roles()})
	}
}

// GetResumeAnalysisHandler returns a stored analysis.
func (s *Server) GetResumeAnalysisHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !acceptsJSON(w, r) {
			return
		}
		id, ok := pathID(w, r, "id")
		if !ok {
			return
		}
		a, err := s.Resumes.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, err, nil)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"analysisId":      a.ID,
			"targetRole":      a.TargetRole,
			"filename":        a.Filename,
			"report":          a.Report,
			"parsed_sections": a.Sections,
			"createdAt":       a.CreatedAt.Format(time.RFC3339),
		})
	}
}
