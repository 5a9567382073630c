package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/career-readiness/internal/adapter/ai/stub"
	cachemem "github.com/fairyhunter13/career-readiness/internal/adapter/cache/memory"
	"github.com/fairyhunter13/career-readiness/internal/adapter/queue/redpanda"
	"github.com/fairyhunter13/career-readiness/internal/adapter/repo/memory"
	"github.com/fairyhunter13/career-readiness/internal/config"
	"github.com/fairyhunter13/career-readiness/internal/dataset"
	"github.com/fairyhunter13/career-readiness/internal/interview"
	"github.com/fairyhunter13/career-readiness/internal/service/ratelimiter"
	"github.com/fairyhunter13/career-readiness/internal/usecase"
	"github.com/fairyhunter13/career-readiness/pkg/randx"
)

func writeFixture(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func fixtureStore(t *testing.T) *dataset.Store {
	t.Helper()
	dir := t.TempDir()
	writeFixture(t, dir, "technical.json", `[
	  {"role": "Backend Developer", "questions": [
	    {"id": "be_1", "question": "How do you scale reads?", "expected_keywords": ["cache", "replica"]},
	    {"id": "be_2", "question": "What is an index?", "expected_keywords": ["lookup"]},
	    {"id": "be_3", "question": "Explain idempotency.", "expected_keywords": ["retry"]},
	    {"id": "be_4", "question": "What is a transaction?", "expected_keywords": ["atomic"]}
	  ]}
	]`)
	writeFixture(t, dir, "technical-tests/java/easy.json", `[
	  {"id": "j1", "question": "Q1", "question_type": "single", "options": ["a", "b"], "correct_answer": ["a"], "marks": 5},
	  {"id": "j2", "question": "Q2", "question_type": "single", "options": ["a", "b"], "correct_answer": ["b"], "marks": 5}
	]`)
	writeFixture(t, dir, "communications.json", `[{"id": "c1", "type": "intro", "prompt": "Introduce yourself", "minDuration": 5,
	  "structurePoints": ["name", "project"], "feedbackTemplates": {"high": "H", "mid": "M", "low": "L"}}]`)
	writeFixture(t, dir, "ats_keywords.json", `{
	  "roles": [{"name": "Backend Developer", "requiredSkills": ["Go", "SQL"]}],
	  "sectionKeywords": {"Skills": ["skills"], "Experience": ["experience"], "Projects": ["projects"], "Education": ["education"]}
	}`)
	s, err := dataset.Load(dir)
	require.NoError(t, err)
	return s
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls []string
	text  string
	err   error
}

func (f *fakeExtractor) ExtractPath(_ context.Context, fileName, path string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, fileName+"|"+path)
	return f.text, f.err
}

type testEnv struct {
	srv       *Server
	router    http.Handler
	extractor *fakeExtractor
}

func newTestEnv(t *testing.T, quickPerHour int) testEnv {
	t.Helper()
	store := fixtureStore(t)
	act := usecase.NewActivityLogger(memory.NewActivityRepo(), redpanda.NoopPublisher{})
	prog := usecase.NewProgressService(memory.NewProgressRepo())
	interviews := memory.NewInterviewRepo()
	svc := Services{
		Interviews:    usecase.NewInterviewService(interviews, interview.NewMachine(interviews, store, randx.NewSeeded(3)), act, prog),
		Tests:         usecase.NewTechnicalTestService(memory.NewTechnicalTestRepo(), store, randx.NewSeeded(3), act, prog),
		Communication: usecase.NewCommunicationService(memory.NewCommunicationRepo(), store, act, prog),
		Resumes:       usecase.NewResumeService(memory.NewATSRepo(), store, act, prog),
		QuickTests: usecase.NewQuickTestService(stub.New(), cachemem.NewQuickTestCache(),
			ratelimiter.NewMemoryLimiter(ratelimiter.NewBucketConfigFromPerHour(quickPerHour)), 0, act),
		Progress: prog,
		Activity: act,
	}
	ext := &fakeExtractor{text: "Experience\nBuilt services in Go\nSkills\nGo, SQL"}
	srv := NewServer(config.Config{MaxUploadMB: 1}, svc, ext)
	return testEnv{srv: srv, router: testRouter(srv), extractor: ext}
}

func testRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(RequestID())
	r.Post("/v1/interviews", s.StartInterviewHandler())
	r.Get("/v1/interviews/{id}", s.GetInterviewHandler())
	r.Post("/v1/interviews/{id}/next", s.NextInteractionHandler())
	r.Post("/v1/interviews/{id}/answers", s.SubmitInterviewAnswerHandler())
	r.Post("/v1/interviews/{id}/end", s.EndInterviewHandler())
	r.Get("/v1/tests/config", s.TestConfigHandler())
	r.Post("/v1/tests", s.StartTestHandler())
	r.Post("/v1/tests/{id}/answers", s.SubmitTestAnswerHandler())
	r.Post("/v1/tests/{id}/submit", s.SubmitTestHandler())
	r.Get("/v1/tests/{id}/result", s.TestResultHandler())
	r.Post("/v1/communication/tests", s.StartCommunicationHandler())
	r.Post("/v1/communication/tests/{id}/tasks/{taskId}", s.SubmitCommunicationTaskHandler())
	r.Get("/v1/communication/tests/{id}/result", s.CommunicationResultHandler())
	r.Get("/v1/resume/roles", s.ResumeRolesHandler())
	r.Post("/v1/resume/analyze", s.AnalyzeResumeHandler())
	r.Get("/v1/resume/analyses/{id}", s.GetResumeAnalysisHandler())
	r.Post("/v1/quick-tests", s.StartQuickTestHandler())
	r.Post("/v1/quick-tests/{id}/submit", s.SubmitQuickTestHandler())
	r.Get("/v1/users/{userId}/progress", s.ProgressHandler())
	r.Get("/v1/users/{userId}/activity", s.ActivityHandler())
	return r
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var rdr *strings.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	} else {
		rdr = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec, out
}

func errorCode(t *testing.T, body map[string]any) string {
	t.Helper()
	e, ok := body["error"].(map[string]any)
	require.True(t, ok, "missing error envelope: %v", body)
	return e["code"].(string)
}

func TestInterviewFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)

	rec, body := doJSON(t, env.router, http.MethodPost, "/v1/interviews", `{"userId":"u1","role":"Backend Developer"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["id"].(string)
	assert.Equal(t, "GREETING", body["stage"])
	assert.Equal(t, "TECHNICAL", body["type"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/interviews/"+id+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, string(interview.TypeMessage), body["type"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/interviews/"+id+"/next", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, interview.ReadinessQuestionID, body["questionId"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/interviews/"+id+"/answers",
		`{"questionId":"`+interview.ReadinessQuestionID+`","answer":"yes"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Great!", body["feedback"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/interviews/"+id+"/answers",
		`{"questionId":"`+interview.IntroQuestionID+`","answer":"I build backend systems"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10.0, body["score"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/interviews/"+id+"/end", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["attempts"])
	assert.Equal(t, 10.0, body["average"])

	rec, body = doJSON(t, env.router, http.MethodGet, "/v1/interviews/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "COMPLETED", body["status"])
	assert.Len(t, body["attempts"], 1)

	rec, body = doJSON(t, env.router, http.MethodGet, "/v1/users/u1/activity", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["activities"], 1)
}

func TestInterviewErrors(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)

	rec, body := doJSON(t, env.router, http.MethodPost, "/v1/interviews", `{"userId":"u1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, body))
	details := body["error"].(map[string]any)["details"].(map[string]any)
	assert.Equal(t, "required", details["role"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/interviews", `{"role":"Backend","type":"PANEL"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_ARGUMENT", errorCode(t, body))

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/interviews", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"].(map[string]any)["message"], "invalid json")

	rec, body = doJSON(t, env.router, http.MethodGet, "/v1/interviews/missing-id", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	rec, _ = doJSON(t, env.router, http.MethodGet, "/v1/interviews/bad$id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAcceptNegotiation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)
	req := httptest.NewRequest(http.MethodGet, "/v1/tests/config", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotAcceptable, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestTechnicalTestFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)

	rec, body := doJSON(t, env.router, http.MethodGet, "/v1/tests/config", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"java"}, body["subjects"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/tests", `{"userId":"u2","subject":"java","difficulty":"Easy"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	testID := body["testId"].(string)
	assert.Equal(t, 2.0, body["total"])
	assert.Equal(t, 10.0, body["maxScore"])
	for _, q := range body["questions"].([]any) {
		_, leaked := q.(map[string]any)["correctAnswer"]
		assert.False(t, leaked)
	}

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/tests/"+testID+"/answers", `{"questionId":"j1","selected":["a"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["isCorrect"])
	assert.Equal(t, 5.0, body["marksAwarded"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/tests/"+testID+"/answers", `{"questionId":"j1","selected":["a"]}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, body))

	rec, body = doJSON(t, env.router, http.MethodGet, "/v1/tests/"+testID+"/result", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5.0, body["score"])
	assert.Equal(t, 50.0, body["accuracy"])

	rec, body = doJSON(t, env.router, http.MethodGet, "/v1/users/u2/progress", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, body["modules"], 1)
	mod := body["modules"].([]any)[0].(map[string]any)
	assert.Equal(t, "Technical", mod["module"])
	assert.Equal(t, 1.0, mod["completions"])

	rec, _ = doJSON(t, env.router, http.MethodPost, "/v1/tests", `{"subject":"cobol","difficulty":"easy"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTechnicalTestBulkSubmit(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)
	_, body := doJSON(t, env.router, http.MethodPost, "/v1/tests", `{"subject":"java","difficulty":"easy"}`)
	testID := body["testId"].(string)

	rec, body := doJSON(t, env.router, http.MethodPost, "/v1/tests/"+testID+"/submit", `{"answers":{"j1":["a"],"j2":["b"]}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 10.0, body["score"])
	assert.Equal(t, 100.0, body["accuracy"])

	rec, _ = doJSON(t, env.router, http.MethodPost, "/v1/tests/"+testID+"/submit", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCommunicationFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)

	rec, body := doJSON(t, env.router, http.MethodPost, "/v1/communication/tests", `{"userId":"u3"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	testID := body["testId"].(string)
	assert.Len(t, body["tasks"], 1)

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/communication/tests/"+testID+"/tasks/c1",
		`{"transcript":"My name is Sam. Also I built a project because I like it.","duration":12}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, body["resultId"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/communication/tests/"+testID+"/tasks/nope",
		`{"transcript":"hi","duration":3}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, body))

	rec, _ = doJSON(t, env.router, http.MethodPost, "/v1/communication/tests/"+testID+"/tasks/c1",
		`{"transcript":"hi","duration":-1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = doJSON(t, env.router, http.MethodGet, "/v1/communication/tests/"+testID+"/result", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 10.0, body["maxScore"])
	assert.NotEmpty(t, body["performanceLabel"])

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/communication/tests/"+testID+"/tasks/c1",
		`{"transcript":"My name is Sam. Also I built a project because I like it.","duration":12}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, body))
}

func TestQuickTestFlow(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)

	rec, body := doJSON(t, env.router, http.MethodPost, "/v1/quick-tests", `{"skill":"Go","difficulty":"easy"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	testID := body["testId"].(string)
	qs := body["questions"].([]any)
	require.Len(t, qs, usecase.QuickTestSize)

	answers := map[string]string{}
	for _, q := range qs {
		m := q.(map[string]any)
		_, leaked := m["correctAnswer"]
		assert.False(t, leaked)
		answers[m["id"].(string)] = "definitely not an option"
	}
	payload, err := json.Marshal(map[string]any{"answers": answers})
	require.NoError(t, err)

	rec, body = doJSON(t, env.router, http.MethodPost, "/v1/quick-tests/"+testID+"/submit", string(payload))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, body["score"])
	assert.Equal(t, float64(usecase.QuickTestSize), body["total"])

	rec, _ = doJSON(t, env.router, http.MethodPost, "/v1/quick-tests/"+testID+"/submit", string(payload))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQuickTestRateLimited(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 1)

	rec, _ := doJSON(t, env.router, http.MethodPost, "/v1/quick-tests", `{"userId":"u9","skill":"Go","difficulty":"easy"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := doJSON(t, env.router, http.MethodPost, "/v1/quick-tests", `{"userId":"u9","skill":"Go","difficulty":"easy"}`)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RATE_LIMITED", errorCode(t, body))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func multipartRequest(t *testing.T, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile(resumeField, fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/v1/resume/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

const sampleResume = "Jane Doe\nSkills\nGo, SQL, Docker\nExperience\nBackend engineer building APIs\nEducation\nBSc Computer Science\n"

func TestAnalyzeResume_TXT(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, multipartRequest(t, map[string]string{"targetRole": "Backend Developer", "userId": "u4"}, "cv.txt", []byte(sampleResume)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out usecase.ResumeAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.AnalysisID)
	assert.Greater(t, out.Report.Score, 0)
	assert.Empty(t, env.extractor.calls, "txt must not reach the extractor")

	rec2, body := doJSON(t, env.router, http.MethodGet, "/v1/resume/analyses/"+out.AnalysisID, "")
	require.Equal(t, http.StatusOK, rec2.Code)
	assert.Equal(t, "Backend Developer", body["targetRole"])
}

func TestAnalyzeResume_PDFUsesExtractor(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)

	pdf := []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\ntrailer\n<<>>\n%%EOF\n")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, multipartRequest(t, map[string]string{"targetRole": "Backend Developer"}, "cv.pdf", pdf))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, env.extractor.calls, 1)
	assert.True(t, strings.HasPrefix(env.extractor.calls[0], "cv.pdf|"))
}

func TestAnalyzeResume_Rejections(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)

	cases := []struct {
		name   string
		req    *http.Request
		status int
	}{
		{"missing role", multipartRequest(t, nil, "cv.txt", []byte(sampleResume)), http.StatusBadRequest},
		{"missing file", multipartRequest(t, map[string]string{"targetRole": "Backend Developer"}, "", nil), http.StatusBadRequest},
		{"bad extension", multipartRequest(t, map[string]string{"targetRole": "Backend Developer"}, "cv.exe", []byte(sampleResume)), http.StatusUnsupportedMediaType},
		{"content mismatch", multipartRequest(t, map[string]string{"targetRole": "Backend Developer"}, "cv.pdf", []byte(sampleResume)), http.StatusUnsupportedMediaType},
		{"too large", multipartRequest(t, map[string]string{"targetRole": "Backend Developer"}, "cv.txt", bytes.Repeat([]byte("a"), 2<<20)), http.StatusRequestEntityTooLarge},
		{"unknown role", multipartRequest(t, map[string]string{"targetRole": "Astronaut"}, "cv.txt", []byte(sampleResume)), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			env.router.ServeHTTP(rec, tc.req)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/resume/analyze", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResumeRoles(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)
	rec, body := doJSON(t, env.router, http.MethodGet, "/v1/resume/roles", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"Backend Developer"}, body["roles"])
}

func TestActivityLimitValidation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, 0)
	rec, _ := doJSON(t, env.router, http.MethodGet, "/v1/users/u1/activity?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := doJSON(t, env.router, http.MethodGet, "/v1/users/u1/activity?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["activities"])

	rec, _ = doJSON(t, env.router, http.MethodGet, "/v1/users/bad%20id/progress", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadyzHandler(t *testing.T) {
	t.Parallel()
	okCheck := ReadinessCheck{Name: "db", Check: func(context.Context) error { return nil }}
	badCheck := ReadinessCheck{Name: "redis", Check: func(context.Context) error { return assert.AnError }}

	srv := NewServer(config.Config{}, Services{}, nil, okCheck)
	rec := httptest.NewRecorder()
	srv.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	srv = NewServer(config.Config{}, Services{}, nil, okCheck, badCheck, ReadinessCheck{Name: "skipped"})
	rec = httptest.NewRecorder()
	srv.ReadyzHandler()(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Checks []struct {
			Name string `json:"name"`
			OK   bool   `json:"ok"`
		} `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Checks, 2)
	assert.False(t, body.Checks[1].OK)

	rec = httptest.NewRecorder()
	srv.HealthzHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAllowedUploads(t *testing.T) {
	t.Parallel()
	for _, n := range []string{"cv.txt", "doc.PDF", "report.Docx"} {
		assert.True(t, allowedExt(n), n)
	}
	for _, n := range []string{"evil.exe", "img.png", "cv"} {
		assert.False(t, allowedExt(n), n)
	}
	assert.True(t, allowedMIMEFor("text/plain; charset=utf-8", "cv.txt"))
	assert.True(t, allowedMIMEFor(mimePDF, "cv.pdf"))
	assert.True(t, allowedMIMEFor(mimeDOCX, "cv.docx"))
	assert.True(t, allowedMIMEFor("application/zip", "cv.docx"))
	assert.False(t, allowedMIMEFor("text/plain", "cv.pdf"))
	assert.False(t, allowedMIMEFor("application/octet-stream", "cv.txt"))
}
