package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestHTTPMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	InitMetrics()
	r := chi.NewRouter()
	r.Use(HTTPMetricsMiddleware)
	r.Get("/v1/items/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) })

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/v1/items/{id}", http.MethodGet, "No Content"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/items/42", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("/v1/items/{id}", http.MethodGet, "No Content"))
	assert.Equal(t, before+1, after)
}

func TestHTTPMetricsMiddleware_OutsideRouter(t *testing.T) {
	InitMetrics()
	rec := httptest.NewRecorder()
	mw := HTTPMetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusAccepted) }))
	mw.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/raw", nil))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestMetricHelpers(t *testing.T) {
	InitMetrics()
	InitMetrics()

	before := testutil.ToFloat64(InterviewTransitionsTotal.WithLabelValues("MAIN", "CLOSING"))
	RecordInterviewTransition("MAIN", "CLOSING")
	assert.Equal(t, before+1, testutil.ToFloat64(InterviewTransitionsTotal.WithLabelValues("MAIN", "CLOSING")))

	before = testutil.ToFloat64(ActivityEventsTotal.WithLabelValues("Resume", "stored"))
	RecordActivity("Resume", "stored")
	assert.Equal(t, before+1, testutil.ToFloat64(ActivityEventsTotal.WithLabelValues("Resume", "stored")))

	before = testutil.ToFloat64(AIRequestsTotal.WithLabelValues("gemini", "generate", "error"))
	ObserveAIRequest("gemini", "generate", time.Millisecond, errors.New("boom"))
	assert.Equal(t, before+1, testutil.ToFloat64(AIRequestsTotal.WithLabelValues("gemini", "generate", "error")))

	ObserveEvaluation(EvalKeyword, 7.5)
	ObserveEvaluation(EvalKeyword, 11)
}
