package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/grading"
	"github.com/mind-engage/cefr-assess/internal/session"
)

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New(nil)
	r := chi.NewRouter()
	r.Use(m.Middleware)
	r.Get("/sessions/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/"+id, nil))
	}
	assert.Equal(t, 2.0, testutil.ToFloat64(m.RequestCounter.WithLabelValues(http.MethodGet, "/sessions/{id}", "418")))
}

func TestObserveSubmit(t *testing.T) {
	m := New(func() float64 { return 3 })
	s := session.State{Report: &grading.Report{Percent: 60, Band: grading.LevelBand{Label: "B1"}}}
	m.ObserveSubmit(content.Set{ID: "quick-assessment"}, s)
	m.ObserveSubmit(content.Set{ID: "quick-assessment"}, session.State{})
	m.ObserveSpeech("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Submissions.WithLabelValues("quick-assessment", "B1")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SpeechRequests.WithLabelValues("ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.LiveSessions))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `cefr_submissions_total{band="B1",set="quick-assessment"} 1`)
}
