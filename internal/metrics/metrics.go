package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/session"
)

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	RequestCounter  *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Submissions     *prometheus.CounterVec
	ScorePercent    *prometheus.HistogramVec
	SpeechRequests  *prometheus.CounterVec
	LiveSessions    prometheus.GaugeFunc
}

// New registers all collectors. liveSessions may be nil.
func New(liveSessions func() float64) *Metrics {
	if liveSessions == nil {
		liveSessions = func() float64 { return 0 }
	}
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"method", "endpoint"},
		),
		Submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cefr_submissions_total",
				Help: "Completed sessions by set and awarded band",
			},
			[]string{"set", "band"},
		),
		ScorePercent: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cefr_score_percent",
				Help:    "Rounded percentage score of completed sessions",
				Buckets: prometheus.LinearBuckets(10, 10, 10),
			},
			[]string{"set"},
		),
		SpeechRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cefr_speech_requests_total",
				Help: "Speech synthesis requests by outcome",
			},
			[]string{"outcome"},
		),
		LiveSessions: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "cefr_live_sessions",
				Help: "Sessions currently held in memory",
			},
			liveSessions,
		),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestCounter,
		m.RequestDuration,
		m.Submissions,
		m.ScorePercent,
		m.SpeechRequests,
		m.LiveSessions,
	)
	return m
}

// Middleware records request counts and latencies by route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		endpoint := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			endpoint = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.RequestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(status)).Inc()
		m.RequestDuration.WithLabelValues(r.Method, endpoint).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// ObserveSubmit is a session.SubmitHook.
func (m *Metrics) ObserveSubmit(set content.Set, s session.State) {
	if s.Report == nil {
		return
	}
	m.Submissions.WithLabelValues(set.ID, s.Report.Band.Label).Inc()
	m.ScorePercent.WithLabelValues(set.ID).Observe(float64(s.Report.Percent))
}

func (m *Metrics) ObserveSpeech(outcome string) {
	m.SpeechRequests.WithLabelValues(outcome).Inc()
}
