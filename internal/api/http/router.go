package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	auth "github.com/mind-engage/cefr-assess/internal/auth/middleware"
	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/grading"
	"github.com/mind-engage/cefr-assess/internal/logging"
	"github.com/mind-engage/cefr-assess/internal/metrics"
	"github.com/mind-engage/cefr-assess/internal/rbac"
	"github.com/mind-engage/cefr-assess/internal/session"
	"github.com/mind-engage/cefr-assess/internal/storage"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Deps struct {
	Log         *zap.Logger
	Auth        *auth.AuthService
	Accounts    auth.Accounts
	Sets        content.Store
	Sessions    *session.Store
	Comparators grading.Comparators
	Speech      Speaker // nil disables /speech
	Blobs       storage.BlobStore
	Metrics     *metrics.Metrics
	DB          Pinger // nil when content lives in memory
	CORSOrigins []string
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	if d.Log != nil {
		r.Use(logging.RequestLogger(d.Log))
	}
	r.Use(middleware.Recoverer)
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(d.Auth, d.Accounts))

	// JWT (optional for learners) → role in context → RBAC
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.With(rbac.RequireAny(rbac.PermSetView, rbac.PermSetCreate)).Get("/sets", ListSetsHandler(d.Sets))
		pr.With(rbac.Require(rbac.PermSetView)).Get("/sets/{setID}", GetSetHandler(d.Sets))
		pr.With(rbac.Require(rbac.PermSetCreate)).Post("/sets", CreateSetHandler(d.Sets, d.Comparators, d.Log))

		pr.With(rbac.Require(rbac.PermSessionCreate)).Post("/sessions", CreateSessionHandler(d.Sessions))
		pr.With(rbac.Require(rbac.PermSessionView)).Get("/sessions/{sessionID}", GetSessionHandler(d.Sessions))
		pr.With(rbac.Require(rbac.PermSessionAnswer)).Post("/sessions/{sessionID}/start", StartSessionHandler(d.Sessions))
		pr.With(rbac.Require(rbac.PermSessionAnswer)).Put("/sessions/{sessionID}/answers", SaveAnswersHandler(d.Sessions))
		pr.With(rbac.Require(rbac.PermSessionSubmit)).Post("/sessions/{sessionID}/submit", SubmitSessionHandler(d.Sessions))
		pr.With(rbac.Require(rbac.PermSessionSubmit)).Post("/sessions/{sessionID}/reset", ResetSessionHandler(d.Sessions))

		if d.Speech != nil {
			var observe func(string)
			if d.Metrics != nil {
				observe = d.Metrics.ObserveSpeech
			}
			pr.With(rbac.Require(rbac.PermSpeechSynthesize)).Post("/speech", SpeechHandler(d.Speech, observe))
		}
	})

	if d.Blobs != nil {
		r.Route("/audio", func(ar chi.Router) {
			MountAudio(ar, d.Blobs)
		})
	}

	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics.Handler())
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.DB != nil {
			if err := d.DB.PingContext(r.Context()); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(200)
	})
	return r
}
