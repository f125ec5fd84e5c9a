package main

import (
	"context"
	"database/sql"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	api "github.com/mind-engage/cefr-assess/internal/api/http"
	auth "github.com/mind-engage/cefr-assess/internal/auth/middleware"
	"github.com/mind-engage/cefr-assess/internal/config"
	"github.com/mind-engage/cefr-assess/internal/content"
	"github.com/mind-engage/cefr-assess/internal/db"
	"github.com/mind-engage/cefr-assess/internal/grading"
	"github.com/mind-engage/cefr-assess/internal/logging"
	"github.com/mind-engage/cefr-assess/internal/metrics"
	"github.com/mind-engage/cefr-assess/internal/rbac"
	"github.com/mind-engage/cefr-assess/internal/session"
	"github.com/mind-engage/cefr-assess/internal/speech"
	"github.com/mind-engage/cefr-assess/internal/storage"
)

func main() {
	configDir := flag.String("config", ".", "directory holding an optional config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		zap.NewExample().Fatal("load config", zap.Error(err))
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		zap.NewExample().Fatal("init logger", zap.Error(err))
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Content ---
	var (
		sets content.Store
		dbh  *sql.DB
	)
	if cfg.DBDriver == "memory" {
		sets = content.NewInMemoryStore()
	} else {
		openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		dbh, err = db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
		cancel()
		if err != nil {
			log.Fatal("db open failed", zap.Error(err))
		}
		defer dbh.Close()
		sets = content.NewSQLStore(dbh)
	}

	grader := grading.NewGrader()
	seed, err := content.Builtin(ctx)
	if err != nil {
		log.Fatal("load built-in sets", zap.Error(err))
	}
	if cfg.ContentDir != "" {
		extra, err := content.LoadFS(ctx, os.DirFS(cfg.ContentDir), ".", grader.Comparators())
		if err != nil {
			log.Fatal("load content dir", zap.String("dir", cfg.ContentDir), zap.Error(err))
		}
		seed = append(seed, extra...)
	}
	added, err := content.Seed(ctx, sets, seed)
	if err != nil {
		log.Fatal("seed sets", zap.Error(err))
	}
	log.Info("content ready", zap.Strings("seeded", added))

	// --- Sessions ---
	var sessions *session.Store
	m := metrics.New(func() float64 { return float64(sessions.Len()) })
	sessions = session.NewStore(sets, grader,
		session.WithTTL(cfg.SessionTTL),
		session.WithSubmitHook(m.ObserveSubmit),
		session.WithSubmitHook(func(set content.Set, s session.State) {
			log.Info("session completed",
				zap.String("session", s.ID),
				zap.String("set", set.ID),
				zap.Int("correct", s.Report.Correct),
				zap.Int("total", s.Report.Total),
				zap.String("band", s.Report.Band.Label))
		}),
	)
	go sessions.RunSweeper(ctx, cfg.SweepInterval, func(n int) {
		if n > 0 {
			log.Debug("swept sessions", zap.Int("removed", n))
		}
	})

	// --- Blobs ---
	var blobs storage.BlobStore
	switch cfg.BlobDriver {
	case "minio":
		blobs, err = storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		blobs, err = storage.NewFSStore(cfg.BlobBasePath)
	}
	if err != nil {
		log.Fatal("blob store", zap.String("driver", cfg.BlobDriver), zap.Error(err))
	}

	// --- Speech (optional) ---
	var speaker api.Speaker
	if cfg.GeminiAPIKey != "" {
		g, err := speech.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiVoice)
		if err != nil {
			log.Fatal("speech", zap.Error(err))
		}
		speaker = speech.NewService(g, speech.WithRateLimit(cfg.SpeechRatePerS, cfg.SpeechRateBurst))
	} else {
		log.Warn("no gemini api key; /speech disabled")
	}

	// --- Auth ---
	accounts := auth.Accounts{
		cfg.AdminUser: {Username: cfg.AdminUser, PasswordHash: cfg.AdminPassHash, Role: rbac.RoleAdmin},
	}
	if cfg.AuthorPassHash != "" {
		accounts[cfg.AuthorUser] = auth.Account{Username: cfg.AuthorUser, PasswordHash: cfg.AuthorPassHash, Role: rbac.RoleAuthor}
	}

	deps := api.Deps{
		Log:         log,
		Auth:        auth.NewAuthService(cfg.AuthSecret, cfg.TokenTTL),
		Accounts:    accounts,
		Sets:        sets,
		Sessions:    sessions,
		Comparators: grader.Comparators(),
		Speech:      speaker,
		Blobs:       blobs,
		Metrics:     m,
		CORSOrigins: cfg.CORSOrigins(),
	}
	if dbh != nil {
		deps.DB = dbh
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("mode", string(cfg.Mode)), zap.String("db", cfg.DBDriver))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}
}
