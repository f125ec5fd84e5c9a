package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode
	HTTPAddr string

	DBDriver string // sqlite|postgres|memory
	DBDSN    string

	BlobDriver     string // fs|minio
	BlobBasePath   string // for fs
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	AuthSecret     string
	TokenTTL       time.Duration
	AdminUser      string
	AdminPassHash  string // bcrypt
	AuthorUser     string
	AuthorPassHash string // bcrypt; empty disables the author login

	CORSOriginsOnline  []string
	CORSOriginsOffline []string

	ContentDir string // extra *.json sets loaded at startup

	GeminiAPIKey    string
	GeminiModel     string
	GeminiVoice     string
	SpeechRatePerS  float64
	SpeechRateBurst int

	SessionTTL    time.Duration
	SweepInterval time.Duration

	LogLevel string
	LogFile  string // empty logs to stderr only
}

// CORSOrigins returns the origin allowlist for the current mode.
func (c Config) CORSOrigins() []string {
	if c.Mode == ModeOnline {
		return c.CORSOriginsOnline
	}
	return c.CORSOriginsOffline
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeOffline))
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("db_driver", "sqlite")
	v.SetDefault("db_dsn", "")
	v.SetDefault("blob_driver", "fs")
	v.SetDefault("blob_base_path", "./data")
	v.SetDefault("minio_endpoint", "localhost:9000")
	v.SetDefault("minio_access_key", "")
	v.SetDefault("minio_secret_key", "")
	v.SetDefault("minio_bucket", "cefr-audio")
	v.SetDefault("minio_use_ssl", false)
	v.SetDefault("auth_secret", "dev-secret-change-me")
	v.SetDefault("token_ttl", "8h")
	v.SetDefault("admin_user", "admin")
	v.SetDefault("admin_pass_hash", "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji")
	v.SetDefault("author_user", "author")
	v.SetDefault("author_pass_hash", "")
	v.SetDefault("cors_origins_online", "https://cefr.mindengage.ai")
	v.SetDefault("cors_origins_offline", "http://localhost:3000,http://localhost:9002")
	v.SetDefault("content_dir", "")
	v.SetDefault("gemini_api_key", "")
	v.SetDefault("gemini_model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("gemini_voice", "Algenib")
	v.SetDefault("speech_rate_per_s", 2.0)
	v.SetDefault("speech_rate_burst", 5)
	v.SetDefault("session_ttl", "2h")
	v.SetDefault("sweep_interval", "5m")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load reads defaults, then config.yaml from dir (optional), then CEFR_*
// environment variables.
func Load(dir string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if dir != "" {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("CEFR")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	cfg := Config{
		Mode:               Mode(v.GetString("mode")),
		HTTPAddr:           v.GetString("http_addr"),
		DBDriver:           v.GetString("db_driver"),
		DBDSN:              v.GetString("db_dsn"),
		BlobDriver:         v.GetString("blob_driver"),
		BlobBasePath:       v.GetString("blob_base_path"),
		MinioEndpoint:      v.GetString("minio_endpoint"),
		MinioAccessKey:     v.GetString("minio_access_key"),
		MinioSecretKey:     v.GetString("minio_secret_key"),
		MinioBucket:        v.GetString("minio_bucket"),
		MinioUseSSL:        v.GetBool("minio_use_ssl"),
		AuthSecret:         v.GetString("auth_secret"),
		TokenTTL:           v.GetDuration("token_ttl"),
		AdminUser:          v.GetString("admin_user"),
		AdminPassHash:      v.GetString("admin_pass_hash"),
		AuthorUser:         v.GetString("author_user"),
		AuthorPassHash:     v.GetString("author_pass_hash"),
		CORSOriginsOnline:  csv(v.GetString("cors_origins_online")),
		CORSOriginsOffline: csv(v.GetString("cors_origins_offline")),
		ContentDir:         v.GetString("content_dir"),
		GeminiAPIKey:       v.GetString("gemini_api_key"),
		GeminiModel:        v.GetString("gemini_model"),
		GeminiVoice:        v.GetString("gemini_voice"),
		SpeechRatePerS:     v.GetFloat64("speech_rate_per_s"),
		SpeechRateBurst:    v.GetInt("speech_rate_burst"),
		SessionTTL:         v.GetDuration("session_ttl"),
		SweepInterval:      v.GetDuration("sweep_interval"),
		LogLevel:           v.GetString("log_level"),
		LogFile:            v.GetString("log_file"),
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.Mode {
	case ModeOffline, ModeOnline:
	default:
		return errors.Errorf("unknown mode %q", c.Mode)
	}
	switch c.DBDriver {
	case "sqlite", "postgres", "memory":
	default:
		return errors.Errorf("unknown db driver %q", c.DBDriver)
	}
	switch c.BlobDriver {
	case "fs", "minio":
	default:
		return errors.Errorf("unknown blob driver %q", c.BlobDriver)
	}
	if c.Mode == ModeOnline && len(c.AuthSecret) < 32 {
		return errors.Errorf("auth secret is too short (%d chars), must be at least 32 in online mode", len(c.AuthSecret))
	}
	if c.SpeechRateBurst < 1 {
		return errors.Errorf("speech rate burst must be at least 1, got %d", c.SpeechRateBurst)
	}
	if c.SessionTTL <= 0 || c.SweepInterval <= 0 {
		return errors.New("session ttl and sweep interval must be positive")
	}
	return nil
}

func csv(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
