package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/mind-engage/cefr-assess/internal/audiogen"
	"github.com/mind-engage/cefr-assess/internal/config"
	"github.com/mind-engage/cefr-assess/internal/logging"
	"github.com/mind-engage/cefr-assess/internal/speech"
	"github.com/mind-engage/cefr-assess/internal/storage"
)

func main() {
	dataDir := flag.String("data", "public/data", "Directory of JSON data files with vocabulary arrays")
	reportPath := flag.String("report", "audio-verification-report.txt", "Where to write the verification report")
	mp3 := flag.Bool("mp3", false, "Transcode to MP3 with ffmpeg before storing")
	concurrency := flag.Int("concurrency", 2, "Parallel synthesis requests")
	configDir := flag.String("config", ".", "Directory holding an optional config.yaml")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if cfg.GeminiAPIKey == "" {
		fmt.Fprintf(os.Stderr, "Error: CEFR_GEMINI_API_KEY is required\n")
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx := context.Background()
	var blobs storage.BlobStore
	if cfg.BlobDriver == "minio" {
		blobs, err = storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	} else {
		blobs, err = storage.NewFSStore(cfg.BlobBasePath)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening blob store: %v\n", err)
		os.Exit(1)
	}

	g, err := speech.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiVoice)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	gen := &audiogen.Generator{
		Speech:      speech.NewService(g, speech.WithRateLimit(cfg.SpeechRatePerS, cfg.SpeechRateBurst)),
		Blobs:       blobs,
		MP3:         *mp3,
		Concurrency: *concurrency,
		Log:         log,
	}
	rep, err := gen.ProcessDir(ctx, *dataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*reportPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}
	if err := rep.WriteText(f, time.Now()); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Error writing report: %v\n", err)
		os.Exit(1)
	}
	f.Close()

	fmt.Printf("\x1b[32mOK: %d (created %d)\x1b[0m\n", len(rep.OK), len(rep.Created))
	if len(rep.Missing) > 0 {
		fmt.Fprintf(os.Stderr, "\x1b[31mMissing: %d\x1b[0m\n", len(rep.Missing))
	}
	if len(rep.Empty) > 0 {
		fmt.Fprintf(os.Stderr, "\x1b[31mEmpty: %d\x1b[0m\n", len(rep.Empty))
	}
	if len(rep.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\x1b[31mErrors: %d\x1b[0m\n", len(rep.Errors))
	}
}
