// Package main runs one recording through the pipeline in the foreground,
// for operators replaying a submission without the HTTP server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/config"
	"github.com/aura-webinar/meeting-transcriber/internal/app"
	"github.com/aura-webinar/meeting-transcriber/internal/models"
	"github.com/aura-webinar/meeting-transcriber/internal/pipeline"
)

func main() {
	var (
		audioPath = flag.String("audio", "", "path to the recording (required)")
		email     = flag.String("email", "", "recipient address (required)")
		docType   = flag.String("type", "", "document type (default from config)")
		extra     = flag.String("context", "", "context passed to the model")
		subject   = flag.String("subject", "", "email subject (default from config)")
	)
	flag.Parse()

	logger := app.NewLogger()
	defer logger.Sync()

	if *audioPath == "" || *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	data, err := os.ReadFile(*audioPath)
	if err != nil {
		logger.Fatal("read audio", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	services, err := app.Build(ctx, *cfg, logger)
	if err != nil {
		logger.Fatal("build services", zap.Error(err))
	}
	defer services.Close()

	defaults := app.Defaults(*cfg)
	sub := models.Submission{
		ID:             uuid.NewString(),
		AudioBytes:     data,
		AudioFilename:  filepath.Base(*audioPath),
		DocumentType:   orDefault(*docType, defaults.DocumentType),
		Context:        *extra,
		RecipientEmail: *email,
		Subject:        orDefault(*subject, defaults.Subject),
		ReceivedAt:     time.Now(),
	}

	out := pipeline.New(ctx, services.Deps, logger).Run(ctx, sub)
	logger.Info("run finished",
		zap.String("submission_id", out.SubmissionID),
		zap.String("kind", out.Kind),
		zap.String("status", out.Status),
		zap.String("error", out.ErrorMessage),
	)
	if out.Kind != models.EmailKindReport || !out.Delivered() {
		os.Exit(1)
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
