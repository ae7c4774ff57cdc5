// Package app builds the pipeline collaborators from configuration. Both the
// HTTP server and the one-shot command share it.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aura-webinar/meeting-transcriber/config"
	"github.com/aura-webinar/meeting-transcriber/internal/events"
	"github.com/aura-webinar/meeting-transcriber/internal/ingest"
	"github.com/aura-webinar/meeting-transcriber/internal/notify"
	"github.com/aura-webinar/meeting-transcriber/internal/pipeline"
	"github.com/aura-webinar/meeting-transcriber/internal/report"
	"github.com/aura-webinar/meeting-transcriber/internal/speech"
	"github.com/aura-webinar/meeting-transcriber/pkg/redis"
	"github.com/aura-webinar/meeting-transcriber/pkg/storage"
)

// Services holds the built collaborators and whatever must be closed on exit.
type Services struct {
	Deps    pipeline.Deps
	closers []func() error
}

// NewLogger returns the production zap logger with ISO8601 timestamps.
func NewLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}

// Defaults returns the submission defaults from configuration.
func Defaults(cfg config.Config) ingest.Defaults {
	return ingest.Defaults{
		DocumentType: cfg.Pipeline.DefaultDocumentType,
		Subject:      cfg.Pipeline.DefaultSubject,
	}
}

// NewHTTPServer wraps handler in a server using the configured timeouts.
// Zero read and write timeouts leave the upload body unbounded; the header
// timeout still guards against idle connections.
func NewHTTPServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: time.Duration(cfg.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(cfg.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(cfg.WriteTimeout) * time.Second,
	}
}

// Build creates the uploader, transcriber, generator, notifier and event
// publisher selected by cfg.
func Build(ctx context.Context, cfg config.Config, logger *zap.Logger) (*Services, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Services{}
	httpClient := &http.Client{Timeout: cfg.Pipeline.HTTPTimeout}

	uploader, err := newUploader(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}
	generator, err := newGenerator(ctx, cfg, httpClient, logger)
	if err != nil {
		return nil, err
	}

	s.Deps = pipeline.Deps{
		Uploader: uploader,
		Transcriber: speech.NewClient(speech.Config{
			Endpoint:     cfg.Speech.SpeechEndpoint(),
			Key:          cfg.Speech.Key,
			Locale:       cfg.Speech.Locale,
			PollInterval: cfg.Pipeline.PollInterval,
			MaxWait:      cfg.Pipeline.MaxTranscriptionWait,
		}, httpClient, logger),
		Generator: generator,
		Notifier: notify.NewNotifier(notify.NewBrevo(notify.BrevoConfig{
			APIKey:      cfg.Email.APIKey,
			BaseURL:     cfg.Email.BaseURL,
			FromAddress: cfg.Email.FromAddress,
			FromName:    cfg.Email.FromName,
		}, httpClient, logger)),
		Publisher: s.newPublisher(ctx, cfg, logger),
	}
	return s, nil
}

// Close releases connections opened by Build.
func (s *Services) Close() {
	for _, c := range s.closers {
		_ = c()
	}
}

func newUploader(ctx context.Context, cfg config.Config, httpClient *http.Client, logger *zap.Logger) (pipeline.Uploader, error) {
	switch cfg.Storage.Backend {
	case config.StorageS3:
		s3Client, err := storage.NewS3(ctx, storage.S3Config{
			Region:          cfg.AWS.Region,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
			Bucket:          cfg.AWS.AudioBucket,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("s3: %w", err)
		}
		return s3Client, nil
	default:
		signer := storage.NewSASSigner(storage.SASConfig{
			Account:   cfg.Azure.Account,
			Key:       cfg.Azure.Key,
			Container: cfg.Azure.Container,
			Version:   cfg.Azure.SASVersion,
			Endpoint:  cfg.Azure.BlobEndpoint(),
		}, nil)
		return storage.NewAzureBlob(signer, httpClient, logger), nil
	}
}

func newGenerator(ctx context.Context, cfg config.Config, httpClient *http.Client, logger *zap.Logger) (report.Generator, error) {
	switch cfg.Report.Provider {
	case config.ProviderGemini:
		g, err := report.NewGemini(ctx, report.GeminiConfig{
			APIKeys:   report.SplitKeys(cfg.Report.GeminiKey),
			Model:     cfg.Report.GeminiModel,
			MaxTokens: cfg.Report.MaxTokens,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("gemini: %w", err)
		}
		return g, nil
	default:
		return report.NewAnthropic(report.AnthropicConfig{
			APIKey:    cfg.Report.AnthropicKey,
			Model:     cfg.Report.AnthropicModel,
			BaseURL:   cfg.Report.AnthropicBaseURL,
			MaxTokens: cfg.Report.MaxTokens,
		}, httpClient, logger), nil
	}
}

// newPublisher connects to Redis when configured. A connection failure only
// disables stage events.
func (s *Services) newPublisher(ctx context.Context, cfg config.Config, logger *zap.Logger) events.Publisher {
	if cfg.Redis.Addr == "" {
		return events.Nop{}
	}
	rdb, err := redis.NewClient(ctx, redis.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}, logger)
	if err != nil {
		logger.Warn("stage events disabled", zap.Error(err))
		return events.Nop{}
	}
	s.closers = append(s.closers, rdb.Close)
	return events.NewRedis(rdb.Client, logger)
}
