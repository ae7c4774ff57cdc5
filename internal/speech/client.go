// Package speech drives batch transcription jobs: creation, polling and
// retrieval of the recognized text.
package speech

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/internal/models"
	"github.com/aura-webinar/meeting-transcriber/pkg/remote"
)

const subscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

var (
	// ErrTranscriptionFailed is returned when the service reports the job as Failed.
	ErrTranscriptionFailed = errors.New("transcription failed")
	// ErrPollBudgetExceeded is returned when a job is still not terminal after MaxWait.
	ErrPollBudgetExceeded = errors.New("transcription did not finish in time")
	// ErrNoTranscriptionFile is returned when a finished job lists no transcription artifact.
	ErrNoTranscriptionFile = errors.New("no transcription file found")
)

// Config holds the transcription service settings.
type Config struct {
	Endpoint     string // e.g. https://{region}.api.cognitive.microsoft.com/speechtotext/v3.2
	Key          string
	Locale       string
	PollInterval time.Duration
	MaxWait      time.Duration // zero disables the budget
}

// Client talks to the batch transcription API.
type Client struct {
	cfg     Config
	api     *remote.Client
	content *remote.Client
	logger  *zap.Logger
}

// NewClient creates a transcription client. httpClient and logger may be nil.
func NewClient(cfg Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Locale == "" {
		cfg.Locale = "fr-FR"
	}
	return &Client{
		cfg: cfg,
		api: &remote.Client{
			HTTP:    httpClient,
			Service: "Transcription",
			Header:  http.Header{subscriptionKeyHeader: {cfg.Key}},
		},
		// result content URLs are pre-signed; they take no subscription key
		content: &remote.Client{HTTP: httpClient, Service: "Transcription content"},
		logger:  logger,
	}
}

type createRequest struct {
	ContentURLs []string         `json:"contentUrls"`
	Locale      string           `json:"locale"`
	DisplayName string           `json:"displayName"`
	Properties  createProperties `json:"properties"`
}

type createProperties struct {
	WordLevelTimestampsEnabled bool   `json:"wordLevelTimestampsEnabled"`
	PunctuationMode            string `json:"punctuationMode"`
	ProfanityFilterMode        string `json:"profanityFilterMode"`
}

// Create submits a transcription job for the audio at audioURL.
func (c *Client) Create(ctx context.Context, audioURL string) (models.TranscriptionJob, error) {
	body := createRequest{
		ContentURLs: []string{audioURL},
		Locale:      c.cfg.Locale,
		DisplayName: "transcription-" + uuid.NewString(),
		Properties: createProperties{
			WordLevelTimestampsEnabled: false,
			PunctuationMode:            "DictatedAndAutomatic",
			ProfanityFilterMode:        "None",
		},
	}
	var job models.TranscriptionJob
	if err := c.api.DoJSON(ctx, http.MethodPost, c.cfg.Endpoint+"/transcriptions", body, http.StatusCreated, &job); err != nil {
		return models.TranscriptionJob{}, err
	}
	if job.Self == "" {
		return models.TranscriptionJob{}, fmt.Errorf("transcription job response has no self URL")
	}
	c.logger.Info("transcription job created", zap.String("self", job.Self), zap.String("display_name", body.DisplayName))
	return job, nil
}

// Poll fetches selfURL every PollInterval until the job is Succeeded or Failed.
// It gives up with ErrPollBudgetExceeded after MaxWait.
func (c *Client) Poll(ctx context.Context, selfURL string) (models.TranscriptionJob, error) {
	parent := ctx
	if c.cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.MaxWait)
		defer cancel()
	}

	started := time.Now()
	for attempt := 1; ; attempt++ {
		var job models.TranscriptionJob
		if err := c.api.DoJSON(ctx, http.MethodGet, selfURL, nil, http.StatusOK, &job); err != nil {
			if ctx.Err() != nil {
				return models.TranscriptionJob{}, c.stopped(parent, ctx)
			}
			return models.TranscriptionJob{}, err
		}
		c.logger.Debug("transcription status", zap.String("self", selfURL), zap.String("status", string(job.Status)), zap.Int("attempt", attempt))

		if job.Status.Terminal() {
			if job.Status == models.JobStatusFailed {
				msg := "Unknown error"
				if e := job.Properties.Error; e != nil && e.Message != "" {
					msg = e.Message
				}
				c.logger.Warn("transcription failed", zap.String("self", selfURL), zap.String("reason", msg))
				return models.TranscriptionJob{}, fmt.Errorf("%w: %s", ErrTranscriptionFailed, msg)
			}
			c.logger.Info("transcription succeeded", zap.String("self", selfURL), zap.Int("polls", attempt), zap.Duration("waited", time.Since(started)))
			return job, nil
		}

		timer := time.NewTimer(c.cfg.PollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return models.TranscriptionJob{}, c.stopped(parent, ctx)
		case <-timer.C:
		}
	}
}

// stopped tells a spent poll budget apart from the caller cancelling.
func (c *Client) stopped(parent, ctx context.Context) error {
	if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w (waited %s)", ErrPollBudgetExceeded, c.cfg.MaxWait)
	}
	return fmt.Errorf("poll transcription: %w", ctx.Err())
}
