// Package events publishes pipeline progress for operators watching a run.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "transcriber:"
	publishTimeout = 5 * time.Second
)

// Stage event statuses.
const (
	StatusStarted  = "started"
	StatusFinished = "finished"
	StatusFailed   = "failed"
)

// Event is one stage transition of a pipeline run.
type Event struct {
	SubmissionID string `json:"submission_id"`
	Stage        string `json:"stage"`
	Status       string `json:"status"`
	Error        string `json:"error,omitempty"`
	At           int64  `json:"at"`
}

// Publisher emits stage events. Publishing is best effort.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Nop drops every event.
type Nop struct{}

// Publish does nothing.
func (Nop) Publish(context.Context, Event) error { return nil }

// Channel returns the pub/sub channel of a submission.
func Channel(submissionID string) string {
	return channelPrefix + submissionID
}

// Redis publishes events on the submission's pub/sub channel.
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis creates a Redis-backed publisher.
func NewRedis(client *redis.Client, logger *zap.Logger) *Redis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Redis{client: client, logger: logger}
}

// Publish sends e to Channel(e.SubmissionID).
func (r *Redis) Publish(ctx context.Context, e Event) error {
	if e.At == 0 {
		e.At = time.Now().Unix()
	}
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := r.client.Publish(ctx, Channel(e.SubmissionID), body).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", Channel(e.SubmissionID), err)
	}
	return nil
}
