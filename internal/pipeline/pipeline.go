// Package pipeline sequences one submission through storage, transcription,
// report generation and email delivery, and makes sure the recipient hears
// about every failure.
package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/internal/events"
	"github.com/aura-webinar/meeting-transcriber/internal/models"
	"github.com/aura-webinar/meeting-transcriber/internal/notify"
	"github.com/aura-webinar/meeting-transcriber/internal/prompts"
	"github.com/aura-webinar/meeting-transcriber/internal/report"
	"github.com/aura-webinar/meeting-transcriber/pkg/storage"
)

// failureSendTimeout bounds the diagnostic email, which is sent even after the
// run's context is done.
const failureSendTimeout = 30 * time.Second

// ErrClosed is returned by Dispatch once shutdown has begun.
var ErrClosed = errors.New("pipeline is shutting down")

// Uploader stores the audio and returns a URL the speech service can read.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, data []byte) (models.StorageObjectRef, error)
}

// Transcriber runs a batch transcription job.
type Transcriber interface {
	Create(ctx context.Context, audioURL string) (models.TranscriptionJob, error)
	Poll(ctx context.Context, selfURL string) (models.TranscriptionJob, error)
	Transcript(ctx context.Context, job models.TranscriptionJob) (string, error)
}

// Notifier emails the outcome of a run.
type Notifier interface {
	SendReport(ctx context.Context, sub models.Submission, report string) error
	SendFailure(ctx context.Context, sub models.Submission, cause error) error
}

// Deps are the collaborators of an Orchestrator. Publisher may be nil.
type Deps struct {
	Uploader    Uploader
	Transcriber Transcriber
	Generator   report.Generator
	Notifier    Notifier
	Publisher   events.Publisher
}

// Orchestrator runs submissions. Each Dispatch starts an independent run;
// runs share nothing but the read-only collaborators.
type Orchestrator struct {
	deps   Deps
	logger *zap.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// New creates an orchestrator whose runs live under parent.
func New(parent context.Context, deps Deps, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Publisher == nil {
		deps.Publisher = events.Nop{}
	}
	ctx, cancel := context.WithCancel(parent)
	return &Orchestrator{
		deps:   deps,
		logger: logger,
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Dispatch starts a background run for sub and returns immediately.
func (o *Orchestrator) Dispatch(sub models.Submission) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closing {
		return ErrClosed
	}
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.Run(o.ctx, sub)
	}()
	return nil
}

// Shutdown stops accepting runs and waits for in-flight ones. When ctx expires
// first, remaining runs are cancelled (their failure emails still go out) and
// Shutdown waits for them to unwind before returning ctx's error.
func (o *Orchestrator) Shutdown(ctx context.Context) error {
	o.mu.Lock()
	o.closing = true
	o.mu.Unlock()

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.cancel()
		return nil
	case <-ctx.Done():
		o.logger.Warn("shutdown grace period over, cancelling in-flight runs")
		o.cancel()
		<-done
		return ctx.Err()
	}
}

// Run executes every stage for sub in order. On the first failure it sends one
// failure email to the recipient and stops. The outcome is returned for
// logging and tests; HTTP callers never see it.
func (o *Orchestrator) Run(ctx context.Context, sub models.Submission) models.NotificationOutcome {
	log := o.logger.With(zap.String("submission_id", sub.ID))
	started := o.now()
	log.Info("pipeline started",
		zap.String("filename", sub.AudioFilename),
		zap.Int("size", len(sub.AudioBytes)),
		zap.String("document_type", sub.DocumentType),
		zap.String("email", sub.RecipientEmail),
	)

	err := o.run(ctx, sub, log)
	if err == nil {
		log.Info("pipeline finished", zap.Duration("elapsed", o.now().Sub(started)))
		return o.outcome(sub, models.EmailKindReport, sub.Subject, nil, nil)
	}

	log.Error("pipeline failed", zap.Error(err), zap.Duration("elapsed", o.now().Sub(started)))
	return o.fail(ctx, sub, err, log)
}

func (o *Orchestrator) run(ctx context.Context, sub models.Submission, log *zap.Logger) error {
	docType, known := prompts.Parse(sub.DocumentType)
	if !known {
		log.Warn("unknown document type, using default", zap.String("document_type", sub.DocumentType))
	}

	var ref models.StorageObjectRef
	if err := o.stage(ctx, sub, StageUpload, log, func(ctx context.Context) (err error) {
		name := storage.ObjectName(o.now(), sub.AudioFilename)
		ref, err = o.deps.Uploader.Upload(ctx, name, storage.AudioContentType(sub.AudioFilename), sub.AudioBytes)
		return err
	}); err != nil {
		return err
	}

	var job models.TranscriptionJob
	if err := o.stage(ctx, sub, StageCreateJob, log, func(ctx context.Context) (err error) {
		job, err = o.deps.Transcriber.Create(ctx, ref.AccessURL)
		return err
	}); err != nil {
		return err
	}

	if err := o.stage(ctx, sub, StagePollJob, log, func(ctx context.Context) (err error) {
		job, err = o.deps.Transcriber.Poll(ctx, job.Self)
		return err
	}); err != nil {
		return err
	}

	var transcript string
	if err := o.stage(ctx, sub, StageTranscript, log, func(ctx context.Context) (err error) {
		transcript, err = o.deps.Transcriber.Transcript(ctx, job)
		return err
	}); err != nil {
		return err
	}

	var doc string
	if err := o.stage(ctx, sub, StageGenerate, log, func(ctx context.Context) (err error) {
		doc, err = o.deps.Generator.Generate(ctx, transcript, docType, sub.Context)
		return err
	}); err != nil {
		return err
	}

	return o.stage(ctx, sub, StageSendReport, log, func(ctx context.Context) error {
		return o.deps.Notifier.SendReport(ctx, sub, doc)
	})
}

// stage runs fn as the named stage, publishing its transitions and wrapping
// any failure in a StageError.
func (o *Orchestrator) stage(ctx context.Context, sub models.Submission, name string, log *zap.Logger, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return &StageError{Stage: name, Err: err}
	}
	o.publish(ctx, sub, name, events.StatusStarted, nil, log)
	started := o.now()

	if err := fn(ctx); err != nil {
		o.publish(ctx, sub, name, events.StatusFailed, err, log)
		return &StageError{Stage: name, Err: err}
	}

	log.Info("stage done", zap.String("stage", name), zap.Duration("elapsed", o.now().Sub(started)))
	o.publish(ctx, sub, name, events.StatusFinished, nil, log)
	return nil
}

func (o *Orchestrator) publish(ctx context.Context, sub models.Submission, stage, status string, cause error, log *zap.Logger) {
	e := events.Event{SubmissionID: sub.ID, Stage: stage, Status: status, At: o.now().Unix()}
	if cause != nil {
		e.Error = cause.Error()
	}
	if err := o.deps.Publisher.Publish(ctx, e); err != nil {
		log.Debug("stage event not published", zap.String("stage", stage), zap.Error(err))
	}
}

// fail sends the single failure email. A send error here is only logged.
func (o *Orchestrator) fail(ctx context.Context, sub models.Submission, cause error, log *zap.Logger) models.NotificationOutcome {
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), failureSendTimeout)
	defer cancel()

	subject := notify.FailureSubject(sub.Subject)
	if err := o.deps.Notifier.SendFailure(sendCtx, sub, cause); err != nil {
		log.Error("failure email not sent", zap.Error(err), zap.NamedError("cause", cause))
		return o.outcome(sub, models.EmailKindFailure, subject, cause, err)
	}
	log.Info("failure email sent", zap.String("email", sub.RecipientEmail))
	return o.outcome(sub, models.EmailKindFailure, subject, cause, nil)
}

func (o *Orchestrator) outcome(sub models.Submission, kind, subject string, cause, sendErr error) models.NotificationOutcome {
	out := models.NotificationOutcome{
		SubmissionID:   sub.ID,
		Kind:           kind,
		RecipientEmail: sub.RecipientEmail,
		Subject:        subject,
		Status:         models.NotificationSent,
		At:             o.now(),
	}
	if cause != nil {
		out.ErrorMessage = cause.Error()
	}
	if sendErr != nil {
		out.Status = models.NotificationFailed
		out.SendError = sendErr.Error()
	}
	return out
}
