// Package process exposes the audio submission endpoint.
package process

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/internal/ingest"
	"github.com/aura-webinar/meeting-transcriber/internal/models"
	"github.com/aura-webinar/meeting-transcriber/pkg/response"
)

// Response messages.
const (
	MsgAccepted        = "Traitement lancé"
	MsgMissingBoundary = "Missing boundary"
	MsgMissingField    = "Missing audio or email"
)

// Dispatcher starts a background pipeline run.
type Dispatcher interface {
	Dispatch(sub models.Submission) error
}

// Handler handles POST /api/process.
type Handler struct {
	dispatcher Dispatcher
	defaults   ingest.Defaults
	now        func() time.Time
	logger     *zap.Logger
}

// NewHandler creates a submission handler.
func NewHandler(dispatcher Dispatcher, defaults ingest.Defaults, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{dispatcher: dispatcher, defaults: defaults, now: time.Now, logger: logger}
}

// Register mounts the endpoint on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/api/process", h.Process)
}

// Process decodes the multipart submission and dispatches it. The response is
// sent as soon as the run is scheduled; the outcome arrives by email.
func (h *Handler) Process(c *gin.Context) {
	boundary, err := ingest.BoundaryFromContentType(c.GetHeader("Content-Type"))
	if err != nil {
		response.BadRequest(c, MsgMissingBoundary)
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn("read submission body", zap.Error(err))
		response.BadRequest(c, "could not read request body")
		return
	}
	form, err := ingest.Parse(body, boundary)
	if err != nil {
		response.BadRequest(c, badRequestMessage(err))
		return
	}
	sub, err := ingest.BuildSubmission(form, h.defaults, h.now())
	if err != nil {
		response.BadRequest(c, badRequestMessage(err))
		return
	}

	if err := h.dispatcher.Dispatch(sub); err != nil {
		h.logger.Warn("submission refused", zap.String("submission_id", sub.ID), zap.Error(err))
		response.ServiceUnavailable(c, "service is shutting down")
		return
	}
	h.logger.Info("submission accepted",
		zap.String("submission_id", sub.ID),
		zap.String("filename", sub.AudioFilename),
		zap.Int("size", len(sub.AudioBytes)),
		zap.String("document_type", sub.DocumentType),
	)
	response.Accepted(c, MsgAccepted)
}

func badRequestMessage(err error) string {
	switch {
	case errors.Is(err, ingest.ErrMissingBoundary):
		return MsgMissingBoundary
	case errors.Is(err, ingest.ErrMissingField):
		return MsgMissingField
	}
	return err.Error()
}
