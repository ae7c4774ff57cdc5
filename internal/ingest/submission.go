package ingest

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aura-webinar/meeting-transcriber/internal/models"
)

// Form field names accepted by /api/process.
const (
	FieldAudio   = "audio"
	FieldEmail   = "email"
	FieldType    = "type"
	FieldContext = "context"
	FieldSubject = "subject"
)

// Defaults fill optional fields left empty by the submitter.
type Defaults struct {
	DocumentType string
	Subject      string
}

// BuildSubmission validates the decoded form and builds an immutable Submission.
func BuildSubmission(form Form, defaults Defaults, now time.Time) (models.Submission, error) {
	audio, ok := form[FieldAudio]
	if !ok || !audio.IsFile() {
		return models.Submission{}, ErrMissingField
	}
	email := strings.TrimSpace(form.text(FieldEmail))
	if email == "" {
		return models.Submission{}, ErrMissingField
	}

	docType := strings.TrimSpace(form.text(FieldType))
	if docType == "" {
		docType = defaults.DocumentType
	}
	subject := strings.TrimSpace(form.text(FieldSubject))
	if subject == "" {
		subject = defaults.Subject
	}

	return models.Submission{
		ID:             uuid.NewString(),
		AudioBytes:     audio.Data,
		AudioFilename:  audio.Filename,
		DocumentType:   docType,
		Context:        strings.TrimSpace(form.text(FieldContext)),
		RecipientEmail: email,
		Subject:        subject,
		ReceivedAt:     now,
	}, nil
}

// text returns a string field's value; file parts and missing fields yield "".
func (f Form) text(name string) string {
	field, ok := f[name]
	if !ok || field.IsFile() {
		return ""
	}
	return field.Value
}
