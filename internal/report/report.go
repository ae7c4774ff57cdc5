// Package report turns a transcript into a structured markdown document using a
// generative model.
package report

import (
	"context"
	"errors"
	"strings"

	"github.com/aura-webinar/meeting-transcriber/internal/prompts"
)

// ErrEmptyResponse is returned when the model answers without any text.
var ErrEmptyResponse = errors.New("model returned no text")

// Generator produces the document for a transcript.
type Generator interface {
	Generate(ctx context.Context, transcript string, docType prompts.DocumentType, extra string) (string, error)
}

// BuildUserMessage frames the transcript and the optional submitter context.
func BuildUserMessage(transcript, extra string) string {
	var b strings.Builder
	b.WriteString("Voici la transcription. Analyse-la et génère le document structuré approprié.\n\n")
	if extra != "" {
		b.WriteString("**Contexte fourni :** ")
		b.WriteString(extra)
		b.WriteString("\n\n")
	}
	b.WriteString("---\n\n")
	b.WriteString(transcript)
	return b.String()
}
