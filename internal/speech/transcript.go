package speech

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/internal/models"
)

// FileKindTranscription marks the recognized-text artifact in a files listing
// (as opposed to the "TranscriptionReport" diagnostics file).
const FileKindTranscription = "Transcription"

// maxFilePages bounds @nextLink pagination of a files listing.
const maxFilePages = 50

type filesPage struct {
	Values   []resultFile `json:"values"`
	NextLink string       `json:"@nextLink"`
}

type resultFile struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Links struct {
		ContentURL string `json:"contentUrl"`
	} `json:"links"`
}

type transcriptContent struct {
	CombinedRecognizedPhrases []struct {
		Display string `json:"display"`
	} `json:"combinedRecognizedPhrases"`
}

// Transcript finds the job's transcription artifact, downloads it and joins
// every recognized phrase with newlines.
func (c *Client) Transcript(ctx context.Context, job models.TranscriptionJob) (string, error) {
	file, err := c.findTranscriptionFile(ctx, job.FilesURL())
	if err != nil {
		return "", err
	}

	var content transcriptContent
	if err := c.content.DoJSON(ctx, http.MethodGet, file.Links.ContentURL, nil, http.StatusOK, &content); err != nil {
		return "", err
	}
	phrases := make([]string, 0, len(content.CombinedRecognizedPhrases))
	for _, p := range content.CombinedRecognizedPhrases {
		phrases = append(phrases, p.Display)
	}
	text := strings.Join(phrases, "\n")
	c.logger.Info("transcript extracted", zap.String("file", file.Name), zap.Int("phrases", len(phrases)), zap.Int("chars", len(text)))
	return text, nil
}

func (c *Client) findTranscriptionFile(ctx context.Context, filesURL string) (resultFile, error) {
	next := filesURL
	for page := 0; next != "" && page < maxFilePages; page++ {
		var listing filesPage
		if err := c.api.DoJSON(ctx, http.MethodGet, next, nil, http.StatusOK, &listing); err != nil {
			return resultFile{}, err
		}
		for _, f := range listing.Values {
			if f.Kind == FileKindTranscription {
				return f, nil
			}
		}
		next = listing.NextLink
	}
	return resultFile{}, ErrNoTranscriptionFile
}
