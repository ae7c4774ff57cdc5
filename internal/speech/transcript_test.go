package speech

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/meeting-transcriber/internal/models"
)

type resultServer struct {
	*httptest.Server
	reportHits     int32
	transcriptHits int32
}

// newResultServer serves a files listing whose pages are produced by listing,
// plus the two artifact contents.
func newResultServer(t *testing.T, listing func(base string, r *http.Request) string) *resultServer {
	t.Helper()
	rs := &resultServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/transcriptions/1/files", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "speech-key", r.Header.Get(subscriptionKeyHeader))
		_, _ = w.Write([]byte(listing(rs.URL, r)))
	})
	mux.HandleFunc("/content/report.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&rs.reportHits, 1)
		_, _ = w.Write([]byte(`{"successfulTranscriptionsCount":1}`))
	})
	mux.HandleFunc("/content/transcript.json", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&rs.transcriptHits, 1)
		assert.Empty(t, r.Header.Get(subscriptionKeyHeader))
		_, _ = w.Write([]byte(`{"combinedRecognizedPhrases":[{"channel":0,"display":"Bonjour à tous."},{"channel":1,"display":"On commence."}]}`))
	})
	rs.Server = httptest.NewServer(mux)
	t.Cleanup(rs.Close)
	return rs
}

func succeededJob(base string) models.TranscriptionJob {
	return models.TranscriptionJob{
		Status: models.JobStatusSucceeded,
		Links:  models.TranscriptionLinks{Files: base + "/transcriptions/1/files"},
	}
}

func TestTranscriptSelectsTranscriptionFile(t *testing.T) {
	rs := newResultServer(t, func(base string, _ *http.Request) string {
		return fmt.Sprintf(`{"values":[
			{"name":"report.json","kind":"TranscriptionReport","links":{"contentUrl":"%[1]s/content/report.json"}},
			{"name":"transcript.json","kind":"Transcription","links":{"contentUrl":"%[1]s/content/transcript.json"}}
		]}`, base)
	})

	text, err := NewClient(testConfig(rs.URL), rs.Client(), nil).Transcript(context.Background(), succeededJob(rs.URL))
	require.NoError(t, err)

	assert.Equal(t, "Bonjour à tous.\nOn commence.", text)
	assert.Equal(t, int32(0), atomic.LoadInt32(&rs.reportHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&rs.transcriptHits))
}

func TestTranscriptFollowsNextLink(t *testing.T) {
	rs := newResultServer(t, func(base string, r *http.Request) string {
		if r.URL.Query().Get("skip") == "" {
			return fmt.Sprintf(`{"values":[{"name":"report.json","kind":"TranscriptionReport","links":{"contentUrl":"%[1]s/content/report.json"}}],
				"@nextLink":"%[1]s/transcriptions/1/files?skip=1"}`, base)
		}
		return fmt.Sprintf(`{"values":[{"name":"transcript.json","kind":"Transcription","links":{"contentUrl":"%s/content/transcript.json"}}]}`, base)
	})

	text, err := NewClient(testConfig(rs.URL), rs.Client(), nil).Transcript(context.Background(), succeededJob(rs.URL))
	require.NoError(t, err)
	assert.Equal(t, "Bonjour à tous.\nOn commence.", text)
}

func TestTranscriptNoFile(t *testing.T) {
	tests := []struct {
		name    string
		listing string
	}{
		{"empty listing", `{"values":[]}`},
		{"report only", `{"values":[{"name":"report.json","kind":"TranscriptionReport","links":{"contentUrl":"http://unused/report.json"}}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rs := newResultServer(t, func(string, *http.Request) string { return tt.listing })

			_, err := NewClient(testConfig(rs.URL), rs.Client(), nil).Transcript(context.Background(), succeededJob(rs.URL))
			assert.ErrorIs(t, err, ErrNoTranscriptionFile)
			assert.Equal(t, int32(0), atomic.LoadInt32(&rs.transcriptHits))
		})
	}
}

func TestTranscriptEmptyPhrases(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	defer srv.Close()
	mux := srv.Config.Handler.(*http.ServeMux)
	mux.HandleFunc("/transcriptions/1/files", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"values":[{"kind":"Transcription","links":{"contentUrl":"%s/c"}}]}`, srv.URL)
	})
	mux.HandleFunc("/c", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"combinedRecognizedPhrases":[]}`))
	})

	text, err := NewClient(testConfig(srv.URL), srv.Client(), nil).Transcript(context.Background(), succeededJob(srv.URL))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}
