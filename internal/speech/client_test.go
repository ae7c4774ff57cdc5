package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aura-webinar/meeting-transcriber/pkg/remote"
)

func testConfig(endpoint string) Config {
	return Config{
		Endpoint:     endpoint,
		Key:          "speech-key",
		Locale:       "fr-FR",
		PollInterval: 20 * time.Millisecond,
		MaxWait:      5 * time.Second,
	}
}

func TestCreate(t *testing.T) {
	var got createRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/transcriptions", r.URL.Path)
		assert.Equal(t, "speech-key", r.Header.Get(subscriptionKeyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"self":"http://speech/transcriptions/42","status":"NotStarted"}`))
	}))
	defer srv.Close()

	job, err := NewClient(testConfig(srv.URL), srv.Client(), nil).Create(context.Background(), "https://blob/audio.mp3?sig=x")
	require.NoError(t, err)

	assert.Equal(t, "http://speech/transcriptions/42", job.Self)
	assert.Equal(t, []string{"https://blob/audio.mp3?sig=x"}, got.ContentURLs)
	assert.Equal(t, "fr-FR", got.Locale)
	assert.Contains(t, got.DisplayName, "transcription-")
	assert.False(t, got.Properties.WordLevelTimestampsEnabled)
	assert.Equal(t, "DictatedAndAutomatic", got.Properties.PunctuationMode)
	assert.Equal(t, "None", got.Properties.ProfanityFilterMode)
}

func TestCreateRejectsNon201(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"Unauthorized"}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), srv.Client(), nil).Create(context.Background(), "https://blob/a.mp3")
	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
	assert.Equal(t, `Transcription failed: 401 - {"code":"Unauthorized"}`, err.Error())
}

func TestCreateMissingSelf(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), srv.Client(), nil).Create(context.Background(), "https://blob/a.mp3")
	assert.Error(t, err)
}

// statusServer answers each GET with the next scripted job body.
func statusServer(t *testing.T, bodies ...string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "speech-key", r.Header.Get(subscriptionKeyHeader))
		n := int(atomic.AddInt32(&calls, 1))
		if n > len(bodies) {
			n = len(bodies)
		}
		_, _ = w.Write([]byte(bodies[n-1]))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestPollUntilSucceeded(t *testing.T) {
	srv, calls := statusServer(t,
		`{"status":"Running"}`,
		`{"status":"Running"}`,
		`{"status":"Succeeded","links":{"files":"http://speech/transcriptions/42/files"}}`,
	)
	c := NewClient(testConfig(srv.URL), srv.Client(), nil)

	start := time.Now()
	job, err := c.Poll(context.Background(), srv.URL+"/transcriptions/42")
	require.NoError(t, err)

	assert.Equal(t, int32(3), atomic.LoadInt32(calls))
	assert.GreaterOrEqual(t, time.Since(start), 2*c.cfg.PollInterval)
	assert.Equal(t, "http://speech/transcriptions/42/files", job.FilesURL())
}

func TestPollFailed(t *testing.T) {
	srv, calls := statusServer(t, `{"status":"Failed","properties":{"error":{"code":"InvalidData","message":"Audio format not supported"}}}`)

	_, err := NewClient(testConfig(srv.URL), srv.Client(), nil).Poll(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrTranscriptionFailed)
	assert.Contains(t, err.Error(), "Audio format not supported")
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestPollFailedWithoutReason(t *testing.T) {
	srv, _ := statusServer(t, `{"status":"Failed"}`)

	_, err := NewClient(testConfig(srv.URL), srv.Client(), nil).Poll(context.Background(), srv.URL)
	require.ErrorIs(t, err, ErrTranscriptionFailed)
	assert.Contains(t, err.Error(), "Unknown error")
}

func TestPollBudgetExceeded(t *testing.T) {
	srv, _ := statusServer(t, `{"status":"Running"}`)
	cfg := testConfig(srv.URL)
	cfg.PollInterval = 10 * time.Millisecond
	cfg.MaxWait = 60 * time.Millisecond

	_, err := NewClient(cfg, srv.Client(), nil).Poll(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrPollBudgetExceeded)
}

func TestPollCallerCancel(t *testing.T) {
	srv, _ := statusServer(t, `{"status":"NotStarted"}`)
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := NewClient(testConfig(srv.URL), srv.Client(), nil).Poll(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, ErrPollBudgetExceeded))
}

func TestPollStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(testConfig(srv.URL), srv.Client(), nil).Poll(context.Background(), srv.URL)
	var statusErr *remote.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
}
