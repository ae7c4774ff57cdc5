package remote

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSONSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Key"))
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"x"}`, string(b))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":"42"}`))
	}))
	defer srv.Close()

	c := &Client{Service: "thing", Header: http.Header{"X-Key": {"secret"}}}
	var out struct {
		ID string `json:"id"`
	}
	err := c.DoJSON(context.Background(), http.MethodPost, srv.URL, map[string]string{"name": "x"}, http.StatusCreated, &out)
	require.NoError(t, err)
	assert.Equal(t, "42", out.ID)
}

func TestDoJSONUnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte("bad key\n"))
	}))
	defer srv.Close()

	c := &Client{Service: "Brevo"}
	err := c.DoJSON(context.Background(), http.MethodGet, srv.URL, nil, http.StatusOK, nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Equal(t, "Brevo failed: 401 - bad key", err.Error())
}
