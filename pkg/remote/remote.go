// Package remote holds the pieces shared by every outbound API client.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// maxErrorBody caps how much of an upstream error body is kept for diagnostics.
const maxErrorBody = 64 * 1024

// StatusError is returned when an upstream service answers with an unexpected status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

// Error formats the status and response body.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %d - %s", e.Service, e.StatusCode, e.Body)
}

// NewStatusError reads (a bounded prefix of) the response body into a StatusError.
func NewStatusError(service string, resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Service:    service,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(b)),
	}
}

// Client sends JSON requests and checks the expected status.
type Client struct {
	HTTP    *http.Client
	Service string
	Header  http.Header
}

// DoJSON sends method to url with an optional JSON body and decodes the response
// into out when the status equals want. out may be nil.
func (c *Client) DoJSON(ctx context.Context, method, url string, in any, want int, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", c.Service, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", c.Service, err)
	}
	for k, vs := range c.Header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", c.Service, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != want {
		return NewStatusError(c.Service, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", c.Service, err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}
