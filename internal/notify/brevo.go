// Package notify renders reports to HTML email and delivers them through the
// transactional email API.
package notify

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/pkg/remote"
)

// BrevoConfig holds the transactional email settings.
type BrevoConfig struct {
	APIKey      string
	BaseURL     string
	FromAddress string
	FromName    string
}

// Email is one outbound message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Brevo sends email through the /v3/smtp/email endpoint.
type Brevo struct {
	cfg    BrevoConfig
	api    *remote.Client
	logger *zap.Logger
}

// NewBrevo creates an email client. httpClient and logger may be nil.
func NewBrevo(cfg BrevoConfig, httpClient *http.Client, logger *zap.Logger) *Brevo {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.brevo.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Brevo{
		cfg: cfg,
		api: &remote.Client{
			HTTP:    httpClient,
			Service: "Brevo",
			Header:  http.Header{"Api-Key": {cfg.APIKey}},
		},
		logger: logger,
	}
}

type address struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      address   `json:"sender"`
	To          []address `json:"to"`
	Subject     string    `json:"subject"`
	HTMLContent string    `json:"htmlContent"`
}

// Send submits the message; anything but 201 is an error.
func (b *Brevo) Send(ctx context.Context, e Email) error {
	req := sendRequest{
		Sender:      address{Name: b.cfg.FromName, Email: b.cfg.FromAddress},
		To:          []address{{Email: e.To}},
		Subject:     e.Subject,
		HTMLContent: e.HTML,
	}
	if err := b.api.DoJSON(ctx, http.MethodPost, b.cfg.BaseURL+"/v3/smtp/email", req, http.StatusCreated, nil); err != nil {
		return err
	}
	b.logger.Info("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
	return nil
}
