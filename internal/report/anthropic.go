package report

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/aura-webinar/meeting-transcriber/internal/prompts"
	"github.com/aura-webinar/meeting-transcriber/pkg/remote"
)

const anthropicVersion = "2023-06-01"

// AnthropicConfig holds the Messages API settings.
type AnthropicConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
}

// Anthropic generates documents through the Messages API.
type Anthropic struct {
	cfg    AnthropicConfig
	api    *remote.Client
	logger *zap.Logger
}

// NewAnthropic creates a Messages API client. httpClient and logger may be nil.
func NewAnthropic(cfg AnthropicConfig, httpClient *http.Client, logger *zap.Logger) *Anthropic {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.anthropic.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 4096
	}
	return &Anthropic{
		cfg: cfg,
		api: &remote.Client{
			HTTP:    httpClient,
			Service: "Claude",
			Header: http.Header{
				"X-Api-Key":         {cfg.APIKey},
				"Anthropic-Version": {anthropicVersion},
			},
		},
		logger: logger,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Generate sends the document type's instruction as the system prompt and the
// framed transcript as the single user message.
func (a *Anthropic) Generate(ctx context.Context, transcript string, docType prompts.DocumentType, extra string) (string, error) {
	req := messagesRequest{
		Model:     a.cfg.Model,
		MaxTokens: a.cfg.MaxTokens,
		System:    docType.Instruction(),
		Messages:  []message{{Role: "user", Content: BuildUserMessage(transcript, extra)}},
	}
	var resp messagesResponse
	if err := a.api.DoJSON(ctx, http.MethodPost, a.cfg.BaseURL+"/v1/messages", req, http.StatusOK, &resp); err != nil {
		return "", err
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			a.logger.Info("document generated",
				zap.String("provider", "anthropic"),
				zap.String("document_type", docType.String()),
				zap.String("stop_reason", resp.StopReason),
				zap.Int("chars", len(block.Text)),
			)
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}
