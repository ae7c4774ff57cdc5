package report

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/aura-webinar/meeting-transcriber/internal/prompts"
)

// GeminiConfig holds the Gemini settings. APIKeys are tried in turn when one is
// rate limited.
type GeminiConfig struct {
	APIKeys   []string
	Model     string
	MaxTokens int
}

// contentGenerator is the part of *genai.Models a Gemini generator calls.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini generates documents with the Gemini API.
type Gemini struct {
	cfg    GeminiConfig
	models []contentGenerator
	logger *zap.Logger

	mu      sync.Mutex
	current int
}

// SplitKeys parses a comma-separated key list, dropping blanks.
func SplitKeys(raw string) []string {
	var keys []string
	for _, k := range strings.Split(raw, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// NewGemini creates one API client per key.
func NewGemini(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*Gemini, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(cfg.APIKeys) == 0 {
		return nil, fmt.Errorf("gemini: no API key configured")
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-2.5-flash"
	}
	models := make([]contentGenerator, 0, len(cfg.APIKeys))
	for i, key := range cfg.APIKeys {
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("create gemini client %d: %w", i+1, err)
		}
		models = append(models, client.Models)
	}
	logger.Info("Gemini generator ready", zap.String("model", cfg.Model), zap.Int("keys", len(models)))
	return &Gemini{cfg: cfg, models: models, logger: logger}, nil
}

// Generate asks the model for the document, rotating keys on quota errors.
func (g *Gemini) Generate(ctx context.Context, transcript string, docType prompts.DocumentType, extra string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: docType.Instruction()}}},
	}
	if g.cfg.MaxTokens > 0 {
		config.MaxOutputTokens = int32(g.cfg.MaxTokens)
	}
	contents := genai.Text(BuildUserMessage(transcript, extra))

	var lastErr error
	for range g.models {
		idx := g.active()
		result, err := g.models[idx].GenerateContent(ctx, g.cfg.Model, contents, config)
		if err != nil {
			if rateLimited(err) {
				g.logger.Warn("Gemini key rate limited, rotating", zap.Int("key", idx+1))
				g.rotate(idx)
				lastErr = err
				continue
			}
			return "", fmt.Errorf("generate content: %w", err)
		}
		text := candidateText(result)
		if text == "" {
			return "", ErrEmptyResponse
		}
		g.logger.Info("document generated",
			zap.String("provider", "gemini"),
			zap.String("document_type", docType.String()),
			zap.Int("chars", len(text)),
		)
		return text, nil
	}
	return "", fmt.Errorf("all gemini keys exhausted: %w", lastErr)
}

func (g *Gemini) active() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// rotate moves past key idx unless another run already did.
func (g *Gemini) rotate(idx int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == idx {
		g.current = (idx + 1) % len(g.models)
	}
}

func rateLimited(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota") || strings.Contains(msg, "RESOURCE_EXHAUSTED")
}

func candidateText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}
