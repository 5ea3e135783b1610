package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yourorg/stock-chat-service/internal/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiModel implements AnswerModel using the Gemini API
type GeminiModel struct {
	client      *genai.Client
	model       string
	timeout     time.Duration
	temperature float32
	logger      *zap.Logger
}

// NewGeminiModel creates a new Gemini-backed answer model
func NewGeminiModel(ctx context.Context, cfg config.GeminiConfig, logger *zap.Logger) (*GeminiModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize genai client: %w", err)
	}

	model := cfg.Model
	if model == "" {
		model = "gemini-2.0-flash"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &GeminiModel{
		client:      client,
		model:       model,
		timeout:     timeout,
		temperature: cfg.Temperature,
		logger:      logger,
	}, nil
}

// Generate sends a single-turn prompt and returns the model's text reply
func (m *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	genConfig := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(m.temperature),
	}

	start := time.Now()
	resp, err := m.client.Models.GenerateContent(timeoutCtx, m.model, contents, genConfig)
	if err != nil {
		return "", fmt.Errorf("content generation failed: %w", err)
	}

	var reply strings.Builder
	if resp != nil {
		for _, candidate := range resp.Candidates {
			if candidate.Content == nil {
				continue
			}
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					reply.WriteString(part.Text)
				}
			}
			if reply.Len() > 0 {
				break
			}
		}
	}

	if reply.Len() == 0 {
		return "", fmt.Errorf("no response generated from model")
	}

	m.logger.Debug("Generated model reply",
		zap.String("model", m.model),
		zap.Int("reply_length", reply.Len()),
		zap.Duration("latency", time.Since(start)))

	return reply.String(), nil
}
