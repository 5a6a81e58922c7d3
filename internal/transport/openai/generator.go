package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/docly-ai/texforge/internal/domain"
	"github.com/docly-ai/texforge/internal/metrics"
)

// Generator is a text generation provider using the OpenAI-compatible chat
// completions API. Every call runs under a per-attempt timeout with a bounded
// retry policy; the model round trip is otherwise a plain blocking request.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	maxRetries  int
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
	TimeoutSec  int
	MaxRetries  int
	Logger      *zap.Logger
}

// retryBackoff is the delay between generation attempts.
const retryBackoff = 2 * time.Second

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		maxRetries:  cfg.MaxRetries,
		logger:      cfg.Logger,
	}
}

// Generate implements domain.Generator. Failures are wrapped with context and
// retried up to MaxRetries times with a fixed backoff before surfacing.
func (g *Generator) Generate(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			metrics.GenerationRetriesTotal.WithLabelValues(g.model).Inc()
			g.logger.Warn("Retrying generation call",
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			select {
			case <-ctx.Done():
				return domain.GenerationResult{}, fmt.Errorf("generation canceled: %w", ctx.Err())
			case <-time.After(retryBackoff):
			}
		}

		result, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			break
		}
	}

	return domain.GenerationResult{}, fmt.Errorf("model call failed after %d attempts: %w",
		g.maxRetries+1, lastErr)
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (domain.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return domain.GenerationResult{}, parseAPIError("generation", err, domain.ErrGenerationFailed)
	}

	if len(resp.Choices) == 0 {
		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
		return domain.GenerationResult{}, fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(duration.Seconds())
	metrics.GenerationTokensTotal.WithLabelValues(g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.GenerationTokensTotal.WithLabelValues(g.model, "completion").Add(float64(resp.Usage.CompletionTokens))

	g.logger.Debug("Generation request completed",
		zap.String("model", g.model),
		zap.Duration("duration", duration),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return domain.GenerationResult{
		Text:             resp.Choices[0].Message.Content,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
	}, nil
}
