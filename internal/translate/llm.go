package translate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/schema"
	"github.com/sony/gobreaker"

	"pptrans/internal/logger"
	"pptrans/internal/types"
)

// BlockSeparator delimits the individual texts of a batch inside a
// single model request and its response.
const BlockSeparator = "\n---BLOCK_SEPARATOR---\n"

// DefaultRequestTimeout bounds a single model request. A hung request
// surfaces as a transient network error and goes through the normal
// retry policy.
const DefaultRequestTimeout = 180 * time.Second

// LLMClientConfig configures the chat-model backed translation client.
type LLMClientConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // per-request timeout, 0 = DefaultRequestTimeout
}

// LLMClient translates batches through an OpenAI-compatible chat model.
// A circuit breaker sits in front of the model so that a dead endpoint
// fails fast instead of burning the retry budget of every batch.
type LLMClient struct {
	model   *openai.ChatModel
	modelID string
	breaker *gobreaker.CircuitBreaker
}

// NewLLMClient creates the client and verifies its configuration.
func NewLLMClient(ctx context.Context, cfg LLMClientConfig) (*LLMClient, error) {
	if cfg.APIKey == "" {
		return nil, types.NewAppError(types.ErrConfig, "OpenAI API key is not configured", nil)
	}
	if cfg.Model == "" {
		return nil, types.NewAppError(types.ErrConfig, "OpenAI model is not configured", nil)
	}

	modelConfig := &openai.ChatModelConfig{
		Model:   cfg.Model,
		APIKey:  cfg.APIKey,
		Timeout: resolveRequestTimeout(cfg.Timeout),
	}
	if cfg.BaseURL != "" {
		modelConfig.BaseURL = cfg.BaseURL
	}

	chatModel, err := openai.NewChatModel(ctx, modelConfig)
	if err != nil {
		return nil, types.NewAppErrorWithDetails(types.ErrConfig,
			"failed to create chat model", cfg.Model, err)
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "translation-api",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("translation circuit state changed",
				logger.String("from", from.String()),
				logger.String("to", to.String()))
		},
	})

	return &LLMClient{
		model:   chatModel,
		modelID: cfg.Model,
		breaker: breaker,
	}, nil
}

// Translate sends all texts as one prompt separated by BlockSeparator
// and splits the response back into len(texts) results.
func (c *LLMClient) Translate(ctx context.Context, texts []string, sourceLang, targetLang string) ([]any, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	prompt := strings.Join(texts, BlockSeparator)
	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generate(ctx, buildSystemPrompt(sourceLang, targetLang, len(texts)), prompt)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, types.NewAppError(types.ErrNetwork,
				"translation service unavailable", err)
		}
		return nil, classifyAPIError(err)
	}

	content := raw.(string)
	parts := splitResponse(content, len(texts))
	results := make([]any, len(parts))
	for i, p := range parts {
		results[i] = p
	}
	return results, nil
}

func (c *LLMClient) generate(ctx context.Context, system, user string) (string, error) {
	response, err := c.model.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", err
	}
	if response == nil || response.Content == "" {
		return "", fmt.Errorf("empty response from model %s", c.modelID)
	}
	return response.Content, nil
}

// Detect asks the model for the dominant language of the text and
// returns a lowercase language code.
func (c *LLMClient) Detect(ctx context.Context, text string) (string, error) {
	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.generate(ctx,
			"You are a language identifier. Reply with only the ISO 639-1 code of the dominant language of the user's text, nothing else.",
			text)
	})
	if err != nil {
		return "", classifyAPIError(err)
	}
	code := strings.ToLower(strings.TrimSpace(raw.(string)))
	if len(code) > 8 {
		return "", types.NewAppErrorWithDetails(types.ErrAPICall,
			"unexpected language detection response", code, nil)
	}
	return code, nil
}

func resolveRequestTimeout(configured time.Duration) time.Duration {
	if configured <= 0 {
		return DefaultRequestTimeout
	}
	return configured
}

func buildSystemPrompt(sourceLang, targetLang string, blockCount int) string {
	source := "the detected source language"
	if sourceLang != "" && sourceLang != "auto" {
		source = sourceLang
	}
	return fmt.Sprintf(`You are a professional translator for presentation slides.

CRITICAL RULES:
1. Translate the text from %s to %s accurately and concisely, in a register suitable for slides.
2. Preserve numbers, product names, placeholders and special characters exactly as they are.
3. Do not add any explanations or notes. Output only the translated text.
4. The input contains %d text blocks separated by "%s". Your output MUST contain exactly the same number of blocks separated by the same separator, in the same order.`,
		source, targetLang, blockCount, strings.TrimSpace(BlockSeparator))
}

// splitResponse splits the model output on BlockSeparator and coerces it
// to exactly expectedCount parts. Missing parts become empty strings;
// surplus parts are merged into the last slot, which covers a separator
// leaking into translated text.
func splitResponse(content string, expectedCount int) []string {
	parts := strings.Split(content, strings.TrimSpace(BlockSeparator))

	if len(parts) < expectedCount {
		padded := make([]string, expectedCount)
		for i := range parts {
			padded[i] = strings.TrimSpace(parts[i])
		}
		return padded
	}

	result := make([]string, expectedCount)
	for i := 0; i < expectedCount-1; i++ {
		result[i] = strings.TrimSpace(parts[i])
	}
	result[expectedCount-1] = strings.TrimSpace(
		strings.Join(parts[expectedCount-1:], strings.TrimSpace(BlockSeparator)))
	return result
}

// classifyAPIError maps transport errors onto the error taxonomy so the
// retry policy can tell rate limits and auth failures apart.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "401") || strings.Contains(msg, "403") ||
		strings.Contains(msg, "unauthorized") || strings.Contains(msg, "invalid api key") ||
		strings.Contains(msg, "authentication"):
		return types.NewAppError(types.ErrAuth, "translation service rejected the credentials", err)
	case strings.Contains(msg, "429") || strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests"):
		return types.NewAppError(types.ErrAPIRateLimit, "translation service rate limit reached", err)
	case strings.Contains(msg, "connection") || strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "network") || strings.Contains(msg, "eof") ||
		strings.Contains(msg, "reset by peer") || strings.Contains(msg, "no such host"):
		return types.NewAppError(types.ErrNetwork, "cannot reach translation service", err)
	default:
		return types.NewAppError(types.ErrAPICall, "translation request failed", err)
	}
}
