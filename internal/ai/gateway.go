package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// GatewayConfig is the immutable configuration of the upstream LLM endpoint.
type GatewayConfig struct {
	APIKey      string
	BaseURL     string
	Endpoint    string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Gateway sends assembled message sequences to the upstream completion API
// and normalizes its response shapes into raw text content.
type Gateway struct {
	cfg    GatewayConfig
	client *http.Client
	logger *zap.Logger
}

// NewGateway creates a gateway for the configured upstream endpoint.
func NewGateway(cfg GatewayConfig, logger *zap.Logger) *Gateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 180 * time.Second
	}
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// FetchOptions override the configured defaults per request. Zero values
// keep the defaults.
type FetchOptions struct {
	Temperature float64
	MaxTokens   int
}

type completionRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	IsSync      bool          `json:"is_sync"`
}

// responseEnvelope covers every response shape the upstream has been
// observed to return.
type responseEnvelope struct {
	Status    string            `json:"status"`
	RequestID string            `json:"request_id"`
	Response  []json.RawMessage `json:"response"`
	Choices   []struct {
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Content string          `json:"content"`
	Message json.RawMessage `json:"message"`
	Text    string          `json:"text"`
}

// contentExtractors are tried in a fixed precedence order; the first one
// that matches the envelope wins.
var contentExtractors = []struct {
	name    string
	extract func(env *responseEnvelope) (string, bool)
}{
	{"response-array", extractResponseArray},
	{"choices", extractChoices},
	{"content-field", func(env *responseEnvelope) (string, bool) { return env.Content, env.Content != "" }},
	{"message-field", extractMessageField},
	{"text-field", func(env *responseEnvelope) (string, bool) { return env.Text, env.Text != "" }},
}

func extractResponseArray(env *responseEnvelope) (string, bool) {
	if len(env.Response) == 0 {
		return "", false
	}
	var asString string
	if err := json.Unmarshal(env.Response[0], &asString); err == nil {
		return asString, true
	}
	var asObject struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal(env.Response[0], &asObject); err == nil {
		if asObject.Message.Content != "" {
			return asObject.Message.Content, true
		}
		if asObject.Content != "" {
			return asObject.Content, true
		}
	}
	return "", false
}

func extractChoices(env *responseEnvelope) (string, bool) {
	if len(env.Choices) == 0 {
		return "", false
	}
	return env.Choices[0].Message.Content, env.Choices[0].Message.Content != ""
}

func extractMessageField(env *responseEnvelope) (string, bool) {
	if len(env.Message) == 0 {
		return "", false
	}
	var asString string
	if err := json.Unmarshal(env.Message, &asString); err == nil {
		return asString, asString != ""
	}
	var asObject struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(env.Message, &asObject); err == nil {
		return asObject.Content, asObject.Content != ""
	}
	return "", false
}

// errorVocabulary marks content that is itself an upstream failure message.
var errorVocabulary = []string{
	"произошла ошибка",
	"ошибка",
	"error",
	"failed",
	"недоступен",
	"unavailable",
}

// Fetch sends the messages upstream and returns the raw text content of the
// reply. Failures are classified into the package error taxonomy; the
// gateway itself never retries.
func (g *Gateway) Fetch(ctx context.Context, messages []ChatMessage, opts FetchOptions) (string, error) {
	if g.cfg.APIKey == "" {
		return "", ErrUnconfigured
	}

	temperature := g.cfg.Temperature
	if opts.Temperature > 0 {
		temperature = opts.Temperature
	}
	maxTokens := g.cfg.MaxTokens
	if opts.MaxTokens > 0 {
		maxTokens = opts.MaxTokens
	}

	reqBody := completionRequest{
		Model:       g.cfg.Model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		IsSync:      true,
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := g.cfg.BaseURL + g.cfg.Endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	g.logger.Info("sending upstream request",
		zap.String("url", url),
		zap.String("model", g.cfg.Model),
		zap.Int("messages", len(messages)),
		zap.Float64("temperature", temperature),
		zap.Int("max_tokens", maxTokens),
	)

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("upstream request failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if err := g.classifyStatus(resp.StatusCode, body); err != nil {
		return "", err
	}

	var env responseEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	// The contract requires synchronous completion; an async status means
	// the upstream is misconfigured for this integration.
	if env.Status == "processing" || env.Status == "pending" {
		g.logger.Error("upstream returned async status",
			zap.String("status", env.Status),
			zap.String("request_id", env.RequestID),
		)
		return "", fmt.Errorf("%w: async status %q (request %s)", ErrUpstreamUnavailable, env.Status, env.RequestID)
	}

	content := ""
	for _, e := range contentExtractors {
		if c, ok := e.extract(&env); ok {
			g.logger.Debug("extracted content", zap.String("shape", e.name), zap.Int("length", len(c)))
			content = c
			break
		}
	}

	if strings.TrimSpace(content) == "" || content == "[]" {
		g.logger.Error("empty response content", zap.ByteString("body", body))
		return "", ErrEmptyResponse
	}

	// A short reply built from failure vocabulary is an upstream error
	// phrased as content; the length threshold separates it from a
	// legitimate short answer.
	if len(content) < 200 && matchesErrorVocabulary(content) {
		g.logger.Error("upstream returned error message", zap.String("content", content))
		return "", fmt.Errorf("%w: %s", ErrUpstreamErrorMessage, content)
	}

	return content, nil
}

func (g *Gateway) classifyStatus(statusCode int, body []byte) error {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return nil
	case statusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case statusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case statusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s%s", ErrNotFound, g.cfg.BaseURL, g.cfg.Endpoint)
	case statusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrMalformedRequest, body)
	case statusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUpstreamUnavailable, statusCode)
	default:
		return fmt.Errorf("%w: unexpected status %d: %s", ErrUpstreamUnavailable, statusCode, body)
	}
}

func matchesErrorVocabulary(content string) bool {
	lower := strings.ToLower(content)
	for _, phrase := range errorVocabulary {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
