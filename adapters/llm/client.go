package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"sheetqa/internal/errors"
	"sheetqa/ports"
)

const serviceName = "llm"

// Config holds the connection settings of the model endpoint
type Config struct {
	BaseURL     string
	Model       string
	APIKey      string
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
}

// OpenAIClient implements ports.LLMClient against any OpenAI-compatible
// chat completions endpoint (OpenAI, Ollama, vLLM, LM Studio)
type OpenAIClient struct {
	config     Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewOpenAIClient creates the client. It holds one connection pool and is
// meant to be built once and shared.
func NewOpenAIClient(config Config, logger *slog.Logger) (*OpenAIClient, error) {
	config.BaseURL = strings.TrimRight(strings.TrimSpace(config.BaseURL), "/")
	if config.BaseURL == "" {
		return nil, errors.ConfigInvalid("missing model base URL")
	}
	if strings.TrimSpace(config.Model) == "" {
		return nil, errors.ConfigInvalid("missing model name")
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}
	if config.Timeout <= 0 {
		config.Timeout = 120 * time.Second
	}

	return &OpenAIClient{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.With("component", "llm_client", "model", config.Model),
	}, nil
}

// Model returns the configured model name
func (c *OpenAIClient) Model() string {
	return c.config.Model
}

// BaseURL returns the endpoint root, without trailing slash
func (c *OpenAIClient) BaseURL() string {
	return c.config.BaseURL
}

// Close releases idle connections
func (c *OpenAIClient) Close() {
	c.httpClient.CloseIdleConnections()
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaFormat struct {
	Name   string         `json:"name"`
	Schema map[string]any `json:"schema"`
	Strict bool           `json:"strict"`
}

type responseFormat struct {
	Type       string            `json:"type"`
	JSONSchema *jsonSchemaFormat `json:"json_schema,omitempty"`
}

type chatRequestBody struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponseBody struct {
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Chat implements ports.LLMClient
func (c *OpenAIClient) Chat(ctx context.Context, req ports.ChatRequest) (*ports.LLMResponse, error) {
	if len(req.Messages) == 0 {
		return nil, errors.InvalidInput("chat request has no messages")
	}

	body := chatRequestBody{
		Model:       c.config.Model,
		Messages:    make([]chatMessage, 0, len(req.Messages)),
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, chatMessage{Role: m.Role, Content: m.Content})
	}
	if rf := req.ResponseFormat; rf != nil {
		body.ResponseFormat = &responseFormat{Type: rf.Type}
		if rf.Type == "json_schema" {
			body.ResponseFormat.JSONSchema = &jsonSchemaFormat{Name: rf.SchemaName, Schema: rf.Schema, Strict: true}
		}
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal chat request")
	}

	startTime := time.Now()
	respRaw, err := c.do(ctx, http.MethodPost, "/chat/completions", raw)
	if err != nil {
		return nil, err
	}

	var decoded chatResponseBody
	if err := json.Unmarshal(respRaw, &decoded); err != nil {
		return nil, errors.ModelReplyInvalid("failed to parse chat completion envelope", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.ModelReplyInvalid("chat completion has no choices", nil)
	}

	result := &ports.LLMResponse{Content: decoded.Choices[0].Message.Content}
	if decoded.Usage != nil {
		result.Usage = &ports.UsageData{
			PromptTokens:     decoded.Usage.PromptTokens,
			CompletionTokens: decoded.Usage.CompletionTokens,
			TotalTokens:      decoded.Usage.TotalTokens,
			Model:            decoded.Model,
		}
	}

	c.logger.Info("chat completion finished",
		"elapsed", time.Since(startTime),
		"finish_reason", decoded.Choices[0].FinishReason,
		"content_bytes", len(result.Content))
	return result, nil
}

// Ping implements ports.LLMClient by listing the endpoint's models
func (c *OpenAIClient) Ping(ctx context.Context) error {
	respRaw, err := c.do(ctx, http.MethodGet, "/models", nil)
	if err != nil {
		return err
	}

	if !gjson.ValidBytes(respRaw) || !gjson.GetBytes(respRaw, "data").IsArray() {
		return errors.ExternalServiceError(serviceName, fmt.Errorf("unexpected model listing: %s", truncate(string(respRaw), 512)))
	}

	ids := gjson.GetBytes(respRaw, "data.#.id").Array()
	for _, id := range ids {
		if id.String() == c.config.Model || strings.TrimSuffix(id.String(), ":latest") == c.config.Model {
			return nil
		}
	}
	c.logger.Warn("configured model not listed by endpoint", "models", len(ids))
	return nil
}

func (c *OpenAIClient) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build model request")
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("request timeout: %w", err))
		}
		return nil, errors.ExternalServiceError(serviceName, err)
	}
	defer resp.Body.Close()

	respRaw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("read response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail := truncate(string(respRaw), 512)
		// OpenAI-style error envelope
		if msg := gjson.GetBytes(respRaw, "error.message"); msg.Exists() {
			detail = msg.String()
		}
		return nil, errors.ExternalServiceError(serviceName, fmt.Errorf("%s %s: http %d: %s", method, path, resp.StatusCode, detail))
	}
	return respRaw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
