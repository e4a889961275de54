package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"sheetqa/internal/errors"
	"sheetqa/ports"
)

// StructuredClient provides typed JSON responses from LLM calls
type StructuredClient[T any] struct {
	LLM           ports.LLMClient
	PromptManager *PromptManager
	Schema        *ReplySchema
	// StructuredOutput sends the reply schema as a json_schema response
	// format; otherwise only JSON mode is requested
	StructuredOutput bool
	logger           *slog.Logger
}

// NewStructuredClient creates a structured client for replies of type T
func NewStructuredClient[T any](llm ports.LLMClient, prompts *PromptManager, schemaName string, structuredOutput bool, logger *slog.Logger) (*StructuredClient[T], error) {
	schema, err := NewReplySchema[T](schemaName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build reply schema")
	}
	return &StructuredClient[T]{
		LLM:              llm,
		PromptManager:    prompts,
		Schema:           schema,
		StructuredOutput: structuredOutput,
		logger:           logger.With("component", "structured_client", "schema", schemaName),
	}, nil
}

// Reply is a typed model reply
type Reply[T any] struct {
	Value *T
	Raw   string
	Usage *ports.UsageData
}

// GetJsonResponseFromPrompt renders the system and user templates and gets
// a typed reply in exactly one model call
func (client *StructuredClient[T]) GetJsonResponseFromPrompt(ctx context.Context, systemPrompt, userPrompt string, replacements map[string]string) (*Reply[T], error) {
	system, err := client.PromptManager.RenderPrompt(systemPrompt, replacements)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render system prompt")
	}
	user, err := client.PromptManager.RenderPrompt(userPrompt, replacements)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render user prompt")
	}
	return client.GetJsonResponse(ctx, system, user)
}

// GetJsonResponse sends one system and one user message and parses the
// reply into T
func (client *StructuredClient[T]) GetJsonResponse(ctx context.Context, system, user string) (*Reply[T], error) {
	req := ports.ChatRequest{
		Messages: []ports.ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat: &ports.ResponseFormat{Type: "json_object"},
	}
	if client.StructuredOutput {
		req.ResponseFormat = &ports.ResponseFormat{
			Type:       "json_schema",
			SchemaName: client.Schema.Name,
			Schema:     client.Schema.Document(),
		}
	}

	client.logger.Debug("sending request", "system_chars", len(system), "user_chars", len(user))
	startTime := time.Now()
	resp, err := client.LLM.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	client.logger.Info("reply received", "elapsed", time.Since(startTime), "bytes", len(resp.Content))

	value, err := client.Parse(resp.Content)
	if err != nil {
		client.logger.Warn("reply rejected", "error", err, "content", preview(resp.Content, 500))
		return nil, err
	}
	return &Reply[T]{Value: value, Raw: resp.Content, Usage: resp.Usage}, nil
}

// Parse cleans, validates and decodes a raw reply
func (client *StructuredClient[T]) Parse(content string) (*T, error) {
	cleaned := cleanJSONContent(content)
	if cleaned == "" {
		return nil, errors.ModelReplyInvalid("model returned an empty reply", nil)
	}

	var generic any
	if err := json.Unmarshal([]byte(cleaned), &generic); err != nil {
		return nil, errors.ModelReplyInvalid("model reply is not valid JSON", err)
	}
	if problems := client.Schema.Validate(generic); len(problems) > 0 {
		return nil, errors.ModelReplyInvalid(fmt.Sprintf("model reply does not match the %s schema: %s", client.Schema.Name, strings.Join(problems, "; ")), nil)
	}

	var result T
	if err := json.Unmarshal([]byte(cleaned), &result); err != nil {
		return nil, errors.ModelReplyInvalid("failed to decode model reply", err)
	}
	return &result, nil
}

// cleanJSONContent removes markdown code blocks and chatter around JSON
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)

	// Reasoning models may emit a think block first
	if idx := strings.Index(content, "</think>"); idx >= 0 {
		content = strings.TrimSpace(content[idx+len("</think>"):])
	}

	if strings.HasPrefix(content, "```json") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	} else if strings.HasPrefix(content, "```") && strings.HasSuffix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	if strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[") {
		return content
	}

	// Drop prose before the first object and after the last one
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return strings.TrimSpace(content[start : end+1])
	}
	return content
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
