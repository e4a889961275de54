package ports

import "context"

// UsageData reports token usage returned by the model endpoint
type UsageData struct {
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	TotalTokens      int    `json:"total_tokens"`
	Model            string `json:"model"`
}

// ChatMessage is one message of a chat completion request
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat constrains the model reply. Schema is only used with
// type "json_schema".
type ResponseFormat struct {
	Type       string
	SchemaName string
	Schema     map[string]any
}

// ChatRequest is a provider-neutral chat completion request
type ChatRequest struct {
	Messages       []ChatMessage
	ResponseFormat *ResponseFormat
}

// LLMResponse is the model reply with usage data when the provider sends it
type LLMResponse struct {
	Content string
	Usage   *UsageData
}

// LLMClient is the OpenAI-compatible model endpoint
type LLMClient interface {
	// Chat sends a chat completion request
	Chat(ctx context.Context, req ChatRequest) (*LLMResponse, error)

	// Ping checks that the endpoint is reachable and lists models
	Ping(ctx context.Context) error
}
