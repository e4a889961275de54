package llm

import (
	"context"
	"sync"

	"sheetqa/ports"
)

// MockLLMClient is a scripted LLM client for tests
type MockLLMClient struct {
	Response  string // Set this for testing
	Error     error  // Set this to simulate errors
	PingError error  // Set this to simulate an unreachable endpoint

	mu        sync.Mutex
	requests  []ports.ChatRequest
	pingCalls int
}

// Chat implements ports.LLMClient
func (m *MockLLMClient) Chat(ctx context.Context, req ports.ChatRequest) (*ports.LLMResponse, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Error != nil {
		return nil, m.Error
	}
	response := m.Response
	if response == "" {
		response = `{"kind":"answer","query":"","answer":"mock answer","explanation":"mock"}`
	}
	return &ports.LLMResponse{Content: response}, nil
}

// Ping implements ports.LLMClient
func (m *MockLLMClient) Ping(ctx context.Context) error {
	m.mu.Lock()
	m.pingCalls++
	m.mu.Unlock()
	return m.PingError
}

// Requests returns every chat request received so far
func (m *MockLLMClient) Requests() []ports.ChatRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.ChatRequest(nil), m.requests...)
}

// PingCalls returns how many times Ping ran
func (m *MockLLMClient) PingCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pingCalls
}
