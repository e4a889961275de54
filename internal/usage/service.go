package usage

import (
	"log/slog"
	"sync"
	"time"

	"sheetqa/ports"
)

// Totals is the token usage summed over the process lifetime
type Totals struct {
	Calls            int       `json:"calls"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	TotalTokens      int       `json:"total_tokens"`
	LastCall         time.Time `json:"last_call,omitempty"`
}

// Service tracks model token usage in memory
type Service struct {
	mu          sync.Mutex
	totals      Totals
	byOperation map[string]Totals
	now         func() time.Time
	logger      *slog.Logger
}

// NewService creates a new usage service
func NewService(logger *slog.Logger) *Service {
	return &Service{
		byOperation: make(map[string]Totals),
		now:         time.Now,
		logger:      logger.With("component", "usage"),
	}
}

// RecordUsage adds one model call. A call without usage data still
// counts; providers such as older Ollama builds omit it.
func (s *Service) RecordUsage(operationType string, usage *ports.UsageData) {
	if usage != nil && (usage.PromptTokens < 0 || usage.CompletionTokens < 0 || usage.TotalTokens < 0) {
		s.logger.Warn("invalid token counts", "operation", operationType, "usage", *usage)
		usage = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	s.totals = add(s.totals, usage, at)
	s.byOperation[operationType] = add(s.byOperation[operationType], usage, at)
}

// Totals returns the overall usage
func (s *Service) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// ByOperation returns the usage per operation type
func (s *Service) ByOperation() map[string]Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]Totals, len(s.byOperation))
	for k, v := range s.byOperation {
		out[k] = v
	}
	return out
}

func add(t Totals, usage *ports.UsageData, at time.Time) Totals {
	t.Calls++
	t.LastCall = at
	if usage == nil {
		return t
	}
	t.PromptTokens += usage.PromptTokens
	t.CompletionTokens += usage.CompletionTokens
	if usage.TotalTokens > 0 {
		t.TotalTokens += usage.TotalTokens
	} else {
		t.TotalTokens += usage.PromptTokens + usage.CompletionTokens
	}
	return t
}
