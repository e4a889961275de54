package app

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"sheetqa/ai"
	"sheetqa/domain/answer"
	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
	"sheetqa/internal/usage"
	"sheetqa/ports"
)

// usageOperation labels question calls in the usage tracker
const usageOperation = "question"

// QueryService answers questions about a workbook
type QueryService struct {
	planner  *ai.Planner
	executor ports.QueryExecutor
	usage    *usage.Service
	logger   *slog.Logger
}

// NewQueryService creates a query service. tracker may be nil.
func NewQueryService(planner *ai.Planner, executor ports.QueryExecutor, tracker *usage.Service, logger *slog.Logger) *QueryService {
	return &QueryService{
		planner:  planner,
		executor: executor,
		usage:    tracker,
		logger:   logger.With("component", "query_service", "engine", executor.Engine()),
	}
}

// IsEmptyQuestion reports whether a question is blank and must not be
// sent to the model
func IsEmptyQuestion(question string) bool {
	return strings.TrimSpace(question) == ""
}

// Ask answers question over every sheet of wb with one model call. lang
// selects the language of the model's explanation.
func (s *QueryService) Ask(ctx context.Context, wb *workbook.Workbook, question, lang string) (*answer.Result, error) {
	if IsEmptyQuestion(question) {
		return nil, errors.InvalidInput("question is empty")
	}
	if wb.Len() == 0 {
		return nil, errors.InvalidInput("no workbook loaded")
	}
	question = strings.TrimSpace(question)

	startTime := time.Now()
	plan, tokens, err := s.planner.Plan(ctx, ai.PlanRequest{
		Question: question,
		Workbook: wb,
		Executor: s.executor,
		Language: lang,
	})
	if err != nil {
		s.logger.Warn("planning failed", "error", err)
		return nil, err
	}
	if s.usage != nil {
		s.usage.RecordUsage(usageOperation, tokens)
	}

	var result *answer.Result
	switch plan.Kind {
	case ai.PlanKindAnswer:
		result = answer.FromText(strings.TrimSpace(plan.Answer))
	default:
		result, err = s.executor.Execute(ctx, wb, plan.Query)
		if err != nil {
			s.logger.Warn("query failed", "query", plan.Query, "error", err)
			return nil, err
		}
		result.Query = plan.Query
	}
	result.Explanation = strings.TrimSpace(plan.Explanation)

	attrs := []any{"kind", result.Kind, "sheets", wb.Len(), "elapsed", time.Since(startTime)}
	if tokens != nil {
		attrs = append(attrs, "total_tokens", tokens.TotalTokens)
	}
	s.logger.Info("question answered", attrs...)
	return result, nil
}
