package ai

import (
	"context"
	"log/slog"
	"strconv"

	"sheetqa/domain/workbook"
	"sheetqa/internal/errors"
	"sheetqa/ports"
)

// Prompt template names
const (
	PromptSystem   = "system"
	PromptQuestion = "question"
)

var languageNames = map[string]string{
	"en": "English",
	"zh": "Simplified Chinese",
}

// Planner turns a question about a workbook into a Plan with one model call
type Planner struct {
	client    *StructuredClient[Plan]
	describer *SheetDescriber
	logger    *slog.Logger
}

// NewPlanner creates a planner
func NewPlanner(client *StructuredClient[Plan], describer *SheetDescriber, logger *slog.Logger) *Planner {
	return &Planner{client: client, describer: describer, logger: logger.With("component", "planner")}
}

// PlanRequest is one question together with everything the prompt needs
type PlanRequest struct {
	Question string
	Workbook *workbook.Workbook
	Executor ports.QueryExecutor
	Language string // "en" or "zh"
}

// Plan asks the model how to answer the question
func (p *Planner) Plan(ctx context.Context, req PlanRequest) (*Plan, *ports.UsageData, error) {
	rules, err := p.client.PromptManager.LoadPrompt("rules_" + req.Executor.Engine())
	if err != nil {
		return nil, nil, errors.Wrap(err, "failed to load engine rules")
	}

	language, ok := languageNames[req.Language]
	if !ok {
		language = languageNames["en"]
	}

	replacements := map[string]string{
		"DIALECT":      req.Executor.Dialect(),
		"ENGINE_RULES": rules,
		"LANGUAGE":     language,
		"SHEET_COUNT":  strconv.Itoa(req.Workbook.Len()),
		"SHEETS":       p.describer.Describe(req.Workbook, req.Executor.Bind(req.Workbook)),
		"QUESTION":     req.Question,
	}

	reply, err := p.client.GetJsonResponseFromPrompt(ctx, PromptSystem, PromptQuestion, replacements)
	if err != nil {
		return nil, nil, err
	}
	if err := reply.Value.Validate(); err != nil {
		return nil, nil, err
	}
	p.logger.Debug("plan ready", "kind", reply.Value.Kind, "query", reply.Value.Query)
	return reply.Value, reply.Usage, nil
}
