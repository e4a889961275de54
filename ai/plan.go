package ai

import (
	"strings"

	"sheetqa/internal/errors"
)

// Plan kinds
const (
	PlanKindQuery  = "query"
	PlanKindAnswer = "answer"
)

// Plan is the model's decision for one question
type Plan struct {
	Kind        string `json:"kind" jsonschema:"enum=query,enum=answer,description=query to run a program or answer to reply directly"`
	Query       string `json:"query" jsonschema:"description=the program to run when kind is query"`
	Answer      string `json:"answer" jsonschema:"description=the direct answer when kind is answer"`
	Explanation string `json:"explanation" jsonschema:"description=short note on how the result answers the question"`
}

// Validate checks the fields the schema cannot tie to the kind
func (p *Plan) Validate() error {
	p.Query = strings.TrimSpace(p.Query)
	switch p.Kind {
	case PlanKindQuery:
		if p.Query == "" {
			return errors.ModelReplyInvalid("model chose to run a query but sent none", nil)
		}
	case PlanKindAnswer:
		if strings.TrimSpace(p.Answer) == "" {
			return errors.ModelReplyInvalid("model chose to answer directly but sent no answer", nil)
		}
	default:
		return errors.ModelReplyInvalid("unknown plan kind "+p.Kind, nil)
	}
	return nil
}
