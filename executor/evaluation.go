package executor

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/goerr/v2"
)

const evaluationSystemPrompt = "You are a strict reviewer of multi-agent crew designs. You respond with JSON only."

// Evaluation is the LLM-backed evaluation phase executor.
type Evaluation struct {
	client llm.Client
}

var _ crewforge.EvaluationExecutor = &Evaluation{}

// Evaluate runs the evaluation prompt and parses the result.
func (x *Evaluation) Evaluate(ctx context.Context, input crewforge.EvaluationInput) (*crewforge.EvaluationResult, error) {
	var prompt bytes.Buffer
	if err := evaluationTmpl.Execute(&prompt, evaluationTemplateData{
		Task:           input.TaskDescription,
		Analysis:       toJSON(input.Analysis),
		Planning:       toJSON(input.Planning),
		Implementation: toJSON(input.Implementation),
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to render evaluation prompt")
	}

	raw, err := generateJSON(ctx, x.client, evaluationSystemPrompt, prompt.String(), schemaEvaluation)
	if err != nil {
		return nil, err
	}

	var result crewforge.EvaluationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to parse evaluation result")
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}
