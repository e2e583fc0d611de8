package executor

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/goerr/v2"
)

const implementationSystemPrompt = "You are a crew architect. You turn plans into concrete agent and task definitions. You respond with JSON only."

// Implementation is the LLM-backed implementation phase executor.
type Implementation struct {
	client llm.Client
}

var _ crewforge.ImplementationExecutor = &Implementation{}

// Implement runs the implementation prompt and parses the result.
func (x *Implementation) Implement(ctx context.Context, input crewforge.ImplementationInput, refinement *crewforge.Refinement) (*crewforge.ImplementationResult, error) {
	var prompt bytes.Buffer
	if err := implementationTmpl.Execute(&prompt, implementationTemplateData{
		Task:       input.TaskDescription,
		Analysis:   toJSON(input.Analysis),
		Planning:   toJSON(input.Planning),
		Refinement: formatRefinement(refinement),
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to render implementation prompt")
	}

	raw, err := generateJSON(ctx, x.client, implementationSystemPrompt, prompt.String(), schemaImplementation)
	if err != nil {
		return nil, err
	}

	var result crewforge.ImplementationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to parse implementation result")
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}
