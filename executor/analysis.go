package executor

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/goerr/v2"
)

const analysisSystemPrompt = "You are a requirements analyst for multi-agent crews. You respond with JSON only."

// Analysis is the LLM-backed analysis phase executor.
type Analysis struct {
	client llm.Client
}

var _ crewforge.AnalysisExecutor = &Analysis{}

// Analyze runs the analysis prompt and parses the result.
func (x *Analysis) Analyze(ctx context.Context, input crewforge.AnalysisInput) (*crewforge.AnalysisResult, error) {
	var prompt bytes.Buffer
	if err := analysisTmpl.Execute(&prompt, analysisTemplateData{
		Task: input.TaskDescription,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to render analysis prompt")
	}

	raw, err := generateJSON(ctx, x.client, analysisSystemPrompt, prompt.String(), schemaAnalysis)
	if err != nil {
		return nil, err
	}

	var result crewforge.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, goerr.Wrap(err, "failed to parse analysis result")
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return &result, nil
}
