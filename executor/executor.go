// Package executor provides LLM-backed implementations of the four phase
// executors. Each executor renders an embedded prompt template, requests a
// JSON response and validates the output against the schema of its phase
// before accepting it. Any schema violation surfaces as an error so that the
// flow substitutes its fallback result.
package executor

import (
	"context"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/goerr/v2"
)

// New bundles LLM-backed executors for all four phases into a
// crewforge.Executors ready to be injected into a flow.
func New(client llm.Client, options ...Option) crewforge.Executors {
	cfg := &config{
		candidateCount: DefaultCandidateCount,
	}
	for _, opt := range options {
		opt(cfg)
	}

	return crewforge.Executors{
		Analysis:       &Analysis{client: client},
		Planning:       &Planning{client: client, candidateCount: cfg.candidateCount},
		Implementation: &Implementation{client: client},
		Evaluation:     &Evaluation{client: client},
	}
}

type config struct {
	candidateCount int
}

// Option configures the executor bundle.
type Option func(*config)

// WithCandidateCount sets how many candidate plans the planning phase
// generates concurrently for the best-of-n and tree-of-thoughts algorithms.
func WithCandidateCount(n int) Option {
	return func(c *config) {
		c.candidateCount = n
	}
}

// generateJSON runs one prompt through a JSON session and returns the raw
// payload after schema validation.
func generateJSON(ctx context.Context, client llm.Client, systemPrompt, prompt, schemaName string) ([]byte, error) {
	session, err := client.NewSession(ctx,
		llm.WithSessionContentType(llm.ContentTypeJSON),
		llm.WithSessionSystemPrompt(systemPrompt),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create session")
	}

	resp, err := session.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, goerr.Wrap(err, "generation failed")
	}
	if len(resp.Texts) == 0 {
		return nil, goerr.New("no response from model")
	}

	raw := []byte(resp.Texts[0])
	if err := validateOutput(schemaName, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
