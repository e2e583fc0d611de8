package executor

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/llm"
	"github.com/m-mizutani/goerr/v2"
)

const planningSystemPrompt = "You are a planning specialist for multi-agent crews. You respond with JSON only."

// DefaultCandidateCount is the number of candidate plans generated
// concurrently for the best-of-n and tree-of-thoughts algorithms.
const DefaultCandidateCount = 3

// Planning is the LLM-backed planning phase executor. It first selects a
// plan search algorithm, then generates candidate plans concurrently and
// reduces them to the best-scoring one.
type Planning struct {
	client         llm.Client
	candidateCount int
}

var _ crewforge.PlanningExecutor = &Planning{}

// Plan selects an algorithm and produces the candidate plans.
func (x *Planning) Plan(ctx context.Context, input crewforge.PlanningInput, refinement *crewforge.Refinement) (*crewforge.PlanningResult, error) {
	algorithm, err := x.selectAlgorithm(ctx, input, refinement)
	if err != nil {
		return nil, err
	}

	count := x.candidateCount
	if count < 1 || algorithm == crewforge.AlgorithmRebase {
		// rebase refines a single plan, so there is nothing to fan out.
		count = 1
	}

	candidates, err := x.generateCandidates(ctx, input, refinement, algorithm, count)
	if err != nil {
		return nil, err
	}

	winner := selectWinner(candidates)
	result := &crewforge.PlanningResult{
		SelectedAlgorithm: algorithm,
		CandidatePlans:    candidates,
		VerificationScore: winner.Score,
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func (x *Planning) selectAlgorithm(ctx context.Context, input crewforge.PlanningInput, refinement *crewforge.Refinement) (crewforge.PlanningAlgorithm, error) {
	var prompt bytes.Buffer
	if err := strategyTmpl.Execute(&prompt, strategyTemplateData{
		Task:       input.TaskDescription,
		Analysis:   toJSON(input.Analysis),
		Refinement: formatRefinement(refinement),
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render strategy prompt")
	}

	raw, err := generateJSON(ctx, x.client, planningSystemPrompt, prompt.String(), schemaStrategy)
	if err != nil {
		return "", err
	}

	var selection struct {
		SelectedAlgorithm crewforge.PlanningAlgorithm `json:"selected_algorithm"`
	}
	if err := json.Unmarshal(raw, &selection); err != nil {
		return "", goerr.Wrap(err, "failed to parse algorithm selection")
	}
	if err := selection.SelectedAlgorithm.Validate(); err != nil {
		return "", err
	}
	return selection.SelectedAlgorithm, nil
}

// generateCandidates issues the candidate generations concurrently. The
// requests are independent and side-effect free; failed candidates are
// dropped and the generation succeeds as long as at least one candidate
// survives.
func (x *Planning) generateCandidates(ctx context.Context, input crewforge.PlanningInput, refinement *crewforge.Refinement, algorithm crewforge.PlanningAlgorithm, count int) ([]crewforge.CandidatePlan, error) {
	type outcome struct {
		index     int
		candidate crewforge.CandidatePlan
		err       error
	}

	results := make(chan outcome, count)
	for i := 0; i < count; i++ {
		go func(index int) {
			candidate, err := x.generateCandidate(ctx, input, refinement, algorithm, index, count)
			results <- outcome{index: index, candidate: candidate, err: err}
		}(i)
	}

	byIndex := make([]*crewforge.CandidatePlan, count)
	var lastErr error
	for i := 0; i < count; i++ {
		r := <-results
		if r.err != nil {
			lastErr = r.err
			crewforge.LoggerFromContext(ctx).Warn("candidate generation failed",
				"index", r.index, "error", r.err)
			continue
		}
		candidate := r.candidate
		byIndex[r.index] = &candidate
	}

	candidates := make([]crewforge.CandidatePlan, 0, count)
	for _, c := range byIndex {
		if c != nil {
			candidates = append(candidates, *c)
		}
	}
	if len(candidates) == 0 {
		return nil, goerr.Wrap(lastErr, "all candidate generations failed")
	}
	return candidates, nil
}

func (x *Planning) generateCandidate(ctx context.Context, input crewforge.PlanningInput, refinement *crewforge.Refinement, algorithm crewforge.PlanningAlgorithm, index, total int) (crewforge.CandidatePlan, error) {
	var prompt bytes.Buffer
	if err := candidateTmpl.Execute(&prompt, candidateTemplateData{
		Task:       input.TaskDescription,
		Analysis:   toJSON(input.Analysis),
		Algorithm:  string(algorithm),
		Index:      index + 1,
		Total:      total,
		Refinement: formatRefinement(refinement),
	}); err != nil {
		return crewforge.CandidatePlan{}, goerr.Wrap(err, "failed to render candidate prompt")
	}

	raw, err := generateJSON(ctx, x.client, planningSystemPrompt, prompt.String(), schemaCandidate)
	if err != nil {
		return crewforge.CandidatePlan{}, err
	}

	var candidate crewforge.CandidatePlan
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return crewforge.CandidatePlan{}, goerr.Wrap(err, "failed to parse candidate plan")
	}
	return candidate, nil
}

// selectWinner reduces the candidates deterministically: highest score wins,
// and the lowest index wins ties. Candidates are already in index order.
func selectWinner(candidates []crewforge.CandidatePlan) crewforge.CandidatePlan {
	winner := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > winner.Score {
			winner = c
		}
	}
	return winner
}
