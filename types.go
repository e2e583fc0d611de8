package crewforge

import (
	"github.com/m-mizutani/goerr/v2"
)

// Phase identifies one of the four reasoning stages of the flow.
type Phase string

const (
	PhaseAnalysis       Phase = "analysis"
	PhasePlanning       Phase = "planning"
	PhaseImplementation Phase = "implementation"
	PhaseEvaluation     Phase = "evaluation"
)

// ProcessType is the execution style of the generated crew.
type ProcessType string

const (
	ProcessSequential   ProcessType = "sequential"
	ProcessHierarchical ProcessType = "hierarchical"
)

func (x ProcessType) Validate() error {
	switch x {
	case ProcessSequential, ProcessHierarchical:
		return nil
	}
	return goerr.Wrap(ErrInvalidResult, "unknown process type", goerr.V("process_type", string(x)))
}

// PlanningAlgorithm is the plan search strategy selected by the planning phase.
type PlanningAlgorithm string

const (
	AlgorithmBestOfN        PlanningAlgorithm = "best-of-n"
	AlgorithmTreeOfThoughts PlanningAlgorithm = "tree-of-thoughts"
	AlgorithmRebase         PlanningAlgorithm = "rebase"
)

func (x PlanningAlgorithm) Validate() error {
	switch x {
	case AlgorithmBestOfN, AlgorithmTreeOfThoughts, AlgorithmRebase:
		return nil
	}
	return goerr.Wrap(ErrInvalidResult, "unknown planning algorithm", goerr.V("algorithm", string(x)))
}

// GenerationConfig carries generation parameters for the phase executors.
// The flow itself never interprets these values, it only passes them through.
type GenerationConfig struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
}

// DefaultGenerationConfig returns the generation parameters used when the
// caller does not specify any.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Model:       "gpt-4o",
		Temperature: 0.7,
	}
}

// AnalysisResult is the output of the analysis phase.
type AnalysisResult struct {
	Constraints            []string    `json:"constraints"`
	Complexity             int         `json:"complexity"`
	DomainKnowledge        []string    `json:"domain_knowledge"`
	RecommendedProcessType ProcessType `json:"recommended_process_type"`
}

func (x *AnalysisResult) Validate() error {
	if x.Complexity < 1 || x.Complexity > 10 {
		return goerr.Wrap(ErrInvalidResult, "complexity must be in range 1-10", goerr.V("complexity", x.Complexity))
	}
	return x.RecommendedProcessType.Validate()
}

// CandidatePlan is a single plan sketch produced by the planning phase.
type CandidatePlan struct {
	Name     string   `json:"name"`
	Approach string   `json:"approach"`
	Steps    []string `json:"steps"`
	Score    float64  `json:"score"`
}

// PlanningResult is the output of the planning phase.
type PlanningResult struct {
	SelectedAlgorithm PlanningAlgorithm `json:"selected_algorithm"`
	CandidatePlans    []CandidatePlan   `json:"candidate_plans"`
	VerificationScore float64           `json:"verification_score"`
}

func (x *PlanningResult) Validate() error {
	if err := x.SelectedAlgorithm.Validate(); err != nil {
		return err
	}
	if x.VerificationScore < 0 || x.VerificationScore > 10 {
		return goerr.Wrap(ErrInvalidResult, "verification score must be in range 0-10", goerr.V("score", x.VerificationScore))
	}
	return nil
}

// AgentSpec describes a single agent of the generated crew.
type AgentSpec struct {
	Name         string   `json:"name"`
	Role         string   `json:"role"`
	Goal         string   `json:"goal"`
	Backstory    string   `json:"backstory"`
	Capabilities []string `json:"capabilities"`
}

// TaskSpec describes a single task of the generated crew. Dependencies
// reference other tasks by name and must form an acyclic graph.
type TaskSpec struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	ExpectedOutput string   `json:"expected_output"`
	Agent          string   `json:"agent"`
	Dependencies   []string `json:"dependencies"`
}

// Workflow describes how the crew executes its tasks.
type Workflow struct {
	ProcessType ProcessType `json:"process_type"`
	Sequence    []string    `json:"sequence"`
}

// ImplementationResult is the output of the implementation phase.
type ImplementationResult struct {
	Agents   []AgentSpec `json:"agents"`
	Tasks    []TaskSpec  `json:"tasks"`
	Workflow Workflow    `json:"workflow"`
	Tools    []string    `json:"tools"`
}

func (x *ImplementationResult) Validate() error {
	if len(x.Agents) == 0 {
		return goerr.Wrap(ErrInvalidResult, "implementation has no agents")
	}
	if len(x.Tasks) == 0 {
		return goerr.Wrap(ErrInvalidResult, "implementation has no tasks")
	}
	return x.Workflow.ProcessType.Validate()
}

// Weakness is a flaw found by the evaluation phase, tagged with the phase
// that should address it.
type Weakness struct {
	Description string `json:"description"`
	Target      Phase  `json:"target"`
}

// Recommendation is an actionable suggestion from the evaluation phase,
// tagged with the phase that should apply it.
type Recommendation struct {
	Action string `json:"action"`
	Target Phase  `json:"target"`
}

// EvaluationResult is the output of the evaluation phase.
type EvaluationResult struct {
	Strengths       []string         `json:"strengths"`
	Weaknesses      []Weakness       `json:"weaknesses"`
	Recommendations []Recommendation `json:"recommendations"`
	Score           float64          `json:"score"`
}

func (x *EvaluationResult) Validate() error {
	if x.Score < 0 || x.Score > 10 {
		return goerr.Wrap(ErrInvalidResult, "evaluation score must be in range 0-10", goerr.V("score", x.Score))
	}
	return nil
}

// CrewPlan is the finalized, externally published crew configuration.
// It is never mutated after creation.
type CrewPlan struct {
	ID          string      `json:"id"`
	Agents      []AgentSpec `json:"agents"`
	Tasks       []TaskSpec  `json:"tasks"`
	ProcessType ProcessType `json:"process_type"`
}
