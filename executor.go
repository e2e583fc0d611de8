package crewforge

import "context"

// Refinement carries evaluation feedback into a re-run of a phase. Feedback
// tagged for the analysis phase is folded into the refinement context of the
// chosen phase instead of re-running analysis, so that previously generated
// agent and task identities stay stable.
type Refinement struct {
	Weaknesses      []Weakness       `json:"weaknesses"`
	Recommendations []Recommendation `json:"recommendations"`
}

// AnalysisInput is the input of the analysis phase.
type AnalysisInput struct {
	TaskDescription string           `json:"task_description"`
	Config          GenerationConfig `json:"config"`
}

// PlanningInput is the input of the planning phase.
type PlanningInput struct {
	TaskDescription string           `json:"task_description"`
	Config          GenerationConfig `json:"config"`
	Analysis        *AnalysisResult  `json:"analysis"`
}

// ImplementationInput is the input of the implementation phase.
type ImplementationInput struct {
	TaskDescription string           `json:"task_description"`
	Config          GenerationConfig `json:"config"`
	Analysis        *AnalysisResult  `json:"analysis"`
	Planning        *PlanningResult  `json:"planning"`
}

// EvaluationInput is the input of the evaluation phase.
type EvaluationInput struct {
	TaskDescription string                `json:"task_description"`
	Config          GenerationConfig      `json:"config"`
	Analysis        *AnalysisResult       `json:"analysis"`
	Planning        *PlanningResult       `json:"planning"`
	Implementation  *ImplementationResult `json:"implementation"`
}

// AnalysisExecutor produces an AnalysisResult for a task description.
// Implementations may take non-trivial wall-clock time and may fail either
// transiently or by returning schema-invalid output. Both failure classes are
// absorbed by the flow as a single attempt failure.
type AnalysisExecutor interface {
	Analyze(ctx context.Context, input AnalysisInput) (*AnalysisResult, error)
}

// PlanningExecutor produces a PlanningResult. On refinement re-entry the
// evaluation feedback is passed as a non-nil Refinement.
type PlanningExecutor interface {
	Plan(ctx context.Context, input PlanningInput, refinement *Refinement) (*PlanningResult, error)
}

// ImplementationExecutor produces an ImplementationResult. On refinement
// re-entry the evaluation feedback is passed as a non-nil Refinement.
type ImplementationExecutor interface {
	Implement(ctx context.Context, input ImplementationInput, refinement *Refinement) (*ImplementationResult, error)
}

// EvaluationExecutor scores an implementation and tags its weaknesses and
// recommendations with the phase that should address them.
type EvaluationExecutor interface {
	Evaluate(ctx context.Context, input EvaluationInput) (*EvaluationResult, error)
}

// Executors bundles the four phase executors injected into a Flow.
type Executors struct {
	Analysis       AnalysisExecutor
	Planning       PlanningExecutor
	Implementation ImplementationExecutor
	Evaluation     EvaluationExecutor
}
