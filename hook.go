package crewforge

import "context"

type (
	// PhaseStartHook is called before each phase attempt.
	PhaseStartHook func(ctx context.Context, phase Phase, attempt int) error

	// PhaseCompletedHook is called after a successful phase attempt.
	PhaseCompletedHook func(ctx context.Context, phase Phase, attempt int) error

	// PhaseFallbackHook is called when a phase attempt failed and a fallback
	// result was substituted.
	PhaseFallbackHook func(ctx context.Context, phase Phase, attempt int, err error) error

	// RefinementHook is called when the flow loops back to a phase with
	// evaluation feedback.
	RefinementHook func(ctx context.Context, target Phase, iteration int, eval *EvaluationResult) error

	// FlowCompletedHook is called once the final plan is produced.
	FlowCompletedHook func(ctx context.Context, plan *CrewPlan) error
)

func defaultPhaseStartHook(ctx context.Context, phase Phase, attempt int) error {
	return nil
}

func defaultPhaseCompletedHook(ctx context.Context, phase Phase, attempt int) error {
	return nil
}

func defaultPhaseFallbackHook(ctx context.Context, phase Phase, attempt int, err error) error {
	return nil
}

func defaultRefinementHook(ctx context.Context, target Phase, iteration int, eval *EvaluationResult) error {
	return nil
}

func defaultFlowCompletedHook(ctx context.Context, plan *CrewPlan) error {
	return nil
}
