package crewforge

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// Run drives the full pipeline for one task description and returns the
// finalized crew plan. Phase failures never abort the run, they are absorbed
// by fallback substitution. The only error Run returns is the caller's own
// cancellation, observed between phase boundaries: an in-flight phase call is
// allowed to complete or time out first.
func (x *Flow) Run(ctx context.Context, taskDescription string, config GenerationConfig) (*CrewPlan, error) {
	state, err := x.run(ctx, taskDescription, config)
	if err != nil {
		return nil, err
	}
	return state.finalPlan, nil
}

// RunDebug behaves like Run but returns the full state snapshot including
// history and all intermediate results. Development use only.
func (x *Flow) RunDebug(ctx context.Context, taskDescription string, config GenerationConfig) (*Snapshot, error) {
	state, err := x.run(ctx, taskDescription, config)
	if err != nil {
		return nil, err
	}
	return state.snapshot(), nil
}

func (x *Flow) run(ctx context.Context, taskDescription string, config GenerationConfig) (*State, error) {
	if config == (GenerationConfig{}) {
		config = DefaultGenerationConfig()
	}

	state := newState(taskDescription, config)
	logger := x.logger.With("flow_id", state.id)
	ctx = ctxWithLogger(ctx, logger)

	logger.Info("flow started", "task", taskDescription, "model", config.Model)

	phase := PhaseAnalysis
	var refineTarget Phase
	var refinement *Refinement

	for {
		if err := ctx.Err(); err != nil {
			return nil, goerr.Wrap(err, "flow canceled", goerr.V("flow_id", state.id))
		}

		switch phase {
		case PhaseAnalysis:
			x.runAnalysis(ctx, state)
			phase = PhasePlanning

		case PhasePlanning:
			var ref *Refinement
			if refineTarget == PhasePlanning {
				ref, refineTarget, refinement = refinement, "", nil
			}
			x.runPlanning(ctx, state, ref)
			phase = PhaseImplementation

		case PhaseImplementation:
			var ref *Refinement
			if refineTarget == PhaseImplementation {
				ref, refineTarget, refinement = refinement, "", nil
			}
			x.runImplementation(ctx, state, ref)
			phase = PhaseEvaluation

		case PhaseEvaluation:
			x.runEvaluation(ctx, state)
			state.completed = append(state.completed, scoredImplementation{
				impl:  state.implementation,
				score: state.evaluation.Score,
			})

			d := x.decide(state, state.evaluation)
			if d.terminate {
				x.finalizeState(ctx, state, d.forced)
				return state, nil
			}

			state.iterations[d.target]++
			state.refinements++
			state.history.recordRefinement(d.target, state.iterations[d.target], state.evaluation)
			x.callHook(ctx, "refinement", func() error {
				return x.refinementHook(ctx, d.target, state.iterations[d.target], state.evaluation)
			})
			logger.Info("refinement needed",
				"target", d.target,
				"score", state.evaluation.Score,
				"iteration", state.iterations[d.target],
				"total_refinements", state.refinements)

			refineTarget = d.target
			refinement = refinementContext(state.evaluation, d.target)
			phase = d.target
		}
	}
}

func (x *Flow) runAnalysis(ctx context.Context, state *State) {
	logger := LoggerFromContext(ctx)
	attempt := state.nextAttempt(PhaseAnalysis)
	x.callHook(ctx, "phase start", func() error {
		return x.phaseStartHook(ctx, PhaseAnalysis, attempt)
	})

	input := AnalysisInput{TaskDescription: state.taskDescription, Config: state.config}
	result, err := x.executeAnalysis(ctx, input)
	if err != nil {
		result = fallbackAnalysis()
		state.history.recordFailure(PhaseAnalysis, attempt, input, err, result)
		state.analysis = result
		x.callHook(ctx, "phase fallback", func() error {
			return x.phaseFallbackHook(ctx, PhaseAnalysis, attempt, err)
		})
		logger.Warn("analysis failed, substituting fallback", "attempt", attempt, "error", err)
		return
	}

	state.history.recordSuccess(PhaseAnalysis, attempt, input, result)
	state.analysis = result
	x.callHook(ctx, "phase completed", func() error {
		return x.phaseCompletedHook(ctx, PhaseAnalysis, attempt)
	})
	logger.Info("analysis completed",
		"attempt", attempt,
		"complexity", result.Complexity,
		"process_type", result.RecommendedProcessType)
}

func (x *Flow) executeAnalysis(ctx context.Context, input AnalysisInput) (*AnalysisResult, error) {
	if x.executors.Analysis == nil {
		return nil, goerr.New("analysis executor is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, x.phaseTimeout)
	defer cancel()

	result, err := x.executors.Analysis.Analyze(ctx, input)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, goerr.Wrap(ErrInvalidResult, "analysis executor returned no result")
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func (x *Flow) runPlanning(ctx context.Context, state *State, refinement *Refinement) {
	logger := LoggerFromContext(ctx)
	attempt := state.nextAttempt(PhasePlanning)
	x.callHook(ctx, "phase start", func() error {
		return x.phaseStartHook(ctx, PhasePlanning, attempt)
	})

	input := PlanningInput{
		TaskDescription: state.taskDescription,
		Config:          state.config,
		Analysis:        state.analysis,
	}
	result, err := x.executePlanning(ctx, input, refinement)
	if err != nil {
		result = fallbackPlanning()
		state.history.recordFailure(PhasePlanning, attempt, input, err, result)
		state.planning = result
		x.callHook(ctx, "phase fallback", func() error {
			return x.phaseFallbackHook(ctx, PhasePlanning, attempt, err)
		})
		logger.Warn("planning failed, substituting fallback", "attempt", attempt, "error", err)
		return
	}

	state.history.recordSuccess(PhasePlanning, attempt, input, result)
	state.planning = result
	x.callHook(ctx, "phase completed", func() error {
		return x.phaseCompletedHook(ctx, PhasePlanning, attempt)
	})
	logger.Info("planning completed",
		"attempt", attempt,
		"algorithm", result.SelectedAlgorithm,
		"verification_score", result.VerificationScore)
}

func (x *Flow) executePlanning(ctx context.Context, input PlanningInput, refinement *Refinement) (*PlanningResult, error) {
	if x.executors.Planning == nil {
		return nil, goerr.New("planning executor is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, x.phaseTimeout)
	defer cancel()

	result, err := x.executors.Planning.Plan(ctx, input, refinement)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, goerr.Wrap(ErrInvalidResult, "planning executor returned no result")
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func (x *Flow) runImplementation(ctx context.Context, state *State, refinement *Refinement) {
	logger := LoggerFromContext(ctx)
	attempt := state.nextAttempt(PhaseImplementation)
	x.callHook(ctx, "phase start", func() error {
		return x.phaseStartHook(ctx, PhaseImplementation, attempt)
	})

	input := ImplementationInput{
		TaskDescription: state.taskDescription,
		Config:          state.config,
		Analysis:        state.analysis,
		Planning:        state.planning,
	}
	result, err := x.executeImplementation(ctx, input, refinement)
	if err != nil {
		result = fallbackImplementation(state.taskDescription)
		state.history.recordFailure(PhaseImplementation, attempt, input, err, result)
		state.implementation = result
		x.callHook(ctx, "phase fallback", func() error {
			return x.phaseFallbackHook(ctx, PhaseImplementation, attempt, err)
		})
		logger.Warn("implementation failed, substituting fallback", "attempt", attempt, "error", err)
		return
	}

	state.history.recordSuccess(PhaseImplementation, attempt, input, result)
	state.implementation = result
	x.callHook(ctx, "phase completed", func() error {
		return x.phaseCompletedHook(ctx, PhaseImplementation, attempt)
	})
	logger.Info("implementation completed",
		"attempt", attempt,
		"agents", len(result.Agents),
		"tasks", len(result.Tasks),
		"process_type", result.Workflow.ProcessType)
}

func (x *Flow) executeImplementation(ctx context.Context, input ImplementationInput, refinement *Refinement) (*ImplementationResult, error) {
	if x.executors.Implementation == nil {
		return nil, goerr.New("implementation executor is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, x.phaseTimeout)
	defer cancel()

	result, err := x.executors.Implementation.Implement(ctx, input, refinement)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, goerr.Wrap(ErrInvalidResult, "implementation executor returned no result")
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

func (x *Flow) runEvaluation(ctx context.Context, state *State) {
	logger := LoggerFromContext(ctx)
	attempt := state.nextAttempt(PhaseEvaluation)
	x.callHook(ctx, "phase start", func() error {
		return x.phaseStartHook(ctx, PhaseEvaluation, attempt)
	})

	input := EvaluationInput{
		TaskDescription: state.taskDescription,
		Config:          state.config,
		Analysis:        state.analysis,
		Planning:        state.planning,
		Implementation:  state.implementation,
	}
	result, err := x.executeEvaluation(ctx, input)
	if err != nil {
		result = fallbackEvaluation()
		state.history.recordFailure(PhaseEvaluation, attempt, input, err, result)
		state.evaluation = result
		x.callHook(ctx, "phase fallback", func() error {
			return x.phaseFallbackHook(ctx, PhaseEvaluation, attempt, err)
		})
		logger.Warn("evaluation failed, substituting fallback", "attempt", attempt, "error", err)
		return
	}

	state.history.recordSuccess(PhaseEvaluation, attempt, input, result)
	state.evaluation = result
	x.callHook(ctx, "phase completed", func() error {
		return x.phaseCompletedHook(ctx, PhaseEvaluation, attempt)
	})
	logger.Info("evaluation completed", "attempt", attempt, "score", result.Score)
}

func (x *Flow) executeEvaluation(ctx context.Context, input EvaluationInput) (*EvaluationResult, error) {
	if x.executors.Evaluation == nil {
		return nil, goerr.New("evaluation executor is not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, x.phaseTimeout)
	defer cancel()

	result, err := x.executors.Evaluation.Evaluate(ctx, input)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, goerr.Wrap(ErrInvalidResult, "evaluation executor returned no result")
	}
	if err := result.Validate(); err != nil {
		return nil, err
	}
	return result, nil
}

// finalizeState publishes the final plan. The latest implementation is
// preferred on normal termination, the best-scoring one on forced
// finalization. Implementations rejected by the finalizer (cyclic or
// dangling references) are skipped in favor of the next best valid one, with
// the locally constructed fallback as the guaranteed last resort.
func (x *Flow) finalizeState(ctx context.Context, state *State, forced bool) {
	logger := LoggerFromContext(ctx)

	var candidates []*ImplementationResult
	if !forced && state.implementation != nil {
		candidates = append(candidates, state.implementation)
	}
	candidates = append(candidates, rankedImplementations(state.completed)...)
	candidates = append(candidates, fallbackImplementation(state.taskDescription))

	for _, impl := range candidates {
		plan, err := finalize(impl)
		if err != nil {
			logger.Warn("implementation rejected by finalizer", "error", err)
			continue
		}

		state.finalPlan = plan
		x.callHook(ctx, "flow completed", func() error {
			return x.flowCompletedHook(ctx, plan)
		})
		logger.Info("flow completed",
			"plan_id", plan.ID,
			"agents", len(plan.Agents),
			"tasks", len(plan.Tasks),
			"process_type", plan.ProcessType,
			"forced", forced)
		return
	}
}

// rankedImplementations orders completed iterations by evaluation score,
// preferring the most recent on equal scores.
func rankedImplementations(completed []scoredImplementation) []*ImplementationResult {
	indices := make([]int, len(completed))
	for i := range indices {
		indices[i] = i
	}
	sort.SliceStable(indices, func(i, j int) bool {
		a, b := indices[i], indices[j]
		if completed[a].score != completed[b].score {
			return completed[a].score > completed[b].score
		}
		return a > b
	})

	impls := make([]*ImplementationResult, 0, len(indices))
	for _, idx := range indices {
		if completed[idx].impl != nil {
			impls = append(impls, completed[idx].impl)
		}
	}
	return impls
}

// callHook runs an observability hook. Hook errors are logged and never
// interrupt the flow.
func (x *Flow) callHook(ctx context.Context, name string, hook func() error) {
	if err := hook(); err != nil {
		LoggerFromContext(ctx).Warn("hook failed", "hook", name, "error", err)
	}
}
