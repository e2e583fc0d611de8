package crewforge

// decision is the outcome of the refinement controller for one evaluation.
type decision struct {
	terminate bool

	// forced is set when termination happens because an iteration cap was
	// reached, in which case finalization uses the best implementation seen
	// so far instead of the latest one.
	forced bool

	target Phase
}

// decide applies the refinement rule to the latest evaluation:
//  1. A score at or above the threshold terminates the flow.
//  2. Otherwise the target is the phase most frequently tagged by the
//     evaluation feedback among planning and implementation. Analysis tags
//     are folded into the chosen phase's refinement context instead of
//     re-running analysis. Ties prefer implementation, the cheaper phase.
//  3. Reaching the per-phase cap or the global re-entry cap forces
//     finalization on the best-scoring implementation so far.
func (x *Flow) decide(state *State, eval *EvaluationResult) decision {
	if eval.Score >= x.scoreThreshold {
		return decision{terminate: true}
	}

	planningTags, implementationTags := countTargetTags(eval)
	if planningTags == 0 && implementationTags == 0 {
		// No refinement signal, proceed with the current results.
		return decision{terminate: true}
	}

	target := PhaseImplementation
	if planningTags > implementationTags {
		target = PhasePlanning
	}

	if state.iterationCount(target) >= x.maxPhaseIterations || state.refinements >= x.maxRefinements {
		return decision{terminate: true, forced: true}
	}

	return decision{target: target}
}

// countTargetTags counts how often each refinable phase is named by the
// evaluation's weaknesses and recommendations.
func countTargetTags(eval *EvaluationResult) (planning, implementation int) {
	count := func(target Phase) {
		switch target {
		case PhasePlanning:
			planning++
		case PhaseImplementation:
			implementation++
		}
	}
	for _, w := range eval.Weaknesses {
		count(w.Target)
	}
	for _, r := range eval.Recommendations {
		count(r.Target)
	}
	return planning, implementation
}

// refinementContext collects the feedback passed into the re-run of the
// target phase. Analysis-tagged items are folded in alongside the target's
// own items.
func refinementContext(eval *EvaluationResult, target Phase) *Refinement {
	ref := &Refinement{}
	for _, w := range eval.Weaknesses {
		if w.Target == target || w.Target == PhaseAnalysis {
			ref.Weaknesses = append(ref.Weaknesses, w)
		}
	}
	for _, r := range eval.Recommendations {
		if r.Target == target || r.Target == PhaseAnalysis {
			ref.Recommendations = append(ref.Recommendations, r)
		}
	}
	return ref
}
