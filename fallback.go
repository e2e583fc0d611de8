package crewforge

// Fallback results are locally constructed, schema-valid placeholders
// substituted when a phase executor fails or returns invalid output. They
// keep the pipeline moving so that a run always produces a CrewPlan.

func fallbackAnalysis() *AnalysisResult {
	return &AnalysisResult{
		Constraints:            []string{},
		Complexity:             5,
		DomainKnowledge:        []string{},
		RecommendedProcessType: ProcessSequential,
	}
}

func fallbackPlanning() *PlanningResult {
	return &PlanningResult{
		SelectedAlgorithm: AlgorithmBestOfN,
		CandidatePlans:    []CandidatePlan{},
		VerificationScore: 5.0,
	}
}

// fallbackImplementation builds a single generic agent with one task covering
// the whole task description.
func fallbackImplementation(taskDescription string) *ImplementationResult {
	return &ImplementationResult{
		Agents: []AgentSpec{
			{
				Name:         "generalist",
				Role:         "Generalist",
				Goal:         "Complete the requested task",
				Backstory:    "A versatile agent that handles tasks end to end when no specialized crew could be generated.",
				Capabilities: []string{},
			},
		},
		Tasks: []TaskSpec{
			{
				Name:           "complete_task",
				Description:    taskDescription,
				ExpectedOutput: "A complete result for the requested task",
				Agent:          "generalist",
				Dependencies:   []string{},
			},
		},
		Workflow: Workflow{
			ProcessType: ProcessSequential,
			Sequence:    []string{"complete_task"},
		},
		Tools: []string{},
	}
}

func fallbackEvaluation() *EvaluationResult {
	// No tagged weaknesses or recommendations: a failed evaluation carries no
	// refinement signal, so the flow proceeds with the current results.
	return &EvaluationResult{
		Strengths:       []string{},
		Weaknesses:      []Weakness{},
		Recommendations: []Recommendation{},
		Score:           5.0,
	}
}
