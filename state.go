package crewforge

import "github.com/google/uuid"

// scoredImplementation ties an implementation to the evaluation score of its
// iteration, used for forced finalization when iteration caps are reached.
type scoredImplementation struct {
	impl  *ImplementationResult
	score float64
}

// State is the mutable record carried through one flow run. It is owned
// exclusively by the orchestrator for the lifetime of the run and never
// shared between runs.
type State struct {
	id              string
	taskDescription string
	config          GenerationConfig

	analysis       *AnalysisResult
	planning       *PlanningResult
	implementation *ImplementationResult
	evaluation     *EvaluationResult

	// iterations counts refinement re-entries per phase. Initial phase runs
	// do not count, so a run that terminates on its first evaluation leaves
	// all counters at zero.
	iterations map[Phase]int

	// attempts counts every run of a phase, including the first, for history
	// attempt numbering.
	attempts map[Phase]int

	// refinements counts re-entries across all phases, bounded by the global
	// cap.
	refinements int

	history *History

	// completed holds one entry per finished evaluation iteration, in order.
	completed []scoredImplementation

	finalPlan *CrewPlan
}

func newState(taskDescription string, config GenerationConfig) *State {
	return &State{
		id:              uuid.New().String(),
		taskDescription: taskDescription,
		config:          config,
		iterations:      map[Phase]int{},
		attempts:        map[Phase]int{},
		history:         newHistory(),
	}
}

func (x *State) iterationCount(phase Phase) int {
	return x.iterations[phase]
}

func (x *State) nextAttempt(phase Phase) int {
	x.attempts[phase]++
	return x.attempts[phase]
}

// Snapshot is a read-only view of a finished run, returned by the debug
// entry point.
type Snapshot struct {
	FlowID          string                `json:"flow_id"`
	TaskDescription string                `json:"task_description"`
	Config          GenerationConfig      `json:"config"`
	Analysis        *AnalysisResult       `json:"analysis,omitempty"`
	Planning        *PlanningResult       `json:"planning,omitempty"`
	Implementation  *ImplementationResult `json:"implementation,omitempty"`
	Evaluation      *EvaluationResult     `json:"evaluation,omitempty"`
	Iterations      map[Phase]int         `json:"iterations"`
	History         []HistoryEntry        `json:"history"`
	FinalPlan       *CrewPlan             `json:"final_plan"`
}

func (x *State) snapshot() *Snapshot {
	iterations := make(map[Phase]int, len(x.iterations))
	for phase, n := range x.iterations {
		iterations[phase] = n
	}
	return &Snapshot{
		FlowID:          x.id,
		TaskDescription: x.taskDescription,
		Config:          x.config,
		Analysis:        x.analysis,
		Planning:        x.planning,
		Implementation:  x.implementation,
		Evaluation:      x.evaluation,
		Iterations:      iterations,
		History:         x.history.Entries(),
		FinalPlan:       x.finalPlan,
	}
}
