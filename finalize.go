package crewforge

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// finalize maps an implementation into the published CrewPlan. It rejects
// implementations whose tasks reference undefined agents or dependencies, or
// whose dependency graph is cyclic. A cyclic plan is never published.
func finalize(impl *ImplementationResult) (*CrewPlan, error) {
	agentNames := make(map[string]struct{}, len(impl.Agents))
	for _, agent := range impl.Agents {
		agentNames[agent.Name] = struct{}{}
	}

	taskNames := make(map[string]struct{}, len(impl.Tasks))
	for _, task := range impl.Tasks {
		taskNames[task.Name] = struct{}{}
	}

	for _, task := range impl.Tasks {
		if _, ok := agentNames[task.Agent]; !ok {
			return nil, goerr.Wrap(ErrUnknownAgent, "cannot finalize implementation",
				goerr.V("task", task.Name), goerr.V("agent", task.Agent))
		}
		for _, dep := range task.Dependencies {
			if _, ok := taskNames[dep]; !ok {
				return nil, goerr.Wrap(ErrUnknownDependency, "cannot finalize implementation",
					goerr.V("task", task.Name), goerr.V("dependency", dep))
			}
		}
	}

	if cycle := findCycle(impl.Tasks); cycle != "" {
		return nil, goerr.Wrap(ErrCyclicDependency, "cannot finalize implementation",
			goerr.V("task", cycle))
	}

	plan := &CrewPlan{
		ID:          uuid.New().String(),
		Agents:      make([]AgentSpec, len(impl.Agents)),
		Tasks:       make([]TaskSpec, len(impl.Tasks)),
		ProcessType: impl.Workflow.ProcessType,
	}
	copy(plan.Agents, impl.Agents)
	copy(plan.Tasks, impl.Tasks)

	return plan, nil
}

// findCycle runs a depth-first search over the task dependency graph and
// returns the name of a task on a cycle, or an empty string if the graph is
// acyclic.
func findCycle(tasks []TaskSpec) string {
	deps := make(map[string][]string, len(tasks))
	for _, task := range tasks {
		deps[task.Name] = task.Dependencies
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	colors := make(map[string]int, len(tasks))

	var visit func(name string) string
	visit = func(name string) string {
		colors[name] = visiting
		for _, dep := range deps[name] {
			switch colors[dep] {
			case visiting:
				return dep
			case unvisited:
				if found := visit(dep); found != "" {
					return found
				}
			}
		}
		colors[name] = done
		return ""
	}

	for _, task := range tasks {
		if colors[task.Name] == unvisited {
			if found := visit(task.Name); found != "" {
				return found
			}
		}
	}
	return ""
}
