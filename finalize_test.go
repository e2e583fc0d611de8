package crewforge_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/gt"
)

func implWithTasks(tasks ...crewforge.TaskSpec) *crewforge.ImplementationResult {
	return &crewforge.ImplementationResult{
		Agents: []crewforge.AgentSpec{
			{Name: "worker", Role: "Worker", Goal: "Do the work"},
		},
		Tasks: tasks,
		Workflow: crewforge.Workflow{
			ProcessType: crewforge.ProcessSequential,
		},
	}
}

func task(name, agent string, deps ...string) crewforge.TaskSpec {
	return crewforge.TaskSpec{
		Name:         name,
		Description:  "task " + name,
		Agent:        agent,
		Dependencies: deps,
	}
}

func TestFinalizeValidPlan(t *testing.T) {
	impl := implWithTasks(
		task("collect", "worker"),
		task("summarize", "worker", "collect"),
	)

	plan, err := crewforge.Finalize(impl)
	gt.NoError(t, err)
	gt.NotNil(t, plan)
	gt.Value(t, plan.ID).NotEqual("")
	gt.N(t, len(plan.Agents)).Equal(1)
	gt.N(t, len(plan.Tasks)).Equal(2)
	gt.Value(t, plan.ProcessType).Equal(crewforge.ProcessSequential)
}

func TestFinalizeCopiesSlices(t *testing.T) {
	impl := implWithTasks(task("collect", "worker"))

	plan, err := crewforge.Finalize(impl)
	gt.NoError(t, err)

	impl.Agents[0].Name = "mutated"
	impl.Tasks[0].Name = "mutated"
	gt.Value(t, plan.Agents[0].Name).Equal("worker")
	gt.Value(t, plan.Tasks[0].Name).Equal("collect")
}

func TestFinalizeUnknownAgent(t *testing.T) {
	impl := implWithTasks(task("collect", "nobody"))

	_, err := crewforge.Finalize(impl)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, crewforge.ErrUnknownAgent))
}

func TestFinalizeUnknownDependency(t *testing.T) {
	impl := implWithTasks(task("summarize", "worker", "missing"))

	_, err := crewforge.Finalize(impl)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, crewforge.ErrUnknownDependency))
}

func TestFinalizeCyclicDependencies(t *testing.T) {
	impl := implWithTasks(
		task("a", "worker", "b"),
		task("b", "worker", "c"),
		task("c", "worker", "a"),
	)

	_, err := crewforge.Finalize(impl)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, crewforge.ErrCyclicDependency))
}

func TestFinalizeSelfDependency(t *testing.T) {
	impl := implWithTasks(task("a", "worker", "a"))

	_, err := crewforge.Finalize(impl)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, crewforge.ErrCyclicDependency))
}

func TestFindCycle(t *testing.T) {
	t.Run("diamond is acyclic", func(t *testing.T) {
		cycle := crewforge.FindCycle([]crewforge.TaskSpec{
			task("d", "worker", "b", "c"),
			task("b", "worker", "a"),
			task("c", "worker", "a"),
			task("a", "worker"),
		})
		gt.Value(t, cycle).Equal("")
	})

	t.Run("two node cycle", func(t *testing.T) {
		cycle := crewforge.FindCycle([]crewforge.TaskSpec{
			task("a", "worker", "b"),
			task("b", "worker", "a"),
		})
		gt.Value(t, cycle).NotEqual("")
	})

	t.Run("empty graph", func(t *testing.T) {
		gt.Value(t, crewforge.FindCycle(nil)).Equal("")
	})
}
