package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/storage"
	"github.com/m-mizutani/gt"
)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "crews", "test.db"))
	gt.NoError(t, err)
	t.Cleanup(func() {
		gt.NoError(t, store.Close())
	})
	return store
}

func testPlan() *crewforge.CrewPlan {
	return &crewforge.CrewPlan{
		ID: uuid.New().String(),
		Agents: []crewforge.AgentSpec{
			{
				Name:         "researcher",
				Role:         "Researcher",
				Goal:         "Collect material",
				Backstory:    "A thorough investigator",
				Capabilities: []string{"search", "summarize"},
			},
			{
				Name: "writer",
				Role: "Writer",
				Goal: "Write the report",
			},
		},
		Tasks: []crewforge.TaskSpec{
			{
				Name:           "collect",
				Description:    "Collect the material",
				ExpectedOutput: "notes",
				Agent:          "researcher",
			},
			{
				Name:           "write",
				Description:    "Write the report",
				ExpectedOutput: "report",
				Agent:          "writer",
				Dependencies:   []string{"collect"},
			},
		},
		ProcessType: crewforge.ProcessSequential,
	}
}

func TestSaveAndGetCrew(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := testPlan()
	config := crewforge.GenerationConfig{Model: "gpt-4o", Temperature: 0.7}
	gt.NoError(t, store.SaveCrew(ctx, plan, "write a market report", config))

	crew, err := store.GetCrew(ctx, plan.ID)
	gt.NoError(t, err)

	gt.Value(t, crew.Plan.ID).Equal(plan.ID)
	gt.Value(t, crew.Task).Equal("write a market report")
	gt.Value(t, crew.Model).Equal("gpt-4o")
	gt.Value(t, crew.Plan.ProcessType).Equal(crewforge.ProcessSequential)

	gt.N(t, len(crew.Plan.Agents)).Equal(2)
	gt.Value(t, crew.Plan.Agents[0].Name).Equal("researcher")
	gt.N(t, len(crew.Plan.Agents[0].Capabilities)).Equal(2)

	gt.N(t, len(crew.Plan.Tasks)).Equal(2)
	gt.Value(t, crew.Plan.Tasks[1].Agent).Equal("writer")
	gt.N(t, len(crew.Plan.Tasks[1].Dependencies)).Equal(1)
	gt.Value(t, crew.Plan.Tasks[1].Dependencies[0]).Equal("collect")
}

func TestGetCrewNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetCrew(context.Background(), uuid.New().String())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestListCrews(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	crews, err := store.ListCrews(ctx)
	gt.NoError(t, err)
	gt.N(t, len(crews)).Equal(0)

	first := testPlan()
	second := testPlan()
	config := crewforge.DefaultGenerationConfig()
	gt.NoError(t, store.SaveCrew(ctx, first, "first task", config))
	gt.NoError(t, store.SaveCrew(ctx, second, "second task", config))

	crews, err = store.ListCrews(ctx)
	gt.NoError(t, err)
	gt.N(t, len(crews)).Equal(2)
	for _, crew := range crews {
		gt.Value(t, crew.Process).Equal(crewforge.ProcessSequential)
		gt.Value(t, crew.Name).NotEqual("")
	}
}

func TestListCrewsTruncatesLongNames(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task := "a very long task description that goes on and on far beyond any reasonable display width for a list view"
	gt.NoError(t, store.SaveCrew(ctx, testPlan(), task, crewforge.DefaultGenerationConfig()))

	crews, err := store.ListCrews(ctx)
	gt.NoError(t, err)
	gt.N(t, len(crews)).Equal(1)
	gt.N(t, len(crews[0].Name)).Equal(63)
	gt.Value(t, crews[0].Task).Equal(task)
}

func TestDeleteCrew(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := testPlan()
	gt.NoError(t, store.SaveCrew(ctx, plan, "task", crewforge.DefaultGenerationConfig()))
	gt.NoError(t, store.DeleteCrew(ctx, plan.ID))

	_, err := store.GetCrew(ctx, plan.ID)
	gt.True(t, errors.Is(err, storage.ErrNotFound))

	// Cascade removed the agents and tasks together with the crew.
	crews, err := store.ListCrews(ctx)
	gt.NoError(t, err)
	gt.N(t, len(crews)).Equal(0)
}

func TestDeleteCrewNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.DeleteCrew(context.Background(), uuid.New().String())
	gt.Error(t, err)
	gt.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSaveCrewDuplicateID(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	plan := testPlan()
	config := crewforge.DefaultGenerationConfig()
	gt.NoError(t, store.SaveCrew(ctx, plan, "task", config))
	gt.Error(t, store.SaveCrew(ctx, plan, "task", config))
}
