package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/crewforge/server"
	"github.com/m-mizutani/crewforge/storage"
	"github.com/m-mizutani/gt"
)

type stubFlow struct {
	plan     *crewforge.CrewPlan
	snapshot *crewforge.Snapshot
	err      error

	lastTask   string
	lastConfig crewforge.GenerationConfig
}

func (x *stubFlow) Run(ctx context.Context, taskDescription string, config crewforge.GenerationConfig) (*crewforge.CrewPlan, error) {
	x.lastTask = taskDescription
	x.lastConfig = config
	return x.plan, x.err
}

func (x *stubFlow) RunDebug(ctx context.Context, taskDescription string, config crewforge.GenerationConfig) (*crewforge.Snapshot, error) {
	x.lastTask = taskDescription
	x.lastConfig = config
	return x.snapshot, x.err
}

func testPlan() *crewforge.CrewPlan {
	return &crewforge.CrewPlan{
		ID: uuid.New().String(),
		Agents: []crewforge.AgentSpec{
			{Name: "researcher", Role: "Researcher", Goal: "Collect material"},
		},
		Tasks: []crewforge.TaskSpec{
			{Name: "collect", Description: "Collect the material", Agent: "researcher"},
		},
		ProcessType: crewforge.ProcessSequential,
	}
}

func newTestServer(t *testing.T, flow server.Flow, store *storage.Store) *server.Server {
	t.Helper()
	return server.New(flow, store, slog.New(slog.DiscardHandler))
}

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	gt.NoError(t, err)
	t.Cleanup(func() {
		gt.NoError(t, store.Close())
	})
	return store
}

func postJSON(t *testing.T, srv *server.Server, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	gt.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, &stubFlow{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	gt.N(t, rec.Code).Equal(http.StatusOK)
}

func TestCreateFlow(t *testing.T) {
	flow := &stubFlow{plan: testPlan()}
	store := newTestStore(t)
	srv := newTestServer(t, flow, store)

	rec := postJSON(t, srv, "/flow/create", map[string]any{
		"task":        "write a market report",
		"model":       "gpt-4o-mini",
		"temperature": 0.3,
	})
	gt.N(t, rec.Code).Equal(http.StatusOK)

	var plan crewforge.CrewPlan
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	gt.Value(t, plan.ID).Equal(flow.plan.ID)

	gt.Value(t, flow.lastTask).Equal("write a market report")
	gt.Value(t, flow.lastConfig.Model).Equal("gpt-4o-mini")
	gt.Value(t, flow.lastConfig.Temperature).Equal(0.3)

	// The created plan was persisted.
	crew, err := store.GetCrew(context.Background(), flow.plan.ID)
	gt.NoError(t, err)
	gt.Value(t, crew.Task).Equal("write a market report")
}

func TestCreateFlowDefaultsConfig(t *testing.T) {
	flow := &stubFlow{plan: testPlan()}
	srv := newTestServer(t, flow, nil)

	rec := postJSON(t, srv, "/flow/create", map[string]any{"task": "summarize a paper"})
	gt.N(t, rec.Code).Equal(http.StatusOK)

	want := crewforge.DefaultGenerationConfig()
	gt.Value(t, flow.lastConfig.Model).Equal(want.Model)
	gt.Value(t, flow.lastConfig.Temperature).Equal(want.Temperature)
}

func TestCreateFlowRequiresTask(t *testing.T) {
	srv := newTestServer(t, &stubFlow{plan: testPlan()}, nil)

	rec := postJSON(t, srv, "/flow/create", map[string]any{"model": "gpt-4o"})
	gt.N(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestCreateFlowError(t *testing.T) {
	srv := newTestServer(t, &stubFlow{err: errors.New("canceled")}, nil)

	rec := postJSON(t, srv, "/flow/create", map[string]any{"task": "anything"})
	gt.N(t, rec.Code).Equal(http.StatusInternalServerError)
}

func TestDebugFlow(t *testing.T) {
	flow := &stubFlow{snapshot: &crewforge.Snapshot{
		FlowID:          uuid.New().String(),
		TaskDescription: "debug me",
		FinalPlan:       testPlan(),
	}}
	srv := newTestServer(t, flow, nil)

	rec := postJSON(t, srv, "/flow/debug", map[string]any{"task": "debug me"})
	gt.N(t, rec.Code).Equal(http.StatusOK)

	var snapshot crewforge.Snapshot
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snapshot))
	gt.Value(t, snapshot.FlowID).Equal(flow.snapshot.FlowID)
	gt.NotNil(t, snapshot.FinalPlan)
}

func TestCrewEndpoints(t *testing.T) {
	flow := &stubFlow{plan: testPlan()}
	store := newTestStore(t)
	srv := newTestServer(t, flow, store)

	rec := postJSON(t, srv, "/flow/create", map[string]any{"task": "task one"})
	gt.N(t, rec.Code).Equal(http.StatusOK)

	req := httptest.NewRequest(http.MethodGet, "/crews", nil)
	list := httptest.NewRecorder()
	srv.Handler().ServeHTTP(list, req)
	gt.N(t, list.Code).Equal(http.StatusOK)

	var summaries []storage.CrewSummary
	gt.NoError(t, json.Unmarshal(list.Body.Bytes(), &summaries))
	gt.N(t, len(summaries)).Equal(1)

	req = httptest.NewRequest(http.MethodGet, "/crews/"+flow.plan.ID, nil)
	get := httptest.NewRecorder()
	srv.Handler().ServeHTTP(get, req)
	gt.N(t, get.Code).Equal(http.StatusOK)

	req = httptest.NewRequest(http.MethodDelete, "/crews/"+flow.plan.ID, nil)
	del := httptest.NewRecorder()
	srv.Handler().ServeHTTP(del, req)
	gt.N(t, del.Code).Equal(http.StatusNoContent)

	req = httptest.NewRequest(http.MethodGet, "/crews/"+flow.plan.ID, nil)
	gone := httptest.NewRecorder()
	srv.Handler().ServeHTTP(gone, req)
	gt.N(t, gone.Code).Equal(http.StatusNotFound)
}

func TestCrewEndpointsWithoutStore(t *testing.T) {
	srv := newTestServer(t, &stubFlow{}, nil)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/crews"},
		{http.MethodGet, "/crews/some-id"},
		{http.MethodDelete, "/crews/some-id"},
	} {
		req := httptest.NewRequest(tc.method, tc.path, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		gt.N(t, rec.Code).Equal(http.StatusServiceUnavailable)
	}
}
