// Package storage persists finalized crew plans in SQLite.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/crewforge"
	"github.com/m-mizutani/goerr/v2"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates that no crew exists for the requested ID.
var ErrNotFound = errors.New("crew not found")

// Store wraps an SQLite database holding finalized crew plans.
type Store struct {
	conn *sql.DB
	path string
}

// Open opens the SQLite database at the given path, creating parent
// directories and the schema if needed. WAL mode is enabled for concurrent
// reads.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, goerr.Wrap(err, "failed to create db directory", goerr.V("dir", dir))
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, goerr.Wrap(err, "failed to enable WAL mode")
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, goerr.Wrap(err, "failed to enable foreign keys")
	}

	store := &Store{conn: conn, path: path}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database.
func (x *Store) Close() error {
	return x.conn.Close()
}

func (x *Store) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS crews (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			task TEXT NOT NULL,
			process TEXT NOT NULL,
			model TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS agents (
			crew_id TEXT NOT NULL REFERENCES crews(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			role TEXT NOT NULL,
			goal TEXT NOT NULL,
			backstory TEXT NOT NULL,
			capabilities_json TEXT NOT NULL,
			PRIMARY KEY (crew_id, position)
		)`,
		`CREATE TABLE IF NOT EXISTS tasks (
			crew_id TEXT NOT NULL REFERENCES crews(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			expected_output TEXT NOT NULL,
			agent_name TEXT NOT NULL,
			dependencies_json TEXT NOT NULL,
			PRIMARY KEY (crew_id, position)
		)`,
	}

	for _, stmt := range schema {
		if _, err := x.conn.Exec(stmt); err != nil {
			return goerr.Wrap(err, "failed to migrate schema")
		}
	}
	return nil
}

// StoredCrew is a persisted crew plan with its request context.
type StoredCrew struct {
	Plan      crewforge.CrewPlan `json:"plan"`
	Name      string             `json:"name"`
	Task      string             `json:"task"`
	Model     string             `json:"model"`
	CreatedAt time.Time          `json:"created_at"`
}

// CrewSummary is a listing entry.
type CrewSummary struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	Task      string                `json:"task"`
	Process   crewforge.ProcessType `json:"process"`
	CreatedAt time.Time             `json:"created_at"`
}

// crewName derives a display name from the task description.
func crewName(task string) string {
	const maxLen = 60
	if len(task) > maxLen {
		return task[:maxLen] + "..."
	}
	return task
}

// SaveCrew persists a finalized plan together with the task description and
// model it was generated for.
func (x *Store) SaveCrew(ctx context.Context, plan *crewforge.CrewPlan, task string, config crewforge.GenerationConfig) error {
	tx, err := x.conn.BeginTx(ctx, nil)
	if err != nil {
		return goerr.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO crews (id, name, task, process, model, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		plan.ID, crewName(task), task, string(plan.ProcessType), config.Model, time.Now().UTC(),
	); err != nil {
		return goerr.Wrap(err, "failed to insert crew", goerr.V("crew_id", plan.ID))
	}

	for i, agent := range plan.Agents {
		capabilities, err := json.Marshal(agent.Capabilities)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal capabilities")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO agents (crew_id, position, name, role, goal, backstory, capabilities_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			plan.ID, i, agent.Name, agent.Role, agent.Goal, agent.Backstory, string(capabilities),
		); err != nil {
			return goerr.Wrap(err, "failed to insert agent", goerr.V("agent", agent.Name))
		}
	}

	for i, task := range plan.Tasks {
		dependencies, err := json.Marshal(task.Dependencies)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal dependencies")
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tasks (crew_id, position, name, description, expected_output, agent_name, dependencies_json)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			plan.ID, i, task.Name, task.Description, task.ExpectedOutput, task.Agent, string(dependencies),
		); err != nil {
			return goerr.Wrap(err, "failed to insert task", goerr.V("task", task.Name))
		}
	}

	if err := tx.Commit(); err != nil {
		return goerr.Wrap(err, "failed to commit crew", goerr.V("crew_id", plan.ID))
	}
	return nil
}

// GetCrew loads one persisted crew plan by ID.
func (x *Store) GetCrew(ctx context.Context, id string) (*StoredCrew, error) {
	crew := &StoredCrew{}
	var process string
	err := x.conn.QueryRowContext(ctx,
		`SELECT id, name, task, process, model, created_at FROM crews WHERE id = ?`, id,
	).Scan(&crew.Plan.ID, &crew.Name, &crew.Task, &process, &crew.Model, &crew.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(ErrNotFound, "no such crew", goerr.V("crew_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load crew", goerr.V("crew_id", id))
	}
	crew.Plan.ProcessType = crewforge.ProcessType(process)

	agents, err := x.loadAgents(ctx, id)
	if err != nil {
		return nil, err
	}
	crew.Plan.Agents = agents

	tasks, err := x.loadTasks(ctx, id)
	if err != nil {
		return nil, err
	}
	crew.Plan.Tasks = tasks

	return crew, nil
}

func (x *Store) loadAgents(ctx context.Context, crewID string) ([]crewforge.AgentSpec, error) {
	rows, err := x.conn.QueryContext(ctx,
		`SELECT name, role, goal, backstory, capabilities_json FROM agents WHERE crew_id = ? ORDER BY position`,
		crewID,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query agents", goerr.V("crew_id", crewID))
	}
	defer rows.Close()

	var agents []crewforge.AgentSpec
	for rows.Next() {
		var agent crewforge.AgentSpec
		var capabilities string
		if err := rows.Scan(&agent.Name, &agent.Role, &agent.Goal, &agent.Backstory, &capabilities); err != nil {
			return nil, goerr.Wrap(err, "failed to scan agent")
		}
		if err := json.Unmarshal([]byte(capabilities), &agent.Capabilities); err != nil {
			return nil, goerr.Wrap(err, "broken capabilities data", goerr.V("agent", agent.Name))
		}
		agents = append(agents, agent)
	}
	return agents, rows.Err()
}

func (x *Store) loadTasks(ctx context.Context, crewID string) ([]crewforge.TaskSpec, error) {
	rows, err := x.conn.QueryContext(ctx,
		`SELECT name, description, expected_output, agent_name, dependencies_json FROM tasks WHERE crew_id = ? ORDER BY position`,
		crewID,
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query tasks", goerr.V("crew_id", crewID))
	}
	defer rows.Close()

	var tasks []crewforge.TaskSpec
	for rows.Next() {
		var task crewforge.TaskSpec
		var dependencies string
		if err := rows.Scan(&task.Name, &task.Description, &task.ExpectedOutput, &task.Agent, &dependencies); err != nil {
			return nil, goerr.Wrap(err, "failed to scan task")
		}
		if err := json.Unmarshal([]byte(dependencies), &task.Dependencies); err != nil {
			return nil, goerr.Wrap(err, "broken dependencies data", goerr.V("task", task.Name))
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// ListCrews returns summaries of all persisted crews, newest first.
func (x *Store) ListCrews(ctx context.Context) ([]CrewSummary, error) {
	rows, err := x.conn.QueryContext(ctx,
		`SELECT id, name, task, process, created_at FROM crews ORDER BY created_at DESC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query crews")
	}
	defer rows.Close()

	var crews []CrewSummary
	for rows.Next() {
		var summary CrewSummary
		var process string
		if err := rows.Scan(&summary.ID, &summary.Name, &summary.Task, &process, &summary.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan crew summary")
		}
		summary.Process = crewforge.ProcessType(process)
		crews = append(crews, summary)
	}
	return crews, rows.Err()
}

// DeleteCrew removes a persisted crew and its agents and tasks.
func (x *Store) DeleteCrew(ctx context.Context, id string) error {
	result, err := x.conn.ExecContext(ctx, `DELETE FROM crews WHERE id = ?`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete crew", goerr.V("crew_id", id))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return goerr.Wrap(err, "failed to check delete result")
	}
	if affected == 0 {
		return goerr.Wrap(ErrNotFound, "no such crew", goerr.V("crew_id", id))
	}
	return nil
}
