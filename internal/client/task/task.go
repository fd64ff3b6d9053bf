// Package task performs task CRUD against the REST API and keeps an ordered
// local cache of the server's task set. The cache is a materialized view, not
// authoritative: it is only updated after the server confirms an operation,
// and a full List replaces it wholesale. Failures surface as nil/false results
// with the reason on the side channel (LastError), never as panics or errors.
package task

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/taskmate/taskmate/internal/client/pipeline"
	"github.com/taskmate/taskmate/internal/common/logtrace"
	"github.com/taskmate/taskmate/pkg/types"
)

// REST paths for the task endpoints.
const (
	listPath        = "/tasks/get-all-task"
	getPath         = "/tasks/get-task/"
	createPath      = "/tasks/add-new-task"
	updatePath      = "/tasks/update-task/"
	deletePath      = "/tasks/delete-task/"
	suggestionsPath = "/users/get-task-suggestions"
)

// Manager performs task operations and owns the local cache. A single busy
// flag is shared across all operations so a consumer can gate re-submission;
// a slow List will therefore report busy to an unrelated Create.
type Manager struct {
	mu      sync.Mutex
	client  *pipeline.Client
	tasks   []types.Task
	busy    bool
	lastErr string
	logger  zerolog.Logger
}

// New creates a task manager with an empty cache.
func New(client *pipeline.Client) *Manager {
	return &Manager{
		client: client,
		logger: logtrace.Component("task"),
	}
}

// List fetches all tasks and replaces the local cache with the server's set.
// Returns nil on failure, leaving the cache unchanged.
func (m *Manager) List(ctx context.Context) []types.Task {
	done := m.setBusy()
	defer done()

	data, err := m.client.Get(ctx, listPath)
	if err != nil {
		m.fail("failed to load tasks", err)
		return nil
	}

	var tasks []types.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		m.fail("invalid task list response", err)
		return nil
	}

	m.mu.Lock()
	m.tasks = tasks
	m.lastErr = ""
	m.mu.Unlock()
	return m.Tasks()
}

// Create creates a task and, on confirmation, appends it to the cache.
// Returns nil on failure with the cache unchanged.
func (m *Manager) Create(ctx context.Context, input types.TaskInput) *types.Task {
	done := m.setBusy()
	defer done()

	if err := types.V().Struct(input); err != nil {
		m.fail("invalid task input", err)
		return nil
	}

	data, err := m.client.Post(ctx, createPath, input)
	if err != nil {
		m.fail("failed to create task", err)
		return nil
	}

	var created types.Task
	if err := json.Unmarshal(data, &created); err != nil {
		m.fail("invalid task response", err)
		return nil
	}

	m.mu.Lock()
	m.tasks = append(m.tasks, created)
	m.lastErr = ""
	m.mu.Unlock()

	cp := created
	return &cp
}

// Get fetches a single task without touching the cache (read-through).
func (m *Manager) Get(ctx context.Context, taskID string) *types.Task {
	done := m.setBusy()
	defer done()

	data, err := m.client.Get(ctx, getPath+taskID)
	if err != nil {
		m.fail("failed to load task", err)
		return nil
	}

	var task types.Task
	if err := json.Unmarshal(data, &task); err != nil {
		m.fail("invalid task response", err)
		return nil
	}
	return &task
}

// Update sends a full or partial update and, on confirmation, replaces the
// cache entry with a matching TaskID. Entries are matched by id, never by
// position. Returns nil on failure with the cache unchanged.
func (m *Manager) Update(ctx context.Context, taskID string, patch json.RawMessage) *types.Task {
	done := m.setBusy()
	defer done()

	data, err := m.client.Put(ctx, updatePath+taskID, patch)
	if err != nil {
		m.fail("failed to update task", err)
		return nil
	}

	var updated types.Task
	if err := json.Unmarshal(data, &updated); err != nil {
		m.fail("invalid task response", err)
		return nil
	}

	m.mu.Lock()
	for i := range m.tasks {
		if m.tasks[i].TaskID == updated.TaskID {
			m.tasks[i] = updated
			break
		}
	}
	m.lastErr = ""
	m.mu.Unlock()

	cp := updated
	return &cp
}

// Remove deletes a task and, on confirmation, drops the matching cache entry.
// Returns whether the deletion request succeeded.
func (m *Manager) Remove(ctx context.Context, taskID string) bool {
	done := m.setBusy()
	defer done()

	if _, err := m.client.Delete(ctx, deletePath+taskID); err != nil {
		m.fail("failed to delete task", err)
		return false
	}

	m.mu.Lock()
	for i := range m.tasks {
		if m.tasks[i].TaskID == taskID {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			break
		}
	}
	m.lastErr = ""
	m.mu.Unlock()
	return true
}

// Suggestions fetches AI-generated task suggestions. The server returns them
// as one newline-separated string; older builds return a list. Both shapes
// normalize to a slice of non-empty lines. Returns nil on failure.
func (m *Manager) Suggestions(ctx context.Context) []string {
	done := m.setBusy()
	defer done()

	data, err := m.client.Get(ctx, suggestionsPath)
	if err != nil {
		m.fail("failed to load suggestions", err)
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return splitSuggestions(text)
	}

	var suggestions []string
	if err := json.Unmarshal(data, &suggestions); err != nil {
		m.fail("invalid suggestions response", err)
		return nil
	}
	return suggestions
}

func splitSuggestions(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Tasks returns a copy of the local cache in insertion order.
func (m *Manager) Tasks() []types.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]types.Task, len(m.tasks))
	copy(cp, m.tasks)
	return cp
}

// Busy reports whether any operation is in flight.
func (m *Manager) Busy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busy
}

// LastError returns the most recent failure message. Empty after a success.
func (m *Manager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

func (m *Manager) setBusy() func() {
	m.mu.Lock()
	m.busy = true
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.busy = false
		m.mu.Unlock()
	}
}

func (m *Manager) fail(msg string, err error) {
	m.logger.Debug().Err(err).Msg(msg)
	m.mu.Lock()
	m.lastErr = msg + ": " + err.Error()
	m.mu.Unlock()
}
