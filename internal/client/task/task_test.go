package task

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmate/taskmate/internal/client/credential"
	"github.com/taskmate/taskmate/internal/client/pipeline"
	"github.com/taskmate/taskmate/pkg/types"
)

// fakeTaskBackend is an in-memory task service speaking the REST contract.
type fakeTaskBackend struct {
	mu          sync.Mutex
	tasks       []types.Task
	suggestions any
}

func (b *fakeTaskBackend) respond(w http.ResponseWriter, code int, message string, data any) {
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":  code < 400,
		"message": message,
		"data":    data,
	})
}

func (b *fakeTaskBackend) find(id string) int {
	for i := range b.tasks {
		if b.tasks[i].TaskID == id {
			return i
		}
	}
	return -1
}

func (b *fakeTaskBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/get-all-task", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.respond(w, http.StatusOK, "Tasks retrieved successfully", b.tasks)
	})
	mux.HandleFunc("POST /tasks/add-new-task", func(w http.ResponseWriter, r *http.Request) {
		var input types.TaskInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Title == "" {
			b.respond(w, http.StatusBadRequest, "Invalid input", nil)
			return
		}
		task := types.Task{
			TaskID:      uuid.NewString(),
			Title:       input.Title,
			Description: input.Description,
			Priority:    input.Priority,
			Status:      types.StatusPending,
		}
		b.mu.Lock()
		b.tasks = append(b.tasks, task)
		b.mu.Unlock()
		b.respond(w, http.StatusCreated, "Task created successfully", task)
	})
	mux.HandleFunc("GET /tasks/get-task/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if i := b.find(r.PathValue("id")); i >= 0 {
			b.respond(w, http.StatusOK, "Task retrieved successfully", b.tasks[i])
			return
		}
		b.respond(w, http.StatusNotFound, "Task not found", nil)
	})
	mux.HandleFunc("PUT /tasks/update-task/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.find(r.PathValue("id"))
		if i < 0 {
			b.respond(w, http.StatusNotFound, "Task not found", nil)
			return
		}
		var patch map[string]any
		json.NewDecoder(r.Body).Decode(&patch)
		if v, ok := patch["title"].(string); ok {
			b.tasks[i].Title = v
		}
		if v, ok := patch["status"].(string); ok {
			b.tasks[i].Status = types.TaskStatus(v)
		}
		b.respond(w, http.StatusOK, "Task updated successfully", b.tasks[i])
	})
	mux.HandleFunc("DELETE /tasks/delete-task/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		i := b.find(r.PathValue("id"))
		if i < 0 {
			b.respond(w, http.StatusNotFound, "Task not found", nil)
			return
		}
		b.tasks = append(b.tasks[:i], b.tasks[i+1:]...)
		b.respond(w, http.StatusOK, "Task deleted successfully", nil)
	})
	mux.HandleFunc("GET /users/get-task-suggestions", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		payload := b.suggestions
		b.mu.Unlock()
		if payload == nil {
			// the live service returns the model output as one string
			payload = "1. Review pull requests\n2. Plan sprint\n"
		}
		b.respond(w, http.StatusOK, "Suggestions retrieved successfully", payload)
	})
	return mux
}

func (b *fakeTaskBackend) serverTasks() []types.Task {
	b.mu.Lock()
	defer b.mu.Unlock()
	cp := make([]types.Task, len(b.tasks))
	copy(cp, b.tasks)
	return cp
}

func newTestManager(t *testing.T) (*Manager, *fakeTaskBackend) {
	t.Helper()
	backend := &fakeTaskBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)
	return New(pipeline.New(srv.URL, credential.NewMemStore())), backend
}

func TestCreateDeleteScenario(t *testing.T) {
	m, backend := newTestManager(t)
	ctx := context.Background()

	created := m.Create(ctx, types.TaskInput{Title: "A"})
	require.NotNil(t, created)
	assert.Equal(t, "A", created.Title)
	assert.NotEmpty(t, created.TaskID, "server issues the id")

	cache := m.Tasks()
	require.Len(t, cache, 1)
	assert.Equal(t, created.TaskID, cache[0].TaskID)

	require.True(t, m.Remove(ctx, created.TaskID))
	assert.Empty(t, m.Tasks())
	assert.Empty(t, backend.serverTasks())
}

func TestListReplacesCache(t *testing.T) {
	m, backend := newTestManager(t)
	ctx := context.Background()

	first := m.Create(ctx, types.TaskInput{Title: "first"})
	require.NotNil(t, first)

	// out-of-band deletion server-side
	backend.mu.Lock()
	backend.tasks = nil
	backend.mu.Unlock()

	tasks := m.List(ctx)
	require.NotNil(t, tasks)
	assert.Empty(t, tasks, "list reflects the server even when the cache had entries")
	assert.Empty(t, m.Tasks())
}

func TestCacheMatchesServerAfterConfirmedOps(t *testing.T) {
	m, backend := newTestManager(t)
	ctx := context.Background()

	a := m.Create(ctx, types.TaskInput{Title: "a"})
	b := m.Create(ctx, types.TaskInput{Title: "b"})
	c := m.Create(ctx, types.TaskInput{Title: "c"})
	require.NotNil(t, a)
	require.NotNil(t, b)
	require.NotNil(t, c)

	updated := m.Update(ctx, b.TaskID, json.RawMessage(`{"status":"completed"}`))
	require.NotNil(t, updated)
	assert.Equal(t, types.StatusCompleted, updated.Status)

	require.True(t, m.Remove(ctx, a.TaskID))

	assert.Equal(t, backend.serverTasks(), m.Tasks(), "no drift after each confirmed operation")
}

func TestUpdateMatchesById(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	a := m.Create(ctx, types.TaskInput{Title: "a"})
	b := m.Create(ctx, types.TaskInput{Title: "b"})
	require.NotNil(t, a)
	require.NotNil(t, b)

	updated := m.Update(ctx, a.TaskID, json.RawMessage(`{"title":"a2"}`))
	require.NotNil(t, updated)

	cache := m.Tasks()
	require.Len(t, cache, 2)
	// order preserved, only the matching entry replaced
	assert.Equal(t, "a2", cache[0].Title)
	assert.Equal(t, "b", cache[1].Title)
}

func TestGetIsReadThrough(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	created := m.Create(ctx, types.TaskInput{Title: "solo"})
	require.NotNil(t, created)
	cacheBefore := m.Tasks()

	got := m.Get(ctx, created.TaskID)
	require.NotNil(t, got)
	assert.Equal(t, created.TaskID, got.TaskID)
	assert.Equal(t, cacheBefore, m.Tasks(), "get must not mutate the cache")
}

func TestFailuresLeaveCacheUnchanged(t *testing.T) {
	m, _ := newTestManager(t)
	ctx := context.Background()

	created := m.Create(ctx, types.TaskInput{Title: "keep"})
	require.NotNil(t, created)

	missing := uuid.NewString()
	assert.Nil(t, m.Update(ctx, missing, json.RawMessage(`{"title":"x"}`)))
	assert.False(t, m.Remove(ctx, missing))
	assert.Nil(t, m.Get(ctx, missing))
	assert.True(t, strings.Contains(m.LastError(), "Task not found") ||
		strings.Contains(m.LastError(), "failed to load task"))

	cache := m.Tasks()
	require.Len(t, cache, 1)
	assert.Equal(t, created.TaskID, cache[0].TaskID)
}

func TestCreateRejectsInvalidInputBeforeDispatch(t *testing.T) {
	m, backend := newTestManager(t)

	assert.Nil(t, m.Create(context.Background(), types.TaskInput{Title: ""}))
	assert.Empty(t, backend.serverTasks())

	assert.Nil(t, m.Create(context.Background(), types.TaskInput{Title: "x", Priority: "urgent"}))
	assert.Empty(t, backend.serverTasks())
}

func TestSuggestionsSplitsStringResponse(t *testing.T) {
	m, _ := newTestManager(t)

	suggestions := m.Suggestions(context.Background())
	require.Len(t, suggestions, 2)
	assert.Equal(t, "1. Review pull requests", suggestions[0])
	assert.Equal(t, "2. Plan sprint", suggestions[1])
	assert.Empty(t, m.LastError())
}

func TestSuggestionsAcceptsListResponse(t *testing.T) {
	m, backend := newTestManager(t)
	backend.mu.Lock()
	backend.suggestions = []string{"Review pull requests", "Plan sprint"}
	backend.mu.Unlock()

	suggestions := m.Suggestions(context.Background())
	require.Len(t, suggestions, 2)
	assert.Equal(t, "Review pull requests", suggestions[0])
}

func TestBusyClearsAfterOperations(t *testing.T) {
	m, _ := newTestManager(t)

	m.List(context.Background())
	assert.False(t, m.Busy())

	m.Create(context.Background(), types.TaskInput{Title: "t"})
	assert.False(t, m.Busy())
}
