package runner

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a deferred action.
type TaskStatus string

// Task lifecycle states.
const (
	StatusRunning   TaskStatus = "running"
	StatusDone      TaskStatus = "done"
	StatusCancelled TaskStatus = "cancelled"
)

// ItemError is one failed object within a bulk action.
type ItemError struct {
	ID      string `json:"id"`
	Message string `json:"error"`
}

// Task is the progress record of one deferred action. Progress is
// checkpointed after every batch, so a crash mid-run leaves a known
// partial-completion count rather than silent loss.
type Task struct {
	Handle     string      `json:"task_handle"`
	Resource   string      `json:"resource"`
	Action     string      `json:"action"`
	Status     TaskStatus  `json:"status"`
	Affected   int64       `json:"affected"`
	Processed  int64       `json:"processed"`
	Errors     []ItemError `json:"errors"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt *time.Time  `json:"finished_at,omitempty"`

	cancelled bool
}

// TaskStore tracks deferred actions in memory, keyed by opaque handle.
// Handles stay queryable for the process lifetime.
type TaskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

// NewTaskStore creates an empty task store.
func NewTaskStore() *TaskStore {
	return &TaskStore{tasks: make(map[string]*Task)}
}

// Create registers a new running task and returns its handle.
func (s *TaskStore) Create(resource, action string) string {
	task := &Task{
		Handle:    uuid.NewString(),
		Resource:  resource,
		Action:    action,
		Status:    StatusRunning,
		Errors:    []ItemError{},
		StartedAt: time.Now(),
	}

	s.mu.Lock()
	s.tasks[task.Handle] = task
	s.mu.Unlock()

	return task.Handle
}

// Get returns a copy of the task for the given handle.
func (s *TaskStore) Get(handle string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[handle]
	if !ok {
		return Task{}, false
	}

	snapshot := *task
	snapshot.Errors = append([]ItemError{}, task.Errors...)

	return snapshot, true
}

// Checkpoint records one processed batch.
func (s *TaskStore) Checkpoint(handle string, affected, processed int64, errs []ItemError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[handle]
	if !ok {
		return
	}

	task.Affected += affected
	task.Processed += processed
	task.Errors = append(task.Errors, errs...)
}

// Finish marks the task's terminal state.
func (s *TaskStore) Finish(handle string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[handle]
	if !ok {
		return
	}

	now := time.Now()
	task.Status = status
	task.FinishedAt = &now
}

// Cancel flags the task so no further batches start. Batches already running
// complete; cancellation mid-batch is not guaranteed.
func (s *TaskStore) Cancel(handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[handle]
	if !ok || task.Status != StatusRunning {
		return false
	}

	task.cancelled = true

	return true
}

// Cancelled reports whether the task was asked to stop.
func (s *TaskStore) Cancelled(handle string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[handle]

	return ok && task.cancelled
}
