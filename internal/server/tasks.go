package server

import "sync"

// TaskStatus is the lifecycle state of one analysis task.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// Task is a point-in-time snapshot of one analysis task.
type Task struct {
	ID       string     `json:"task_id"`
	Status   TaskStatus `json:"status"`
	Progress float64    `json:"progress"`
	Message  string     `json:"message"`
	Error    string     `json:"error,omitempty"`
}

// TaskTracker holds the in-process task registry behind a mutex. Tasks are
// keyed by analysis ID, so resubmitting the same request maps onto the same
// task.
type TaskTracker struct {
	mu    sync.Mutex
	tasks map[string]Task
}

// NewTaskTracker creates an empty tracker.
func NewTaskTracker() *TaskTracker {
	return &TaskTracker{tasks: make(map[string]Task)}
}

// Start registers a fresh running task under id. It returns false when a
// task with that id is already running, in which case the caller must not
// start a second run. A completed or failed task may be restarted.
func (t *TaskTracker) Start(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if task, ok := t.tasks[id]; ok && task.Status == TaskRunning {
		return false
	}
	t.tasks[id] = Task{ID: id, Status: TaskRunning, Message: "starting"}
	return true
}

// Update records progress for a running task.
func (t *TaskTracker) Update(id string, progress float64, message string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[id]
	if !ok || task.Status != TaskRunning {
		return
	}
	task.Progress = progress
	task.Message = message
	t.tasks[id] = task
}

// Complete marks the task as finished successfully.
func (t *TaskTracker) Complete(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[id]
	if !ok {
		return
	}
	task.Status = TaskCompleted
	task.Progress = 1.0
	task.Message = "analysis complete"
	t.tasks[id] = task
}

// Fail marks the task as failed with the given error.
func (t *TaskTracker) Fail(id string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	task, ok := t.tasks[id]
	if !ok {
		return
	}
	task.Status = TaskFailed
	task.Message = "analysis failed"
	if err != nil {
		task.Error = err.Error()
	}
	t.tasks[id] = task
}

// Get returns a snapshot of the task with the given id.
func (t *TaskTracker) Get(id string) (Task, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	task, ok := t.tasks[id]
	return task, ok
}
