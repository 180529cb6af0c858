package pipeline

import "sync"

// Task is the handle for one in-flight processing run. Done is closed
// when the run finishes, after which Err reports its outcome.
type Task struct {
	RecordingID string

	done chan struct{}

	mu  sync.Mutex
	err error
}

func newTask(recordingID string) *Task {
	return &Task{
		RecordingID: recordingID,
		done:        make(chan struct{}),
	}
}

// Done returns a channel closed when the task finishes.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Err returns the task's terminal error, nil on success. Only meaningful
// after Done is closed.
func (t *Task) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.err
}

func (t *Task) finish(err error) {
	t.mu.Lock()
	t.err = err
	t.mu.Unlock()

	close(t.done)
}
