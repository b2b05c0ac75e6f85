package client

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrDispatcherClosed = errors.New("dispatcher is closed")
	ErrQueueFull        = errors.New("too many requests in flight")
)

// Caller performs one outbound API call.
type Caller interface {
	Call(ctx context.Context, endpoint string, body any) (Payload, error)
}

// Task is one API call plus the callbacks that receive its result. The
// callbacks run on whichever goroutine calls Outcome.Deliver.
type Task struct {
	ID        string
	Endpoint  string
	Body      any // nil means GET
	OnSuccess func(Payload)
	OnError   func(error)
}

// Outcome is the single result of a Task.
type Outcome struct {
	Task    Task
	Payload Payload
	Err     error
}

// Deliver invokes the task's success or error callback.
func (o Outcome) Deliver() {
	if o.Err != nil {
		if o.Task.OnError != nil {
			o.Task.OnError(o.Err)
		}
		return
	}
	if o.Task.OnSuccess != nil {
		o.Task.OnSuccess(o.Payload)
	}
}

// Dispatcher runs tasks on a fixed pool of workers and hands their outcomes
// back over Results. Workers never run callbacks themselves.
type Dispatcher struct {
	caller  Caller
	tasks   chan Task
	results chan Outcome

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

func NewDispatcher(caller Caller, workers, queueSize int) *Dispatcher {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		caller:  caller,
		tasks:   make(chan Task, queueSize),
		results: make(chan Outcome, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.workerLoop()
		}()
	}
	return d
}

// Submit queues task and returns its ID without waiting for it to run.
func (d *Dispatcher) Submit(task Task) (string, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return "", ErrDispatcherClosed
	}
	select {
	case d.tasks <- task:
		return task.ID, nil
	default:
		return "", ErrQueueFull
	}
}

// Results carries one Outcome per submitted task. It is closed by Close.
func (d *Dispatcher) Results() <-chan Outcome {
	return d.results
}

// Close stops accepting tasks, abandons in-flight calls and waits for the
// workers to exit. Outcomes not yet consumed are dropped.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.tasks)
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
	close(d.results)
}

func (d *Dispatcher) workerLoop() {
	for task := range d.tasks {
		payload, err := d.caller.Call(d.ctx, task.Endpoint, task.Body)

		select {
		case d.results <- Outcome{Task: task, Payload: payload, Err: err}:
		case <-d.ctx.Done():
		}
	}
}
