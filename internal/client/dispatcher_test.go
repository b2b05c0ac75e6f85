package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCaller struct {
	mu      sync.Mutex
	calls   []string
	started chan string
	release chan struct{}
	fail    map[string]error
}

func (f *fakeCaller) Call(ctx context.Context, endpoint string, body any) (Payload, error) {
	f.mu.Lock()
	f.calls = append(f.calls, endpoint)
	err := f.fail[endpoint]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- endpoint
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return Payload(`{"message":"` + endpoint + ` ok"}`), nil
}

func waitOutcome(t *testing.T, d *Dispatcher) Outcome {
	t.Helper()
	select {
	case o := <-d.Results():
		return o
	case <-time.After(5 * time.Second):
		t.Fatal("no outcome delivered")
		return Outcome{}
	}
}

func TestDispatcher_SubmitDoesNotBlock(t *testing.T) {
	caller := &fakeCaller{release: make(chan struct{})}
	d := NewDispatcher(caller, 2, 8)
	defer d.Close()

	start := time.Now()
	for i := 0; i < 4; i++ {
		_, err := d.Submit(Task{Endpoint: "get-inventory"})
		require.NoError(t, err)
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(caller.release)
	for i := 0; i < 4; i++ {
		assert.NoError(t, waitOutcome(t, d).Err)
	}
}

func TestDispatcher_OutcomeRunsCallbacksOnDeliver(t *testing.T) {
	caller := &fakeCaller{fail: map[string]error{"purchase-item": errors.New("Item is out of stock")}}
	d := NewDispatcher(caller, 1, 4)
	defer d.Close()

	var got []string
	id, err := d.Submit(Task{
		Endpoint:  "add-item",
		Body:      map[string]any{"name": "bolt"},
		OnSuccess: func(p Payload) { got = append(got, p.Message()) },
		OnError:   func(err error) { got = append(got, "error: "+err.Error()) },
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	_, err = d.Submit(Task{
		Endpoint:  "purchase-item",
		OnSuccess: func(p Payload) { got = append(got, "unexpected") },
		OnError:   func(err error) { got = append(got, "error: "+err.Error()) },
	})
	require.NoError(t, err)

	first := waitOutcome(t, d)
	second := waitOutcome(t, d)

	// Callbacks must not have run on the worker
	assert.Empty(t, got)

	first.Deliver()
	second.Deliver()
	assert.Equal(t, []string{"add-item ok", "error: Item is out of stock"}, got)
	assert.Equal(t, id, first.Task.ID)
}

func TestDispatcher_QueueFull(t *testing.T) {
	caller := &fakeCaller{started: make(chan string, 1), release: make(chan struct{})}
	d := NewDispatcher(caller, 1, 1)
	defer d.Close()

	_, err := d.Submit(Task{Endpoint: "a"})
	require.NoError(t, err)
	<-caller.started // worker is now busy with "a"

	_, err = d.Submit(Task{Endpoint: "b"})
	require.NoError(t, err)

	_, err = d.Submit(Task{Endpoint: "c"})
	assert.ErrorIs(t, err, ErrQueueFull)

	close(caller.release)
	waitOutcome(t, d)
	<-caller.started
	waitOutcome(t, d)
}

func TestDispatcher_Close(t *testing.T) {
	caller := &fakeCaller{release: make(chan struct{})}
	d := NewDispatcher(caller, 2, 4)

	_, err := d.Submit(Task{Endpoint: "get-inventory"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return while a call was in flight")
	}

	_, err = d.Submit(Task{Endpoint: "get-inventory"})
	assert.ErrorIs(t, err, ErrDispatcherClosed)

	// Close is idempotent
	d.Close()
}
