package hirez

import (
	"context"
	"encoding/json"
	"time"
)

// CallFuture represents the result of a method call running on its own
// goroutine.
type CallFuture struct {
	result json.RawMessage
	err    error
	done   chan struct{}
}

// Await blocks until the call completes and returns its result.
func (f *CallFuture) Await() (json.RawMessage, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for the call to complete, giving up after the
// timeout. The underlying call keeps running; cancel its context to stop it.
func (f *CallFuture) AwaitWithTimeout(timeout time.Duration) (json.RawMessage, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(timeout):
		return nil, ErrAwaitTimeout
	}
}

// IsComplete checks whether the call has finished without blocking.
func (f *CallFuture) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// CallAsync starts Call on its own goroutine and returns a future for its
// result. Futures share the client's session state machine: simultaneous
// futures that find no valid session still trigger at most one createsession
// request. Cancelling ctx abandons this call without affecting a session
// creation other callers are waiting on.
func (c *Client) CallAsync(ctx context.Context, method string, args ...string) *CallFuture {
	f := &CallFuture{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.result, f.err = c.Call(ctx, method, args...)
	}()
	return f
}
