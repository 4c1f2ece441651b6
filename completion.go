package airport

import (
	"context"
	"fmt"
	"sync"
)

// completions tracks scheduled completion tasks so Close can drain them.
type completions struct {
	mu      sync.Mutex
	wg      sync.WaitGroup
	pending map[string]struct{}
	closed  bool
}

func newCompletions() *completions {
	return &completions{
		pending: make(map[string]struct{}),
	}
}

// add registers a completion task for tokenID. The returned func must be called
// exactly once when the task has finished.
func (c *completions) add(tokenID string) (func(), error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrAirportClosed
	}

	c.pending[tokenID] = struct{}{}
	c.wg.Add(1)

	return func() {
		c.mu.Lock()
		delete(c.pending, tokenID)
		c.mu.Unlock()
		c.wg.Done()
	}, nil
}

func (c *completions) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// close stops accepting new tasks. Tasks already added keep running.
func (c *completions) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// wait blocks until every added task has finished or ctx is done.
func (c *completions) wait(ctx context.Context) error {
	var done = make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("failed to drain %d completion tasks: %w", c.len(), ctx.Err())
	}
}
