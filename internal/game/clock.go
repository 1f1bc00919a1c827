package game

import (
	"sync"
	"time"
)

// Clock drives a step function on its own goroutine at a fixed interval
type Clock struct {
	mu          sync.Mutex
	interval    time.Duration
	joinTimeout time.Duration
	step        func() bool
	running     bool
	stop        chan struct{}
	done        chan struct{}
}

// NewClock creates a stopped clock. step returns false to halt the loop.
func NewClock(interval, joinTimeout time.Duration, step func() bool) *Clock {
	return &Clock{
		interval:    interval,
		joinTimeout: joinTimeout,
		step:        step,
	}
}

// Start launches the loop. Returns false if it is already running.
func (c *Clock) Start() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return false
	}
	c.running = true
	c.stop = make(chan struct{})
	c.done = make(chan struct{})
	go c.run(c.stop, c.done)
	return true
}

// Stop halts the loop and waits up to the join timeout for it to exit.
// Returns false if the loop was still busy when the timeout elapsed.
func (c *Clock) Stop() bool {
	c.mu.Lock()
	done := c.done
	c.halt()
	c.mu.Unlock()

	if done == nil {
		return true
	}
	select {
	case <-done:
		return true
	case <-time.After(c.joinTimeout):
		return false
	}
}

// Running reports whether the loop is active
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// halt must be called with c.mu held
func (c *Clock) halt() {
	if c.running {
		c.running = false
		close(c.stop)
	}
}

func (c *Clock) run(stop, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		default:
		}

		if !c.step() {
			c.mu.Lock()
			if c.stop == stop {
				c.halt()
			}
			c.mu.Unlock()
			return
		}

		select {
		case <-ticker.C:
		case <-stop:
			return
		}
	}
}
