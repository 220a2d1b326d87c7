package server

import "sync"

// Coordinator owns the process-wide shutdown signal and the completion
// barrier for connection supervisors. The signal is monotonic: once
// Stopping, never Running again.
type Coordinator struct {
	once sync.Once
	done chan struct{}
	wg   sync.WaitGroup
}

// NewCoordinator creates a coordinator in the Running state.
func NewCoordinator() *Coordinator {
	return &Coordinator{done: make(chan struct{})}
}

// Trigger transitions the signal to Stopping. It is idempotent: a second
// trigger is a no-op. Every subscriber observes the transition
// at-least-once, with no ordering among subscribers.
func (c *Coordinator) Trigger() {
	c.once.Do(func() { close(c.done) })
}

// Stopping reports whether the signal has transitioned.
func (c *Coordinator) Stopping() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// Subscribe returns the observer handle a supervisor selects on. The
// channel is closed on trigger, so late subscribers still observe it.
func (c *Coordinator) Subscribe() <-chan struct{} {
	return c.done
}

// Track registers one supervisor with the completion barrier and returns
// the function the supervisor must call when it exits.
func (c *Coordinator) Track() func() {
	c.wg.Add(1)
	return c.wg.Done
}

// Join blocks until every tracked supervisor has exited.
func (c *Coordinator) Join() {
	c.wg.Wait()
}
