// Package batch guards the remote storage write batch: at most one batch is
// open at a time, and misuse fails without reaching the helper.
package batch

import (
	"sync"

	"github.com/GriffinCanCode/mist/internal/result"
)

// Guard is the Closed/Open state machine.
type Guard struct {
	mu   sync.Mutex
	open bool
}

// Begin opens a batch. notify forwards the begin to the helper; the guard
// only opens when it succeeds.
func (g *Guard) Begin(notify func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.open {
		return result.RemoteStorage(result.FileWriteBatchAlreadyInProgress, "a write batch is already open")
	}
	if notify != nil {
		if err := notify(); err != nil {
			return err
		}
	}
	g.open = true
	return nil
}

// End closes the open batch. The guard closes even when notify fails so a
// lost helper cannot leave the batch stuck open.
func (g *Guard) End(notify func() error) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.open {
		return result.RemoteStorage(result.FileWriteBatchNotInProgress, "no write batch is open")
	}
	g.open = false
	if notify != nil {
		return notify()
	}
	return nil
}

// Reset forces the guard closed without notifying anyone.
func (g *Guard) Reset() {
	g.mu.Lock()
	g.open = false
	g.mu.Unlock()
}

// Open reports whether a batch is open.
func (g *Guard) Open() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.open
}
