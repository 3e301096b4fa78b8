package view

import (
	"context"
	"errors"
	"fmt"

	"github.com/joacominatel/telemetrydash/internal/app"
)

// ErrAlreadyActive is returned when a view is activated a second time.
var ErrAlreadyActive = errors.New("view already active")

// Loader runs one fetch cycle.
type Loader interface {
	LoadSnapshot(ctx context.Context) (*app.Snapshot, error)
}

// Controller drives a State through a synchronous fetch cycle. The
// terminal UI drives State asynchronously instead; see Load.
type Controller struct {
	loader Loader
	state  *State
}

// NewController creates a controller in the constructed phase.
func NewController(loader Loader, variant app.Variant) *Controller {
	return &Controller{loader: loader, state: NewState(variant)}
}

// State returns the controller's view state.
func (c *Controller) State() *State {
	return c.state
}

// Activate enters the active phase and runs the fetch cycle. Failures of
// the cycle land in the state, not in the returned error.
func (c *Controller) Activate(ctx context.Context) error {
	if !c.state.Activate() {
		return ErrAlreadyActive
	}
	snap, err := Load(ctx, c.loader)
	c.state.Resolve(snap, err)
	return nil
}

// Load runs the loader, turning a panic into an error.
func Load(ctx context.Context, loader Loader) (snap *app.Snapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap = nil
			err = fmt.Errorf("unexpected error: %v", r)
		}
	}()
	return loader.LoadSnapshot(ctx)
}
