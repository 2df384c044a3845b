// Package dispatch evaluates populations of candidate solutions against
// an external simulator. A Dispatcher owns a fixed pool of worker
// connections and runs one all-or-nothing dispatch cycle per generation;
// the wire protocol is hidden behind the Transport interface so tests run
// in-process while production talks to remote worker daemons.
package dispatch

import (
	"context"
	"fmt"
)

// WorkItem is one simulator run: a candidate's decision-variable
// assignment paired with one uncertain-parameter realization.
type WorkItem struct {
	Member      string             `json:"member"`
	Realization string             `json:"realization"`
	Decisions   map[string]float64 `json:"decisions"`
	Parameters  map[string]float64 `json:"parameters"`
}

// Result carries the simulator outputs for one work item.
type Result struct {
	Member      string             `json:"member"`
	Realization string             `json:"realization"`
	Values      map[string]float64 `json:"values"`
}

// Simulator is the deterministic model evaluation contract: given full
// decision and parameter assignments it produces every output quantity.
// Implementations must be side-effect-free outside their own working
// area so items can be retried on another worker.
type Simulator func(ctx context.Context, decisions, parameters map[string]float64) (map[string]float64, error)

// Transport is one worker connection: submit a work item, await its
// result. One outstanding item per connection; the Dispatcher provides
// the parallelism across connections.
type Transport interface {
	// Name identifies the worker for logs
	Name() string
	// Submit runs one work item to completion or failure
	Submit(ctx context.Context, item WorkItem) (Result, error)
	// Close releases the connection
	Close() error
}

// InProcessTransport runs the simulator in the calling process. Used by
// tests and single-machine runs.
type InProcessTransport struct {
	name string
	sim  Simulator
}

// NewInProcessTransport wraps a Simulator as a worker connection.
func NewInProcessTransport(name string, sim Simulator) (*InProcessTransport, error) {
	if sim == nil {
		return nil, fmt.Errorf("dispatch: simulator is required")
	}
	if name == "" {
		name = "inproc"
	}
	return &InProcessTransport{name: name, sim: sim}, nil
}

// Name implements Transport.
func (t *InProcessTransport) Name() string {
	return t.name
}

// Submit implements Transport.
func (t *InProcessTransport) Submit(ctx context.Context, item WorkItem) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	values, err := t.sim(ctx, item.Decisions, item.Parameters)
	if err != nil {
		return Result{}, fmt.Errorf("simulator failed for %s/%s: %w", item.Member, item.Realization, err)
	}
	return Result{
		Member:      item.Member,
		Realization: item.Realization,
		Values:      values,
	}, nil
}

// Close implements Transport.
func (t *InProcessTransport) Close() error {
	return nil
}
