// Package evolve contains the evolutionary optimization engine: the
// EvolAlg contract, its elitist differential-evolution implementation,
// and generation statistics. The engine drives generations sequentially;
// all parallelism lives inside the dispatcher it calls.
package evolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/internal/pareto"
)

// State is the engine's lifecycle position. Generations move the engine
// between Evaluated and Advanced until the caller stops invoking Update;
// there is no automatic convergence stop.
type State int

const (
	// StateUninitialized means Initialize has not run yet
	StateUninitialized State = iota
	// StateInitialized means the initial population is scored
	StateInitialized
	// StateEvaluated means the current generation's outcomes are reduced
	// but the population has not been truncated yet
	StateEvaluated
	// StateAdvanced means the population has been truncated to the next
	// generation
	StateAdvanced
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateEvaluated:
		return "evaluated"
	case StateAdvanced:
		return "advanced"
	default:
		return "uninitialized"
	}
}

// ErrNotInitialized is returned when Update is called before Initialize.
var ErrNotInitialized = errors.New("evolve: update called before initialize")

// Stage names the part of a generation step that failed.
type Stage string

const (
	// StageVariation is offspring generation
	StageVariation Stage = "variation"
	// StageDispatch is the model evaluation cycle
	StageDispatch Stage = "dispatch"
	// StageReduction is the risk-shifted stack reduction
	StageReduction Stage = "reduction"
	// StageRanking is dominance ranking and truncation
	StageRanking Stage = "ranking"
)

// GenerationError reports which stage of a generation failed. The stored
// population is left untouched; the previous generation stays
// authoritative and the caller decides whether to retry or halt.
type GenerationError struct {
	Stage      Stage
	Generation int
	Err        error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation %d: %s stage failed: %v", e.Generation, e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// MemberScore is one candidate's fully scored population record: its
// reduced risk-adjusted values, feasibility, dominance front and
// crowding distance. A population is either fully scored or absent,
// never partially valid.
type MemberScore struct {
	Member    string
	Values    map[string]float64
	Feasible  bool
	Violation float64
	Front     int
	Crowding  float64
}

// EvolAlg is the evolutionary algorithm contract. Implementations own
// the population state machine; callers drive it one generation at a
// time.
type EvolAlg interface {
	// Initialize validates the inputs, runs the first dispatch cycle and
	// scores the initial population
	Initialize(ctx context.Context, spec pareto.ObjectiveSpec, dvEnsemble, parEnsemble *ensemble.Table, risk float64) error
	// Update advances the population by one generation
	Update(ctx context.Context) error
	// State returns the lifecycle position
	State() State
	// Generation returns the number of completed generations
	Generation() int
	// Population returns the current decision-variable ensemble
	Population() *ensemble.Table
	// Scores returns the current population's score records
	Scores() []MemberScore
}
