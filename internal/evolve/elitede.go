package evolve

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/paretosim/optimization-core/internal/dispatch"
	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/internal/pareto"
	"github.com/paretosim/optimization-core/internal/problem"
	"github.com/paretosim/optimization-core/pkg/utils"
)

// Config is the engine's immutable configuration, fixed at construction.
type Config struct {
	// Weight is the differential weight applied to the difference vector
	Weight float64
	// CrossoverProb is the per-variable crossover probability
	CrossoverProb float64
	// FreshDraws resamples the uncertain parameters every generation;
	// parents and offspring are then re-evaluated under the same draws
	// so comparisons stay fair
	FreshDraws bool
	// ParamDraws is the per-parameter sampling recipe used for fresh
	// draws; parameters absent from the map draw uniformly
	ParamDraws map[string]ensemble.DrawKind
	// Seed drives all variation and sampling randomness
	Seed int64
}

// DefaultConfig returns the standard rand/1/bin settings.
func DefaultConfig() Config {
	return Config{
		Weight:        0.8,
		CrossoverProb: 0.9,
	}
}

// EliteDiffEvol is a multi-objective, chance-constrained differential
// evolution engine with NSGA-II style elitist truncation. It implements
// EvolAlg.
type EliteDiffEvol struct {
	def        *problem.Definition
	dispatcher *dispatch.Dispatcher
	cfg        Config
	rng        *utils.RandSource
	log        *slog.Logger

	state      State
	generation int
	risk       float64

	objFunc *pareto.ObjFunc
	dv      *ensemble.Table
	parReal *ensemble.Table
	reduced *pareto.ReducedTable
	scores  []MemberScore
}

var _ EvolAlg = (*EliteDiffEvol)(nil)

// NewEliteDiffEvol creates an engine over the given problem definition
// and dispatcher.
func NewEliteDiffEvol(def *problem.Definition, dispatcher *dispatch.Dispatcher, cfg Config, log *slog.Logger) (*EliteDiffEvol, error) {
	if def == nil {
		return nil, fmt.Errorf("evolve: problem definition is required")
	}
	if dispatcher == nil {
		return nil, fmt.Errorf("evolve: dispatcher is required")
	}
	if cfg.Weight <= 0 || cfg.Weight > 2 {
		return nil, fmt.Errorf("evolve: differential weight must be in (0, 2], got %f", cfg.Weight)
	}
	if cfg.CrossoverProb < 0 || cfg.CrossoverProb > 1 {
		return nil, fmt.Errorf("evolve: crossover probability must be in [0, 1], got %f", cfg.CrossoverProb)
	}
	if log == nil {
		log = slog.Default()
	}
	return &EliteDiffEvol{
		def:        def,
		dispatcher: dispatcher,
		cfg:        cfg,
		rng:        utils.NewRandSource(cfg.Seed),
		log:        log,
		state:      StateUninitialized,
	}, nil
}

// State implements EvolAlg.
func (e *EliteDiffEvol) State() State {
	return e.state
}

// Generation implements EvolAlg.
func (e *EliteDiffEvol) Generation() int {
	return e.generation
}

// Population implements EvolAlg.
func (e *EliteDiffEvol) Population() *ensemble.Table {
	if e.dv == nil {
		return nil
	}
	return e.dv.Clone()
}

// Scores implements EvolAlg.
func (e *EliteDiffEvol) Scores() []MemberScore {
	out := make([]MemberScore, len(e.scores))
	copy(out, e.scores)
	return out
}

// Initialize validates the objective specification and ensembles, runs
// the first dispatch cycle and scores the initial population. Calling it
// again restarts the engine from the supplied ensembles.
func (e *EliteDiffEvol) Initialize(ctx context.Context, spec pareto.ObjectiveSpec, dvEnsemble, parEnsemble *ensemble.Table, risk float64) error {
	if risk < 0 || risk > 1 {
		return fmt.Errorf("evolve: risk must be in [0, 1], got %f", risk)
	}
	if dvEnsemble == nil || dvEnsemble.Len() == 0 {
		return fmt.Errorf("evolve: decision-variable ensemble is empty")
	}
	if parEnsemble == nil || parEnsemble.Len() == 0 {
		return fmt.Errorf("evolve: uncertain-parameter ensemble is empty")
	}
	for _, v := range dvEnsemble.Variables() {
		if _, ok := e.def.DecisionVariable(v); !ok {
			return fmt.Errorf("evolve: ensemble variable %s is not a decision variable of the problem", v)
		}
	}
	for _, v := range parEnsemble.Variables() {
		if _, ok := e.def.UncertainParameter(v); !ok {
			return fmt.Errorf("evolve: ensemble variable %s is not an uncertain parameter of the problem", v)
		}
	}

	objFunc, err := pareto.NewObjFunc(e.def, spec, e.log)
	if err != nil {
		return err
	}

	dv := dvEnsemble.Clone()
	parReal := parEnsemble.Clone()

	outcomes, err := e.dispatcher.EvaluateCycle(ctx, e.workItems(dv, parReal), objFunc.Quantities())
	if err != nil {
		return fmt.Errorf("evolve: initial dispatch cycle: %w", err)
	}
	reduced, err := objFunc.ReduceStackWithRiskShift(outcomes, parReal.Len(), risk)
	if err != nil {
		return fmt.Errorf("evolve: initial reduction: %w", err)
	}

	scores, err := e.rank(objFunc, reduced)
	if err != nil {
		return fmt.Errorf("evolve: initial ranking: %w", err)
	}

	e.objFunc = objFunc
	e.risk = risk
	e.dv = dv
	e.parReal = parReal
	e.reduced = reduced
	e.scores = scores
	e.generation = 0
	e.state = StateInitialized

	e.log.Info("engine initialized",
		"population", dv.Len(),
		"parameter_realizations", parReal.Len(),
		"objectives", len(spec),
		"risk", risk)
	return nil
}

// Update advances the population by one generation. On failure the
// previous generation's population remains authoritative.
func (e *EliteDiffEvol) Update(ctx context.Context) error {
	if e.state == StateUninitialized {
		return ErrNotInitialized
	}
	gen := e.generation + 1

	offspring, err := e.vary(gen)
	if err != nil {
		return &GenerationError{Stage: StageVariation, Generation: gen, Err: err}
	}

	parReal := e.parReal
	if e.cfg.FreshDraws {
		parReal, err = ensemble.FromDraws(e.def.UncertainParameters(), e.cfg.ParamDraws, e.parReal.Len(), e.rng)
		if err != nil {
			return &GenerationError{Stage: StageDispatch, Generation: gen, Err: err}
		}
	}

	// With fresh draws the parents are re-evaluated under the same new
	// realizations as the offspring so the merged comparison stays fair.
	toEvaluate := offspring
	if e.cfg.FreshDraws {
		toEvaluate = mergeTables(e.dv, offspring)
	}

	outcomes, err := e.dispatcher.EvaluateCycle(ctx, e.workItems(toEvaluate, parReal), e.objFunc.Quantities())
	if err != nil {
		return &GenerationError{Stage: StageDispatch, Generation: gen, Err: err}
	}

	freshReduced, err := e.objFunc.ReduceStackWithRiskShift(outcomes, parReal.Len(), e.risk)
	if err != nil {
		return &GenerationError{Stage: StageReduction, Generation: gen, Err: err}
	}
	e.state = StateEvaluated

	// Merge parent and offspring pools: parents first, offspring after,
	// so insertion order breaks ties deterministically.
	combinedDV := mergeTables(e.dv, offspring)
	var combined *pareto.ReducedTable
	if e.cfg.FreshDraws {
		combined = freshReduced
	} else {
		combined = e.reduced.Merge(freshReduced)
	}

	scores, err := e.rank(e.objFunc, combined)
	if err != nil {
		return &GenerationError{Stage: StageRanking, Generation: gen, Err: err}
	}
	selected := truncate(scores, e.dv.Len())

	names := make([]string, len(selected))
	for i, s := range selected {
		names[i] = s.Member
	}
	nextDV, err := combinedDV.Subset(names)
	if err != nil {
		return &GenerationError{Stage: StageRanking, Generation: gen, Err: err}
	}

	e.dv = nextDV
	e.parReal = parReal
	e.reduced = combined.Subset(names)
	e.scores = selected
	e.generation = gen
	e.state = StateAdvanced

	stats := ComputeStats(gen, selected, e.objFunc.Objectives())
	e.log.Info("generation advanced",
		"generation", gen,
		"population", len(selected),
		"front_size", stats.FrontSize,
		"feasible", stats.FeasibleCount)
	return nil
}

// workItems builds the dispatch cycle for a decision ensemble: one item
// per (member, parameter realization) pair.
func (e *EliteDiffEvol) workItems(dv, parReal *ensemble.Table) []dispatch.WorkItem {
	items := make([]dispatch.WorkItem, 0, dv.Len()*parReal.Len())
	for i := 0; i < dv.Len(); i++ {
		member := dv.RowAt(i)
		for j := 0; j < parReal.Len(); j++ {
			real := parReal.RowAt(j)
			items = append(items, dispatch.WorkItem{
				Member:      member.Name,
				Realization: real.Name,
				Decisions:   member.Values,
				Parameters:  real.Values,
			})
		}
	}
	return items
}

// rank scores a reduced pool: feasibility, dominance fronts and crowding
// distance. Infeasible members rank strictly behind every feasible one;
// an all-infeasible pool falls back to violation-aware dominance.
func (e *EliteDiffEvol) rank(objFunc *pareto.ObjFunc, reduced *pareto.ReducedTable) ([]MemberScore, error) {
	if reduced.Len() == 0 {
		return nil, fmt.Errorf("empty pool")
	}
	feasible := objFunc.IsFeasible(reduced)
	violations := objFunc.Violations(reduced)

	var feasibleMembers, infeasibleMembers []string
	for _, m := range reduced.Members() {
		if feasible[m] {
			feasibleMembers = append(feasibleMembers, m)
		} else {
			infeasibleMembers = append(infeasibleMembers, m)
		}
	}

	var scores []MemberScore
	appendFronts := func(fronts [][]string, table *pareto.ReducedTable, frontOffset int) {
		for fi, front := range fronts {
			nd := make(map[string]bool, len(front))
			for _, m := range front {
				nd[m] = true
			}
			crowding := objFunc.CrowdDistance(table.Subset(front), nd)
			for _, m := range front {
				row, _ := reduced.Row(m)
				scores = append(scores, MemberScore{
					Member:    m,
					Values:    row,
					Feasible:  feasible[m],
					Violation: violations[m],
					Front:     frontOffset + fi,
					Crowding:  crowding[m],
				})
			}
		}
	}

	if len(feasibleMembers) == 0 {
		// Nothing feasible to anchor on: closeness to feasibility becomes
		// a secondary dominance criterion.
		appendFronts(objFunc.FrontsWithViolation(reduced), reduced, 0)
		return scores, nil
	}

	feasibleTable := reduced.Subset(feasibleMembers)
	fronts := objFunc.Fronts(feasibleTable)
	appendFronts(fronts, feasibleTable, 0)

	// Infeasible members trail every feasible front, ordered by
	// closeness to feasibility.
	sort.SliceStable(infeasibleMembers, func(i, j int) bool {
		return violations[infeasibleMembers[i]] < violations[infeasibleMembers[j]]
	})
	for _, m := range infeasibleMembers {
		row, _ := reduced.Row(m)
		scores = append(scores, MemberScore{
			Member:    m,
			Values:    row,
			Feasible:  false,
			Violation: violations[m],
			Front:     len(fronts),
			Crowding:  math.Inf(-1),
		})
	}
	return scores, nil
}

// truncate applies elitist selection: whole fronts are taken greedily in
// rank order; the first front that would overflow the budget is filled
// by descending crowding distance, ties broken by insertion order.
func truncate(scores []MemberScore, target int) []MemberScore {
	if len(scores) <= target {
		out := make([]MemberScore, len(scores))
		copy(out, scores)
		return out
	}

	byFront := make(map[int][]MemberScore)
	maxFront := 0
	for _, s := range scores {
		byFront[s.Front] = append(byFront[s.Front], s)
		if s.Front > maxFront {
			maxFront = s.Front
		}
	}

	selected := make([]MemberScore, 0, target)
	for front := 0; front <= maxFront && len(selected) < target; front++ {
		members := byFront[front]
		if len(selected)+len(members) <= target {
			selected = append(selected, members...)
			continue
		}
		partial := make([]MemberScore, len(members))
		copy(partial, members)
		sort.SliceStable(partial, func(i, j int) bool {
			return partial[i].Crowding > partial[j].Crowding
		})
		selected = append(selected, partial[:target-len(selected)]...)
	}
	return selected
}

// mergeTables concatenates two decision ensembles over the same
// variable set, first table's rows first.
func mergeTables(a, b *ensemble.Table) *ensemble.Table {
	merged := a.Clone()
	for i := 0; i < b.Len(); i++ {
		row := b.RowAt(i)
		_ = merged.Append(row.Name, row.Values)
	}
	return merged
}

