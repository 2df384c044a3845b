// Package pareto implements the objective function evaluator: risk-shifted
// reduction of stochastic outcome stacks, feasibility testing against live
// constraint thresholds, dominance ranking and crowding-distance scoring.
// Everything here is pure computation over tables; no I/O, no state.
package pareto

import (
	"fmt"
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/internal/problem"
)

// Direction says whether an objective quantity is minimized or maximized.
type Direction int

const (
	// Minimize prefers smaller values
	Minimize Direction = iota
	// Maximize prefers larger values
	Maximize
)

func (d Direction) String() string {
	if d == Maximize {
		return "max"
	}
	return "min"
}

// ParseDirection converts a config string ("min"/"max") to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "min", "minimize":
		return Minimize, nil
	case "max", "maximize":
		return Maximize, nil
	default:
		return Minimize, fmt.Errorf("unknown objective direction %q", s)
	}
}

// Objective maps an output quantity to an optimization direction.
type Objective struct {
	Name      string
	Direction Direction
}

// ObjectiveSpec is the ordered list of objectives. Order matters for
// deterministic iteration and for the sort-based dominance strategy.
type ObjectiveSpec []Objective

// Names returns the objective quantity names in spec order.
func (s ObjectiveSpec) Names() []string {
	names := make([]string, len(s))
	for i, o := range s {
		names[i] = o.Name
	}
	return names
}

// ObjFunc scores outcome tables against an objective specification and
// the problem definition's constraints. Thresholds are read from the
// definition at check time, so threshold adjustments between generations
// take effect without rebuilding the evaluator.
type ObjFunc struct {
	def        *problem.Definition
	objectives ObjectiveSpec
	direction  map[string]Direction
	log        *slog.Logger
}

// NewObjFunc validates the objective specification against the problem
// definition and builds an evaluator.
func NewObjFunc(def *problem.Definition, spec ObjectiveSpec, log *slog.Logger) (*ObjFunc, error) {
	if def == nil {
		return nil, fmt.Errorf("pareto: problem definition is required")
	}
	if len(spec) == 0 {
		return nil, fmt.Errorf("pareto: at least one objective is required")
	}
	if log == nil {
		log = slog.Default()
	}
	direction := make(map[string]Direction, len(spec))
	for _, o := range spec {
		if !def.HasOutput(o.Name) {
			return nil, fmt.Errorf("pareto: objective %s names no output quantity of the problem", o.Name)
		}
		if _, dup := direction[o.Name]; dup {
			return nil, fmt.Errorf("pareto: objective %s listed twice", o.Name)
		}
		direction[o.Name] = o.Direction
	}
	return &ObjFunc{
		def:        def,
		objectives: spec,
		direction:  direction,
		log:        log,
	}, nil
}

// Objectives returns the objective specification.
func (f *ObjFunc) Objectives() ObjectiveSpec {
	return f.objectives
}

// Quantities returns every output quantity the evaluator needs from the
// simulator: objectives first in spec order, then constrained quantities
// not already covered, in declaration order.
func (f *ObjFunc) Quantities() []string {
	names := make([]string, 0, len(f.objectives))
	seen := make(map[string]bool, len(f.objectives))
	for _, o := range f.objectives {
		names = append(names, o.Name)
		seen[o.Name] = true
	}
	for _, c := range f.def.Constraints() {
		if !seen[c.Name] {
			names = append(names, c.Name)
			seen[c.Name] = true
		}
	}
	return names
}

// adjusted maps a value into minimize-space for the named objective.
func (f *ObjFunc) adjusted(name string, value float64) float64 {
	if f.direction[name] == Maximize {
		return -value
	}
	return value
}

// ReducedTable holds one risk-adjusted row per population member.
type ReducedTable struct {
	members []string
	rows    map[string]map[string]float64
}

func newReducedTable() *ReducedTable {
	return &ReducedTable{rows: make(map[string]map[string]float64)}
}

func (rt *ReducedTable) append(member string, values map[string]float64) {
	rt.members = append(rt.members, member)
	rt.rows[member] = values
}

// Members returns member names in insertion order.
func (rt *ReducedTable) Members() []string {
	out := make([]string, len(rt.members))
	copy(out, rt.members)
	return out
}

// Row returns the reduced values of one member.
func (rt *ReducedTable) Row(member string) (map[string]float64, bool) {
	row, ok := rt.rows[member]
	return row, ok
}

// Len returns the number of members.
func (rt *ReducedTable) Len() int {
	return len(rt.members)
}

// Subset returns a reduced table holding only the given members, in the
// order given. Unknown members are skipped.
func (rt *ReducedTable) Subset(members []string) *ReducedTable {
	sub := newReducedTable()
	for _, m := range members {
		if row, ok := rt.rows[m]; ok {
			sub.append(m, row)
		}
	}
	return sub
}

// Merge returns a table holding rt's members followed by other's, each
// in insertion order. Duplicate members keep rt's row.
func (rt *ReducedTable) Merge(other *ReducedTable) *ReducedTable {
	merged := newReducedTable()
	for _, m := range rt.members {
		merged.append(m, rt.rows[m])
	}
	for _, m := range other.members {
		if _, ok := merged.rows[m]; !ok {
			merged.append(m, other.rows[m])
		}
	}
	return merged
}

// ReduceStackWithRiskShift collapses each member's stack of groupSize
// stochastic outcome rows into one representative value per quantity by
// selecting the empirical quantile matching the risk tolerance.
//
// Risk is direction-aware: for a minimized objective a higher risk picks
// a higher (more conservative) quantile, for a maximized objective a
// lower one. Constrained quantities are reduced at the conservative
// quantile for their inequality sense. risk=0.5 is median behavior.
func (f *ObjFunc) ReduceStackWithRiskShift(outcomes *ensemble.OutcomeTable, groupSize int, risk float64) (*ReducedTable, error) {
	if outcomes == nil {
		return nil, fmt.Errorf("pareto: outcome table is required")
	}
	if groupSize <= 0 {
		return nil, fmt.Errorf("pareto: group size must be positive, got %d", groupSize)
	}
	if risk < 0 || risk > 1 {
		return nil, fmt.Errorf("pareto: risk must be in [0, 1], got %f", risk)
	}

	quantities := f.Quantities()
	reduced := newReducedTable()
	for _, member := range outcomes.Members() {
		block := outcomes.MemberBlock(member)
		if len(block) < groupSize {
			return nil, fmt.Errorf("pareto: member %s has %d stochastic rows, need %d", member, len(block), groupSize)
		}
		row := make(map[string]float64, len(quantities))
		for _, q := range quantities {
			values := make([]float64, groupSize)
			for i := 0; i < groupSize; i++ {
				v, ok := block[i][q]
				if !ok {
					return nil, fmt.Errorf("pareto: member %s missing outcome for %s", member, q)
				}
				values[i] = v
			}
			sort.Float64s(values)
			row[q] = stat.Quantile(f.quantileFor(q, risk), stat.Empirical, values, nil)
		}
		reduced.append(member, row)
	}
	return reduced, nil
}

// quantileFor returns the empirical quantile that represents the risk
// tolerance for one quantity. Conservative means pessimistic: high values
// for minimized objectives and less-than constraints, low values for
// maximized objectives and greater-than constraints.
func (f *ObjFunc) quantileFor(quantity string, risk float64) float64 {
	if dir, isObjective := f.direction[quantity]; isObjective {
		if dir == Maximize {
			return 1 - risk
		}
		return risk
	}
	if q, ok := f.def.Output(quantity); ok && q.Sense == problem.SenseGreaterThan {
		return 1 - risk
	}
	return risk
}
