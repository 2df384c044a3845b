package pareto

import (
	"github.com/paretosim/optimization-core/internal/problem"
)

// RowFeasible reports whether one reduced row satisfies every constraint
// of the problem definition, using the thresholds in force right now.
func (f *ObjFunc) RowFeasible(values map[string]float64) bool {
	for _, c := range f.def.Constraints() {
		v, ok := values[c.Name]
		if !ok {
			return false
		}
		switch c.Sense {
		case problem.SenseLessThan:
			if v >= c.Threshold {
				return false
			}
		case problem.SenseGreaterThan:
			if v <= c.Threshold {
				return false
			}
		}
	}
	return true
}

// IsFeasible returns a feasibility flag per member of the table.
func (f *ObjFunc) IsFeasible(rt *ReducedTable) map[string]bool {
	result := make(map[string]bool, rt.Len())
	for _, m := range rt.Members() {
		row, _ := rt.Row(m)
		result[m] = f.RowFeasible(row)
	}
	return result
}

// RowViolation returns the closeness-to-feasibility signal of one row:
// the sum of constraint violations, zero when feasible. Ranking falls
// back to this when an entire pool is infeasible.
func (f *ObjFunc) RowViolation(values map[string]float64) float64 {
	total := 0.0
	for _, c := range f.def.Constraints() {
		v, ok := values[c.Name]
		if !ok {
			continue
		}
		switch c.Sense {
		case problem.SenseLessThan:
			if v >= c.Threshold {
				total += v - c.Threshold
			}
		case problem.SenseGreaterThan:
			if v <= c.Threshold {
				total += c.Threshold - v
			}
		}
	}
	return total
}

// Violations returns the constraint-violation total per member.
func (f *ObjFunc) Violations(rt *ReducedTable) map[string]float64 {
	result := make(map[string]float64, rt.Len())
	for _, m := range rt.Members() {
		row, _ := rt.Row(m)
		result[m] = f.RowViolation(row)
	}
	return result
}
