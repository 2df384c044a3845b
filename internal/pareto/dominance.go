package pareto

import (
	"sort"
)

// Above this population size the sort-based strategy is cheaper than the
// pairwise one.
const kungCutover = 64

// Dominates reports whether row a dominates row b: at least as good on
// every objective after applying direction, strictly better on at least
// one. Rows with identical objective vectors are mutually non-dominating.
func (f *ObjFunc) Dominates(a, b map[string]float64) bool {
	strictlyBetter := false
	for _, o := range f.objectives {
		av := f.adjusted(o.Name, a[o.Name])
		bv := f.adjusted(o.Name, b[o.Name])
		if av > bv {
			return false
		}
		if av < bv {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// IsNondominated reports, per member, whether no other row of the table
// dominates it. Dispatches to the pairwise strategy for small tables and
// the sort-based strategy for large ones; both produce identical sets.
func (f *ObjFunc) IsNondominated(rt *ReducedTable) map[string]bool {
	if rt.Len() <= kungCutover {
		return f.IsNondominatedContinuous(rt)
	}
	return f.IsNondominatedKung(rt)
}

// IsNondominatedContinuous is the exact pairwise reference strategy.
// O(n²·m) but simple; kept as ground truth for the sort-based strategy.
func (f *ObjFunc) IsNondominatedContinuous(rt *ReducedTable) map[string]bool {
	members := rt.Members()
	result := make(map[string]bool, len(members))
	for _, m := range members {
		row, _ := rt.Row(m)
		dominated := false
		for _, other := range members {
			if other == m {
				continue
			}
			otherRow, _ := rt.Row(other)
			if f.Dominates(otherRow, row) {
				dominated = true
				break
			}
		}
		result[m] = !dominated
	}
	return result
}

// IsNondominatedKung is the sort-based strategy: rows are ordered
// lexicographically over the direction-adjusted objective vector, which
// places every dominator before anything it dominates (including ties on
// the leading objective), then a single sweep compares each row against
// the accepted frontier only. Transitivity of dominance makes the
// frontier-only check exact.
func (f *ObjFunc) IsNondominatedKung(rt *ReducedTable) map[string]bool {
	members := rt.Members()
	adjusted := make([][]float64, len(members))
	for i, m := range members {
		row, _ := rt.Row(m)
		vec := make([]float64, len(f.objectives))
		for j, o := range f.objectives {
			vec[j] = f.adjusted(o.Name, row[o.Name])
		}
		adjusted[i] = vec
	}

	order := make([]int, len(members))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		va, vb := adjusted[order[a]], adjusted[order[b]]
		for j := range va {
			if va[j] != vb[j] {
				return va[j] < vb[j]
			}
		}
		return false
	})

	result := make(map[string]bool, len(members))
	var frontier []int
	for _, idx := range order {
		dominated := false
		for _, fi := range frontier {
			if dominatesAdjusted(adjusted[fi], adjusted[idx]) {
				dominated = true
				break
			}
		}
		result[members[idx]] = !dominated
		if !dominated {
			frontier = append(frontier, idx)
		}
	}
	return result
}

// dominatesAdjusted is the dominance rule over vectors already mapped
// into minimize-space.
func dominatesAdjusted(a, b []float64) bool {
	strictlyBetter := false
	for j := range a {
		if a[j] > b[j] {
			return false
		}
		if a[j] < b[j] {
			strictlyBetter = true
		}
	}
	return strictlyBetter
}

// FrontsWithViolation decomposes an all-infeasible pool into fronts
// using the constraint-violation total as an additional minimized
// objective, so closeness to feasibility acts as a secondary dominance
// criterion.
func (f *ObjFunc) FrontsWithViolation(rt *ReducedTable) [][]string {
	members := rt.Members()
	adjusted := make(map[string][]float64, len(members))
	for _, m := range members {
		row, _ := rt.Row(m)
		vec := make([]float64, 0, len(f.objectives)+1)
		for _, o := range f.objectives {
			vec = append(vec, f.adjusted(o.Name, row[o.Name]))
		}
		vec = append(vec, f.RowViolation(row))
		adjusted[m] = vec
	}

	var fronts [][]string
	remaining := members
	for len(remaining) > 0 {
		var front, rest []string
		for _, m := range remaining {
			dominated := false
			for _, other := range remaining {
				if other != m && dominatesAdjusted(adjusted[other], adjusted[m]) {
					dominated = true
					break
				}
			}
			if dominated {
				rest = append(rest, m)
			} else {
				front = append(front, m)
			}
		}
		fronts = append(fronts, front)
		remaining = rest
	}
	return fronts
}

// Fronts decomposes the table into successive non-dominated fronts:
// front 0 is the non-dominated set, front 1 is non-dominated once front 0
// is removed, and so on. Member order within a front follows table order.
func (f *ObjFunc) Fronts(rt *ReducedTable) [][]string {
	var fronts [][]string
	remaining := rt
	for remaining.Len() > 0 {
		nd := f.IsNondominated(remaining)
		var front, rest []string
		for _, m := range remaining.Members() {
			if nd[m] {
				front = append(front, m)
			} else {
				rest = append(rest, m)
			}
		}
		fronts = append(fronts, front)
		remaining = remaining.Subset(rest)
	}
	return fronts
}
