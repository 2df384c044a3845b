package pareto

import (
	"math"
	"sort"
)

// CrowdDistance scores the diversity of the non-dominated rows. Per
// objective, rows are sorted by value; each interior row accumulates the
// normalized gap between its neighbors, and the two extreme rows get an
// infinite sentinel so boundary trade-off solutions always survive
// truncation. Rows outside the non-dominated set score negative infinity.
func (f *ObjFunc) CrowdDistance(rt *ReducedTable, nondominated map[string]bool) map[string]float64 {
	distance := make(map[string]float64, rt.Len())
	var front []string
	for _, m := range rt.Members() {
		if nondominated[m] {
			front = append(front, m)
			distance[m] = 0
		} else {
			distance[m] = math.Inf(-1)
		}
	}

	if len(front) == 0 {
		return distance
	}
	if len(front) <= 2 {
		for _, m := range front {
			distance[m] = math.Inf(1)
		}
		return distance
	}

	sorted := make([]string, len(front))
	for _, o := range f.objectives {
		copy(sorted, front)
		name := o.Name
		sort.SliceStable(sorted, func(i, j int) bool {
			ri, _ := rt.Row(sorted[i])
			rj, _ := rt.Row(sorted[j])
			return ri[name] < rj[name]
		})

		first, _ := rt.Row(sorted[0])
		last, _ := rt.Row(sorted[len(sorted)-1])
		objRange := last[name] - first[name]

		distance[sorted[0]] = math.Inf(1)
		distance[sorted[len(sorted)-1]] = math.Inf(1)
		if objRange == 0 {
			continue
		}

		for i := 1; i < len(sorted)-1; i++ {
			prev, _ := rt.Row(sorted[i-1])
			next, _ := rt.Row(sorted[i+1])
			distance[sorted[i]] += (next[name] - prev[name]) / objRange
		}
	}
	return distance
}
