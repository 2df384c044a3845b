package evolve

import (
	"github.com/paretosim/optimization-core/internal/pareto"
	"gonum.org/v1/gonum/stat"
)

// ObjectiveSummary is the population spread of one objective.
type ObjectiveSummary struct {
	Name   string
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// GenerationStats summarizes one scored population.
type GenerationStats struct {
	Generation    int
	Population    int
	FrontSize     int
	FeasibleCount int
	Objectives    []ObjectiveSummary
}

// ComputeStats summarizes a scored population: first-front and feasible
// counts plus per-objective spread.
func ComputeStats(generation int, scores []MemberScore, objectives pareto.ObjectiveSpec) GenerationStats {
	gs := GenerationStats{
		Generation: generation,
		Population: len(scores),
	}
	for _, s := range scores {
		if s.Front == 0 {
			gs.FrontSize++
		}
		if s.Feasible {
			gs.FeasibleCount++
		}
	}
	for _, obj := range objectives {
		values := make([]float64, 0, len(scores))
		for _, s := range scores {
			if v, ok := s.Values[obj.Name]; ok {
				values = append(values, v)
			}
		}
		summary := ObjectiveSummary{Name: obj.Name}
		if len(values) > 0 {
			summary.Mean, summary.StdDev = stat.MeanStdDev(values, nil)
			summary.Min, summary.Max = values[0], values[0]
			for _, v := range values[1:] {
				if v < summary.Min {
					summary.Min = v
				}
				if v > summary.Max {
					summary.Max = v
				}
			}
		}
		gs.Objectives = append(gs.Objectives, summary)
	}
	return gs
}
