// Package benchmarks provides analytic test problems wired as
// simulators. They exercise the full optimization pipeline without an
// external model process and have known Pareto fronts, which makes them
// the reference workloads for integration tests and the bundled daemon.
package benchmarks

import (
	"context"
	"fmt"
	"math"

	"github.com/paretosim/optimization-core/internal/dispatch"
	"github.com/paretosim/optimization-core/internal/problem"
)

// Benchmark bundles a problem definition with the simulator that
// evaluates it.
type Benchmark struct {
	Definition *problem.Definition
	Simulator  dispatch.Simulator
}

// ByName returns the named benchmark, configured with numVars decision
// variables where the problem is dimension-free.
func ByName(name string, numVars int) (*Benchmark, error) {
	switch name {
	case "srn":
		return NewSRN()
	case "zdt1":
		return NewZDT1(numVars)
	default:
		return nil, fmt.Errorf("benchmarks: unknown benchmark %q", name)
	}
}

// NewSRN builds the two-variable constrained SRN problem:
//
//	f1 = 2 + (x1-2)^2 + (x2-1)^2          minimize
//	f2 = 9*x1 - (x2-1)^2                  minimize
//	c1 = x1^2 + x2^2 <= 225
//	c2 = x1 - 3*x2 + 10 <= 0
//
// with x1, x2 in [-20, 20]. The uncertain parameters theta1 and theta2
// shift the objectives additively, so a zero-width parameter draw
// recovers the deterministic problem.
func NewSRN() (*Benchmark, error) {
	def := problem.NewDefinition()
	for _, v := range []problem.Variable{
		{Name: "x1", Lower: -20, Upper: 20},
		{Name: "x2", Lower: -20, Upper: 20},
	} {
		if err := def.AddDecisionVariable(v); err != nil {
			return nil, err
		}
	}
	for _, v := range []problem.Variable{
		{Name: "theta1", Lower: -1, Upper: 1},
		{Name: "theta2", Lower: -1, Upper: 1},
	} {
		if err := def.AddUncertainParameter(v); err != nil {
			return nil, err
		}
	}
	for _, q := range []problem.OutputQuantity{
		{Name: "f1"},
		{Name: "f2"},
		{Name: "c1", Sense: problem.SenseLessThan, Threshold: 225},
		{Name: "c2", Sense: problem.SenseLessThan, Threshold: 0},
	} {
		if err := def.AddOutput(q); err != nil {
			return nil, err
		}
	}

	sim := func(_ context.Context, decisions, parameters map[string]float64) (map[string]float64, error) {
		x1, ok := decisions["x1"]
		if !ok {
			return nil, fmt.Errorf("srn: missing decision x1")
		}
		x2, ok := decisions["x2"]
		if !ok {
			return nil, fmt.Errorf("srn: missing decision x2")
		}
		theta1 := parameters["theta1"]
		theta2 := parameters["theta2"]
		return map[string]float64{
			"f1": 2 + (x1-2)*(x1-2) + (x2-1)*(x2-1) + theta1,
			"f2": 9*x1 - (x2-1)*(x2-1) + theta2,
			"c1": x1*x1 + x2*x2,
			"c2": x1 - 3*x2 + 10,
		}, nil
	}
	return &Benchmark{Definition: def, Simulator: sim}, nil
}

// NewZDT1 builds the unconstrained ZDT1 problem over numVars decision
// variables in [0, 1]:
//
//	f1 = x1
//	g  = 1 + 9 * sum(x2..xn) / (n-1)
//	f2 = g * (1 - sqrt(x1/g))
//
// Its true Pareto front is f2 = 1 - sqrt(f1). A single uncertain
// parameter eps shifts f2 additively.
func NewZDT1(numVars int) (*Benchmark, error) {
	if numVars < 2 {
		return nil, fmt.Errorf("benchmarks: zdt1 needs at least 2 variables, got %d", numVars)
	}
	def := problem.NewDefinition()
	names := make([]string, numVars)
	for i := 0; i < numVars; i++ {
		names[i] = fmt.Sprintf("x%d", i+1)
		if err := def.AddDecisionVariable(problem.Variable{Name: names[i], Lower: 0, Upper: 1}); err != nil {
			return nil, err
		}
	}
	if err := def.AddUncertainParameter(problem.Variable{Name: "eps", Lower: -0.05, Upper: 0.05}); err != nil {
		return nil, err
	}
	for _, q := range []problem.OutputQuantity{{Name: "f1"}, {Name: "f2"}} {
		if err := def.AddOutput(q); err != nil {
			return nil, err
		}
	}

	sim := func(_ context.Context, decisions, parameters map[string]float64) (map[string]float64, error) {
		x1, ok := decisions[names[0]]
		if !ok {
			return nil, fmt.Errorf("zdt1: missing decision %s", names[0])
		}
		g := 1.0
		for _, name := range names[1:] {
			v, ok := decisions[name]
			if !ok {
				return nil, fmt.Errorf("zdt1: missing decision %s", name)
			}
			g += 9.0 * v / float64(numVars-1)
		}
		return map[string]float64{
			"f1": x1,
			"f2": g*(1.0-math.Sqrt(x1/g)) + parameters["eps"],
		}, nil
	}
	return &Benchmark{Definition: def, Simulator: sim}, nil
}

// TrueParetoFrontZDT1 samples numPoints points on ZDT1's analytic
// Pareto front.
func TrueParetoFrontZDT1(numPoints int) [][2]float64 {
	points := make([][2]float64, numPoints)
	for i := 0; i < numPoints; i++ {
		x := float64(i) / float64(numPoints-1)
		points[i] = [2]float64{x, 1.0 - math.Sqrt(x)}
	}
	return points
}
