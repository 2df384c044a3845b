package ensemble

import (
	"fmt"

	"github.com/paretosim/optimization-core/internal/problem"
	"github.com/paretosim/optimization-core/pkg/utils"
)

// DrawKind names a per-variable sampling recipe.
type DrawKind string

const (
	// DrawUniform samples uniformly between the variable's bounds
	DrawUniform DrawKind = "uniform"
	// DrawGaussian samples a normal centered between the bounds with a
	// quarter-range standard deviation, clamped back into bounds
	DrawGaussian DrawKind = "gaussian"
)

// FromDraws builds a realization table by sampling every variable
// numReals times according to its recipe. Variables absent from the
// recipe map default to uniform draws, so a mixed recipe only needs to
// name the exceptions.
func FromDraws(vars []problem.Variable, how map[string]DrawKind, numReals int, rng *utils.RandSource) (*Table, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("ensemble: no variables to sample")
	}
	if numReals <= 0 {
		return nil, fmt.Errorf("ensemble: number of realizations must be positive, got %d", numReals)
	}
	if rng == nil {
		return nil, fmt.Errorf("ensemble: random source is required")
	}

	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	table, err := NewTable(names)
	if err != nil {
		return nil, err
	}

	for i := 0; i < numReals; i++ {
		values := make(map[string]float64, len(vars))
		for _, v := range vars {
			kind, ok := how[v.Name]
			if !ok {
				kind = DrawUniform
			}
			switch kind {
			case DrawUniform:
				values[v.Name] = rng.UniformFloat64(v.Lower, v.Upper)
			case DrawGaussian:
				mean := (v.Lower + v.Upper) / 2
				stddev := (v.Upper - v.Lower) / 4
				values[v.Name] = utils.ClampFloat64(rng.NormFloat64(mean, stddev), v.Lower, v.Upper)
			default:
				return nil, fmt.Errorf("ensemble: unknown draw kind %q for %s", kind, v.Name)
			}
		}
		if err := table.Append(utils.RealizationName(i), values); err != nil {
			return nil, err
		}
	}
	return table, nil
}
