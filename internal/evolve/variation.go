package evolve

import (
	"fmt"

	"github.com/paretosim/optimization-core/internal/ensemble"
	"github.com/paretosim/optimization-core/pkg/utils"
)

// minPopulation is the smallest population rand/1/bin can vary: each
// trial needs three donors distinct from the target.
const minPopulation = 4

// vary produces one offspring per parent using rand/1/bin differential
// variation: a mutant is built from three distinct donors, then crossed
// with the parent variable by variable. One variable index is always
// taken from the mutant so every trial differs from its parent. Bounds
// are enforced by reflection.
func (e *EliteDiffEvol) vary(generation int) (*ensemble.Table, error) {
	n := e.dv.Len()
	if n < minPopulation {
		return nil, fmt.Errorf("population size %d is below the rand/1/bin minimum of %d", n, minPopulation)
	}
	vars := e.def.DecisionVariables()

	offspring, err := ensemble.NewTable(e.dv.Variables())
	if err != nil {
		return nil, err
	}
	for i := 0; i < n; i++ {
		parent := e.dv.RowAt(i)
		donors := e.rng.DistinctIndexes(n, 3, i)
		r1 := e.dv.RowAt(donors[0]).Values
		r2 := e.dv.RowAt(donors[1]).Values
		r3 := e.dv.RowAt(donors[2]).Values

		trial := make(map[string]float64, len(vars))
		jrand := e.rng.Intn(len(vars))
		for j, v := range vars {
			if j == jrand || e.rng.Float64() < e.cfg.CrossoverProb {
				mutant := r3[v.Name] + e.cfg.Weight*(r1[v.Name]-r2[v.Name])
				trial[v.Name] = utils.ReflectFloat64(mutant, v.Lower, v.Upper)
			} else {
				trial[v.Name] = parent.Values[v.Name]
			}
		}
		if err := offspring.Append(utils.MemberName(generation, i), trial); err != nil {
			return nil, err
		}
	}
	return offspring, nil
}
