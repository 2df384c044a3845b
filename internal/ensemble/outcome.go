package ensemble

import (
	"fmt"
)

// OutcomeKey identifies one simulator run: a population member evaluated
// under one uncertain-parameter realization.
type OutcomeKey struct {
	Member      string
	Realization string
}

func (k OutcomeKey) String() string {
	return k.Member + "/" + k.Realization
}

// OutcomeTable holds simulator outputs keyed by (member, realization).
// Rows are re-assembled by key, never by completion order, so the table
// is independent of which worker executed each run. Member order follows
// first insertion.
type OutcomeTable struct {
	quantities  []string
	memberOrder []string
	byMember    map[string][]map[string]float64
	rows        map[OutcomeKey]map[string]float64
}

// NewOutcomeTable creates an empty outcome table over the given output
// quantities.
func NewOutcomeTable(quantities []string) (*OutcomeTable, error) {
	if len(quantities) == 0 {
		return nil, fmt.Errorf("ensemble: at least one output quantity is required")
	}
	qs := make([]string, len(quantities))
	copy(qs, quantities)
	return &OutcomeTable{
		quantities: qs,
		byMember:   make(map[string][]map[string]float64),
		rows:       make(map[OutcomeKey]map[string]float64),
	}, nil
}

// Insert records the outputs of one simulator run. Every quantity of the
// table must be present; missing outcomes would corrupt the fixed-size
// stack reduction downstream.
func (o *OutcomeTable) Insert(key OutcomeKey, values map[string]float64) error {
	if key.Member == "" || key.Realization == "" {
		return fmt.Errorf("ensemble: outcome key requires member and realization names")
	}
	if _, exists := o.rows[key]; exists {
		return fmt.Errorf("ensemble: outcome %s already recorded", key)
	}
	copied := make(map[string]float64, len(o.quantities))
	for _, q := range o.quantities {
		v, ok := values[q]
		if !ok {
			return fmt.Errorf("ensemble: outcome %s missing quantity %s", key, q)
		}
		copied[q] = v
	}
	if _, seen := o.byMember[key.Member]; !seen {
		o.memberOrder = append(o.memberOrder, key.Member)
	}
	o.rows[key] = copied
	o.byMember[key.Member] = append(o.byMember[key.Member], copied)
	return nil
}

// Quantities returns the output quantity names in column order.
func (o *OutcomeTable) Quantities() []string {
	out := make([]string, len(o.quantities))
	copy(out, o.quantities)
	return out
}

// Members returns member names in first-insertion order.
func (o *OutcomeTable) Members() []string {
	out := make([]string, len(o.memberOrder))
	copy(out, o.memberOrder)
	return out
}

// MemberBlock returns the stochastic stack of one member: its outcome
// rows in insertion order.
func (o *OutcomeTable) MemberBlock(member string) []map[string]float64 {
	return o.byMember[member]
}

// Value returns one recorded output value.
func (o *OutcomeTable) Value(key OutcomeKey, quantity string) (float64, bool) {
	row, ok := o.rows[key]
	if !ok {
		return 0, false
	}
	v, ok := row[quantity]
	return v, ok
}

// Len returns the number of recorded runs.
func (o *OutcomeTable) Len() int {
	return len(o.rows)
}
