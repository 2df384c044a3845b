// Package problem holds the optimization problem definition consumed by
// the evaluator and the engine: decision variables, uncertain parameters,
// output quantities and inequality constraints. The on-disk control-file
// format that produces these definitions lives outside this repository;
// callers construct a Definition programmatically or from config.
package problem

import (
	"fmt"
)

// ConstraintSense describes the inequality direction of a constrained
// output quantity.
type ConstraintSense int

const (
	// SenseNone marks a plain output quantity with no constraint attached
	SenseNone ConstraintSense = iota
	// SenseLessThan requires the quantity to stay below its threshold
	SenseLessThan
	// SenseGreaterThan requires the quantity to stay above its threshold
	SenseGreaterThan
)

func (s ConstraintSense) String() string {
	switch s {
	case SenseLessThan:
		return "less_than"
	case SenseGreaterThan:
		return "greater_than"
	default:
		return "none"
	}
}

// ParseSense converts a config string to a ConstraintSense.
func ParseSense(s string) (ConstraintSense, error) {
	switch s {
	case "less_than":
		return SenseLessThan, nil
	case "greater_than":
		return SenseGreaterThan, nil
	default:
		return SenseNone, fmt.Errorf("unknown constraint sense %q", s)
	}
}

// Variable is a named, bounded continuous quantity. Decision variables
// are under optimizer control; uncertain parameters are resampled.
type Variable struct {
	Name  string
	Lower float64
	Upper float64
}

// OutputQuantity is a named value produced by the simulator. Constrained
// quantities carry an inequality sense and a threshold; thresholds may be
// adjusted between generations via SetThreshold.
type OutputQuantity struct {
	Name      string
	Sense     ConstraintSense
	Threshold float64
}

// Definition is the in-memory problem definition. It is not safe for
// concurrent mutation; the engine drives it from a single goroutine.
type Definition struct {
	decisionOrder []string
	decisions     map[string]Variable
	paramOrder    []string
	params        map[string]Variable
	outputOrder   []string
	outputs       map[string]OutputQuantity
}

// NewDefinition creates an empty problem definition.
func NewDefinition() *Definition {
	return &Definition{
		decisions: make(map[string]Variable),
		params:    make(map[string]Variable),
		outputs:   make(map[string]OutputQuantity),
	}
}

func validateVariable(v Variable) error {
	if v.Name == "" {
		return fmt.Errorf("variable name is required")
	}
	if v.Lower >= v.Upper {
		return fmt.Errorf("variable %s: lower bound %f must be below upper bound %f", v.Name, v.Lower, v.Upper)
	}
	return nil
}

// AddDecisionVariable registers a decision variable. Decision variables
// and uncertain parameters must reference disjoint name sets.
func (d *Definition) AddDecisionVariable(v Variable) error {
	if err := validateVariable(v); err != nil {
		return err
	}
	if _, exists := d.decisions[v.Name]; exists {
		return fmt.Errorf("decision variable %s already defined", v.Name)
	}
	if _, exists := d.params[v.Name]; exists {
		return fmt.Errorf("name %s already used by an uncertain parameter", v.Name)
	}
	d.decisions[v.Name] = v
	d.decisionOrder = append(d.decisionOrder, v.Name)
	return nil
}

// AddUncertainParameter registers an uncertain parameter.
func (d *Definition) AddUncertainParameter(v Variable) error {
	if err := validateVariable(v); err != nil {
		return err
	}
	if _, exists := d.params[v.Name]; exists {
		return fmt.Errorf("uncertain parameter %s already defined", v.Name)
	}
	if _, exists := d.decisions[v.Name]; exists {
		return fmt.Errorf("name %s already used by a decision variable", v.Name)
	}
	d.params[v.Name] = v
	d.paramOrder = append(d.paramOrder, v.Name)
	return nil
}

// AddOutput registers an output quantity produced by the simulator.
// A SenseNone quantity is objective-capable only; constrained quantities
// participate in feasibility testing as well.
func (d *Definition) AddOutput(q OutputQuantity) error {
	if q.Name == "" {
		return fmt.Errorf("output quantity name is required")
	}
	if _, exists := d.outputs[q.Name]; exists {
		return fmt.Errorf("output quantity %s already defined", q.Name)
	}
	d.outputs[q.Name] = q
	d.outputOrder = append(d.outputOrder, q.Name)
	return nil
}

// DecisionVariables returns the decision variables in declaration order.
func (d *Definition) DecisionVariables() []Variable {
	vars := make([]Variable, 0, len(d.decisionOrder))
	for _, name := range d.decisionOrder {
		vars = append(vars, d.decisions[name])
	}
	return vars
}

// DecisionVariable looks up one decision variable by name.
func (d *Definition) DecisionVariable(name string) (Variable, bool) {
	v, ok := d.decisions[name]
	return v, ok
}

// UncertainParameters returns the uncertain parameters in declaration order.
func (d *Definition) UncertainParameters() []Variable {
	vars := make([]Variable, 0, len(d.paramOrder))
	for _, name := range d.paramOrder {
		vars = append(vars, d.params[name])
	}
	return vars
}

// UncertainParameter looks up one uncertain parameter by name.
func (d *Definition) UncertainParameter(name string) (Variable, bool) {
	v, ok := d.params[name]
	return v, ok
}

// Outputs returns all output quantities in declaration order.
func (d *Definition) Outputs() []OutputQuantity {
	out := make([]OutputQuantity, 0, len(d.outputOrder))
	for _, name := range d.outputOrder {
		out = append(out, d.outputs[name])
	}
	return out
}

// Output looks up one output quantity by name.
func (d *Definition) Output(name string) (OutputQuantity, bool) {
	q, ok := d.outputs[name]
	return q, ok
}

// HasOutput reports whether the simulator produces the named quantity.
func (d *Definition) HasOutput(name string) bool {
	_, ok := d.outputs[name]
	return ok
}

// Constraints returns the constrained output quantities in declaration
// order. Thresholds are read live, so a SetThreshold between generations
// is reflected here.
func (d *Definition) Constraints() []OutputQuantity {
	var out []OutputQuantity
	for _, name := range d.outputOrder {
		if q := d.outputs[name]; q.Sense != SenseNone {
			out = append(out, q)
		}
	}
	return out
}

// SetThreshold adjusts the threshold of a constrained quantity. The
// evaluator reads thresholds at feasibility-check time, so adjustments
// take effect on the next generation without rebuilding anything.
func (d *Definition) SetThreshold(name string, threshold float64) error {
	q, ok := d.outputs[name]
	if !ok {
		return fmt.Errorf("unknown output quantity %s", name)
	}
	if q.Sense == SenseNone {
		return fmt.Errorf("output quantity %s is not constrained", name)
	}
	q.Threshold = threshold
	d.outputs[name] = q
	return nil
}

// OutputNames returns the names of all output quantities in declaration order.
func (d *Definition) OutputNames() []string {
	names := make([]string, len(d.outputOrder))
	copy(names, d.outputOrder)
	return names
}
