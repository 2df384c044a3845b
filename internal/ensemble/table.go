// Package ensemble provides the ordered realization tables the optimizer
// operates on: decision-variable populations, uncertain-parameter draws,
// and the per-(member, realization) outcome table assembled from
// simulator results.
package ensemble

import (
	"fmt"
)

// Row is one realization: a full assignment over the table's variables.
type Row struct {
	Name   string
	Values map[string]float64
}

// Table is an ordered collection of named realizations over a fixed
// variable set. Row names are stable across generations so results stay
// traceable to the candidate that produced them.
type Table struct {
	variables []string
	rows      []Row
	index     map[string]int
}

// NewTable creates an empty table over the given variable set.
func NewTable(variables []string) (*Table, error) {
	if len(variables) == 0 {
		return nil, fmt.Errorf("ensemble: at least one variable is required")
	}
	seen := make(map[string]bool, len(variables))
	for _, v := range variables {
		if v == "" {
			return nil, fmt.Errorf("ensemble: empty variable name")
		}
		if seen[v] {
			return nil, fmt.Errorf("ensemble: duplicate variable %s", v)
		}
		seen[v] = true
	}
	vars := make([]string, len(variables))
	copy(vars, variables)
	return &Table{
		variables: vars,
		index:     make(map[string]int),
	}, nil
}

// Append adds a named realization. The assignment must cover every
// variable of the table exactly.
func (t *Table) Append(name string, values map[string]float64) error {
	if name == "" {
		return fmt.Errorf("ensemble: row name is required")
	}
	if _, exists := t.index[name]; exists {
		return fmt.Errorf("ensemble: row %s already present", name)
	}
	for _, v := range t.variables {
		if _, ok := values[v]; !ok {
			return fmt.Errorf("ensemble: row %s missing value for %s", name, v)
		}
	}
	if len(values) != len(t.variables) {
		return fmt.Errorf("ensemble: row %s has %d values, table has %d variables", name, len(values), len(t.variables))
	}
	copied := make(map[string]float64, len(values))
	for k, v := range values {
		copied[k] = v
	}
	t.index[name] = len(t.rows)
	t.rows = append(t.rows, Row{Name: name, Values: copied})
	return nil
}

// Len returns the number of realizations.
func (t *Table) Len() int {
	return len(t.rows)
}

// Variables returns the variable names in column order.
func (t *Table) Variables() []string {
	out := make([]string, len(t.variables))
	copy(out, t.variables)
	return out
}

// Names returns the row names in insertion order.
func (t *Table) Names() []string {
	names := make([]string, len(t.rows))
	for i, r := range t.rows {
		names[i] = r.Name
	}
	return names
}

// Row looks up a realization by name.
func (t *Table) Row(name string) (Row, bool) {
	i, ok := t.index[name]
	if !ok {
		return Row{}, false
	}
	return t.rows[i], true
}

// RowAt returns the realization at position i.
func (t *Table) RowAt(i int) Row {
	return t.rows[i]
}

// Subset returns a new table holding only the named rows, in the order
// given. Fails if any name is absent.
func (t *Table) Subset(names []string) (*Table, error) {
	sub, err := NewTable(t.variables)
	if err != nil {
		return nil, err
	}
	for _, name := range names {
		row, ok := t.Row(name)
		if !ok {
			return nil, fmt.Errorf("ensemble: row %s not found", name)
		}
		if err := sub.Append(row.Name, row.Values); err != nil {
			return nil, err
		}
	}
	return sub, nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	cloned, _ := NewTable(t.variables)
	for _, row := range t.rows {
		_ = cloned.Append(row.Name, row.Values)
	}
	return cloned
}
