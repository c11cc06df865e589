package action

import (
	"errors"
	"fmt"
)

// Table is an ordered, read-only collection of entries of a single variant.
//
// Invariant: entry names are unique; every entry has the table's Variant.
type Table struct {
	name    string
	variant Variant
	rows    []Entry
	index   map[string]int
}

// NewTable validates rows and builds a Table that preserves their order.
//
// Precondition: name must be non-empty.
// Postcondition: returns error on an invalid row, a variant mismatch, or a duplicate name.
func NewTable(name string, variant Variant, rows []Entry) (*Table, error) {
	if name == "" {
		return nil, errors.New("action.NewTable: name must not be empty")
	}
	t := &Table{
		name:    name,
		variant: variant,
		rows:    make([]Entry, 0, len(rows)),
		index:   make(map[string]int, len(rows)),
	}
	for _, r := range rows {
		r = r.Clone()
		r.Variant = variant
		r.ApplyDefaults()
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("table %q: %w", name, err)
		}
		if _, dup := t.index[r.Name]; dup {
			return nil, fmt.Errorf("table %q: duplicate entry name %q", name, r.Name)
		}
		t.index[r.Name] = len(t.rows)
		t.rows = append(t.rows, r)
	}
	return t, nil
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Variant returns the variant shared by all rows.
func (t *Table) Variant() Variant { return t.variant }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns copies of all rows in table order.
//
// Postcondition: mutating the result does not affect t.
func (t *Table) Rows() []Entry {
	out := make([]Entry, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.Clone()
	}
	return out
}

// Find returns a copy of the row with the given name.
func (t *Table) Find(name string) (Entry, bool) {
	i, ok := t.index[name]
	if !ok {
		return Entry{}, false
	}
	return t.rows[i].Clone(), true
}
