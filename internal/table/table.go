// Package table holds the column-oriented, typed tables produced by the
// ingest pipeline. A column is either text or nullable float64.
package table

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrColumnNotFound is returned when a requested column does not exist
	ErrColumnNotFound = errors.New("column not found")

	// ErrSchemaMismatch is returned when tables with different columns are concatenated
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// Type is the element type of a column
type Type int

const (
	String Type = iota
	Float
)

func (t Type) String() string {
	switch t {
	case String:
		return "str"
	case Float:
		return "f64"
	default:
		return fmt.Sprintf("Type(%d)", int(t))
	}
}

// Column is a named, typed vector. Exactly one of strs or nums is in use.
type Column struct {
	Name string
	Type Type
	strs []string
	nums []sql.NullFloat64
}

// NewStringColumn builds a text column
func NewStringColumn(name string, values []string) *Column {
	return &Column{Name: name, Type: String, strs: append([]string(nil), values...)}
}

// NewFloatColumn builds a numeric column; invalid entries are missing values
func NewFloatColumn(name string, values []sql.NullFloat64) *Column {
	return &Column{Name: name, Type: Float, nums: append([]sql.NullFloat64(nil), values...)}
}

// Len returns the number of values in the column
func (c *Column) Len() int {
	if c.Type == Float {
		return len(c.nums)
	}
	return len(c.strs)
}

// Strings returns the text values of a String column
func (c *Column) Strings() []string {
	return c.strs
}

// Floats returns the values of a Float column
func (c *Column) Floats() []sql.NullFloat64 {
	return c.nums
}

// Value returns the i-th element as string, float64 or nil when missing
func (c *Column) Value(i int) any {
	if c.Type == Float {
		if !c.nums[i].Valid {
			return nil
		}
		return c.nums[i].Float64
	}
	return c.strs[i]
}

// Table is an ordered set of equally long columns
type Table struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New assembles a table from columns of equal length
func New(cols ...*Column) (*Table, error) {
	t := &Table{index: make(map[string]int, len(cols))}
	for i, c := range cols {
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), t.rows)
		}
		t.cols = append(t.cols, c)
		// First occurrence wins for duplicate names
		if _, dup := t.index[c.Name]; !dup {
			t.index[c.Name] = i
		}
	}
	return t, nil
}

// FromRows builds an all-text table from a header and row-major cells.
// Short rows are padded with empty cells; rows wider than the header fail.
func FromRows(names []string, rows [][]string) (*Table, error) {
	cols := make([]*Column, len(names))
	for j, name := range names {
		cols[j] = &Column{Name: name, Type: String, strs: make([]string, len(rows))}
	}
	for i, row := range rows {
		if len(row) > len(names) {
			return nil, fmt.Errorf("row %d has %d cells, header has %d", i, len(row), len(names))
		}
		for j, cell := range row {
			cols[j].strs[i] = cell
		}
	}
	return New(cols...)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return t.rows
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.cols)
}

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.cols))
	for i, c := range t.cols {
		names[i] = c.Name
	}
	return names
}

// Types returns the column types in order
func (t *Table) Types() []Type {
	types := make([]Type, len(t.cols))
	for i, c := range t.cols {
		types[i] = c.Type
	}
	return types
}

// Columns returns the columns in order
func (t *Table) Columns() []*Column {
	return append([]*Column(nil), t.cols...)
}

// Column returns the first column called name
func (t *Table) Column(name string) (*Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return nil, false
	}
	return t.cols[i], true
}

// Row returns the i-th row as strings, float64s and nils
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.cols))
	for j, c := range t.cols {
		row[j] = c.Value(i)
	}
	return row
}

// Select projects the table onto names, in the given order
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([]*Column, 0, len(names))
	var missing []string
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			missing = append(missing, name)
			continue
		}
		cp := *c
		cols = append(cols, &cp)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, strings.Join(missing, ", "))
	}
	return New(cols...)
}

// Coerce converts the named text columns to Float using ParseNumber.
// Float columns are left as they are.
func (t *Table) Coerce(names ...string) error {
	for _, name := range names {
		i, ok := t.index[name]
		if !ok {
			return fmt.Errorf("%w: %s", ErrColumnNotFound, name)
		}
		c := t.cols[i]
		if c.Type == Float {
			continue
		}

		nums := make([]sql.NullFloat64, len(c.strs))
		for r, text := range c.strs {
			v, err := ParseNumber(text)
			if err != nil {
				return &CoerceError{Column: name, Row: r, Text: text, Err: err}
			}
			nums[r] = v
		}
		t.cols[i] = &Column{Name: c.Name, Type: Float, nums: nums}
	}
	return nil
}

// Concat stacks tables vertically. Every table must have the same column
// names and types in the same order.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, errors.New("no tables to concatenate")
	}

	first := tables[0]
	for k, t := range tables[1:] {
		if err := sameSchema(first, t); err != nil {
			return nil, fmt.Errorf("table %d: %w", k+1, err)
		}
	}

	cols := make([]*Column, len(first.cols))
	for j, c := range first.cols {
		out := &Column{Name: c.Name, Type: c.Type}
		for _, t := range tables {
			src := t.cols[j]
			if c.Type == Float {
				out.nums = append(out.nums, src.nums...)
			} else {
				out.strs = append(out.strs, src.strs...)
			}
		}
		cols[j] = out
	}
	return New(cols...)
}

func sameSchema(a, b *Table) error {
	if len(a.cols) != len(b.cols) {
		return fmt.Errorf("%w: %d columns vs %d", ErrSchemaMismatch, len(a.cols), len(b.cols))
	}
	for j := range a.cols {
		ca, cb := a.cols[j], b.cols[j]
		if ca.Name != cb.Name || ca.Type != cb.Type {
			return fmt.Errorf("%w: column %d is %s(%s) vs %s(%s)",
				ErrSchemaMismatch, j, ca.Name, ca.Type, cb.Name, cb.Type)
		}
	}
	return nil
}
