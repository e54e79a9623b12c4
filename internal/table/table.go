// Package table holds the in-memory, column-oriented dataset that flows
// between ingestion, cleaning, analysis and charting.
package table

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNoData marks an absent or empty table.
var ErrNoData = errors.New("no data")

// Column is a named, typed sequence of cells aligned by row index.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NewColumn builds a column from the given cells.
func NewColumn(name string, kind Kind, values ...Value) *Column {
	return &Column{Name: name, Kind: kind, Values: values}
}

func (c *Column) Len() int { return len(c.Values) }

// MissingCount returns the number of missing cells.
func (c *Column) MissingCount() int {
	n := 0
	for _, v := range c.Values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

// Present returns the non-missing cells in row order.
func (c *Column) Present() []Value {
	out := make([]Value, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.IsNull() {
			out = append(out, v)
		}
	}
	return out
}

// Floats returns the numeric cells in row order, skipping everything else.
func (c *Column) Floats() []float64 {
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if f, ok := v.Float(); ok {
			out = append(out, f)
		}
	}
	return out
}

// Fill replaces every missing cell with v and returns how many were filled.
func (c *Column) Fill(v Value) int {
	n := 0
	for i := range c.Values {
		if c.Values[i].IsNull() {
			c.Values[i] = v
			n++
		}
	}
	return n
}

// Convert retags the column and maps every cell through fn. It is the only
// way a column changes kind.
func (c *Column) Convert(kind Kind, fn func(Value) Value) {
	for i, v := range c.Values {
		c.Values[i] = fn(v)
	}
	c.Kind = kind
}

// Clone returns a deep copy.
func (c *Column) Clone() *Column {
	vals := make([]Value, len(c.Values))
	copy(vals, c.Values)
	return &Column{Name: c.Name, Kind: c.Kind, Values: vals}
}

// Table is an ordered set of equally long, uniquely named columns.
type Table struct {
	Columns []*Column
}

// New validates and assembles a table.
func New(cols ...*Column) (*Table, error) {
	seen := make(map[string]struct{}, len(cols))
	for i, c := range cols {
		if c == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := seen[c.Name]; dup {
			return nil, fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = struct{}{}
		if c.Len() != cols[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, want %d", c.Name, c.Len(), cols[0].Len())
		}
	}
	return &Table{Columns: cols}, nil
}

// Rows returns the logical row count.
func (t *Table) Rows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Cols returns the column count.
func (t *Table) Cols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Shape returns (rows, cols).
func (t *Table) Shape() Shape { return Shape{Rows: t.Rows(), Cols: t.Cols()} }

// Empty reports whether t is nil or has no rows or no columns.
func (t *Table) Empty() bool { return t == nil || t.Rows() == 0 || t.Cols() == 0 }

// Column looks up a column by name.
func (t *Table) Column(name string) *Column {
	if t == nil {
		return nil
	}
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// Names returns column names in order.
func (t *Table) Names() []string {
	out := make([]string, t.Cols())
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Rename assigns new names positionally.
func (t *Table) Rename(names []string) error {
	if len(names) != t.Cols() {
		return fmt.Errorf("rename: got %d names for %d columns", len(names), t.Cols())
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return fmt.Errorf("rename: duplicate column name %q", n)
		}
		seen[n] = struct{}{}
	}
	for i, c := range t.Columns {
		c.Name = names[i]
	}
	return nil
}

// Row returns the cells of row i across all columns.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		out[j] = c.Values[i]
	}
	return out
}

// RowKey identifies row i by the keys of all its cells.
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for j, c := range t.Columns {
		if j > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(c.Values[i].Key())
	}
	return b.String()
}

// KeepRows retains rows whose keep flag is set and returns how many were dropped.
func (t *Table) KeepRows(keep []bool) int {
	if len(keep) != t.Rows() {
		panic(fmt.Sprintf("table: keep mask has %d entries for %d rows", len(keep), t.Rows()))
	}
	dropped := 0
	for _, k := range keep {
		if !k {
			dropped++
		}
	}
	if dropped == 0 {
		return 0
	}
	for _, c := range t.Columns {
		out := c.Values[:0]
		for i, v := range c.Values {
			if keep[i] {
				out = append(out, v)
			}
		}
		c.Values = out
	}
	return dropped
}

// ColumnsOfKind returns the columns tagged with k, in table order.
func (t *Table) ColumnsOfKind(k Kind) []*Column {
	if t == nil {
		return nil
	}
	var out []*Column
	for _, c := range t.Columns {
		if c.Kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy; a nil table clones to nil.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	cols := make([]*Column, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = c.Clone()
	}
	return &Table{Columns: cols}
}

// Shape is a (rows, cols) pair. It marshals as a two element array.
type Shape struct {
	Rows int
	Cols int
}

func (s Shape) String() string { return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols) }

func (s Shape) MarshalJSON() ([]byte, error) { return json.Marshal([2]int{s.Rows, s.Cols}) }

func (s *Shape) UnmarshalJSON(b []byte) error {
	var pair [2]int
	if err := json.Unmarshal(b, &pair); err != nil {
		return fmt.Errorf("decode shape: %w", err)
	}
	s.Rows, s.Cols = pair[0], pair[1]
	return nil
}

func (s Shape) MarshalYAML() (any, error) { return []int{s.Rows, s.Cols}, nil }
