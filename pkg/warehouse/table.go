package warehouse

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when a result lacks a column a query declares
var ErrMissingColumn = errors.New("result is missing column")

// Column describes a result column. Names are upper-cased on construction.
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Table is a query result: ordered columns and rows aligned with them.
// A Table is read-only once built and safe to share between goroutines.
type Table struct {
	Columns []Column        `json:"columns"`
	Rows    [][]interface{} `json:"rows"`

	index map[string]int
}

// NewTable builds a Table, normalizing column names to upper case.
func NewTable(columns []Column, rows [][]interface{}) *Table {
	t := &Table{
		Columns: make([]Column, len(columns)),
		Rows:    rows,
	}

	for i, col := range columns {
		t.Columns[i] = Column{Name: strings.ToUpper(col.Name), Type: col.Type}
	}

	if t.Rows == nil {
		t.Rows = [][]interface{}{}
	}

	t.buildIndex()

	return t
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Columns))
	for i, col := range t.Columns {
		t.index[col.Name] = i
	}
}

// UnmarshalJSON restores a Table stored by the query cache
func (t *Table) UnmarshalJSON(data []byte) error {
	type plain Table

	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	*t = *NewTable(p.Columns, p.Rows)

	return nil
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}

	return len(t.Rows)
}

// Empty reports whether the table has no rows
func (t *Table) Empty() bool {
	return t.Len() == 0
}

// Has reports whether the table has the named column (case-insensitive)
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}

	_, ok := t.index[strings.ToUpper(name)]
	return ok
}

// Require returns ErrMissingColumn naming every absent column
func (t *Table) Require(names ...string) error {
	var missing []string

	for _, name := range names {
		if !t.Has(name) {
			missing = append(missing, strings.ToUpper(name))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return nil
}

// Value returns the cell at row i for the named column, or nil when either
// is out of range.
func (t *Table) Value(i int, name string) interface{} {
	if t == nil {
		return nil
	}

	idx, ok := t.index[strings.ToUpper(name)]
	if !ok || i < 0 || i >= len(t.Rows) || idx >= len(t.Rows[i]) {
		return nil
	}

	return t.Rows[i][idx]
}

// Head returns a table with at most n rows
func (t *Table) Head(n int) *Table {
	if n >= t.Len() {
		return t
	}

	return NewTable(t.Columns, t.Rows[:n])
}
