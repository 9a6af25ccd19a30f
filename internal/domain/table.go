package domain

import "github.com/google/uuid"

// TableID uniquely identifies a sealed table.
type TableID string

// NewTableID returns a fresh random table identifier.
func NewTableID() TableID {
	return TableID(uuid.NewString())
}

// Table is an ordered, immutable batch of rows sealed together under one
// identifier. Once a table has been emitted it is final: the engine never
// mutates or re-opens it.
type Table struct {
	// ID is the table identifier assigned at seal time
	ID TableID

	// Rows holds the sealed rows in exact push order
	Rows []Row

	// TotalSizeBytes is the sum of SizeBytes over all rows
	TotalSizeBytes uint64
}

// TableFromRows seals rows into a table, taking ownership of the slice.
// TotalSizeBytes is derived here so the invariant cannot drift.
func TableFromRows(id TableID, rows []Row) Table {
	var total uint64
	for _, r := range rows {
		total += r.SizeBytes()
	}
	return Table{ID: id, Rows: rows, TotalSizeBytes: total}
}

// RowCount returns the number of rows in the table.
func (t Table) RowCount() int {
	return len(t.Rows)
}

// Empty returns true if the table has no rows.
func (t Table) Empty() bool {
	return len(t.Rows) == 0
}

// LastRow returns the last row in the table, or nil if empty.
func (t Table) LastRow() *Row {
	if len(t.Rows) == 0 {
		return nil
	}
	return &t.Rows[len(t.Rows)-1]
}
