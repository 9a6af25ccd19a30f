package domain

import "sync/atomic"

// rowIDCounter backs NextRowID. Process-wide, never reset.
var rowIDCounter atomic.Uint64

// RowID uniquely identifies a row within the process. IDs are assigned in
// creation order and are strictly increasing; they are used for ordering and
// debugging only and are never reassigned.
type RowID uint64

// NextRowID returns a fresh RowID. Safe for concurrent use.
func NextRowID() RowID {
	return RowID(rowIDCounter.Add(1))
}

// TimePoint maps timeline names to integer time values (ticks, sequence
// numbers, or unix nanoseconds, depending on the timeline).
type TimePoint map[string]int64

// Cell is one component's payload within a row. The byte encoding of Data is
// opaque to this package; rowship moves it, it never interprets it.
type Cell struct {
	// Component is the component name (e.g., "position", "color")
	Component string

	// Data is the encoded component payload
	Data []byte
}

// SizeBytes returns the transport-accounting size of the cell.
func (c Cell) SizeBytes() uint64 {
	return uint64(len(c.Component)) + uint64(len(c.Data))
}

// rowOverheadBytes accounts for the fixed per-row fields (id, instance count,
// slice headers) in size accounting. The exact value matters less than it
// being stable: threshold checks only need SizeBytes to be deterministic.
const rowOverheadBytes = 32

// Row represents a single logged record: one entity, one time point.
// A row is immutable after creation and owned exclusively by whichever
// Table absorbs it.
type Row struct {
	// ID is the creation-ordered row identifier
	ID RowID

	// EntityPath addresses the entity this row belongs to (e.g., "world/robot/arm")
	EntityPath string

	// TimePoint carries the row's position on each timeline
	TimePoint TimePoint

	// NumInstances is the number of instances covered by each cell
	NumInstances uint32

	// Cells holds one payload per component
	Cells []Cell
}

// NewRow builds a row with a freshly assigned RowID.
func NewRow(entityPath string, tp TimePoint, numInstances uint32, cells []Cell) Row {
	return Row{
		ID:           NextRowID(),
		EntityPath:   entityPath,
		TimePoint:    tp,
		NumInstances: numInstances,
		Cells:        cells,
	}
}

// SizeBytes returns the transport-accounting size of the row. The result is
// deterministic for a given row and is the value the batching thresholds
// accumulate.
func (r Row) SizeBytes() uint64 {
	size := uint64(rowOverheadBytes) + uint64(len(r.EntityPath))
	for name := range r.TimePoint {
		size += uint64(len(name)) + 8
	}
	for _, c := range r.Cells {
		size += c.SizeBytes()
	}
	return size
}

// RowRecord is the JSON wire form of a row, used by the record source and the
// table sink. The RowID is assigned locally and never travels.
type RowRecord struct {
	EntityPath   string           `json:"entity_path"`
	TimePoint    map[string]int64 `json:"time_point,omitempty"`
	NumInstances uint32           `json:"num_instances"`
	Cells        []CellRecord     `json:"cells"`
}

// CellRecord is the JSON wire form of a cell.
type CellRecord struct {
	Component string `json:"component"`
	Data      []byte `json:"data"`
}

// ToRow converts a RowRecord to a Row domain entity, assigning a fresh RowID.
func (m RowRecord) ToRow() Row {
	cells := make([]Cell, len(m.Cells))
	for i, c := range m.Cells {
		cells[i] = Cell{Component: c.Component, Data: c.Data}
	}
	return NewRow(m.EntityPath, m.TimePoint, m.NumInstances, cells)
}

// ToRecord converts a Row to its wire form.
func (r Row) ToRecord() RowRecord {
	cells := make([]CellRecord, len(r.Cells))
	for i, c := range r.Cells {
		cells[i] = CellRecord{Component: c.Component, Data: c.Data}
	}
	return RowRecord{
		EntityPath:   r.EntityPath,
		TimePoint:    r.TimePoint,
		NumInstances: r.NumInstances,
		Cells:        cells,
	}
}
