// Package storage holds the in-memory record store and the loaders that
// populate it from files, pebble snapshots, PostgreSQL and object storage.
package storage

import (
	"github.com/guileen/gridsource/types"
)

// RecordStore is the ordered, read-only collection of records behind one
// dataset. It is populated once and shared by concurrent requests.
type RecordStore struct {
	records []types.Record
	columns []types.ColumnDefinition
}

// NewRecordStore takes ownership of records; callers must not modify the slice
// afterwards.
func NewRecordStore(records []types.Record, columns []types.ColumnDefinition) *RecordStore {
	cols := make([]types.ColumnDefinition, len(columns))
	copy(cols, columns)
	return &RecordStore{records: records, columns: cols}
}

// Records returns the records in source order. The returned slice is shared
// and must be treated as read-only.
func (s *RecordStore) Records() []types.Record {
	return s.records
}

func (s *RecordStore) Len() int {
	return len(s.records)
}

// Columns returns the declared column definitions
func (s *RecordStore) Columns() []types.ColumnDefinition {
	cols := make([]types.ColumnDefinition, len(s.columns))
	copy(cols, s.columns)
	return cols
}
