package kv

import (
	"context"
	"errors"
)

// KV defines the key-value operations used for dataset snapshots
type KV interface {
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	NewBatch() Batch
	CommitBatch(ctx context.Context, batch Batch) error
	NewIterator(opts *IteratorOptions) (Iterator, error)
	Flush() error
	Close() error
}

// Batch defines the interface for batch operations
type Batch interface {
	Set(key, value []byte) error
	Count() int
	Close() error
}

// IteratorOptions bounds an iterator to [LowerBound, UpperBound)
type IteratorOptions struct {
	LowerBound []byte
	UpperBound []byte
}

// Iterator defines the interface for iterating over key-value pairs
type Iterator interface {
	First() bool
	Next() bool
	Valid() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

var (
	ErrNotFound = errors.New("key not found")
	ErrClosed   = errors.New("kv store closed")
)

// IsNotFound checks if an error is a "not found" error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
