package kv

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
)

type PebbleKV struct {
	db       *pebble.DB
	dbPath   string
	readOnly bool
	closed   bool
	mu       sync.RWMutex
}

type PebbleConfig struct {
	Path         string
	CacheSize    int64
	MemTableSize int
	MaxOpenFiles int
	BlockSize    int  // Block size for SSTable blocks
	ReadOnly     bool // Open an existing store without write access
	Compression  bool // Enable Snappy compression
}

func DefaultPebbleConfig(path string) *PebbleConfig {
	return &PebbleConfig{
		Path:         path,
		CacheSize:    64 * 1024 * 1024,
		MemTableSize: 32 * 1024 * 1024,
		MaxOpenFiles: 1000,
		BlockSize:    32 << 10,
		Compression:  true,
	}
}

func NewPebbleKV(config *PebbleConfig) (*PebbleKV, error) {
	cache := pebble.NewCache(config.CacheSize)
	defer cache.Unref()

	compression := pebble.NoCompression
	if config.Compression {
		compression = pebble.SnappyCompression
	}

	opts := &pebble.Options{
		Cache:        cache,
		MaxOpenFiles: config.MaxOpenFiles,
		MemTableSize: uint64(config.MemTableSize),
		ReadOnly:     config.ReadOnly,
		Levels: []pebble.LevelOptions{
			{TargetFileSize: 8 << 20, BlockSize: config.BlockSize, Compression: compression},
			{TargetFileSize: 32 << 20, BlockSize: config.BlockSize, Compression: compression},
		},
	}

	db, err := pebble.Open(config.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("open pebble: %w", err)
	}

	return &PebbleKV{
		db:       db,
		dbPath:   config.Path,
		readOnly: config.ReadOnly,
	}, nil
}

func (p *PebbleKV) Get(ctx context.Context, key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	value, closer, err := p.db.Get(key)
	if err != nil {
		if err == pebble.ErrNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("pebble get: %w", err)
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)
	return result, nil
}

func (p *PebbleKV) Set(ctx context.Context, key, value []byte) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	if err := p.db.Set(key, value, pebble.Sync); err != nil {
		return fmt.Errorf("pebble set: %w", err)
	}
	return nil
}

func (p *PebbleKV) NewBatch() Batch {
	return &PebbleBatch{
		batch: p.db.NewBatch(),
	}
}

// CommitBatch applies batch durably
func (p *PebbleKV) CommitBatch(ctx context.Context, batch Batch) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}

	pb, ok := batch.(*PebbleBatch)
	if !ok {
		return fmt.Errorf("invalid batch type %T", batch)
	}

	if err := pb.batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebble commit batch: %w", err)
	}
	return nil
}

func (p *PebbleKV) NewIterator(opts *IteratorOptions) (Iterator, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return nil, ErrClosed
	}

	var pebbleOpts *pebble.IterOptions
	if opts != nil {
		pebbleOpts = &pebble.IterOptions{
			LowerBound: opts.LowerBound,
			UpperBound: opts.UpperBound,
		}
	}

	iter, err := p.db.NewIter(pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("pebble iterator: %w", err)
	}
	return &PebbleIterator{iter: iter}, nil
}

func (p *PebbleKV) Flush() error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrClosed
	}
	if p.readOnly {
		return nil
	}

	if err := p.db.Flush(); err != nil {
		return fmt.Errorf("pebble flush: %w", err)
	}
	return nil
}

func (p *PebbleKV) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	if err := p.db.Close(); err != nil {
		return fmt.Errorf("pebble close: %w", err)
	}
	return nil
}

type PebbleBatch struct {
	batch *pebble.Batch
}

func (b *PebbleBatch) Set(key, value []byte) error {
	return b.batch.Set(key, value, nil)
}

func (b *PebbleBatch) Count() int {
	return int(b.batch.Count())
}

func (b *PebbleBatch) Close() error {
	return b.batch.Close()
}

type PebbleIterator struct {
	iter *pebble.Iterator
}

func (i *PebbleIterator) First() bool { return i.iter.First() }

func (i *PebbleIterator) Next() bool { return i.iter.Next() }

func (i *PebbleIterator) Valid() bool { return i.iter.Valid() }

// Key returns the current key; the slice is only valid until the next move
func (i *PebbleIterator) Key() []byte { return i.iter.Key() }

// Value returns the current value; the slice is only valid until the next move
func (i *PebbleIterator) Value() []byte { return i.iter.Value() }

func (i *PebbleIterator) Error() error { return i.iter.Error() }

func (i *PebbleIterator) Close() error { return i.iter.Close() }
