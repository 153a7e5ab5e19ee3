package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guileen/gridsource/codec"
	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/storage/internal/kv"
	"github.com/guileen/gridsource/types"
)

// snapshotBatchSize bounds the number of records per pebble batch
const snapshotBatchSize = 1000

// SnapshotInfo is stored under the snapshot meta key of every pebble dataset
type SnapshotInfo struct {
	ID        string    `json:"id"`
	Records   int       `json:"records"`
	CreatedAt time.Time `json:"created_at"`
}

// WriteSnapshot persists records and their column definitions into a pebble
// store at dir. Records keep their order when read back. The store must hold
// no keys at all, so leftovers of an interrupted import are refused too.
func WriteSnapshot(ctx context.Context, dir string, records []types.Record, columns []types.ColumnDefinition) (SnapshotInfo, error) {
	store, err := kv.NewPebbleKV(kv.DefaultPebbleConfig(dir))
	if err != nil {
		return SnapshotInfo{}, engineErrors.Wrap(err, engineErrors.ErrCodeStorage, "write_snapshot")
	}
	defer store.Close()

	empty, err := isEmpty(store)
	if err != nil {
		return SnapshotInfo{}, err
	}
	if !empty {
		return SnapshotInfo{}, engineErrors.NewStorageErrorf("write_snapshot", "%s is not empty", dir)
	}

	batch := store.NewBatch()
	for i, record := range records {
		if err := ctx.Err(); err != nil {
			batch.Close()
			return SnapshotInfo{}, err
		}

		data, err := codec.EncodeRecord(record)
		if err != nil {
			batch.Close()
			return SnapshotInfo{}, fmt.Errorf("record %d: %w", i, err)
		}
		if err := batch.Set(codec.EncodeRecordKey(int64(i)), data); err != nil {
			batch.Close()
			return SnapshotInfo{}, err
		}

		if batch.Count() >= snapshotBatchSize {
			if err := commit(ctx, store, batch); err != nil {
				return SnapshotInfo{}, err
			}
			batch = store.NewBatch()
		}
	}
	if err := commit(ctx, store, batch); err != nil {
		return SnapshotInfo{}, err
	}

	colData, err := codec.EncodeColumns(columns)
	if err != nil {
		return SnapshotInfo{}, err
	}
	if err := store.Set(ctx, codec.EncodeMetaKey(codec.MetaColumns), colData); err != nil {
		return SnapshotInfo{}, err
	}

	info := SnapshotInfo{
		ID:        uuid.NewString(),
		Records:   len(records),
		CreatedAt: time.Now().UTC(),
	}
	infoData, err := json.Marshal(info)
	if err != nil {
		return SnapshotInfo{}, err
	}
	if err := store.Set(ctx, codec.EncodeMetaKey(codec.MetaSnapshot), infoData); err != nil {
		return SnapshotInfo{}, err
	}

	return info, store.Flush()
}

func isEmpty(store kv.KV) (bool, error) {
	iter, err := store.NewIterator(&kv.IteratorOptions{})
	if err != nil {
		return false, err
	}
	defer iter.Close()

	if iter.First() {
		return false, nil
	}
	return true, iter.Error()
}

func commit(ctx context.Context, store kv.KV, batch kv.Batch) error {
	defer batch.Close()
	if batch.Count() == 0 {
		return nil
	}
	return store.CommitBatch(ctx, batch)
}

// PebbleLoader reads a dataset written by WriteSnapshot
type PebbleLoader struct {
	dir    string
	schema types.Schema
}

// NewPebbleLoader returns a loader for the snapshot at dir. Column types
// declared in schema take precedence over those stored in the snapshot.
func NewPebbleLoader(dir string, schema types.Schema) *PebbleLoader {
	return &PebbleLoader{dir: dir, schema: schema}
}

func (l *PebbleLoader) Load(ctx context.Context) ([]types.Record, error) {
	config := kv.DefaultPebbleConfig(l.dir)
	config.ReadOnly = true
	store, err := kv.NewPebbleKV(config)
	if err != nil {
		return nil, engineErrors.Wrap(err, engineErrors.ErrCodeStorage, "open_snapshot")
	}
	defer store.Close()

	info, err := ReadSnapshotInfo(ctx, store)
	if err != nil {
		return nil, err
	}

	schema, err := l.snapshotSchema(ctx, store)
	if err != nil {
		return nil, err
	}

	lower, upper := codec.RecordKeyBounds()
	iter, err := store.NewIterator(&kv.IteratorOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	records := make([]types.Record, 0, info.Records)
	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := codec.DecodeRecord(iter.Value(), schema)
		if err != nil {
			seq, _ := codec.DecodeRecordKey(iter.Key())
			return nil, fmt.Errorf("record %d: %w", seq, err)
		}
		records = append(records, record)
	}
	if err := iter.Error(); err != nil {
		return nil, err
	}
	if len(records) != info.Records {
		return nil, engineErrors.NewStorageErrorf("open_snapshot", "snapshot %s holds %d records, expected %d", info.ID, len(records), info.Records)
	}
	return records, nil
}

func (l *PebbleLoader) snapshotSchema(ctx context.Context, store kv.KV) (types.Schema, error) {
	schema := types.Schema{}

	data, err := store.Get(ctx, codec.EncodeMetaKey(codec.MetaColumns))
	switch {
	case err == nil:
		columns, err := codec.DecodeColumns(data)
		if err != nil {
			return nil, err
		}
		schema = types.NewSchema(columns)
	case !kv.IsNotFound(err):
		return nil, err
	}

	for name, typ := range l.schema {
		schema[name] = typ
	}
	return schema, nil
}

// ReadSnapshotInfo returns the metadata written by WriteSnapshot
func ReadSnapshotInfo(ctx context.Context, store kv.KV) (SnapshotInfo, error) {
	data, err := store.Get(ctx, codec.EncodeMetaKey(codec.MetaSnapshot))
	if err != nil {
		if kv.IsNotFound(err) {
			return SnapshotInfo{}, engineErrors.NewStorageErrorf("read_snapshot", "not a dataset snapshot")
		}
		return SnapshotInfo{}, err
	}

	var info SnapshotInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return SnapshotInfo{}, fmt.Errorf("decode snapshot info: %w", err)
	}
	return info, nil
}
