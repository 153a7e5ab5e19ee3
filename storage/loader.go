package storage

import (
	"context"
	"strings"

	"github.com/guileen/gridsource/engine/config"
	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/logger"
	"github.com/guileen/gridsource/types"
)

// Loader materializes the records of a dataset
type Loader interface {
	Load(ctx context.Context) ([]types.Record, error)
}

// OpenLoader returns the loader matching the scheme of ds.Source
func OpenLoader(ds config.DatasetConfig) (Loader, error) {
	schema := types.NewSchema(ds.Columns)
	source := ds.Source

	switch {
	case strings.HasPrefix(source, "pebble://"):
		return NewPebbleLoader(strings.TrimPrefix(source, "pebble://"), schema), nil
	case strings.HasPrefix(source, "postgres://"), strings.HasPrefix(source, "postgresql://"):
		if ds.Table == "" {
			return nil, engineErrors.NewConfigErrorf("open_loader", "dataset %q: table is required for postgres sources", ds.Name)
		}
		return NewPostgresLoader(source, ds.Table, ds.OrderBy, schema), nil
	case strings.HasPrefix(source, "s3://"):
		bucket, key, ok := strings.Cut(strings.TrimPrefix(source, "s3://"), "/")
		if !ok || bucket == "" || key == "" {
			return nil, engineErrors.NewConfigErrorf("open_loader", "dataset %q: s3 source must be s3://bucket/key", ds.Name)
		}
		return NewS3Loader(ds.S3, bucket, key, schema), nil
	case strings.HasPrefix(source, "file://"):
		return NewJSONLoader(strings.TrimPrefix(source, "file://"), schema), nil
	case strings.Contains(source, "://"):
		return nil, engineErrors.NewConfigErrorf("open_loader", "dataset %q: unsupported source %q", ds.Name, source)
	default:
		return NewJSONLoader(source, schema), nil
	}
}

// Open loads ds into a RecordStore
func Open(ctx context.Context, ds config.DatasetConfig) (*RecordStore, error) {
	loader, err := OpenLoader(ds)
	if err != nil {
		return nil, err
	}

	records, err := loader.Load(ctx)
	if err != nil {
		return nil, engineErrors.Wrapf(err, engineErrors.ErrCodeStorage, "load_dataset", "dataset %q", ds.Name)
	}

	logger.InfoContext(ctx, "dataset loaded",
		logger.DatasetName(ds.Name),
		logger.Count(len(records)))
	return NewRecordStore(records, ds.Columns), nil
}
