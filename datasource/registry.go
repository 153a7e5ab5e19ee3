package datasource

import (
	"context"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/guileen/gridsource/engine/config"
	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/logger"
	"github.com/guileen/gridsource/metrics"
	"github.com/guileen/gridsource/storage"
)

const poolReleaseTimeout = 3 * time.Second

// Registry owns every dataset of the process and the worker pool they share
type Registry struct {
	cfg     config.EngineConfig
	metrics *metrics.Metrics
	pool    *ants.Pool
	sources map[string]*Source
	names   []string
}

// NewRegistry creates an empty registry with a prefetch pool sized by cfg
func NewRegistry(cfg config.EngineConfig, m *metrics.Metrics) (*Registry, error) {
	pool, err := ants.NewPool(cfg.PrefetchWorkers, ants.WithPanicHandler(func(v any) {
		logger.Error("prefetch worker panic", logger.Any("panic", v))
	}))
	if err != nil {
		return nil, engineErrors.Wrapf(err, engineErrors.ErrCodeConfig, "new_registry", "prefetch pool")
	}

	return &Registry{
		cfg:     cfg,
		metrics: m,
		pool:    pool,
		sources: make(map[string]*Source),
	}, nil
}

// LoadRegistry loads every dataset declared in cfg
func LoadRegistry(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (*Registry, error) {
	r, err := NewRegistry(cfg.Engine, m)
	if err != nil {
		return nil, err
	}

	for _, ds := range cfg.Datasets {
		store, err := storage.Open(ctx, ds)
		if err != nil {
			r.Close()
			return nil, err
		}
		if _, err := r.Register(ds.Name, store); err != nil {
			r.Close()
			return nil, err
		}
	}
	return r, nil
}

// Register adds a dataset under name. Registration happens before the
// registry is shared; it is not synchronized with lookups.
func (r *Registry) Register(name string, store *storage.RecordStore) (*Source, error) {
	if _, ok := r.sources[name]; ok {
		return nil, engineErrors.NewConfigErrorf("register_dataset", "dataset %q already registered", name)
	}

	src, err := NewSource(name, store, r.cfg, r.metrics, r.pool)
	if err != nil {
		return nil, err
	}
	r.sources[name] = src
	r.names = append(r.names, name)
	return src, nil
}

// Source returns the dataset called name
func (r *Registry) Source(name string) (*Source, error) {
	src, ok := r.sources[name]
	if !ok {
		return nil, engineErrors.NewNotFoundf("lookup_dataset", "dataset %q", name)
	}
	return src, nil
}

// Sources returns every dataset in registration order
func (r *Registry) Sources() []*Source {
	out := make([]*Source, len(r.names))
	for i, name := range r.names {
		out[i] = r.sources[name]
	}
	return out
}

// Close releases the worker pool
func (r *Registry) Close() {
	if r.pool == nil {
		return
	}
	if err := r.pool.ReleaseTimeout(poolReleaseTimeout); err != nil {
		logger.Warn("prefetch pool release timed out", logger.ErrorField(err))
	}
	r.pool = nil
}
