// Package datasource serves block requests for the datasets held in memory
package datasource

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/guileen/gridsource/engine"
	"github.com/guileen/gridsource/engine/config"
	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/logger"
	"github.com/guileen/gridsource/metrics"
	"github.com/guileen/gridsource/storage"
	"github.com/guileen/gridsource/types"
)

// Source answers block requests against one dataset. It holds no per-request
// state and is safe for concurrent use.
type Source struct {
	name     string
	store    *storage.RecordStore
	executor *engine.Executor
	cfg      config.EngineConfig
	metrics  *metrics.Metrics
	pool     *ants.Pool
}

// NewSource wires a dataset to its own executor and view cache. m and pool
// may be nil; without a pool prefetch batches run sequentially.
func NewSource(name string, store *storage.RecordStore, cfg config.EngineConfig, m *metrics.Metrics, pool *ants.Pool) (*Source, error) {
	cache, err := engine.NewViewCache(cfg.ViewCacheSize)
	if err != nil {
		return nil, engineErrors.Wrapf(err, engineErrors.ErrCodeConfig, "new_source", "dataset %q: view cache", name)
	}
	cache.OnLookup(func(hit bool) {
		m.ObserveCacheLookup(name, hit)
	})
	m.SetDatasetRecords(name, store.Len())

	return &Source{
		name:     name,
		store:    store,
		executor: engine.NewExecutor(cache),
		cfg:      cfg,
		metrics:  m,
		pool:     pool,
	}, nil
}

func (s *Source) Name() string {
	return s.name
}

// Len returns the number of records in the dataset
func (s *Source) Len() int {
	return s.store.Len()
}

func (s *Source) Columns() []types.ColumnDefinition {
	return s.store.Columns()
}

// Fetch runs one block request: plan, filter, sort and slice. It fires no
// notifications; see Adapter.
func (s *Source) Fetch(ctx context.Context, req types.BlockRequest) types.BlockResponse {
	start := time.Now()
	ctx = logger.WithContextValue(ctx, logger.DatasetKey, s.name)

	if err := s.validate(req); err != nil {
		return s.malformed(ctx, req, err, start)
	}

	plan, err := engine.NewPlan(req)
	if err != nil {
		return s.malformed(ctx, req, err, start)
	}

	view := s.executor.Execute(s.store.Records(), plan)
	page := engine.Paginate(view, req.StartRow, req.EndRow, s.cfg.EagerRowCount)

	elapsed := time.Since(start)
	logger.DebugContext(ctx, "block served",
		logger.BlockRange(req.StartRow, req.EndRow),
		logger.Int("predicates", len(plan.Predicates)),
		logger.Int("sort_keys", len(plan.SortKeys)),
		logger.Int("rows", len(page.Rows)),
		logger.Int("total", page.Total),
		logger.Duration("elapsed", elapsed))

	outcome := metrics.OutcomeOK
	if page.Total == 0 {
		outcome = metrics.OutcomeEmpty
	}
	s.metrics.ObserveBlock(s.name, outcome, len(page.Rows), elapsed)

	return types.BlockResponse{
		Rows:               page.Rows,
		TotalMatchingCount: page.Total,
		LastRow:            page.LastRow,
		Success:            true,
	}
}

func (s *Source) validate(req types.BlockRequest) error {
	if req.StartRow < 0 {
		return engineErrors.NewMalformedRequestf("request_block", "startRow %d is negative", req.StartRow)
	}
	if req.EndRow <= req.StartRow {
		return engineErrors.NewMalformedRequestf("request_block", "endRow %d must be greater than startRow %d", req.EndRow, req.StartRow)
	}
	if limit := s.cfg.MaxBlockSize; limit > 0 && req.EndRow-req.StartRow > limit {
		return engineErrors.NewMalformedRequestf("request_block", "block of %d rows exceeds the limit of %d", req.EndRow-req.StartRow, limit)
	}
	return nil
}

func (s *Source) malformed(ctx context.Context, req types.BlockRequest, err error, start time.Time) types.BlockResponse {
	engineErrors.LogWarning(ctx, err, logger.BlockRange(req.StartRow, req.EndRow))
	s.metrics.ObserveBlock(s.name, metrics.OutcomeMalformed, 0, time.Since(start))

	return types.BlockResponse{
		Rows:    []types.Record{},
		Success: false,
		Err:     err,
	}
}

// Prefetch runs several block requests in parallel on the worker pool and
// returns their responses in request order. It fires no notifications.
// Requests not yet started when ctx is cancelled fail with ctx.Err().
func (s *Source) Prefetch(ctx context.Context, reqs []types.BlockRequest) ([]types.BlockResponse, error) {
	if limit := s.cfg.MaxPrefetchBatch; limit > 0 && len(reqs) > limit {
		return nil, engineErrors.NewMalformedRequestf("prefetch", "batch of %d requests exceeds the limit of %d", len(reqs), limit)
	}

	results := make([]types.BlockResponse, len(reqs))
	var wg sync.WaitGroup
	for i := range reqs {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(reqs); j++ {
				results[j] = types.BlockResponse{Rows: []types.Record{}, Err: err}
			}
			break
		}

		i := i // per-iteration copy; go.mod targets go 1.21 (pre-1.22 loopvar semantics)
		task := func() {
			defer wg.Done()
			results[i] = s.Fetch(ctx, reqs[i])
		}

		wg.Add(1)
		if s.pool == nil {
			task()
			continue
		}
		if err := s.pool.Submit(task); err != nil {
			logger.WarnContext(ctx, "prefetch pool unavailable, running inline", logger.ErrorField(err))
			task()
		}
	}
	wg.Wait()

	return results, ctx.Err()
}
