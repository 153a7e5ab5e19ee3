package datasource

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guileen/gridsource/engine/config"
	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/metrics"
	"github.com/guileen/gridsource/storage"
	"github.com/guileen/gridsource/types"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) ShowNoData()  { m.Called() }
func (m *mockNotifier) ClearNoData() { m.Called() }

func countryStore() *storage.RecordStore {
	rows := []struct{ name, status string }{
		{"India", "Active"},
		{"Indonesia", "Inactive"},
		{"Iceland", "Active"},
		{"France", "Active"},
		{"Germany", "Inactive"},
	}
	records := make([]types.Record, len(rows))
	for i, r := range rows {
		records[i] = types.NewRecord(map[string]types.Value{
			"countryName":            types.Text(r.name),
			"isActiveConvertedValue": types.Text(r.status),
		})
	}
	return storage.NewRecordStore(records, nil)
}

func names(records []types.Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		v, _ := rec.Get("countryName")
		out[i] = v.String()
	}
	return out
}

func newTestSource(t *testing.T, cfg config.EngineConfig) *Source {
	t.Helper()
	r, err := NewRegistry(cfg, metrics.New())
	require.NoError(t, err)
	t.Cleanup(r.Close)

	src, err := r.Register("countries", countryStore())
	require.NoError(t, err)
	return src
}

func TestAdapter_TextFilter(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("ClearNoData").Once()
	adapter := NewAdapter(newTestSource(t, config.DefaultEngineConfig()), notifier)

	resp := adapter.RequestBlock(context.Background(), types.BlockRequest{
		StartRow:    0,
		EndRow:      10,
		FilterModel: map[string]types.FilterSpec{"countryName": types.TextFilter{Value: "ind"}},
	})

	require.True(t, resp.Success)
	assert.Equal(t, []string{"India", "Indonesia"}, names(resp.Rows))
	assert.Equal(t, 2, resp.TotalMatchingCount)
	assert.Equal(t, types.ExactCount(2), resp.LastRow)
	notifier.AssertExpectations(t)
}

func TestAdapter_SortedFirstBlock(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("ClearNoData").Twice()
	adapter := NewAdapter(newTestSource(t, config.DefaultEngineConfig()), notifier)

	resp := adapter.RequestBlock(context.Background(), types.BlockRequest{
		StartRow:    0,
		EndRow:      2,
		SortModel:   []types.SortDirective{{ColumnName: "countryName", Direction: "desc"}},
		FilterModel: map[string]types.FilterSpec{"countryName": types.TextFilter{Value: "ind"}},
	})

	require.True(t, resp.Success)
	assert.Equal(t, []string{"Indonesia", "India"}, names(resp.Rows))
	assert.Equal(t, 2, resp.TotalMatchingCount)

	resp = adapter.RequestBlock(context.Background(), types.BlockRequest{
		StartRow:  0,
		EndRow:    2,
		SortModel: []types.SortDirective{{ColumnName: "countryName", Direction: "desc"}},
	})
	require.True(t, resp.Success)
	assert.Equal(t, 5, resp.TotalMatchingCount)
	assert.Equal(t, types.AtLeast(2), resp.LastRow)
	assert.Equal(t, -1, resp.LastRow.Wire())
	notifier.AssertExpectations(t)
}

func TestAdapter_SetFilter(t *testing.T) {
	adapter := NewAdapter(newTestSource(t, config.DefaultEngineConfig()), nil)

	resp := adapter.RequestBlock(context.Background(), types.BlockRequest{
		StartRow:    0,
		EndRow:      100,
		FilterModel: map[string]types.FilterSpec{"isActiveConvertedValue": types.SetFilter{Values: []string{"Active"}}},
	})

	require.True(t, resp.Success)
	assert.Equal(t, 3, resp.TotalMatchingCount)
	assert.Equal(t, []string{"India", "Iceland", "France"}, names(resp.Rows))
}

func TestAdapter_BlockPastEnd(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("ClearNoData").Twice()
	adapter := NewAdapter(newTestSource(t, config.DefaultEngineConfig()), notifier)

	resp := adapter.RequestBlock(context.Background(), types.BlockRequest{StartRow: 3, EndRow: 10})
	require.True(t, resp.Success)
	assert.Len(t, resp.Rows, 2)
	assert.Equal(t, 5, resp.TotalMatchingCount)

	// the whole result lies before this block, but data stays visible
	resp = adapter.RequestBlock(context.Background(), types.BlockRequest{StartRow: 10, EndRow: 20})
	require.True(t, resp.Success)
	assert.Empty(t, resp.Rows)
	assert.Equal(t, types.ExactCount(5), resp.LastRow)
	notifier.AssertExpectations(t)
	notifier.AssertNotCalled(t, "ShowNoData")
}

func TestAdapter_NoMatches(t *testing.T) {
	notifier := &mockNotifier{}
	notifier.On("ShowNoData").Once()
	adapter := NewAdapter(newTestSource(t, config.DefaultEngineConfig()), notifier)

	resp := adapter.RequestBlock(context.Background(), types.BlockRequest{
		StartRow:    0,
		EndRow:      10,
		FilterModel: map[string]types.FilterSpec{"countryName": types.TextFilter{Value: "zzz"}},
	})

	require.True(t, resp.Success)
	assert.Empty(t, resp.Rows)
	assert.Equal(t, 0, resp.TotalMatchingCount)
	assert.True(t, resp.Empty())
	notifier.AssertExpectations(t)
	notifier.AssertNotCalled(t, "ClearNoData")
}

func TestAdapter_MalformedRequests(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.MaxBlockSize = 100

	tests := []struct {
		name string
		req  types.BlockRequest
	}{
		{"negative start", types.BlockRequest{StartRow: -1, EndRow: 10}},
		{"empty range", types.BlockRequest{StartRow: 5, EndRow: 5}},
		{"inverted range", types.BlockRequest{StartRow: 10, EndRow: 5}},
		{"oversized block", types.BlockRequest{StartRow: 0, EndRow: 101}},
		{"bad direction", types.BlockRequest{StartRow: 0, EndRow: 10, SortModel: []types.SortDirective{{ColumnName: "countryName", Direction: "up"}}}},
		{"unknown filter", types.BlockRequest{StartRow: 0, EndRow: 10, FilterModel: map[string]types.FilterSpec{"countryName": types.UnrecognizedFilter{Type: "number"}}}},
		{"short date", types.BlockRequest{StartRow: 0, EndRow: 10, FilterModel: map[string]types.FilterSpec{"createdAt": types.DateFilter{DateFrom: "2023-05"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			notifier := &mockNotifier{}
			adapter := NewAdapter(newTestSource(t, cfg), notifier)

			resp := adapter.RequestBlock(context.Background(), tt.req)
			assert.False(t, resp.Success)
			assert.Empty(t, resp.Rows)
			require.Error(t, resp.Err)
			assert.True(t, engineErrors.IsMalformedRequest(resp.Err))
			notifier.AssertNotCalled(t, "ShowNoData")
			notifier.AssertNotCalled(t, "ClearNoData")
		})
	}
}

func TestSource_Idempotent(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.ViewCacheSize = 4
	src := newTestSource(t, cfg)
	req := types.BlockRequest{
		StartRow:    0,
		EndRow:      3,
		SortModel:   []types.SortDirective{{ColumnName: "isActiveConvertedValue", Direction: "asc"}},
		FilterModel: map[string]types.FilterSpec{"countryName": types.TextFilter{Value: "e"}},
	}

	first := src.Fetch(context.Background(), req)
	second := src.Fetch(context.Background(), req)
	assert.Equal(t, first, second)
}

func TestSource_EagerRowCount(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.EagerRowCount = true
	src := newTestSource(t, cfg)

	resp := src.Fetch(context.Background(), types.BlockRequest{StartRow: 0, EndRow: 2})
	require.True(t, resp.Success)
	assert.Equal(t, types.ExactCount(5), resp.LastRow)
}

func TestSource_Prefetch(t *testing.T) {
	src := newTestSource(t, config.DefaultEngineConfig())
	sortModel := []types.SortDirective{{ColumnName: "countryName", Direction: "asc"}}

	reqs := make([]types.BlockRequest, 0, 5)
	for start := 0; start < 5; start++ {
		reqs = append(reqs, types.BlockRequest{StartRow: start, EndRow: start + 1, SortModel: sortModel})
	}
	reqs = append(reqs, types.BlockRequest{StartRow: 2, EndRow: 1})

	resps, err := src.Prefetch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, resps, len(reqs))

	var got []string
	for _, resp := range resps[:5] {
		require.True(t, resp.Success)
		got = append(got, names(resp.Rows)...)
	}
	assert.Equal(t, []string{"France", "Germany", "Iceland", "India", "Indonesia"}, got)
	assert.False(t, resps[5].Success)
}

func TestSource_PrefetchBatchLimit(t *testing.T) {
	cfg := config.DefaultEngineConfig()
	cfg.MaxPrefetchBatch = 2
	src := newTestSource(t, cfg)

	reqs := make([]types.BlockRequest, 3)
	for i := range reqs {
		reqs[i] = types.BlockRequest{StartRow: 0, EndRow: 1}
	}
	_, err := src.Prefetch(context.Background(), reqs)
	assert.True(t, engineErrors.IsMalformedRequest(err))
}

func TestSource_PrefetchCancelled(t *testing.T) {
	src := newTestSource(t, config.DefaultEngineConfig())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resps, err := src.Prefetch(ctx, []types.BlockRequest{{StartRow: 0, EndRow: 1}, {StartRow: 1, EndRow: 2}})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, resps, 2)
	for _, resp := range resps {
		assert.False(t, resp.Success)
		assert.ErrorIs(t, resp.Err, context.Canceled)
	}
}

func TestRegistry(t *testing.T) {
	r, err := NewRegistry(config.DefaultEngineConfig(), nil)
	require.NoError(t, err)
	defer r.Close()

	for i := 0; i < 3; i++ {
		_, err := r.Register(fmt.Sprintf("ds%d", i), countryStore())
		require.NoError(t, err)
	}
	_, err = r.Register("ds0", countryStore())
	assert.True(t, engineErrors.IsConfigError(err))

	src, err := r.Source("ds1")
	require.NoError(t, err)
	assert.Equal(t, "ds1", src.Name())
	assert.Equal(t, 5, src.Len())

	_, err = r.Source("missing")
	assert.True(t, engineErrors.IsNotFound(err))

	var got []string
	for _, s := range r.Sources() {
		got = append(got, s.Name())
	}
	assert.Equal(t, []string{"ds0", "ds1", "ds2"}, got)
}

func TestRegistry_PrefetchAfterClose(t *testing.T) {
	r, err := NewRegistry(config.DefaultEngineConfig(), nil)
	require.NoError(t, err)
	src, err := r.Register("countries", countryStore())
	require.NoError(t, err)
	r.Close()

	resps, err := src.Prefetch(context.Background(), []types.BlockRequest{{StartRow: 0, EndRow: 5}})
	require.NoError(t, err)
	assert.Len(t, resps[0].Rows, 5)
}
