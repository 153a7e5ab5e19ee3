package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guileen/gridsource/datasource"
	"github.com/guileen/gridsource/engine/config"
	"github.com/guileen/gridsource/metrics"
	"github.com/guileen/gridsource/storage"
	"github.com/guileen/gridsource/types"
)

type blockResult struct {
	Success            bool                     `json:"success"`
	Rows               []map[string]interface{} `json:"rows"`
	RowCount           int                      `json:"rowCount"`
	TotalMatchingCount int                      `json:"totalMatchingCount"`
	Overlay            string                   `json:"overlay"`
	Error              string                   `json:"error"`
}

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
	return storage.NewRecordStore(records, []types.ColumnDefinition{
		{Name: "countryName", Type: types.ColumnTypeText},
		{Name: "isActiveConvertedValue", Type: types.ColumnTypeStatus},
	})
}

func setupTestRouter(t *testing.T, server config.ServerConfig) chi.Router {
	t.Helper()
	m := metrics.New()
	registry, err := datasource.NewRegistry(config.DefaultEngineConfig(), m)
	require.NoError(t, err)
	t.Cleanup(registry.Close)

	_, err = registry.Register("countries", countryStore())
	require.NoError(t, err)

	router, err := NewRouter(NewRESTHandler(registry, m), server, m)
	require.NoError(t, err)
	return router
}

func post(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBlock(t *testing.T, rec *httptest.ResponseRecorder) blockResult {
	t.Helper()
	var out blockResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func rowNames(rows []map[string]interface{}) []string {
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i], _ = row["countryName"].(string)
	}
	return out
}

func TestRESTHandler_RequestBlock(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := post(t, router, "/api/datasets/countries/blocks", `{
		"startRow": 0,
		"endRow": 100,
		"sortModel": [],
		"filterModel": {"countryName": {"filterType": "text", "type": "contains", "filter": "in"}}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBlock(t, rec)
	assert.True(t, out.Success)
	assert.Equal(t, []string{"India", "Indonesia"}, rowNames(out.Rows))
	assert.Equal(t, 2, out.RowCount)
	assert.Equal(t, 2, out.TotalMatchingCount)
	assert.Equal(t, OverlayNone, out.Overlay)
}

func TestRESTHandler_RequestBlock_SortedPartialBlock(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := post(t, router, "/api/datasets/countries/blocks", `{
		"startRow": 0,
		"endRow": 2,
		"sortModel": [{"colId": "countryName", "sort": "desc"}]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBlock(t, rec)
	assert.Equal(t, []string{"Indonesia", "India"}, rowNames(out.Rows))
	assert.Equal(t, -1, out.RowCount)
	assert.Equal(t, 5, out.TotalMatchingCount)
}

func TestRESTHandler_RequestBlock_SetAndMultiFilters(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := post(t, router, "/api/datasets/countries/blocks", `{
		"startRow": 0,
		"endRow": 100,
		"filterModel": {
			"isActiveConvertedValue": {"filterType": "set", "values": ["Active", null]},
			"countryName": {"filterType": "multi", "filterModels": [null, {"filterType": "text", "filter": "land"}, {"filterType": "set", "values": ["France"]}]}
		}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBlock(t, rec)
	assert.Equal(t, []string{"Iceland", "France"}, rowNames(out.Rows))
}

func TestRESTHandler_RequestBlock_NoRows(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := post(t, router, "/api/datasets/countries/blocks", `{
		"startRow": 0,
		"endRow": 100,
		"filterModel": {"countryName": {"filterType": "text", "filter": "zzz"}}
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	out := decodeBlock(t, rec)
	assert.True(t, out.Success)
	assert.Empty(t, out.Rows)
	assert.NotNil(t, out.Rows)
	assert.Equal(t, 0, out.RowCount)
	assert.Equal(t, 0, out.TotalMatchingCount)
	assert.Equal(t, OverlayNoRows, out.Overlay)
}

func TestRESTHandler_RequestBlock_Malformed(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", `{"startRow": 0,`},
		{"missing endRow", `{"startRow": 0}`},
		{"string startRow", `{"startRow": "0", "endRow": 10}`},
		{"empty range", `{"startRow": 10, "endRow": 10}`},
		{"negative start", `{"startRow": -5, "endRow": 10}`},
		{"bad sort direction", `{"startRow": 0, "endRow": 10, "sortModel": [{"colId": "countryName", "sort": "sideways"}]}`},
		{"unknown filter type", `{"startRow": 0, "endRow": 10, "filterModel": {"population": {"filterType": "number", "filter": "5"}}}`},
		{"filter without type", `{"startRow": 0, "endRow": 10, "filterModel": {"countryName": {"filter": "in"}}}`},
		{"malformed date", `{"startRow": 0, "endRow": 10, "filterModel": {"createdAt": {"filterType": "date", "dateFrom": "yesterday"}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, router, "/api/datasets/countries/blocks", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			out := decodeBlock(t, rec)
			assert.False(t, out.Success)
			assert.NotEmpty(t, out.Error)
			assert.Empty(t, out.Rows)
			assert.Empty(t, out.Overlay)
		})
	}
}

func TestRESTHandler_UnknownDataset(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := post(t, router, "/api/datasets/cities/blocks", `{"startRow": 0, "endRow": 10}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var out ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Contains(t, out.Error, "cities")
	assert.NotEmpty(t, out.RequestID)
}

func TestRESTHandler_PrefetchBlocks(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := post(t, router, "/api/datasets/countries/blocks:prefetch", `{
		"requests": [
			{"startRow": 0, "endRow": 2, "sortModel": [{"colId": "countryName", "sort": "asc"}]},
			{"startRow": 2, "endRow": 4, "sortModel": [{"colId": "countryName", "sort": "asc"}]},
			{"startRow": 4, "endRow": 6, "sortModel": [{"colId": "countryName", "sort": "asc"}]},
			{"startRow": 3, "endRow": 1}
		]
	}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Responses []blockResult `json:"responses"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Responses, 4)

	assert.Equal(t, []string{"France", "Germany"}, rowNames(out.Responses[0].Rows))
	assert.Equal(t, []string{"Iceland", "India"}, rowNames(out.Responses[1].Rows))
	assert.Equal(t, []string{"Indonesia"}, rowNames(out.Responses[2].Rows))
	assert.Equal(t, 5, out.Responses[2].RowCount)
	assert.False(t, out.Responses[3].Success)
	for _, resp := range out.Responses {
		assert.Empty(t, resp.Overlay)
	}
}

func TestRESTHandler_PrefetchBlocks_Invalid(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := post(t, router, "/api/datasets/countries/blocks:prefetch", `{"requests": [{"startRow": 0}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	big := PrefetchRequestBody{}
	for i := 0; i < config.DefaultEngineConfig().MaxPrefetchBatch+1; i++ {
		big.Requests = append(big.Requests, BlockRequestBody{StartRow: i, EndRow: i + 1})
	}
	body, err := json.Marshal(big)
	require.NoError(t, err)
	rec = post(t, router, "/api/datasets/countries/blocks:prefetch", string(body))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRESTHandler_ListDatasets(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/datasets", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out []DatasetInfo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "countries", out[0].Name)
	assert.Equal(t, 5, out[0].Records)
	assert.Len(t, out[0].Columns, 2)
}

func TestRESTHandler_HealthAndMetrics(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	post(t, router, "/api/datasets/countries/blocks", `{"startRow": 0, "endRow": 10}`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `gridsource_block_requests_total{dataset="countries",outcome="ok"} 1`)
	assert.Contains(t, string(body), `gridsource_dataset_records{dataset="countries"} 5`)
}

func TestRequestID(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "client-supplied")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "client-supplied", rec.Header().Get(RequestIDHeader))
}

func TestRateLimit(t *testing.T) {
	router := setupTestRouter(t, config.ServerConfig{RateLimit: 0.001, RateBurst: 2})

	codes := make([]int, 3)
	for i := range codes {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		codes[i] = rec.Code
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// other clients have their own bucket
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.RemoteAddr = "10.0.0.9:4321"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestToBlockRequest(t *testing.T) {
	text := "in"
	body := BlockRequestBody{
		StartRow:  5,
		EndRow:    10,
		SortModel: []SortModelItem{{ColID: "countryName", Sort: "asc"}},
		FilterModel: map[string]*FilterModelItem{
			"countryName": {FilterType: "text", Filter: &text},
			"ignored":     nil,
			"createdAt": {FilterType: "multi", FilterModels: []*FilterModelItem{
				nil,
				{FilterType: "date", DateFrom: strPtr("2023-05-01 00:00:00")},
			}},
			"population": {FilterType: "number"},
		},
	}

	req := body.ToBlockRequest()
	assert.Equal(t, 5, req.StartRow)
	assert.Equal(t, 10, req.EndRow)
	assert.Equal(t, []types.SortDirective{{ColumnName: "countryName", Direction: "asc"}}, req.SortModel)
	assert.Len(t, req.FilterModel, 3)
	assert.Equal(t, types.TextFilter{Value: "in"}, req.FilterModel["countryName"])
	assert.Equal(t, types.MultiFilter{Filters: []types.FilterSpec{nil, types.DateFilter{DateFrom: "2023-05-01 00:00:00"}}}, req.FilterModel["createdAt"])
	assert.Equal(t, types.UnrecognizedFilter{Type: "number"}, req.FilterModel["population"])
}

func strPtr(s string) *string { return &s }
