package api

import (
	"github.com/guileen/gridsource/types"
)

// Overlay states reported with a block
const (
	OverlayNoRows = "noRows"
	OverlayNone   = "none"
)

// SortModelItem is one entry of the grid's sort model
type SortModelItem struct {
	ColID string `json:"colId"`
	Sort  string `json:"sort"`
}

// FilterModelItem is the grid's per-column filter model. Which fields are
// meaningful depends on FilterType.
type FilterModelItem struct {
	FilterType   string             `json:"filterType"`
	Filter       *string            `json:"filter,omitempty"`
	Values       []*string          `json:"values,omitempty"`
	DateFrom     *string            `json:"dateFrom,omitempty"`
	FilterModels []*FilterModelItem `json:"filterModels,omitempty"`
}

// BlockRequestBody is the body of a block request as the grid sends it
type BlockRequestBody struct {
	StartRow    int                         `json:"startRow"`
	EndRow      int                         `json:"endRow"`
	SortModel   []SortModelItem             `json:"sortModel,omitempty"`
	FilterModel map[string]*FilterModelItem `json:"filterModel,omitempty"`
}

// ToBlockRequest converts the wire form into an engine request
func (b BlockRequestBody) ToBlockRequest() types.BlockRequest {
	req := types.BlockRequest{
		StartRow: b.StartRow,
		EndRow:   b.EndRow,
	}

	for _, s := range b.SortModel {
		req.SortModel = append(req.SortModel, types.SortDirective{ColumnName: s.ColID, Direction: s.Sort})
	}

	if len(b.FilterModel) > 0 {
		req.FilterModel = make(map[string]types.FilterSpec, len(b.FilterModel))
		for col, item := range b.FilterModel {
			if spec := item.toFilterSpec(); spec != nil {
				req.FilterModel[col] = spec
			}
		}
	}
	return req
}

func (f *FilterModelItem) toFilterSpec() types.FilterSpec {
	if f == nil {
		return nil
	}

	switch types.FilterKind(f.FilterType) {
	case types.FilterText:
		return types.TextFilter{Value: deref(f.Filter)}
	case types.FilterSet:
		values := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			if v != nil {
				values = append(values, *v)
			}
		}
		return types.SetFilter{Values: values}
	case types.FilterDate:
		return types.DateFilter{DateFrom: deref(f.DateFrom)}
	case types.FilterMulti:
		filters := make([]types.FilterSpec, len(f.FilterModels))
		for i, sub := range f.FilterModels {
			filters[i] = sub.toFilterSpec()
		}
		return types.MultiFilter{Filters: filters}
	default:
		return types.UnrecognizedFilter{Type: f.FilterType}
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// BlockResponseBody is returned for every block request
type BlockResponseBody struct {
	Success            bool           `json:"success"`
	Rows               []types.Record `json:"rows"`
	RowCount           int            `json:"rowCount"`
	TotalMatchingCount int            `json:"totalMatchingCount"`
	Overlay            string         `json:"overlay,omitempty"`
	Error              string         `json:"error,omitempty"`
}

// NewBlockResponseBody renders resp. overlay is empty for responses that
// must not change the client's overlay.
func NewBlockResponseBody(resp types.BlockResponse, overlay string) BlockResponseBody {
	body := BlockResponseBody{
		Success:            resp.Success,
		Rows:               resp.Rows,
		RowCount:           resp.LastRow.Wire(),
		TotalMatchingCount: resp.TotalMatchingCount,
		Overlay:            overlay,
	}
	if body.Rows == nil {
		body.Rows = []types.Record{}
	}
	if resp.Err != nil {
		body.Error = resp.Err.Error()
	}
	if !resp.Success {
		body.RowCount = 0
	}
	return body
}

type PrefetchRequestBody struct {
	Requests []BlockRequestBody `json:"requests"`
}

type PrefetchResponseBody struct {
	Responses []BlockResponseBody `json:"responses"`
}

// DatasetInfo describes one served dataset
type DatasetInfo struct {
	Name    string                   `json:"name"`
	Records int                      `json:"records"`
	Columns []types.ColumnDefinition `json:"columns,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// overlayNotifier records the overlay state chosen for one request
type overlayNotifier struct {
	state string
}

func (n *overlayNotifier) ShowNoData()  { n.state = OverlayNoRows }
func (n *overlayNotifier) ClearNoData() { n.state = OverlayNone }
