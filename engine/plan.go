package engine

import (
	"encoding/json"

	"github.com/guileen/gridsource/types"
)

// MatchKind selects how a Term tests a column value
type MatchKind int

const (
	// MatchContains tests for a case-folded substring
	MatchContains MatchKind = iota
	// MatchOneOf tests for case-folded equality with any of Values
	MatchOneOf
)

// Term is one sub-filter of a predicate. Needle and Values are already case-folded.
type Term struct {
	Source types.FilterKind `json:"source"`
	Match  MatchKind        `json:"match"`
	Needle string           `json:"needle,omitempty"`
	Values []string         `json:"values,omitempty"`
}

// Predicate is the normalized filter for one column. SearchText is the
// comma-joined search string reported for the column; a record satisfies the
// predicate when any of its Terms matches.
type Predicate struct {
	Column     string `json:"column"`
	SearchText string `json:"search_text"`
	Terms      []Term `json:"terms"`
}

// Direction is a normalized sort direction
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortKey is one normalized entry of a multi-key sort
type SortKey struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Plan is the translated, deterministic form of a block request's filter and
// sort models.
type Plan struct {
	Predicates []Predicate `json:"predicates"`
	SortKeys   []SortKey   `json:"sort_keys"`
}

// NewPlan translates the filter and sort models of req
func NewPlan(req types.BlockRequest) (*Plan, error) {
	predicates, err := TranslateFilters(req.FilterModel)
	if err != nil {
		return nil, err
	}
	keys, err := TranslateSort(req.SortModel)
	if err != nil {
		return nil, err
	}
	return &Plan{Predicates: predicates, SortKeys: keys}, nil
}

// CacheKey identifies the view the plan produces. Plans that filter and
// order identically share a key.
func (p *Plan) CacheKey() string {
	data, _ := json.Marshal(p)
	return string(data)
}
