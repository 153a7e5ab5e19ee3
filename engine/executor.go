package engine

import (
	"sort"
	"strings"

	"github.com/guileen/gridsource/types"
	"golang.org/x/text/cases"
)

// Executor applies plans to a record collection. It is safe for concurrent use.
type Executor struct {
	cache *ViewCache
}

// NewExecutor creates an Executor. cache may be nil.
func NewExecutor(cache *ViewCache) *Executor {
	return &Executor{cache: cache}
}

// Execute filters then sorts records according to plan. The returned slice is
// new and must be treated as read-only; records is never modified.
func (e *Executor) Execute(records []types.Record, plan *Plan) []types.Record {
	if plan == nil {
		plan = &Plan{}
	}

	var key string
	if e.cache != nil {
		key = plan.CacheKey()
		if view, ok := e.cache.Get(key); ok {
			return view
		}
	}

	view := Filter(records, plan.Predicates)
	SortRecords(view, plan.SortKeys)

	if e.cache != nil {
		e.cache.Add(key, view)
	}
	return view
}

// Filter returns the records satisfying every predicate, in their original
// order. The result never aliases records.
func Filter(records []types.Record, predicates []Predicate) []types.Record {
	if len(predicates) == 0 {
		out := make([]types.Record, len(records))
		copy(out, records)
		return out
	}

	m := matcher{fold: cases.Fold()}
	out := make([]types.Record, 0, len(records))
	for _, rec := range records {
		if m.matchAll(rec, predicates) {
			out = append(out, rec)
		}
	}
	return out
}

type matcher struct {
	fold cases.Caser
}

func (m *matcher) matchAll(rec types.Record, predicates []Predicate) bool {
	for i := range predicates {
		if !m.match(rec, &predicates[i]) {
			return false
		}
	}
	return true
}

func (m *matcher) match(rec types.Record, pred *Predicate) bool {
	v, ok := rec.Get(pred.Column)
	if !ok || v.IsNull() {
		return false
	}

	folded := m.fold.String(v.String())
	for _, term := range pred.Terms {
		switch term.Match {
		case MatchContains:
			if strings.Contains(folded, term.Needle) {
				return true
			}
		case MatchOneOf:
			if m.oneOf(v, folded, term.Values) {
				return true
			}
		}
	}
	return false
}

// oneOf reports whether the value, or for lists any item of it, equals one of
// the allowed values
func (m *matcher) oneOf(v types.Value, folded string, allowed []string) bool {
	if v.Kind() != types.KindList {
		return contains(allowed, folded)
	}
	for _, item := range v.Items() {
		if contains(allowed, m.fold.String(item)) {
			return true
		}
	}
	return false
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// SortRecords stable-sorts view in place by keys in priority order
func SortRecords(view []types.Record, keys []SortKey) {
	if len(keys) == 0 || len(view) < 2 {
		return
	}
	sort.SliceStable(view, func(i, j int) bool {
		return compareRecords(view[i], view[j], keys) < 0
	})
}
