package engine

import (
	"sort"
	"strings"
	"time"

	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/types"
	"golang.org/x/text/cases"
)

const (
	opTranslateFilter = "translate_filter"
	dateLayout        = "2006-01-02"
)

// TranslateFilters converts a filter model into predicates ordered by column
// name. Columns whose filter yields no search text are dropped.
func TranslateFilters(model map[string]types.FilterSpec) ([]Predicate, error) {
	if len(model) == 0 {
		return nil, nil
	}

	columns := make([]string, 0, len(model))
	for col := range model {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	t := filterTranslator{fold: cases.Fold()}
	predicates := make([]Predicate, 0, len(columns))
	for _, col := range columns {
		pred, ok, err := t.translateColumn(col, model[col])
		if err != nil {
			return nil, err
		}
		if ok {
			predicates = append(predicates, pred)
		}
	}
	return predicates, nil
}

type filterTranslator struct {
	fold cases.Caser
}

func (t *filterTranslator) translateColumn(col string, spec types.FilterSpec) (Predicate, bool, error) {
	spec = concrete(spec)

	var searches []string
	var terms []Term

	if multi, ok := spec.(types.MultiFilter); ok {
		for _, sub := range multi.Filters {
			sub = concrete(sub)
			if sub == nil {
				continue
			}
			if sub.Kind() == types.FilterMulti {
				return Predicate{}, false, engineErrors.NewMalformedRequestf(opTranslateFilter,
					"column %q: multi filters cannot be nested", col)
			}
			search, term, ok, err := t.translateSimple(col, sub)
			if err != nil {
				return Predicate{}, false, err
			}
			if ok {
				searches = append(searches, search)
				terms = append(terms, term)
			}
		}
	} else if spec != nil {
		search, term, ok, err := t.translateSimple(col, spec)
		if err != nil {
			return Predicate{}, false, err
		}
		if ok {
			searches = append(searches, search)
			terms = append(terms, term)
		}
	}

	searchText := strings.Join(searches, ",")
	if searchText == "" {
		return Predicate{}, false, nil
	}
	return Predicate{Column: col, SearchText: searchText, Terms: terms}, true, nil
}

func (t *filterTranslator) translateSimple(col string, spec types.FilterSpec) (string, Term, bool, error) {
	switch f := spec.(type) {
	case types.TextFilter:
		if f.Value == "" {
			return "", Term{}, false, nil
		}
		return f.Value, Term{Source: types.FilterText, Match: MatchContains, Needle: t.fold.String(f.Value)}, true, nil

	case types.SetFilter:
		if len(f.Values) == 0 {
			return "", Term{}, false, nil
		}
		folded := make([]string, len(f.Values))
		for i, v := range f.Values {
			folded[i] = t.fold.String(v)
		}
		return strings.Join(f.Values, ","), Term{Source: types.FilterSet, Match: MatchOneOf, Values: folded}, true, nil

	case types.DateFilter:
		if f.DateFrom == "" {
			return "", Term{}, false, nil
		}
		if len(f.DateFrom) < len(dateLayout) {
			return "", Term{}, false, engineErrors.NewMalformedRequestf(opTranslateFilter,
				"column %q: dateFrom %q has no YYYY-MM-DD date part", col, f.DateFrom)
		}
		date := f.DateFrom[:len(dateLayout)]
		if _, err := time.Parse(dateLayout, date); err != nil {
			return "", Term{}, false, engineErrors.NewMalformedRequestf(opTranslateFilter,
				"column %q: dateFrom %q has no YYYY-MM-DD date part", col, f.DateFrom)
		}
		return date, Term{Source: types.FilterDate, Match: MatchContains, Needle: t.fold.String(date)}, true, nil

	default:
		return "", Term{}, false, engineErrors.NewMalformedRequestf(opTranslateFilter,
			"column %q: unrecognized filter kind %q", col, spec.Kind())
	}
}

// concrete dereferences pointer variants so callers may pass either form
func concrete(spec types.FilterSpec) types.FilterSpec {
	switch f := spec.(type) {
	case *types.TextFilter:
		if f == nil {
			return nil
		}
		return *f
	case *types.SetFilter:
		if f == nil {
			return nil
		}
		return *f
	case *types.DateFilter:
		if f == nil {
			return nil
		}
		return *f
	case *types.MultiFilter:
		if f == nil {
			return nil
		}
		return *f
	case *types.UnrecognizedFilter:
		if f == nil {
			return nil
		}
		return *f
	}
	return spec
}
