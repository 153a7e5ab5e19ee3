package engine

import (
	"strings"

	engineErrors "github.com/guileen/gridsource/engine/errors"
	"github.com/guileen/gridsource/types"
)

const opTranslateSort = "translate_sort"

// TranslateSort normalizes a sort model, keeping the caller's priority order.
// Column names are not checked against any schema.
func TranslateSort(model []types.SortDirective) ([]SortKey, error) {
	if len(model) == 0 {
		return nil, nil
	}

	keys := make([]SortKey, 0, len(model))
	for i, directive := range model {
		if directive.ColumnName == "" {
			return nil, engineErrors.NewMalformedRequestf(opTranslateSort, "sortModel[%d]: column name is required", i)
		}
		dir, err := ParseDirection(directive.Direction)
		if err != nil {
			return nil, err
		}
		keys = append(keys, SortKey{Column: directive.ColumnName, Direction: dir})
	}
	return keys, nil
}

// ParseDirection accepts "asc" or "desc" in any letter case
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Ascending):
		return Ascending, nil
	case string(Descending):
		return Descending, nil
	default:
		return "", engineErrors.NewMalformedRequestf(opTranslateSort, "unknown sort direction %q", s)
	}
}
