package engine

import (
	"strings"

	"github.com/guileen/gridsource/types"
)

func compareRecords(a, b types.Record, keys []SortKey) int {
	for _, key := range keys {
		av, aok := a.Get(key.Column)
		bv, bok := b.Get(key.Column)
		c := compareValues(av, aok, bv, bok)
		if key.Direction == Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return 0
}

// compareValues orders values of one kind naturally and different kinds by
// kind rank: text, date-time, list, then absent/null last.
func compareValues(a types.Value, aok bool, b types.Value, bok bool) int {
	ak, bk := kindOf(a, aok), kindOf(b, bok)
	if ak != bk {
		if ak < bk {
			return -1
		}
		return 1
	}

	switch ak {
	case types.KindNull:
		return 0
	case types.KindTime:
		return a.TimeValue().Compare(b.TimeValue())
	default:
		return strings.Compare(a.String(), b.String())
	}
}

func kindOf(v types.Value, ok bool) types.ValueKind {
	if !ok {
		return types.KindNull
	}
	return v.Kind()
}
