package engine

import "github.com/guileen/gridsource/types"

// Page is one block cut from a filtered, sorted view
type Page struct {
	Rows    []types.Record
	Total   int
	LastRow types.RowCount
}

// Paginate returns rows [startRow, endRow) of view, clipped to its length.
// LastRow is exact once endRow reaches the end of the view, or always when
// eagerCount is set.
func Paginate(view []types.Record, startRow, endRow int, eagerCount bool) Page {
	total := len(view)
	start := clamp(startRow, 0, total)
	end := clamp(endRow, start, total)

	rows := make([]types.Record, end-start)
	copy(rows, view[start:end])

	lastRow := types.AtLeast(endRow)
	if eagerCount || total <= endRow {
		lastRow = types.ExactCount(total)
	}

	return Page{Rows: rows, Total: total, LastRow: lastRow}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
