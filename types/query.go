package types

// SortDirective is one caller-supplied entry of a multi-key sort. Direction is
// kept as supplied; it is normalized when the sort model is translated.
type SortDirective struct {
	ColumnName string `json:"columnName"`
	Direction  string `json:"direction"`
}

// BlockRequest asks for rows [StartRow, EndRow) of the filtered, sorted dataset
type BlockRequest struct {
	StartRow    int
	EndRow      int
	SortModel   []SortDirective
	FilterModel map[string]FilterSpec
}

// RowCount is the end-of-data signal reported with a block. When Exact is set
// Value is the total number of matching rows; otherwise at least Value rows
// exist and more blocks follow.
type RowCount struct {
	Value int
	Exact bool
}

// ExactCount returns a RowCount that closes the row range at n
func ExactCount(n int) RowCount { return RowCount{Value: n, Exact: true} }

// AtLeast returns a RowCount saying n or more rows exist
func AtLeast(n int) RowCount { return RowCount{Value: n} }

// Wire renders the count the way infinite-scroll clients expect it: the exact
// total, or -1 while the end has not been reached.
func (c RowCount) Wire() int {
	if c.Exact {
		return c.Value
	}
	return -1
}

// BlockResponse is the result of one block request
type BlockResponse struct {
	Rows               []Record
	TotalMatchingCount int
	LastRow            RowCount
	Success            bool
	Err                error
}

// Empty reports whether the filtered result holds no rows at all
func (r BlockResponse) Empty() bool {
	return r.Success && r.TotalMatchingCount == 0
}
