package types

// FilterKind discriminates the FilterSpec variants
type FilterKind string

const (
	FilterText  FilterKind = "text"
	FilterSet   FilterKind = "set"
	FilterDate  FilterKind = "date"
	FilterMulti FilterKind = "multi"
)

// FilterSpec is a per-column declarative filter. The concrete variants are
// TextFilter, SetFilter, DateFilter, MultiFilter and UnrecognizedFilter.
type FilterSpec interface {
	Kind() FilterKind
	filterSpec()
}

// TextFilter matches values containing Value as a substring
type TextFilter struct {
	Value string
}

// SetFilter matches values equal to one of Values
type SetFilter struct {
	Values []string
}

// DateFilter matches values on the date part (YYYY-MM-DD) of DateFrom
type DateFilter struct {
	DateFrom string
}

// MultiFilter combines simple filters on the same column. Nil entries are
// permitted and ignored.
type MultiFilter struct {
	Filters []FilterSpec
}

// UnrecognizedFilter carries a filter whose kind the engine does not know,
// so that the request can be rejected as malformed.
type UnrecognizedFilter struct {
	Type string
}

func (TextFilter) Kind() FilterKind           { return FilterText }
func (SetFilter) Kind() FilterKind            { return FilterSet }
func (DateFilter) Kind() FilterKind           { return FilterDate }
func (MultiFilter) Kind() FilterKind          { return FilterMulti }
func (f UnrecognizedFilter) Kind() FilterKind { return FilterKind(f.Type) }

func (TextFilter) filterSpec()         {}
func (SetFilter) filterSpec()          {}
func (DateFilter) filterSpec()         {}
func (MultiFilter) filterSpec()        {}
func (UnrecognizedFilter) filterSpec() {}
