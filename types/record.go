package types

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
	"time"
)

// ValueKind discriminates the dynamic type held by a Value
type ValueKind int

const (
	KindText ValueKind = iota
	KindTime
	KindList
	KindNull
)

func (k ValueKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTime:
		return "datetime"
	case KindList:
		return "list"
	default:
		return "null"
	}
}

// Value is an immutable column value
type Value struct {
	kind ValueKind
	text string
	at   time.Time
	list []string
}

// Null returns the absent value
func Null() Value { return Value{kind: KindNull} }

// Text returns a text value
func Text(s string) Value { return Value{kind: KindText, text: s} }

// Time returns a date-time value. raw is the source representation used for
// text matching; when empty the time is rendered as RFC 3339.
func Time(t time.Time, raw string) Value {
	if raw == "" {
		raw = t.Format(time.RFC3339)
	}
	return Value{kind: KindTime, text: raw, at: t}
}

// List returns a free-text list value
func List(items []string) Value {
	cp := make([]string, len(items))
	copy(cp, items)
	return Value{kind: KindList, text: strings.Join(cp, ", "), list: cp}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == KindNull }

// String returns the text form used for filtering
func (v Value) String() string { return v.text }

// TimeValue returns the instant held by a KindTime value
func (v Value) TimeValue() time.Time { return v.at }

// Items returns the elements of a KindList value
func (v Value) Items() []string { return v.list }

// MarshalJSON implements json.Marshaler
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindNull:
		return []byte("null"), nil
	case KindList:
		return json.Marshal(v.list)
	default:
		return json.Marshal(v.text)
	}
}

// Record is a flat, read-only mapping from column name to value
type Record struct {
	fields map[string]Value
}

// NewRecord copies fields into a new Record
func NewRecord(fields map[string]Value) Record {
	cp := make(map[string]Value, len(fields))
	for k, v := range fields {
		cp[k] = v
	}
	return Record{fields: cp}
}

// Get returns the value stored under column. Absent columns report ok=false.
func (r Record) Get(column string) (Value, bool) {
	v, ok := r.fields[column]
	return v, ok
}

// Len returns the number of columns present in the record
func (r Record) Len() int { return len(r.fields) }

// Columns returns the record's column names in lexical order
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r.fields))
	for k := range r.fields {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// MarshalJSON renders the record as a JSON object with columns in lexical order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, col := range r.Columns() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(col)
		if err != nil {
			return nil, err
		}
		val, err := r.fields[col].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// DecodeRecord builds a Record from a raw JSON-decoded object using schema
func DecodeRecord(raw map[string]interface{}, schema Schema) (Record, error) {
	fields := make(map[string]Value, len(raw))
	for col, rv := range raw {
		v, err := DecodeValue(rv, schema[col])
		if err != nil {
			if te, ok := err.(*TypeError); ok {
				te.Column = col
			}
			return Record{}, err
		}
		fields[col] = v
	}
	return Record{fields: fields}, nil
}
