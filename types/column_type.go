package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ColumnType represents the data type of a dataset column
type ColumnType string

const (
	ColumnTypeText     ColumnType = "text"
	ColumnTypeStatus   ColumnType = "status"
	ColumnTypeImage    ColumnType = "image"
	ColumnTypeList     ColumnType = "list"
	ColumnTypeDateTime ColumnType = "datetime"
)

// ColumnDefinition defines a dataset column
type ColumnDefinition struct {
	Name        string     `json:"name" yaml:"name"`
	Type        ColumnType `json:"type" yaml:"type"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
}

// IsValidColumnType checks if a column type is valid
func IsValidColumnType(typ ColumnType) bool {
	switch typ {
	case ColumnTypeText, ColumnTypeStatus, ColumnTypeImage,
		ColumnTypeList, ColumnTypeDateTime:
		return true
	default:
		return false
	}
}

// Schema indexes column definitions by name. Columns missing from the schema
// decode by the shape of their raw value.
type Schema map[string]ColumnType

// NewSchema builds a Schema from column definitions
func NewSchema(columns []ColumnDefinition) Schema {
	s := make(Schema, len(columns))
	for _, col := range columns {
		s[col.Name] = col.Type
	}
	return s
}

// DateTimeLayouts are tried in order when decoding datetime columns
var DateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime parses s with the first matching layout in DateTimeLayouts
func ParseDateTime(s string) (time.Time, bool) {
	for _, layout := range DateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DecodeValue converts a raw JSON-decoded (or driver-scanned) value into a Value
// according to the column type. An empty ColumnType decodes by shape.
func DecodeValue(raw interface{}, typ ColumnType) (Value, error) {
	if raw == nil {
		return Null(), nil
	}

	switch typ {
	case ColumnTypeList:
		items, err := listItems(raw)
		if err != nil {
			return Value{}, err
		}
		return List(items), nil
	case ColumnTypeDateTime:
		switch v := raw.(type) {
		case time.Time:
			return Time(v, ""), nil
		case string:
			if t, ok := ParseDateTime(v); ok {
				return Time(t, v), nil
			}
			return Text(v), nil
		}
		return Text(scalarText(raw)), nil
	case ColumnTypeText, ColumnTypeStatus, ColumnTypeImage, "":
		switch v := raw.(type) {
		case []interface{}, []string:
			if typ != "" {
				return Value{}, &TypeError{Expected: "scalar", Got: fmt.Sprintf("%T", raw)}
			}
			items, err := listItems(v)
			if err != nil {
				return Value{}, err
			}
			return List(items), nil
		case time.Time:
			return Time(v, ""), nil
		}
		return Text(scalarText(raw)), nil
	default:
		return Value{}, fmt.Errorf("unknown column type %q", typ)
	}
}

func listItems(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if item == nil {
				continue
			}
			items = append(items, scalarText(item))
		}
		return items, nil
	case string:
		if v == "" {
			return nil, nil
		}
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	default:
		return nil, &TypeError{Expected: "list", Got: fmt.Sprintf("%T", raw)}
	}
}

func scalarText(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// TypeError reports a raw value whose shape does not fit its column type
type TypeError struct {
	Column   string
	Expected string
	Got      string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("column %s: expected %s, got %s", e.Column, e.Expected, e.Got)
}
