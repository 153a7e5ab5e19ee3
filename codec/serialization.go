package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/guileen/gridsource/types"
)

// EncodeRecord serializes a record as a JSON object with sorted keys
func EncodeRecord(record types.Record) ([]byte, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}

// DecodeRecord reverses EncodeRecord. Numbers are kept verbatim and columns
// are typed by schema.
func DecodeRecord(data []byte, schema types.Schema) (types.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return types.Record{}, fmt.Errorf("decode record: %w", err)
	}
	record, err := types.DecodeRecord(raw, schema)
	if err != nil {
		return types.Record{}, fmt.Errorf("decode record: %w", err)
	}
	return record, nil
}

// EncodeColumns serializes column definitions for the columns meta entry
func EncodeColumns(columns []types.ColumnDefinition) ([]byte, error) {
	return json.Marshal(columns)
}

func DecodeColumns(data []byte) ([]types.ColumnDefinition, error) {
	var columns []types.ColumnDefinition
	if err := json.Unmarshal(data, &columns); err != nil {
		return nil, fmt.Errorf("decode columns: %w", err)
	}
	return columns, nil
}
