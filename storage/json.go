package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/guileen/gridsource/types"
)

// JSONLoader reads a dataset from a file holding a JSON array of objects
type JSONLoader struct {
	path   string
	schema types.Schema
}

func NewJSONLoader(path string, schema types.Schema) *JSONLoader {
	return &JSONLoader{path: path, schema: schema}
}

func (l *JSONLoader) Load(ctx context.Context) ([]types.Record, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	defer f.Close()

	records, err := DecodeRecords(f, l.schema)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", l.path, err)
	}
	return records, nil
}

// DecodeRecords streams a JSON array of objects from r. Numbers are kept
// verbatim rather than converted through float64.
func DecodeRecords(r io.Reader, schema types.Schema) ([]types.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, fmt.Errorf("dataset must be a JSON array, got %v", tok)
	}

	var records []types.Record
	for dec.More() {
		var raw map[string]interface{}
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		record, err := types.DecodeRecord(raw, schema)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		records = append(records, record)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	return records, nil
}
