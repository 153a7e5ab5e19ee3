package storage

import (
	"context"
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guileen/gridsource/types"
)

// PostgresLoader materializes a PostgreSQL table
type PostgresLoader struct {
	connString string
	table      string
	orderBy    string
	schema     types.Schema
}

// NewPostgresLoader loads every row of table, optionally ordered by the
// orderBy column so that source order is stable across restarts.
func NewPostgresLoader(connString, table, orderBy string, schema types.Schema) *PostgresLoader {
	return &PostgresLoader{
		connString: connString,
		table:      table,
		orderBy:    orderBy,
		schema:     schema,
	}
}

func (l *PostgresLoader) Load(ctx context.Context) ([]types.Record, error) {
	config, err := pgxpool.ParseConfig(l.connString)
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	config.MaxConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()

	rows, err := pool.Query(ctx, l.query())
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", l.table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var records []types.Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(records), err)
		}

		raw := make(map[string]interface{}, len(fields))
		for i, fd := range fields {
			raw[fd.Name] = normalizePGValue(values[i])
		}

		record, err := types.DecodeRecord(raw, l.schema)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", len(records), err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query %s: %w", l.table, err)
	}
	return records, nil
}

func (l *PostgresLoader) query() string {
	q := "SELECT * FROM " + identifier(l.table).Sanitize()
	if l.orderBy != "" {
		q += " ORDER BY " + identifier(l.orderBy).Sanitize()
	}
	return q
}

// identifier splits a possibly schema-qualified name
func identifier(name string) pgx.Identifier {
	return pgx.Identifier(strings.Split(name, "."))
}

// normalizePGValue converts driver values into the shapes types.DecodeValue
// understands.
func normalizePGValue(v interface{}) interface{} {
	switch val := v.(type) {
	case nil, string, bool, time.Time:
		return val
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		return string(val)
	case []interface{}:
		items := make([]interface{}, len(val))
		for i, item := range val {
			items[i] = normalizePGValue(item)
		}
		return items
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil || dv == nil {
			return nil
		}
		return normalizePGValue(dv)
	default:
		return val
	}
}
