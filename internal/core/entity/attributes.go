package entity

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONList is a typed slice stored in a PostgreSQL JSONB column
// (tank readings, silo readings, alert names).
type JSONList[T any] []T

// Scan implements sql.Scanner for reading from PostgreSQL JSONB.
func (l *JSONList[T]) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}

	var source []byte
	switch v := src.(type) {
	case []byte:
		source = v
	case string:
		source = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONList: %T", src)
	}

	source = bytes.TrimSpace(source)
	if len(source) == 0 || bytes.Equal(source, []byte("null")) {
		*l = nil
		return nil
	}

	var result []T
	if err := json.Unmarshal(source, &result); err != nil {
		return fmt.Errorf("failed to decode JSONList: %w", err)
	}
	*l = result
	return nil
}

// Value implements driver.Valuer for writing to PostgreSQL JSONB.
// An empty list is stored as [] so the column never holds SQL NULL.
func (l JSONList[T]) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]T(l))
}
