// Package id generates the time-ordered identifiers of records and audit entries.
package id

import (
	"fmt"

	"github.com/google/uuid"
)

// ID identifies a record. The zero value means "no record".
type ID = uuid.UUID

// New returns a UUIDv7, falling back to a random v4 if the clock source fails.
func New() ID {
	if v, err := uuid.NewV7(); err == nil {
		return v
	}
	return uuid.New()
}

// Parse reads a canonical UUID string.
func Parse(s string) (ID, error) {
	v, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return v, nil
}

func IsNil(v ID) bool { return v == uuid.Nil }
