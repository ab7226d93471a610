package store

import (
	"errors"
	"fmt"
)

// ErrMissingKey is returned by Update when the record carries no primary key.
var ErrMissingKey = errors.New("record has no primary key")

// NotFoundError: Update targeting a key nobody has. Callers typically
// recover by switching to Add/Upsert.
type NotFoundError struct {
	Entity string
	Key    string
	Value  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with %s=%s not found", e.Entity, e.Key, e.Value)
}

// DuplicateKeyError: Add colliding with an existing primary key.
type DuplicateKeyError struct {
	Entity string
	Key    string
	Value  string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s with %s=%s already exists", e.Entity, e.Key, e.Value)
}
