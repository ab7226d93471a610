package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// GenID returns a new opaque primary key.
func GenID() string { return uuid.NewString() }

// ValidationError signals a genuinely malformed user input (missing required
// field). Unlike bad on-disk data, these are surfaced, never swallowed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("champ %s invalide: %s", e.Field, e.Reason)
}

// ToRecord flattens a typed document into the generic map shape the store
// persists, going through JSON so tags drive the field names.
func ToRecord(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FromRecord is the inverse of ToRecord. Unknown fields are dropped from the
// typed view but survive on disk because store updates merge over the
// existing record.
func FromRecord(rec map[string]any, v any) error {
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}
