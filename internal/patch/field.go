// Package patch models partial-update fields that need to distinguish
// "absent from the request" from "explicitly set to null" from "set to a
// value". A plain pointer collapses the first two cases, which breaks
// nullable columns such as a task's due date.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is a three-state JSON value. The zero value means the field was
// absent from the input and must be left untouched.
type Field[T any] struct {
	// Set reports that the field appeared in the input at all.
	Set bool
	// Null reports that the field appeared with an explicit null.
	Null bool
	// Value holds the decoded value when Set && !Null.
	Value T
}

// Of returns a Field carrying the given value.
func Of[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: v}
}

// Null returns a Field carrying an explicit null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(b, []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
