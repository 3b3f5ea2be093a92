package model

import (
	"bytes"
	"encoding/json"
)

// Nullable is a JSON field that distinguishes "absent" from "null" from a
// value. Set is true whenever the key appeared in the payload; Valid is true
// when it carried a non-null value.
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// NullableOf returns a set, valid Nullable holding v.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: v}
}

// Null returns a set Nullable holding JSON null.
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON records presence and decodes non-null values.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// MarshalJSON writes the value, or null when not valid.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns a pointer to the value, or nil when not valid.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}
