// Package record hydrates typed records from JSON-object-shaped tuple values.
//
// Each record type declares a static schema: a list of fields naming the JSON
// key, the target setter and, for physical quantities, the dimension used for
// unit conversion. Parse walks the schema; keys missing from the value leave
// the record's default in place and keys absent from the schema are ignored.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alexiusacademia/gofea/internal/units"
)

// ErrNotImplemented is returned for bare keyword values. Keyword lookup
// tables are an extension point that has not been built.
var ErrNotImplemented = errors.New("keyword values are not implemented, use a JSON object")

// ErrMissing is returned when a required field is absent
var ErrMissing = errors.New("missing required field")

// Error reports a failure on one field of one tuple
type Error struct {
	Tuple string
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("tuple %q: %v", e.Tuple, e.Err)
	}
	return fmt.Sprintf("tuple %q field %q: %v", e.Tuple, e.Field, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Field describes one JSON key of a record schema
type Field[T any] struct {
	Key      string
	Dim      units.Dimension
	required bool
	decode   func(rec *T, raw json.RawMessage, c converter) error
}

// Required marks the field as mandatory
func (f Field[T]) Required() Field[T] {
	f.required = true
	return f
}

// converter turns a value given in a unit into the problem's unit
type converter func(v float64, unit string) (float64, error)

// IsJSON reports whether a tuple value is JSON-object-shaped
func IsJSON(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), "{")
}

// Decode splits a JSON object value into its raw members
func Decode(tuple, value string) (map[string]json.RawMessage, error) {
	if !IsJSON(value) {
		return nil, &Error{Tuple: tuple, Err: fmt.Errorf("%w: %q", ErrNotImplemented, value)}
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal([]byte(value), &members); err != nil {
		return nil, &Error{Tuple: tuple, Err: err}
	}
	return members, nil
}

// Parse applies the schema to a tuple value. us may be nil when the problem
// declares no unit system, in which case values given with units are rejected.
func Parse[T any](tuple, value string, rec *T, schema []Field[T], us *units.System) error {
	members, err := Decode(tuple, value)
	if err != nil {
		return err
	}
	return Apply(tuple, members, rec, schema, us)
}

// Apply runs the schema over already decoded members
func Apply[T any](tuple string, members map[string]json.RawMessage, rec *T, schema []Field[T], us *units.System) error {
	for _, f := range schema {
		raw, ok := members[f.Key]
		if !ok || isNull(raw) {
			if f.required {
				return &Error{Tuple: tuple, Field: f.Key, Err: ErrMissing}
			}
			continue
		}
		dim := f.Dim
		conv := func(v float64, unit string) (float64, error) {
			if us == nil {
				return 0, fmt.Errorf("value given in %q but no unit system is declared", unit)
			}
			return us.Convert(v, unit, dim)
		}
		if err := f.decode(rec, raw, conv); err != nil {
			return &Error{Tuple: tuple, Field: f.Key, Err: err}
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
