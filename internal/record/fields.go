package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/alexiusacademia/gofea/internal/units"
)

// Float decodes a number, or a [number, "unit"] pair when dim is not units.None
func Float[T any](key string, dim units.Dimension, ptr func(*T) *float64) Field[T] {
	return Field[T]{Key: key, Dim: dim, decode: func(rec *T, raw json.RawMessage, c converter) error {
		v, err := decodeFloat(raw, dim, c)
		if err != nil {
			return err
		}
		*ptr(rec) = v
		return nil
	}}
}

// Floats decodes a number list (a single number is a list of one), or a
// [[numbers], "unit"] pair for dimensioned fields
func Floats[T any](key string, dim units.Dimension, ptr func(*T) *[]float64) Field[T] {
	return Field[T]{Key: key, Dim: dim, decode: func(rec *T, raw json.RawMessage, c converter) error {
		var list []float64
		if err := json.Unmarshal(raw, &list); err == nil {
			*ptr(rec) = list
			return nil
		}
		var one float64
		if err := json.Unmarshal(raw, &one); err == nil {
			*ptr(rec) = []float64{one}
			return nil
		}
		if dim == units.None {
			return fmt.Errorf("expected a number list, got %s", raw)
		}
		var pair []json.RawMessage
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
			return fmt.Errorf("expected a number list or [list, unit], got %s", raw)
		}
		var unit string
		if err := json.Unmarshal(pair[0], &list); err != nil {
			return fmt.Errorf("expected a number list, got %s", pair[0])
		}
		if err := json.Unmarshal(pair[1], &unit); err != nil {
			return fmt.Errorf("expected a unit string, got %s", pair[1])
		}
		out := make([]float64, len(list))
		for i, v := range list {
			cv, err := c(v, unit)
			if err != nil {
				return err
			}
			out[i] = cv
		}
		*ptr(rec) = out
		return nil
	}}
}

// Int decodes an integral number
func Int[T any](key string, ptr func(*T) *int) Field[T] {
	return Field[T]{Key: key, decode: func(rec *T, raw json.RawMessage, _ converter) error {
		v, err := decodeInt(raw)
		if err != nil {
			return err
		}
		*ptr(rec) = v
		return nil
	}}
}

// Ints decodes a list of integral numbers (a single number is a list of one)
func Ints[T any](key string, ptr func(*T) *[]int) Field[T] {
	return Field[T]{Key: key, decode: func(rec *T, raw json.RawMessage, _ converter) error {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			v, err := decodeInt(raw)
			if err != nil {
				return err
			}
			*ptr(rec) = []int{v}
			return nil
		}
		out := make([]int, len(list))
		for i, r := range list {
			v, err := decodeInt(r)
			if err != nil {
				return err
			}
			out[i] = v
		}
		*ptr(rec) = out
		return nil
	}}
}

// String decodes a string
func String[T any](key string, ptr func(*T) *string) Field[T] {
	return Field[T]{Key: key, decode: func(rec *T, raw json.RawMessage, _ converter) error {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("expected a string, got %s", raw)
		}
		*ptr(rec) = s
		return nil
	}}
}

// Strings decodes a string or a list of strings
func Strings[T any](key string, ptr func(*T) *[]string) Field[T] {
	return Field[T]{Key: key, decode: func(rec *T, raw json.RawMessage, _ converter) error {
		var list []string
		if err := json.Unmarshal(raw, &list); err == nil {
			*ptr(rec) = list
			return nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("expected a string or string list, got %s", raw)
		}
		*ptr(rec) = []string{s}
		return nil
	}}
}

// Bool decodes true/false, "true"/"false"/"yes"/"no" or a number (non-zero is true)
func Bool[T any](key string, ptr func(*T) *bool) Field[T] {
	return Field[T]{Key: key, decode: func(rec *T, raw json.RawMessage, _ converter) error {
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			*ptr(rec) = b
			return nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true", "yes", "on", "1":
				*ptr(rec) = true
				return nil
			case "false", "no", "off", "0":
				*ptr(rec) = false
				return nil
			}
		}
		var f float64
		if err := json.Unmarshal(raw, &f); err == nil {
			*ptr(rec) = f != 0
			return nil
		}
		return fmt.Errorf("expected a boolean, got %s", raw)
	}}
}

// Keyword decodes a string and maps it through lookup, typically an enum parser
func Keyword[T, K any](key string, lookup func(string) (K, error), ptr func(*T) *K) Field[T] {
	return Field[T]{Key: key, decode: func(rec *T, raw json.RawMessage, _ converter) error {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("expected a keyword string, got %s", raw)
		}
		v, err := lookup(s)
		if err != nil {
			return err
		}
		*ptr(rec) = v
		return nil
	}}
}

func decodeFloat(raw json.RawMessage, dim units.Dimension, c converter) (float64, error) {
	var v float64
	if err := json.Unmarshal(raw, &v); err == nil {
		return v, nil
	}
	if dim == units.None {
		return 0, fmt.Errorf("expected a number, got %s", raw)
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return 0, fmt.Errorf("expected a number or [number, unit], got %s", raw)
	}
	var unit string
	if err := json.Unmarshal(pair[0], &v); err != nil {
		return 0, fmt.Errorf("expected a number, got %s", pair[0])
	}
	if err := json.Unmarshal(pair[1], &unit); err != nil {
		return 0, fmt.Errorf("expected a unit string, got %s", pair[1])
	}
	return c(v, unit)
}

func decodeInt(raw json.RawMessage) (int, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, fmt.Errorf("expected an integer, got %s", raw)
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("expected an integer, got %s", raw)
	}
	return int(f), nil
}
