// Package value holds the loose-typing rules the form engine applies to
// field values: truthiness, numeric coercion, stringification, equality
// and deep copies of nested value trees.
//
// Field values come from DOM-shaped events and programmatic calls, so they
// are untyped (any). Maps are always map[string]any, sequences are []any
// (or []string when set directly by callers).
package value

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Truthy reports whether v counts as set. nil, "", false, numeric zero and
// NaN are falsy. Every other value, including empty slices and maps, is
// truthy.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return x != ""
	case bool:
		return x
	case float64:
		return x != 0 && !math.IsNaN(x)
	case float32:
		return x != 0 && !math.IsNaN(float64(x))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		n, _ := Number(x)
		return n != 0
	}
	return true
}

// Number coerces v to a float64. Strings are trimmed and parsed, the empty
// string is 0, booleans are 0 or 1. ok is false when v has no numeric
// reading (nil, non-numeric strings, maps, slices, NaN).
func Number(v any) (n float64, ok bool) {
	switch x := v.(type) {
	case float64:
		n = x
	case float32:
		n = float64(x)
	case int:
		n = float64(x)
	case int8:
		n = float64(x)
	case int16:
		n = float64(x)
	case int32:
		n = float64(x)
	case int64:
		n = float64(x)
	case uint:
		n = float64(x)
	case uint8:
		n = float64(x)
	case uint16:
		n = float64(x)
	case uint32:
		n = float64(x)
	case uint64:
		n = float64(x)
	case bool:
		if x {
			n = 1
		}
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		n = f
	default:
		return 0, false
	}
	if math.IsNaN(n) {
		return 0, false
	}
	return n, true
}

// String renders v the way a form control would display it. nil is the
// empty string and sequences are joined with commas.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case []string:
		return strings.Join(x, ",")
	case []any:
		parts := make([]string, len(x))
		for i, item := range x {
			parts[i] = String(item)
		}
		return strings.Join(parts, ",")
	}
	if n, ok := Number(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = String(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	if s, ok := v.(interface{ String() string }); ok {
		return s.String()
	}
	return ""
}

// Len returns the length of strings (in runes), slices, arrays and maps.
// nil has length 0. ok is false for values without a length.
func Len(v any) (n int, ok bool) {
	switch x := v.(type) {
	case nil:
		return 0, true
	case string:
		return len([]rune(x)), true
	case []any:
		return len(x), true
	case []string:
		return len(x), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), true
	}
	return 0, false
}

// StrictEqual compares two values by identity for scalars. Values of
// different dynamic types are never equal, except that numbers of any
// width compare by numeric value. Non-comparable values (slices, maps) are
// never strictly equal.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if isNumeric(a) && isNumeric(b) {
		x, _ := Number(a)
		y, _ := Number(b)
		return x == y
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func isNumeric(v any) bool {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return true
	}
	return false
}

// Equal reports deep equality. []string and []any holding the same items
// are equal, numbers compare by value.
func Equal(a, b any) bool {
	a, b = normalize(a), normalize(b)
	switch x := a.(type) {
	case map[string]any:
		y, ok := b.(map[string]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	case []any:
		y, ok := b.([]any)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	}
	if isNumeric(a) && isNumeric(b) {
		return StrictEqual(a, b)
	}
	return reflect.DeepEqual(a, b)
}

func normalize(v any) any {
	if s, ok := v.([]string); ok {
		out := make([]any, len(s))
		for i := range s {
			out[i] = s[i]
		}
		return out
	}
	return v
}

// Clone deep-copies maps and sequences. Other values are returned as is.
func Clone(v any) any {
	switch x := v.(type) {
	case map[string]any:
		return CloneMap(x)
	case []any:
		out := make([]any, len(x))
		for i := range x {
			out[i] = Clone(x[i])
		}
		return out
	case []string:
		out := make([]string, len(x))
		copy(out, x)
		return out
	}
	return v
}

// CloneMap deep-copies a values tree. A nil map clones to an empty map.
func CloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Slice coerces v to a sequence. Sequences are copied into a new []any,
// nil becomes an empty sequence and scalars are wrapped.
func Slice(v any) []any {
	switch x := v.(type) {
	case nil:
		return []any{}
	case []any:
		out := make([]any, len(x))
		copy(out, x)
		return out
	case []string:
		out := make([]any, len(x))
		for i := range x {
			out[i] = x[i]
		}
		return out
	}
	return []any{v}
}

// IsSlice reports whether v is a sequence.
func IsSlice(v any) bool {
	switch v.(type) {
	case []any, []string:
		return true
	}
	return false
}

// IsMap reports whether v is a nested values object.
func IsMap(v any) bool {
	_, ok := v.(map[string]any)
	return ok
}

// Contains reports whether the sequence v holds an item strictly equal to
// item. A scalar v is compared directly.
func Contains(v any, item any) bool {
	if !IsSlice(v) {
		return StrictEqual(v, item)
	}
	for _, x := range Slice(v) {
		if StrictEqual(x, item) {
			return true
		}
	}
	return false
}
