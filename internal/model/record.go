package model

import (
	"math"
	"sort"
	"strings"
)

// Record holds extracted values keyed by field. Values are string, bool,
// int64 or float64. Integer and monetary fields fall back to the raw matched
// string when coercion fails.
type Record map[Field]any

// Has reports whether f holds a non-empty value.
func (r Record) Has(f Field) bool {
	v, ok := r[f]
	if !ok || v == nil {
		return false
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) != ""
	}
	return true
}

// Fill sets f to v only when f is absent or empty. It reports whether the
// value was stored.
func (r Record) Fill(f Field, v any) bool {
	if r.Has(f) || v == nil {
		return false
	}
	if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
		return false
	}
	r[f] = v
	return true
}

// Populated returns the number of fields holding a non-empty value.
func (r Record) Populated() int {
	n := 0
	for f := range r {
		if r.Has(f) {
			n++
		}
	}
	return n
}

// Keys returns the populated fields sorted by name.
func (r Record) Keys() []Field {
	keys := make([]Field, 0, len(r))
	for f := range r {
		if r.Has(f) {
			keys = append(keys, f)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Text returns f as a string when it holds one.
func (r Record) Text(f Field) (string, bool) {
	s, ok := r[f].(string)
	return s, ok
}

// NumberValue returns n as int64 when it has no fractional part, otherwise
// as float64. Used when reading numeric columns back from storage.
func NumberValue(n float64) any {
	if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
		return int64(n)
	}
	return n
}
