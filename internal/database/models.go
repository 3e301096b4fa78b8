package database

import (
	"strconv"
	"time"
)

// Kind identifies the type held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	default:
		return "unknown"
	}
}

// Value is a single scalar cell of a Record.
type Value struct {
	kind Kind
	text string
	num  float64
	b    bool
}

// Null returns the absent value.
func Null() Value {
	return Value{kind: KindNull}
}

// String wraps a string value.
func String(s string) Value {
	return Value{kind: KindString, text: s}
}

// Int wraps an integer value.
func Int(i int64) Value {
	return Value{kind: KindNumber, text: strconv.FormatInt(i, 10), num: float64(i)}
}

// Float wraps a floating point value.
func Float(f float64) Value {
	return Value{kind: KindNumber, text: strconv.FormatFloat(f, 'f', -1, 64), num: f}
}

// Decimal wraps an exact decimal given in its text form. approx is the
// nearest float64 and only backs Number.
func Decimal(text string, approx float64) Value {
	return Value{kind: KindNumber, text: text, num: approx}
}

// Bool wraps a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, text: strconv.FormatBool(b), b: b}
}

// Kind returns the type of the value.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether the value is absent.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Number returns the numeric value, or 0 for non-numbers.
func (v Value) Number() float64 {
	return v.num
}

// Boolean returns the boolean value, or false for non-booleans.
func (v Value) Boolean() bool {
	return v.b
}

// String returns the literal string conversion of the value.
// The absent value converts to "null".
func (v Value) String() string {
	if v.kind == KindNull {
		return "null"
	}
	return v.text
}

// Record is one row of the source table. Columns keep the order in
// which the source returned them.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord creates an empty record.
func NewRecord() *Record {
	return &Record{values: make(map[string]Value)}
}

// Set stores a value. Setting an existing key keeps its position.
func (r *Record) Set(key string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value for key. Missing keys read as Null.
func (r *Record) Get(key string) (Value, bool) {
	if r == nil {
		return Null(), false
	}
	v, ok := r.values[key]
	if !ok {
		return Null(), false
	}
	return v, true
}

// Keys returns the record's column names in order.
func (r *Record) Keys() []string {
	if r == nil {
		return nil
	}
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Len returns the number of columns in the record.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	return len(r.keys)
}

// RowQuery describes a "select all columns" request.
type RowQuery struct {
	Schema string
	Table  string
	// OrderBy is the column to sort descending by. Empty means unordered.
	OrderBy string
	Limit   uint64
}

// CountQuery describes an exact row count request.
type CountQuery struct {
	Schema string
	Table  string
	// SinceColumn and Since restrict the count to rows where
	// SinceColumn >= Since. Both must be set for the filter to apply.
	SinceColumn string
	Since       time.Time
}

// Filtered reports whether the count carries a timestamp filter.
func (q CountQuery) Filtered() bool {
	return q.SinceColumn != "" && !q.Since.IsZero()
}
