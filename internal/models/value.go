// Package models contains domain types for the Ask My Data backend.
package models

import (
	"strconv"
)

// ValueKind represents the type of a cell value.
type ValueKind string

const (
	ValueKindNull    ValueKind = "null"
	ValueKindText    ValueKind = "text"
	ValueKindNumber  ValueKind = "number"
	ValueKindBoolean ValueKind = "boolean"
)

// Value is a single table cell. The zero Value is null.
type Value struct {
	kind ValueKind
	text string
	num  float64
	b    bool
}

// Text returns a text cell.
func Text(s string) Value { return Value{kind: ValueKindText, text: s} }

// Number returns a numeric cell.
func Number(f float64) Value { return Value{kind: ValueKindNumber, num: f} }

// Bool returns a boolean cell.
func Bool(b bool) Value { return Value{kind: ValueKindBoolean, b: b} }

// Null returns an empty cell.
func Null() Value { return Value{kind: ValueKindNull} }

// Kind reports the type of the value.
func (v Value) Kind() ValueKind {
	if v.kind == "" {
		return ValueKindNull
	}
	return v.kind
}

func (v Value) IsNull() bool { return v.Kind() == ValueKindNull }

// Interface converts the value to its plain Go form: string, float64, bool or nil.
func (v Value) Interface() interface{} {
	switch v.Kind() {
	case ValueKindText:
		return v.text
	case ValueKindNumber:
		return v.num
	case ValueKindBoolean:
		return v.b
	default:
		return nil
	}
}

// String renders the value the way it appears inside a prompt.
// Text is quoted so that "1" and 1 stay distinguishable.
func (v Value) String() string {
	switch v.Kind() {
	case ValueKindText:
		return strconv.Quote(v.text)
	case ValueKindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case ValueKindBoolean:
		return strconv.FormatBool(v.b)
	default:
		return "null"
	}
}
