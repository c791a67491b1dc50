// Package variable defines typed variable values scoped to tasks, executions
// and case executions, and the type-aware comparison rules over them.
package variable

import (
	"bytes"
	"time"
)

// Type tags a Value. The set is closed; comparison logic switches
// exhaustively over it.
type Type string

const (
	TypeNull    Type = "null"
	TypeBoolean Type = "boolean"
	TypeShort   Type = "short"
	TypeInteger Type = "integer"
	TypeLong    Type = "long"
	TypeDouble  Type = "double"
	TypeString  Type = "string"
	TypeDate    Type = "date"
	TypeBytes   Type = "bytes"
	TypeObject  Type = "object"

	// TypeNumber is the numeric supertype accepted by query criteria that
	// opt into cross-type numeric matching. It is never a storage type and
	// never a valid sort hint.
	TypeNumber Type = "number"
)

// Value is a discriminated union over the closed type set. Exactly the field
// matching Type carries the payload.
type Value struct {
	Type       Type       `json:"type"`
	Bool       bool       `json:"bool,omitempty"`
	Int        int64      `json:"int,omitempty"`
	Double     float64    `json:"double,omitempty"`
	Str        string     `json:"str,omitempty"`
	Time       *time.Time `json:"time,omitempty"`
	Raw        []byte     `json:"raw,omitempty"`
	ObjectType string     `json:"object_type,omitempty"`
}

// Null returns the null value.
func Null() Value { return Value{Type: TypeNull} }

// Boolean wraps a bool.
func Boolean(b bool) Value { return Value{Type: TypeBoolean, Bool: b} }

// Short wraps a 16-bit integer.
func Short(n int16) Value { return Value{Type: TypeShort, Int: int64(n)} }

// Integer wraps a 32-bit integer.
func Integer(n int32) Value { return Value{Type: TypeInteger, Int: int64(n)} }

// Long wraps a 64-bit integer.
func Long(n int64) Value { return Value{Type: TypeLong, Int: n} }

// Double wraps a float64.
func Double(f float64) Value { return Value{Type: TypeDouble, Double: f} }

// String wraps a string.
func String(s string) Value { return Value{Type: TypeString, Str: s} }

// Date wraps a timestamp.
func Date(t time.Time) Value { return Value{Type: TypeDate, Time: &t} }

// Bytes wraps a raw byte slice.
func Bytes(b []byte) Value { return Value{Type: TypeBytes, Raw: b} }

// Object wraps an opaque serialized object and its declared type name.
func Object(raw []byte, objectType string) Value {
	return Value{Type: TypeObject, Raw: raw, ObjectType: objectType}
}

// Number wraps a numeric query operand that matches variables of any numeric
// storage type under the cross-type rules.
func Number(f float64) Value { return Value{Type: TypeNumber, Double: f} }

// IsNull reports whether the value is the null value.
func (v Value) IsNull() bool { return v.Type == TypeNull }

// Numeric reports whether the value carries a numeric payload.
func (v Value) Numeric() bool {
	switch v.Type {
	case TypeShort, TypeInteger, TypeLong, TypeDouble, TypeNumber:
		return true
	default:
		return false
	}
}

// integral reports whether the value stores an exact integer.
func (v Value) integral() bool {
	switch v.Type {
	case TypeShort, TypeInteger, TypeLong:
		return true
	case TypeNumber:
		return isExactInt(v.Double)
	default:
		return false
	}
}

// asDouble returns the numeric payload widened to float64.
func (v Value) asDouble() float64 {
	if v.Type == TypeDouble || v.Type == TypeNumber {
		return v.Double
	}
	return float64(v.Int)
}

// RelationalSupported reports whether values of type t may appear in a
// relational (>, >=, <, <=) comparison. Null, boolean, byte-array and opaque
// object values support equality only.
func RelationalSupported(t Type) bool {
	switch t {
	case TypeNull, TypeBoolean, TypeBytes, TypeObject:
		return false
	default:
		return true
	}
}

// SortSupported reports whether t is a valid declared type hint for
// sort-by-variable. The numeric supertype, bytes, null, and opaque objects
// are not orderable hints.
func SortSupported(t Type) bool {
	switch t {
	case TypeBoolean, TypeShort, TypeInteger, TypeLong, TypeDouble, TypeString, TypeDate:
		return true
	default:
		return false
	}
}

// Equal compares two values with type-aware semantics. Numeric values of
// different storage types are mutually comparable; all other cross-type
// pairs are unequal. Byte arrays and objects compare by exact bytes.
func (v Value) Equal(o Value) bool {
	if v.Numeric() && o.Numeric() {
		return numbersEqual(v, o)
	}
	if v.Type != o.Type {
		return false
	}
	switch v.Type {
	case TypeNull:
		return true
	case TypeBoolean:
		return v.Bool == o.Bool
	case TypeString:
		return v.Str == o.Str
	case TypeDate:
		return v.Time != nil && o.Time != nil && v.Time.Equal(*o.Time)
	case TypeBytes:
		return bytes.Equal(v.Raw, o.Raw)
	case TypeObject:
		return v.ObjectType == o.ObjectType && bytes.Equal(v.Raw, o.Raw)
	default:
		return false
	}
}

// Compare orders v against o. The second result is false when the pair is
// not mutually comparable (type mismatch outside the numeric family, or a
// type with no relational support).
func (v Value) Compare(o Value) (int, bool) {
	if !RelationalSupported(v.Type) || !RelationalSupported(o.Type) {
		return 0, false
	}
	if v.Numeric() && o.Numeric() {
		return compareNumbers(v, o), true
	}
	if v.Type != o.Type {
		return 0, false
	}
	switch v.Type {
	case TypeString:
		switch {
		case v.Str < o.Str:
			return -1, true
		case v.Str > o.Str:
			return 1, true
		}
		return 0, true
	case TypeDate:
		if v.Time == nil || o.Time == nil {
			return 0, false
		}
		return v.Time.Compare(*o.Time), true
	default:
		return 0, false
	}
}
