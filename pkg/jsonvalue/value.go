// Package jsonvalue provides the JSON document model used to build and parse
// inspector protocol messages: a closed set of value kinds, a strict
// recursive-descent parser and a deterministic serializer.
package jsonvalue

import (
	"io"
	"unicode/utf16"

	"github.com/valyala/bytebufferpool"
)

// Type identifies the kind of a Value. It never changes after construction.
type Type int

const (
	TypeNull Type = iota
	TypeBoolean
	TypeNumber
	TypeString
	TypeObject
	TypeArray
)

// String returns the lower-case name of the type
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeNumber:
		return "number"
	case TypeString:
		return "string"
	case TypeObject:
		return "object"
	case TypeArray:
		return "array"
	default:
		return "unknown"
	}
}

// Writer is the buffer contract WriteJSON appends to.
// bytes.Buffer, strings.Builder and bytebufferpool.ByteBuffer all satisfy it.
type Writer interface {
	io.Writer
	io.ByteWriter
	io.StringWriter
}

// Value is one node of a JSON tree. The set of implementations is closed:
// Null, Boolean, Number, String, *Object and *Array.
//
// The As* projections report whether the value has the requested type. On
// failure they return the zero value of the requested type.
type Value interface {
	Type() Type

	AsBoolean() (bool, bool)
	AsNumber() (float64, bool)
	AsFloat32() (float32, bool)
	AsInt() (int, bool)
	AsUint() (uint, bool)
	AsInt64() (int64, bool)
	AsUint64() (uint64, bool)
	AsString() (string, bool)
	AsUTF16() ([]uint16, bool)
	AsObject() *Object
	AsArray() *Array

	// WriteJSON appends the canonical JSON text of the value to w.
	WriteJSON(w Writer)
	// ToJSONString returns the canonical JSON text of the value.
	ToJSONString() string
	String() string

	sealed()
}

// initialJSONBufferSize is the capacity reserved before serializing.
const initialJSONBufferSize = 512

// valueBase supplies the failing projections; each variant overrides the ones
// matching its own type.
type valueBase struct{}

func (valueBase) AsBoolean() (bool, bool)    { return false, false }
func (valueBase) AsNumber() (float64, bool)  { return 0, false }
func (valueBase) AsFloat32() (float32, bool) { return 0, false }
func (valueBase) AsInt() (int, bool)         { return 0, false }
func (valueBase) AsUint() (uint, bool)       { return 0, false }
func (valueBase) AsInt64() (int64, bool)     { return 0, false }
func (valueBase) AsUint64() (uint64, bool)   { return 0, false }
func (valueBase) AsString() (string, bool)   { return "", false }
func (valueBase) AsUTF16() ([]uint16, bool)  { return nil, false }
func (valueBase) AsObject() *Object          { return nil }
func (valueBase) AsArray() *Array            { return nil }
func (valueBase) sealed()                    {}

// toJSONString renders v through a pooled buffer.
func toJSONString(v Value) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if cap(buf.B) < initialJSONBufferSize {
		buf.B = make([]byte, 0, initialJSONBufferSize)
	}
	writeValue(buf, v)
	return buf.String()
}

// nullValue is the Null variant
type nullValue struct {
	valueBase
}

var null Value = nullValue{}

// Null returns the Null value.
func Null() Value {
	return null
}

func (nullValue) Type() Type             { return TypeNull }
func (v nullValue) WriteJSON(w Writer)   { writeValue(w, v) }
func (v nullValue) ToJSONString() string { return toJSONString(v) }
func (v nullValue) String() string       { return toJSONString(v) }

// basicValue holds the Boolean and Number variants.
type basicValue struct {
	valueBase
	typ     Type
	boolean bool
	number  float64
}

// NewBoolean returns a Boolean value.
func NewBoolean(b bool) Value {
	return basicValue{typ: TypeBoolean, boolean: b}
}

// NewNumber returns a Number value. Non-finite numbers are accepted but
// serialize as null.
func NewNumber(n float64) Value {
	return basicValue{typ: TypeNumber, number: n}
}

// NewInteger returns a Number value holding float64(n).
func NewInteger(n int) Value {
	return NewNumber(float64(n))
}

func (v basicValue) Type() Type { return v.typ }

func (v basicValue) AsBoolean() (bool, bool) {
	if v.typ != TypeBoolean {
		return false, false
	}
	return v.boolean, true
}

func (v basicValue) AsNumber() (float64, bool) {
	if v.typ != TypeNumber {
		return 0, false
	}
	return v.number, true
}

// The integer projections below are unchecked conversions from float64:
// fractions truncate toward zero, and out-of-range or non-finite numbers
// yield implementation-defined results.

func (v basicValue) AsFloat32() (float32, bool) {
	if v.typ != TypeNumber {
		return 0, false
	}
	return float32(v.number), true
}

func (v basicValue) AsInt() (int, bool) {
	if v.typ != TypeNumber {
		return 0, false
	}
	return int(v.number), true
}

func (v basicValue) AsUint() (uint, bool) {
	if v.typ != TypeNumber {
		return 0, false
	}
	return uint(v.number), true
}

func (v basicValue) AsInt64() (int64, bool) {
	if v.typ != TypeNumber {
		return 0, false
	}
	return int64(v.number), true
}

func (v basicValue) AsUint64() (uint64, bool) {
	if v.typ != TypeNumber {
		return 0, false
	}
	return uint64(v.number), true
}

func (v basicValue) WriteJSON(w Writer)   { writeValue(w, v) }
func (v basicValue) ToJSONString() string { return toJSONString(v) }
func (v basicValue) String() string       { return toJSONString(v) }

// stringValue stores text as UTF-16 code units so that escapes such as a lone
// \uD800 survive a parse/serialize round trip.
type stringValue struct {
	valueBase
	units []uint16
}

// NewString returns a String value holding s.
func NewString(s string) Value {
	return stringValue{units: utf16.Encode([]rune(s))}
}

// NewStringUTF16 returns a String value holding a copy of the given code units.
func NewStringUTF16(units []uint16) Value {
	return stringValue{units: append([]uint16(nil), units...)}
}

func (stringValue) Type() Type { return TypeString }

// AsString decodes the stored code units. Unpaired surrogates become U+FFFD;
// use AsUTF16 to observe them.
func (v stringValue) AsString() (string, bool) {
	return string(utf16.Decode(v.units)), true
}

func (v stringValue) AsUTF16() ([]uint16, bool) {
	return append([]uint16(nil), v.units...), true
}

func (v stringValue) WriteJSON(w Writer)   { writeValue(w, v) }
func (v stringValue) ToJSONString() string { return toJSONString(v) }
func (v stringValue) String() string       { return toJSONString(v) }

// orNull maps a nil Value or a nil container pointer to Null.
func orNull(v Value) Value {
	switch t := v.(type) {
	case nil:
		return null
	case *Object:
		if t == nil {
			return null
		}
	case *Array:
		if t == nil {
			return null
		}
	}
	return v
}

// Equal reports whether a and b are structurally equal: same type tags,
// same object key order, same array order, same string code units and
// numbers equal as float64.
func Equal(a, b Value) bool {
	a, b = orNull(a), orNull(b)
	if a.Type() != b.Type() {
		return false
	}
	switch x := a.(type) {
	case nullValue:
		return true
	case basicValue:
		y := b.(basicValue)
		if x.typ == TypeBoolean {
			return x.boolean == y.boolean
		}
		return x.number == y.number
	case stringValue:
		y := b.(stringValue)
		if len(x.units) != len(y.units) {
			return false
		}
		for i := range x.units {
			if x.units[i] != y.units[i] {
				return false
			}
		}
		return true
	case *Object:
		y := b.(*Object)
		if x.Len() != y.Len() {
			return false
		}
		for i, key := range x.order {
			if y.order[i] != key || !Equal(x.data[key], y.data[key]) {
				return false
			}
		}
		return true
	case *Array:
		y := b.(*Array)
		if x.Len() != y.Len() {
			return false
		}
		for i := range x.items {
			if !Equal(x.items[i], y.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
