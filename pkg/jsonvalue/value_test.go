package jsonvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestType_String(t *testing.T) {
	assert.Equal(t, "null", TypeNull.String())
	assert.Equal(t, "boolean", TypeBoolean.String())
	assert.Equal(t, "number", TypeNumber.String())
	assert.Equal(t, "string", TypeString.String())
	assert.Equal(t, "object", TypeObject.String())
	assert.Equal(t, "array", TypeArray.String())
	assert.Equal(t, "unknown", Type(42).String())
}

func TestValue_Types(t *testing.T) {
	assert.Equal(t, TypeNull, Null().Type())
	assert.Equal(t, TypeBoolean, NewBoolean(true).Type())
	assert.Equal(t, TypeNumber, NewNumber(1.5).Type())
	assert.Equal(t, TypeNumber, NewInteger(3).Type())
	assert.Equal(t, TypeString, NewString("s").Type())
	assert.Equal(t, TypeObject, NewObject().Type())
	assert.Equal(t, TypeArray, NewArray().Type())
}

func TestValue_Projections(t *testing.T) {
	b, ok := NewBoolean(true).AsBoolean()
	assert.True(t, ok)
	assert.True(t, b)

	n, ok := NewNumber(2.75).AsNumber()
	assert.True(t, ok)
	assert.Equal(t, 2.75, n)

	f, ok := NewNumber(2.75).AsFloat32()
	assert.True(t, ok)
	assert.Equal(t, float32(2.75), f)

	s, ok := NewString("text").AsString()
	assert.True(t, ok)
	assert.Equal(t, "text", s)

	obj := NewObject()
	assert.Same(t, obj, Value(obj).AsObject())
	arr := NewArray()
	assert.Same(t, arr, Value(arr).AsArray())
}

func TestValue_IntegerProjectionsTruncate(t *testing.T) {
	v := NewNumber(-3.9)

	i, ok := v.AsInt()
	require.True(t, ok)
	assert.Equal(t, -3, i)

	i64, ok := v.AsInt64()
	require.True(t, ok)
	assert.Equal(t, int64(-3), i64)

	u, ok := NewNumber(7.99).AsUint()
	require.True(t, ok)
	assert.Equal(t, uint(7), u)

	u64, ok := NewNumber(1 << 40).AsUint64()
	require.True(t, ok)
	assert.Equal(t, uint64(1<<40), u64)
}

func TestValue_ProjectionMismatch(t *testing.T) {
	values := map[string]Value{
		"null":    Null(),
		"boolean": NewBoolean(true),
		"number":  NewNumber(1),
		"string":  NewString("1"),
		"object":  NewObject(),
		"array":   NewArray(),
	}

	for name, v := range values {
		t.Run(name, func(t *testing.T) {
			if v.Type() != TypeBoolean {
				b, ok := v.AsBoolean()
				assert.False(t, ok)
				assert.False(t, b)
			}
			if v.Type() != TypeNumber {
				n, ok := v.AsNumber()
				assert.False(t, ok)
				assert.Zero(t, n)
				i, ok := v.AsInt()
				assert.False(t, ok)
				assert.Zero(t, i)
				_, ok = v.AsUint64()
				assert.False(t, ok)
			}
			if v.Type() != TypeString {
				s, ok := v.AsString()
				assert.False(t, ok)
				assert.Empty(t, s)
				_, ok = v.AsUTF16()
				assert.False(t, ok)
			}
			if v.Type() != TypeObject {
				assert.Nil(t, v.AsObject())
			}
			if v.Type() != TypeArray {
				assert.Nil(t, v.AsArray())
			}
		})
	}
}

func TestNewStringUTF16_Copies(t *testing.T) {
	units := []uint16{'a', 'b'}
	v := NewStringUTF16(units)
	units[0] = 'z'

	got, ok := v.AsUTF16()
	require.True(t, ok)
	assert.Equal(t, []uint16{'a', 'b'}, got)

	got[1] = 'z'
	s, _ := v.AsString()
	assert.Equal(t, "ab", s)
}

func TestEqual(t *testing.T) {
	ab := NewObject()
	ab.SetInteger("a", 1)
	ab.SetInteger("b", 2)

	ba := NewObject()
	ba.SetInteger("b", 2)
	ba.SetInteger("a", 1)

	assert.True(t, Equal(ab, ab))
	assert.False(t, Equal(ab, ba), "key order matters")
	assert.True(t, Equal(NewInteger(1), NewNumber(1.0)))
	assert.False(t, Equal(NewInteger(1), NewString("1")))
	assert.False(t, Equal(NewBoolean(true), NewBoolean(false)))
	assert.True(t, Equal(nil, Null()))
	assert.False(t, Equal(NewString("a"), NewString("ab")))

	one := NewArray()
	one.PushInteger(1)
	other := NewArray()
	other.PushInteger(2)
	assert.False(t, Equal(one, other))
	assert.False(t, Equal(one, NewArray()))
}
