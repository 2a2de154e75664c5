package jsonvalue

import (
	"iter"
	"slices"
)

// Object is an ordered mapping from string keys to values. Iteration and
// serialization follow the order in which keys were first set; setting an
// existing key replaces its value without moving it.
//
// An Object is not safe for concurrent mutation.
type Object struct {
	valueBase
	data  map[string]Value
	order []string
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{data: make(map[string]Value)}
}

func (o *Object) Type() Type         { return TypeObject }
func (o *Object) AsObject() *Object  { return o }
func (o *Object) WriteJSON(w Writer) { writeValue(w, o) }

func (o *Object) ToJSONString() string { return toJSONString(o) }
func (o *Object) String() string       { return toJSONString(o) }

// SetValue stores v under key. A nil v is stored as Null.
func (o *Object) SetValue(key string, v Value) {
	if _, exists := o.data[key]; !exists {
		o.order = append(o.order, key)
	}
	o.data[key] = orNull(v)
}

func (o *Object) SetBoolean(key string, b bool)       { o.SetValue(key, NewBoolean(b)) }
func (o *Object) SetNumber(key string, n float64)     { o.SetValue(key, NewNumber(n)) }
func (o *Object) SetInteger(key string, n int)        { o.SetValue(key, NewInteger(n)) }
func (o *Object) SetString(key string, s string)      { o.SetValue(key, NewString(s)) }
func (o *Object) SetObject(key string, child *Object) { o.SetValue(key, child) }
func (o *Object) SetArray(key string, child *Array)   { o.SetValue(key, child) }

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.data[key]
	return v, ok
}

// GetBoolean returns the boolean stored under key. It fails when the key is
// absent or holds another type.
func (o *Object) GetBoolean(key string) (bool, bool) {
	v, ok := o.data[key]
	if !ok {
		return false, false
	}
	return v.AsBoolean()
}

func (o *Object) GetNumber(key string) (float64, bool) {
	v, ok := o.data[key]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// GetInteger truncates the stored number to an int, see Value.AsInt.
func (o *Object) GetInteger(key string) (int, bool) {
	v, ok := o.data[key]
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

func (o *Object) GetString(key string) (string, bool) {
	v, ok := o.data[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// GetObject returns the Object stored under key, or nil.
func (o *Object) GetObject(key string) *Object {
	v, ok := o.data[key]
	if !ok {
		return nil
	}
	return v.AsObject()
}

// GetArray returns the Array stored under key, or nil.
func (o *Object) GetArray(key string) *Array {
	v, ok := o.data[key]
	if !ok {
		return nil
	}
	return v.AsArray()
}

// Remove deletes key. Removing an absent key is a no-op.
func (o *Object) Remove(key string) {
	if _, ok := o.data[key]; !ok {
		return
	}
	delete(o.data, key)
	if i := slices.Index(o.order, key); i >= 0 {
		o.order = slices.Delete(o.order, i, i+1)
	}
}

// Len returns the number of keys.
func (o *Object) Len() int {
	return len(o.order)
}

// Keys returns the keys in insertion order.
func (o *Object) Keys() []string {
	return slices.Clone(o.order)
}

// All iterates over the key/value pairs in insertion order.
func (o *Object) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, key := range o.order {
			if !yield(key, o.data[key]) {
				return
			}
		}
	}
}
