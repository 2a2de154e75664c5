package jsonvalue

import "iter"

// Array is an ordered sequence of values.
//
// An Array is not safe for concurrent mutation.
type Array struct {
	valueBase
	items []Value
}

// NewArray returns an empty Array.
func NewArray() *Array {
	return &Array{}
}

func (a *Array) Type() Type         { return TypeArray }
func (a *Array) AsArray() *Array    { return a }
func (a *Array) WriteJSON(w Writer) { writeValue(w, a) }

func (a *Array) ToJSONString() string { return toJSONString(a) }
func (a *Array) String() string       { return toJSONString(a) }

// PushValue appends v. A nil v is appended as Null.
func (a *Array) PushValue(v Value) {
	a.items = append(a.items, orNull(v))
}

func (a *Array) PushBoolean(b bool)       { a.PushValue(NewBoolean(b)) }
func (a *Array) PushInteger(n int)        { a.PushValue(NewInteger(n)) }
func (a *Array) PushNumber(n float64)     { a.PushValue(NewNumber(n)) }
func (a *Array) PushString(s string)      { a.PushValue(NewString(s)) }
func (a *Array) PushObject(child *Object) { a.PushValue(child) }
func (a *Array) PushArray(child *Array)   { a.PushValue(child) }

// Get returns the element at index. The caller must ensure index < Len();
// an out-of-range index panics.
func (a *Array) Get(index int) Value {
	return a.items[index]
}

// Len returns the number of elements.
func (a *Array) Len() int {
	return len(a.items)
}

// All iterates over the elements in order.
func (a *Array) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		for i, v := range a.items {
			if !yield(i, v) {
				return
			}
		}
	}
}
