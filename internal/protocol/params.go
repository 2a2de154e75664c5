package protocol

import (
	"fmt"

	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// Params reads typed command parameters and collects every problem found, so
// a single InvalidParams error can list them all.
type Params struct {
	method   string
	object   *jsonvalue.Object
	problems []string
}

// NewParams wraps a command's params object, which may be nil.
func NewParams(method string, object *jsonvalue.Object) *Params {
	return &Params{method: method, object: object}
}

// lookup finds name and checks its type. Missing optional parameters are not
// problems; the second result reports whether a usable value was found.
func (p *Params) lookup(name string, want jsonvalue.Type, optional bool) (jsonvalue.Value, bool) {
	var (
		v     jsonvalue.Value
		found bool
	)
	if p.object != nil {
		v, found = p.object.Get(name)
	}
	if !found {
		if !optional {
			p.problems = append(p.problems, fmt.Sprintf("Parameter '%s' with type '%s' was not found.", name, want))
		}
		return nil, false
	}
	if v.Type() != want {
		p.problems = append(p.problems, fmt.Sprintf("Parameter '%s' has wrong type. It must be '%s'.", name, want))
		return nil, false
	}
	return v, true
}

// Value reads a parameter of any type.
func (p *Params) Value(name string, optional bool) (jsonvalue.Value, bool) {
	var (
		v     jsonvalue.Value
		found bool
	)
	if p.object != nil {
		v, found = p.object.Get(name)
	}
	if !found && !optional {
		p.problems = append(p.problems, fmt.Sprintf("Parameter '%s' with type 'any' was not found.", name))
	}
	return v, found
}

func (p *Params) String(name string, optional bool) (string, bool) {
	v, ok := p.lookup(name, jsonvalue.TypeString, optional)
	if !ok {
		return "", false
	}
	return v.AsString()
}

func (p *Params) Integer(name string, optional bool) (int, bool) {
	v, ok := p.lookup(name, jsonvalue.TypeNumber, optional)
	if !ok {
		return 0, false
	}
	return v.AsInt()
}

func (p *Params) Number(name string, optional bool) (float64, bool) {
	v, ok := p.lookup(name, jsonvalue.TypeNumber, optional)
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

func (p *Params) Boolean(name string, optional bool) (bool, bool) {
	v, ok := p.lookup(name, jsonvalue.TypeBoolean, optional)
	if !ok {
		return false, false
	}
	return v.AsBoolean()
}

func (p *Params) Object(name string, optional bool) (*jsonvalue.Object, bool) {
	v, ok := p.lookup(name, jsonvalue.TypeObject, optional)
	if !ok {
		return nil, false
	}
	return v.AsObject(), true
}

func (p *Params) Array(name string, optional bool) (*jsonvalue.Array, bool) {
	v, ok := p.lookup(name, jsonvalue.TypeArray, optional)
	if !ok {
		return nil, false
	}
	return v.AsArray(), true
}

// Reject records a problem with a parameter that has the right type but an
// unacceptable value.
func (p *Params) Reject(name, reason string) {
	p.problems = append(p.problems, fmt.Sprintf("Parameter '%s' %s.", name, reason))
}

// Err returns an InvalidParams error listing the problems, or nil.
func (p *Params) Err() *Error {
	if len(p.problems) == 0 {
		return nil
	}
	return NewError(InvalidParams,
		fmt.Sprintf("Some arguments of method '%s' can't be processed", p.method),
		p.problems...)
}
