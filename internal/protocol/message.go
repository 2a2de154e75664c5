// Package protocol implements the inspector message envelopes (commands,
// responses, errors and events) on top of the jsonvalue document model.
package protocol

import (
	"fmt"

	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// ErrorCode is a JSON-RPC style error code carried in error responses
type ErrorCode int

const (
	ParseError     ErrorCode = -32700
	InvalidRequest ErrorCode = -32600
	MethodNotFound ErrorCode = -32601
	InvalidParams  ErrorCode = -32602
	InternalError  ErrorCode = -32603
	ServerError    ErrorCode = -32000
)

// Error is a failure reported back to the frontend
type Error struct {
	Code    ErrorCode
	Message string
	Data    []string
}

// NewError creates an Error with optional data lines
func NewError(code ErrorCode, message string, data ...string) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

func (e *Error) Error() string {
	return fmt.Sprintf("protocol error %d: %s", e.Code, e.Message)
}

// Object renders the error as the value of a response's "error" property.
func (e *Error) Object() *jsonvalue.Object {
	obj := jsonvalue.NewObject()
	obj.SetInteger("code", int(e.Code))
	obj.SetString("message", e.Message)
	if len(e.Data) > 0 {
		data := jsonvalue.NewArray()
		for _, line := range e.Data {
			data.PushString(line)
		}
		obj.SetArray("data", data)
	}
	return obj
}

// Command is an incoming request from the frontend
type Command struct {
	ID     int
	Method string
	Params *jsonvalue.Object

	hasID bool
}

// HasID reports whether the command carried a usable id. Error responses to
// commands without one are sent without an id.
func (c *Command) HasID() bool {
	return c.hasID
}

// ParseCommand validates text as a command envelope. When it fails after the
// id was read, the returned Command still carries the id so the error can be
// correlated.
func ParseCommand(text string) (*Command, *Error) {
	cmd := &Command{}

	value, err := jsonvalue.ParseJSON(text)
	if err != nil {
		return cmd, NewError(ParseError, "Message must be in JSON format", err.Error())
	}

	message := value.AsObject()
	if message == nil {
		return cmd, NewError(InvalidRequest, "Message must be a JSONified object")
	}

	idValue, ok := message.Get("id")
	if !ok {
		return cmd, NewError(InvalidRequest, "'id' property was not found")
	}
	id, ok := idValue.AsInt()
	if !ok {
		return cmd, NewError(InvalidRequest, "The type of 'id' property must be number")
	}
	cmd.ID = id
	cmd.hasID = true

	methodValue, ok := message.Get("method")
	if !ok {
		return cmd, NewError(InvalidRequest, "'method' property wasn't found")
	}
	method, ok := methodValue.AsString()
	if !ok {
		return cmd, NewError(InvalidRequest, "The type of 'method' property must be string")
	}
	cmd.Method = method

	if paramsValue, ok := message.Get("params"); ok {
		cmd.Params = paramsValue.AsObject()
		if cmd.Params == nil && paramsValue.Type() != jsonvalue.TypeNull {
			return cmd, NewError(InvalidRequest, "The type of 'params' property must be object")
		}
	}

	return cmd, nil
}

// NewCommand renders a command envelope, the form a frontend sends.
func NewCommand(id int, method string, params *jsonvalue.Object) string {
	message := jsonvalue.NewObject()
	message.SetInteger("id", id)
	message.SetString("method", method)
	if params != nil {
		message.SetObject("params", params)
	}
	return message.ToJSONString()
}

// NewResponse renders a successful response. A nil result is sent as {}.
func NewResponse(id int, result *jsonvalue.Object) string {
	if result == nil {
		result = jsonvalue.NewObject()
	}
	message := jsonvalue.NewObject()
	message.SetObject("result", result)
	message.SetInteger("id", id)
	return message.ToJSONString()
}

// NewErrorResponse renders an error response for the command with the given id.
func NewErrorResponse(id int, e *Error) string {
	message := jsonvalue.NewObject()
	message.SetObject("error", e.Object())
	message.SetInteger("id", id)
	return message.ToJSONString()
}

// NewErrorNotification renders an error that cannot be tied to a command id.
func NewErrorNotification(e *Error) string {
	message := jsonvalue.NewObject()
	message.SetObject("error", e.Object())
	return message.ToJSONString()
}

// NewEvent renders an event. A nil params object is omitted.
func NewEvent(method string, params *jsonvalue.Object) string {
	message := jsonvalue.NewObject()
	message.SetString("method", method)
	if params != nil {
		message.SetObject("params", params)
	}
	return message.ToJSONString()
}
