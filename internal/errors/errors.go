package errors

import (
	"errors"
	"fmt"

	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// Standard application errors
var (
	ErrEmptyInput      = errors.New("input is empty or contains only whitespace")
	ErrInvalidJSON     = jsonvalue.ErrInvalidJSON
	ErrFileNotFound    = errors.New("file not found")
	ErrFileEmpty       = errors.New("file is empty")
	ErrNoInput         = errors.New("no input provided: please specify a file with -i or pipe JSON data to stdin")
	ErrInvalidFilePath = errors.New("invalid file path")
	ErrInvalidConfig   = errors.New("invalid configuration")
	ErrSessionClosed   = errors.New("session closed")
	ErrInvalidProtocol = errors.New("invalid protocol description")
)

// ErrorType categorizes errors
type ErrorType string

const (
	ErrorTypeInput     ErrorType = "input"
	ErrorTypeParsing   ErrorType = "parsing"
	ErrorTypeProtocol  ErrorType = "protocol"
	ErrorTypeTransport ErrorType = "transport"
	ErrorTypeConfig    ErrorType = "config"
	ErrorTypeGenerate  ErrorType = "generate"
	ErrorTypeFormat    ErrorType = "format"
	ErrorTypeOutput    ErrorType = "output"
	ErrorTypeUnknown   ErrorType = "unknown"
)

// AppError is an application-specific error with context
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func newError(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// NewInputError creates a new error related to input processing
func NewInputError(message string, err error) *AppError {
	return newError(ErrorTypeInput, message, err)
}

// NewParsingError creates a new error related to JSON parsing
func NewParsingError(message string, err error) *AppError {
	return newError(ErrorTypeParsing, message, err)
}

// NewProtocolError creates a new error related to inspector protocol messages
func NewProtocolError(message string, err error) *AppError {
	return newError(ErrorTypeProtocol, message, err)
}

// NewTransportError creates a new error related to the websocket endpoint
func NewTransportError(message string, err error) *AppError {
	return newError(ErrorTypeTransport, message, err)
}

// NewConfigError creates a new error related to loading configuration
func NewConfigError(message string, err error) *AppError {
	return newError(ErrorTypeConfig, message, err)
}

// NewGenerateError creates a new error related to code generation
func NewGenerateError(message string, err error) *AppError {
	return newError(ErrorTypeGenerate, message, err)
}

// NewFormatError creates a new error related to output formatting
func NewFormatError(message string, err error) *AppError {
	return newError(ErrorTypeFormat, message, err)
}

// NewOutputError creates a new error related to output processing
func NewOutputError(message string, err error) *AppError {
	return newError(ErrorTypeOutput, message, err)
}

// labels prefixes messages of each error type in UserFriendlyError
var labels = map[ErrorType]string{
	ErrorTypeInput:     "Input error",
	ErrorTypeParsing:   "JSON parsing error",
	ErrorTypeProtocol:  "Protocol error",
	ErrorTypeTransport: "Transport error",
	ErrorTypeConfig:    "Configuration error",
	ErrorTypeGenerate:  "Code generation error",
	ErrorTypeFormat:    "Formatting error",
	ErrorTypeOutput:    "Output error",
}

// hints explain bare sentinel errors, first match wins
var hints = []struct {
	err  error
	hint string
}{
	{ErrEmptyInput, "The input is empty. Please provide valid JSON data."},
	{ErrInvalidJSON, "The input contains invalid JSON. Please check your JSON syntax."},
	{ErrFileNotFound, "The specified file could not be found. Please check the file path."},
	{ErrFileEmpty, "The specified file is empty. Please provide a file with valid JSON content."},
	{ErrNoInput, "No input provided. Please specify a file with -i or pipe JSON data to stdin."},
	{ErrInvalidFilePath, "Invalid file path. Please provide a valid file path."},
	{ErrInvalidProtocol, "The protocol description is invalid. Please check its domains, types and commands."},
	{ErrInvalidConfig, "The configuration is invalid. Please check your config file and environment."},
	{ErrSessionClosed, "The session was closed by the other side."},
}

// UserFriendlyError renders err for the terminal. AppErrors show their type
// label and message; parsing errors also name the syntax problem and offset.
func UserFriendlyError(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		label, ok := labels[appErr.Type]
		if !ok {
			label = "Error"
		}
		var syntaxErr *jsonvalue.SyntaxError
		if appErr.Type == ErrorTypeParsing && errors.As(appErr.Err, &syntaxErr) {
			return fmt.Sprintf("%s: %s (%s at offset %d)", label, appErr.Message, syntaxErr.Reason, syntaxErr.Offset)
		}
		return fmt.Sprintf("%s: %s", label, appErr.Message)
	}

	for _, h := range hints {
		if errors.Is(err, h.err) {
			return "Error: " + h.hint
		}
	}
	return fmt.Sprintf("Error: %v", err)
}
