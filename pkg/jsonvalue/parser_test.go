package jsonvalue

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJSON_Scalars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType Type
		want     string
	}{
		{name: "null", input: "null", wantType: TypeNull, want: "null"},
		{name: "true", input: "true", wantType: TypeBoolean, want: "true"},
		{name: "false", input: "false", wantType: TypeBoolean, want: "false"},
		{name: "zero", input: "0", wantType: TypeNumber, want: "0"},
		{name: "negative", input: "-12", wantType: TypeNumber, want: "-12"},
		{name: "fraction with leading zeros", input: "0.01", wantType: TypeNumber, want: "0.01"},
		{name: "exponent", input: "1E3", wantType: TypeNumber, want: "1000"},
		{name: "exponent leading zeros", input: "2e-007", wantType: TypeNumber, want: "0.0000002"},
		{name: "signed exponent", input: "5e+2", wantType: TypeNumber, want: "500"},
		{name: "string", input: `"hello"`, wantType: TypeString, want: `"hello"`},
		{name: "leading whitespace", input: " \t\r\n\v\f42", wantType: TypeNumber, want: "42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseJSON(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, v.Type())
			assert.Equal(t, tt.want, v.ToJSONString())
		})
	}
}

func TestParseJSON_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace only", input: "   "},
		{name: "leading zero", input: "01"},
		{name: "negative leading zero", input: "-01"},
		{name: "bare minus", input: "-"},
		{name: "exponent without digits", input: "1e"},
		{name: "exponent sign without digits", input: "1e+"},
		{name: "fraction without digits", input: "1."},
		{name: "leading dot", input: ".5"},
		{name: "plus sign", input: "+1"},
		{name: "overflowing number", input: "1e400"},
		{name: "unknown escape", input: `"\q"`},
		{name: "short unicode escape", input: `"\u12"`},
		{name: "bad hex escape", input: `"\xZZ"`},
		{name: "unterminated string", input: `"abc`},
		{name: "dangling backslash", input: `"abc\`},
		{name: "truncated literal", input: "nul"},
		{name: "misspelled literal", input: "tru3"},
		{name: "capitalized literal", input: "True"},
		{name: "unterminated array", input: "[1,2"},
		{name: "unterminated object", input: `{"a":1`},
		{name: "trailing comma in array", input: "[1,]"},
		{name: "trailing comma in object", input: `{"a":1,}`},
		{name: "missing comma", input: "[1 2]"},
		{name: "leading comma", input: "[,1]"},
		{name: "non-string key", input: "{1:2}"},
		{name: "missing colon", input: `{"a" 1}`},
		{name: "missing value", input: `{"a":}`},
		{name: "bare separator", input: ","},
		{name: "bare colon", input: ":"},
		{name: "bare closing bracket", input: "]"},
		{name: "bare closing brace", input: "}"},
		{name: "trailing garbage", input: "{} garbage"},
		{name: "trailing whitespace", input: "{} "},
		{name: "two values", input: "1 2"},
		{name: "single quotes", input: "'a'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseJSON(tt.input)
			require.Error(t, err)
			assert.Nil(t, v)
			assert.True(t, errors.Is(err, ErrInvalidJSON))

			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.GreaterOrEqual(t, syntaxErr.Offset, 0)
			assert.LessOrEqual(t, syntaxErr.Offset, len(tt.input))
		})
	}
}

func TestParseJSON_EmptyContainers(t *testing.T) {
	v, err := ParseJSON("{}")
	require.NoError(t, err)
	require.NotNil(t, v.AsObject())
	assert.Equal(t, 0, v.AsObject().Len())

	v, err = ParseJSON("[ ]")
	require.NoError(t, err)
	require.NotNil(t, v.AsArray())
	assert.Equal(t, 0, v.AsArray().Len())
}

func TestParseJSON_StringEscapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "unicode escape", input: `"a\u0041b"`, want: "aAb"},
		{name: "lower-case hex", input: `"\u00e9"`, want: "é"},
		{name: "hex escape", input: `"\x41\x7a"`, want: "Az"},
		{name: "single character escapes", input: `"\"\\\/\b\f\n\r\t\v"`, want: "\"\\/\b\f\n\r\t\v"},
		{name: "embedded NUL", input: `"a\u0000b"`, want: "a\x00b"},
		{name: "raw non-ASCII", input: `"日本"`, want: "日本"},
		{name: "surrogate pair", input: `"\uD83D\uDE00"`, want: "😀"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseJSON(tt.input)
			require.NoError(t, err)
			s, ok := v.AsString()
			require.True(t, ok)
			assert.Equal(t, tt.want, s)
		})
	}
}

func TestParseJSON_LoneSurrogateSurvivesRoundTrip(t *testing.T) {
	v, err := ParseJSON(`"\uD800x"`)
	require.NoError(t, err)

	units, ok := v.AsUTF16()
	require.True(t, ok)
	assert.Equal(t, []uint16{0xD800, 'x'}, units)
	assert.Equal(t, `"\uD800x"`, v.ToJSONString())
}

func TestParseJSON_DepthLimit(t *testing.T) {
	nested := func(depth int) string {
		return strings.Repeat("[", depth) + strings.Repeat("]", depth)
	}
	nestedObjects := func(depth int) string {
		return strings.Repeat(`{"a":`, depth) + "null" + strings.Repeat("}", depth)
	}

	for _, depth := range []int{1, 999, MaxDepth} {
		_, err := ParseJSON(nested(depth))
		assert.NoError(t, err, "arrays nested %d deep", depth)
		_, err = ParseJSON(nestedObjects(depth))
		assert.NoError(t, err, "objects nested %d deep", depth)
	}

	v, err := ParseJSON(nested(MaxDepth + 1))
	assert.Nil(t, v)
	var syntaxErr *SyntaxError
	require.ErrorAs(t, err, &syntaxErr)
	assert.Contains(t, syntaxErr.Reason, "nesting depth")
	assert.Equal(t, MaxDepth, syntaxErr.Offset)

	_, err = ParseJSON(nestedObjects(MaxDepth + 1))
	assert.Error(t, err)
}

func TestParseJSON_DuplicateKeys(t *testing.T) {
	v, err := ParseJSON(`{"a":1,"b":2,"a":3}`)
	require.NoError(t, err)

	obj := v.AsObject()
	require.NotNil(t, obj)
	assert.Equal(t, []string{"a", "b"}, obj.Keys())
	n, ok := obj.GetInteger("a")
	require.True(t, ok)
	assert.Equal(t, 3, n)
	assert.Equal(t, `{"a":3,"b":2}`, v.ToJSONString())
}

func TestParseJSON_ProtocolMessage(t *testing.T) {
	input := `{"id":1,"params":{"x":true,"y":[1,2,3]},"method":"Debugger.pause"}`

	v, err := ParseJSON(input)
	require.NoError(t, err)

	obj := v.AsObject()
	require.NotNil(t, obj)
	assert.Equal(t, []string{"id", "params", "method"}, obj.Keys())

	id, ok := obj.GetInteger("id")
	require.True(t, ok)
	assert.Equal(t, 1, id)

	params := obj.GetObject("params")
	require.NotNil(t, params)
	y := params.GetArray("y")
	require.NotNil(t, y)
	assert.Equal(t, 3, y.Len())

	method, ok := obj.GetString("method")
	require.True(t, ok)
	assert.Equal(t, "Debugger.pause", method)

	assert.Equal(t, input, v.ToJSONString())
}

func TestParseJSON_ErrorOffsets(t *testing.T) {
	tests := []struct {
		input  string
		offset int
	}{
		{input: "[1,]", offset: 3},
		{input: `{"a" 1}`, offset: 5},
		{input: "{} x", offset: 2},
		{input: "[1, 01]", offset: 4},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseJSON(tt.input)
			var syntaxErr *SyntaxError
			require.ErrorAs(t, err, &syntaxErr)
			assert.Equal(t, tt.offset, syntaxErr.Offset)
		})
	}
}

func TestParseJSONUTF16(t *testing.T) {
	input := []uint16{'[', '"', 0xDC00, '"', ',', '1', ']'}

	v, err := ParseJSONUTF16(input)
	require.NoError(t, err)

	arr := v.AsArray()
	require.NotNil(t, arr)
	require.Equal(t, 2, arr.Len())
	units, ok := arr.Get(0).AsUTF16()
	require.True(t, ok)
	assert.Equal(t, []uint16{0xDC00}, units)
}
