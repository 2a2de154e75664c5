package keys

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

func parse(t *testing.T, text string) jsonvalue.Value {
	t.Helper()
	v, err := jsonvalue.ParseJSON(text)
	require.NoError(t, err)
	return v
}

func TestParseStyle(t *testing.T) {
	for _, s := range []string{"keep", "camel", "pascal", "snake", "kebab"} {
		style, err := ParseStyle(s)
		assert.NoError(t, err)
		assert.Equal(t, Style(s), style)
	}

	style, err := ParseStyle("")
	assert.NoError(t, err)
	assert.Equal(t, StyleKeep, style)

	_, err = ParseStyle("SCREAMING")
	assert.Error(t, err)
}

func TestStyle_Convert(t *testing.T) {
	tests := []struct {
		style    Style
		key      string
		expected string
	}{
		{StyleKeep, "call_frame_id", "call_frame_id"},
		{StyleCamel, "call_frame_id", "callFrameId"},
		{StylePascal, "call_frame_id", "CallFrameId"},
		{StyleSnake, "callFrameId", "call_frame_id"},
		{StyleKebab, "callFrameId", "call-frame-id"},
	}

	for _, tt := range tests {
		t.Run(string(tt.style)+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.style.Convert(tt.key))
		})
	}
}

func TestRewrite_Nested(t *testing.T) {
	src := parse(t, `{"callFrames":[{"callFrameId":"0","scopeChain":[]}],"hitBreakpoints":["1:2"],"reason":"other"}`)

	out := Rewrite(src, StyleSnake)

	assert.Equal(t,
		`{"call_frames":[{"call_frame_id":"0","scope_chain":[]}],"hit_breakpoints":["1:2"],"reason":"other"}`,
		out.ToJSONString())
	// The source is untouched.
	assert.Equal(t,
		`{"callFrames":[{"callFrameId":"0","scopeChain":[]}],"hitBreakpoints":["1:2"],"reason":"other"}`,
		src.ToJSONString())
}

func TestRewrite_Collision(t *testing.T) {
	src := parse(t, `{"line_number":1,"column":2,"lineNumber":3}`)

	out := Rewrite(src, StyleCamel)

	assert.Equal(t, `{"lineNumber":3,"column":2}`, out.ToJSONString())
}

func TestRewrite_Scalars(t *testing.T) {
	for _, text := range []string{`null`, `true`, `1.5`, `"snake_case"`} {
		v := parse(t, text)
		assert.Equal(t, text, Rewrite(v, StylePascal).ToJSONString())
	}
}

func TestRewrite_Keep(t *testing.T) {
	src := parse(t, `{"a_b":{"c-d":[1,{"eF":null}]}}`)
	assert.True(t, jsonvalue.Equal(src, Rewrite(src, StyleKeep)))
}
