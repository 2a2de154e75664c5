package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/inspectorjson/internal/parser"
	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

func TestAnalyze_ProtocolEvent(t *testing.T) {
	jsonInput := `{
		"method": "Debugger.paused",
		"params": {
			"callFrames": [
				{"callFrameId": "0", "location": {"scriptId": "1", "lineNumber": 10}, "this": null},
				{"callFrameId": "1", "location": {"scriptId": "1", "lineNumber": 20}, "this": null}
			],
			"reason": "other",
			"hitBreakpoints": []
		}
	}`
	v, err := parser.ParseString(jsonInput)
	require.NoError(t, err)

	summary := Analyze(v)

	assert.Equal(t, 2, summary.Nulls)
	assert.Equal(t, 0, summary.Booleans)
	assert.Equal(t, 2, summary.Numbers)
	assert.Equal(t, 6, summary.Strings)
	assert.Equal(t, 6, summary.Objects)
	assert.Equal(t, 2, summary.Arrays)
	assert.Equal(t, 18, summary.Total())
	// root > params > callFrames > frame > location
	assert.Equal(t, 5, summary.MaxDepth)
	assert.Equal(t, 15, summary.TotalKeys)
	assert.Equal(t, 2, summary.LongestArray)
	assert.Equal(t, []string{
		"method", "params", "callFrames", "callFrameId", "location",
		"scriptId", "lineNumber", "this", "reason", "hitBreakpoints",
	}, summary.Keys)
}

func TestAnalyze_Scalars(t *testing.T) {
	tests := []struct {
		input string
		check func(t *testing.T, s Summary)
	}{
		{`null`, func(t *testing.T, s Summary) { assert.Equal(t, 1, s.Nulls) }},
		{`true`, func(t *testing.T, s Summary) { assert.Equal(t, 1, s.Booleans) }},
		{`1.5`, func(t *testing.T, s Summary) { assert.Equal(t, 1, s.Numbers) }},
		{`"x"`, func(t *testing.T, s Summary) { assert.Equal(t, 1, s.Strings) }},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			v, err := jsonvalue.ParseJSON(tt.input)
			require.NoError(t, err)
			s := Analyze(v)
			tt.check(t, s)
			assert.Equal(t, 0, s.MaxDepth)
			assert.Equal(t, 1, s.Total())
			assert.Empty(t, s.Keys)
		})
	}
}

func TestAnalyze_StringFormats(t *testing.T) {
	v, err := jsonvalue.ParseJSON(`["123e4567-e89b-12d3-a456-426614174000","2024-01-15T10:30:00Z","2024-01-15","ws://127.0.0.1:9222/inspector","plain"]`)
	require.NoError(t, err)

	s := Analyze(v)

	assert.Equal(t, map[string]int{
		FormatUUID:     1,
		FormatDateTime: 1,
		FormatDate:     1,
		FormatURL:      1,
	}, s.Formats)
}

func TestAnalyze_DuplicateKeysCountedOnce(t *testing.T) {
	v, err := jsonvalue.ParseJSON(`[{"a":1,"b":2},{"b":3,"c":[[]]}]`)
	require.NoError(t, err)

	s := Analyze(v)

	assert.Equal(t, []string{"a", "b", "c"}, s.Keys)
	assert.Equal(t, 4, s.TotalKeys)
	assert.Equal(t, 4, s.MaxDepth)
}

func TestSummary_Value(t *testing.T) {
	v, err := jsonvalue.ParseJSON(`{"id":"2024-01-15","list":[1,2,3]}`)
	require.NoError(t, err)

	out := Analyze(v).Value()

	assert.Equal(t,
		`{"values":6,"types":{"null":0,"boolean":0,"number":3,"string":1,"object":1,"array":1},`+
			`"maxDepth":2,"totalKeys":2,"longestArray":3,"keys":["id","list"],"stringFormats":{"date":1}}`,
		out.ToJSONString())
}

func TestAnalyzer_Reuse(t *testing.T) {
	a := NewAnalyzer()
	first, err := jsonvalue.ParseJSON(`{"a":[1]}`)
	require.NoError(t, err)
	second, err := jsonvalue.ParseJSON(`{"b":true}`)
	require.NoError(t, err)

	a.Analyze(first)
	s := a.Analyze(second)

	assert.Equal(t, []string{"b"}, s.Keys)
	assert.Equal(t, 0, s.Numbers)
	assert.Equal(t, 1, s.Booleans)
}
