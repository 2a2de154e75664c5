package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcncl/inspectorjson/internal/config"
	"github.com/mcncl/inspectorjson/internal/errors"
	"github.com/mcncl/inspectorjson/internal/logging"
)

type testContext struct {
	*Context
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestContext(stdin string) testContext {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return testContext{
		Context: &Context{
			Config: config.NewConfig(),
			Logger: logging.NewNop(),
			Stdin:  strings.NewReader(stdin),
			Stdout: stdout,
			Stderr: stderr,
		},
		stdout: stdout,
		stderr: stderr,
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFmt_Canonical(t *testing.T) {
	ctx := newTestContext("{ \"b\" : [1.0, 2e2],\n \"a\": \"\\u00e9\" }\n")

	err := (&FmtCmd{}).Run(ctx.Context)
	require.NoError(t, err)
	assert.Equal(t, `{"b":[1,200],"a":"\u00E9"}`+"\n", ctx.stdout.String())
}

func TestFmt_PrettyWithKeyStyle(t *testing.T) {
	ctx := newTestContext(`{"call_frames":[{"frame_id":1}],"empty":{}}`)

	err := (&FmtCmd{Pretty: true, Indent: "tab", KeyStyle: "camel"}).Run(ctx.Context)
	require.NoError(t, err)
	assert.Equal(t, "{\n\t\"callFrames\": [\n\t\t{\n\t\t\t\"frameId\": 1\n\t\t}\n\t],\n\t\"empty\": {}\n}\n", ctx.stdout.String())
}

func TestFmt_ConfigDefaults(t *testing.T) {
	ctx := newTestContext(`{"a":[true]}`)
	ctx.Config.Output.Pretty = true
	ctx.Config.Output.Indent = "  "

	require.NoError(t, (&FmtCmd{}).Run(ctx.Context))
	assert.Equal(t, "{\n  \"a\": [\n    true\n  ]\n}\n", ctx.stdout.String())

	ctx = newTestContext(`{"a":[true]}`)
	ctx.Config.Output.Pretty = true
	require.NoError(t, (&FmtCmd{Compact: true}).Run(ctx.Context))
	assert.Equal(t, `{"a":[true]}`+"\n", ctx.stdout.String())
}

func TestFmt_UnknownKeyStyle(t *testing.T) {
	ctx := newTestContext(`{}`)

	err := (&FmtCmd{KeyStyle: "screaming"}).Run(ctx.Context)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConfig)
}

func TestFmt_OutputFile(t *testing.T) {
	input := writeFile(t, "in.json", `[1, 2, 3]`)
	output := filepath.Join(t.TempDir(), "out.json")
	ctx := newTestContext("")

	err := (&FmtCmd{InputFlag: InputFlag{Input: input}, Output: output}).Run(ctx.Context)
	require.NoError(t, err)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.Equal(t, "[1,2,3]\n", string(data))
	assert.Contains(t, ctx.stderr.String(), "Output written to "+output)
	assert.Empty(t, ctx.stdout.String())
}

func TestFmt_InvalidJSON(t *testing.T) {
	ctx := newTestContext(`{"a":}`)

	err := (&FmtCmd{}).Run(ctx.Context)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidJSON)
	assert.Contains(t, errors.UserFriendlyError(err), "offset 5")
}

func TestFmt_EmptyInput(t *testing.T) {
	ctx := newTestContext("  \n")

	err := (&FmtCmd{}).Run(ctx.Context)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrEmptyInput)
}

func TestValidate_Files(t *testing.T) {
	good := writeFile(t, "good.json", `{"id":1}`)
	bad := writeFile(t, "bad.json", `{"id":1,}`)
	missing := filepath.Join(t.TempDir(), "missing.json")
	ctx := newTestContext("")

	err := (&ValidateCmd{Files: []string{good, bad, missing}}).Run(ctx.Context)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 inputs failed validation")

	lines := strings.Split(strings.TrimSpace(ctx.stdout.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, good+": ok (object)", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], bad+": JSON parsing error"), lines[1])
	assert.Equal(t, missing+": Input error: file '"+missing+"' not found", lines[2])
}

func TestValidate_Stdin(t *testing.T) {
	ctx := newTestContext(`[null]`)

	require.NoError(t, (&ValidateCmd{}).Run(ctx.Context))
	assert.Equal(t, "stdin: ok (array)\n", ctx.stdout.String())
}

func TestStats_Compact(t *testing.T) {
	ctx := newTestContext(`{"id":"2024-01-15","list":[1,2,3]}`)

	require.NoError(t, (&StatsCmd{Compact: true}).Run(ctx.Context))
	assert.Equal(t,
		`{"values":6,"types":{"null":0,"boolean":0,"number":3,"string":1,"object":1,"array":1},`+
			`"maxDepth":2,"totalKeys":2,"longestArray":3,"keys":["id","list"],"stringFormats":{"date":1}}`+"\n",
		ctx.stdout.String())
}

func TestStats_Pretty(t *testing.T) {
	ctx := newTestContext(`[]`)
	ctx.Config.Output.Indent = "  "

	require.NoError(t, (&StatsCmd{}).Run(ctx.Context))
	assert.True(t, strings.HasPrefix(ctx.stdout.String(), "{\n  \"values\": 1,\n  \"types\": {\n"), ctx.stdout.String())
}

func TestGen_Formatted(t *testing.T) {
	ctx := newTestContext(`{"script_id":"1","line":3}`)

	cmd := &GenCmd{Package: "fixtures", FuncName: "script", KeyStyle: "camel", Format: true}
	require.NoError(t, cmd.Run(ctx.Context))

	out := ctx.stdout.String()
	assert.Contains(t, out, "package fixtures")
	assert.Contains(t, out, "func Script() jsonvalue.Value {")
	assert.Contains(t, out, `root.SetString("scriptId", "1")`)
	assert.Contains(t, out, `root.SetInteger("line", 3)`)
}

func TestGen_InvalidPackage(t *testing.T) {
	ctx := newTestContext(`{}`)

	err := (&GenCmd{Package: "not-valid", FuncName: "Build"}).Run(ctx.Context)
	require.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Code generation error")
}

func TestKongParse_Commands(t *testing.T) {
	originalCLI := CLI
	defer func() { CLI = originalCLI }()

	input := writeFile(t, "in.json", `{"a_b":1}`)
	parser, err := kong.New(&CLI, kong.Name("inspectorjson"), kong.Exit(func(int) {}))
	require.NoError(t, err)

	kctx, err := parser.Parse([]string{"fmt", "-i", input, "-k", "kebab"})
	require.NoError(t, err)
	assert.Equal(t, "fmt", kctx.Command())

	ctx := newTestContext("")
	require.NoError(t, kctx.Run(ctx.Context))
	assert.Equal(t, `{"a-b":1}`+"\n", ctx.stdout.String())

	kctx, err = parser.Parse([]string{"gen", "--no-format", "--func", "Fixture"})
	require.NoError(t, err)
	assert.Equal(t, "gen", kctx.Command())
	assert.False(t, CLI.Gen.Format)
	assert.Equal(t, "Fixture", CLI.Gen.FuncName)
	assert.Equal(t, "main", CLI.Gen.Package)
}

func TestNewContext_ConfigFile(t *testing.T) {
	path := writeFile(t, "config.yml", "output:\n  pretty: true\n  key_style: snake\nlogging:\n  level: warn\n")

	ctx, err := newContext(path, true)
	require.NoError(t, err)
	assert.True(t, ctx.Config.Output.Pretty)
	assert.Equal(t, "snake", ctx.Config.Output.KeyStyle)
	assert.True(t, ctx.Debug)
	require.NotNil(t, ctx.Logger)
}

func TestNewContext_MissingConfig(t *testing.T) {
	_, err := newContext(filepath.Join(t.TempDir(), "nope.yml"), false)
	require.Error(t, err)
	assert.Contains(t, errors.UserFriendlyError(err), "Configuration error")
}

func TestServe_EndToEnd(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx := newTestContext("")
	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd := &ServeCmd{Protocol: filepath.Join("testdata", "protocol", "inspector.json"), ShutdownTimeout: time.Second}
	done := make(chan error, 1)
	go func() {
		done <- cmd.serve(runCtx, ctx.Context, ln)
	}()

	base := ln.Addr().String()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+base+"/inspector", nil)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":1,"method":"Schema.getDomains"}`)))
	_, reply, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"result":{"domains":[{"name":"Debugger","version":"1.3"},{"name":"Runtime","version":"1.3"},{"name":"Schema","version":"1.3"}]},"id":1}`, string(reply))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"id":2,"method":"Debugger.enable"}`)))
	_, reply, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"result":{},"id":2}`, string(reply))

	resp, err := http.Get("http://" + base + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "inspectorjson_sessions_active 1")
	assert.Contains(t, string(body), `inspectorjson_commands_total{method="Debugger.enable",outcome="success"} 1`)
	assert.Contains(t, string(body), "go_goroutines")

	cancel()

	_, detached, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, `{"method":"Inspector.detached","params":{"reason":"server shutdown"}}`, string(detached))

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancellation")
	}
}
