package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mcncl/inspectorjson/internal/analyzer"
	"github.com/mcncl/inspectorjson/internal/errors"
	"github.com/mcncl/inspectorjson/internal/formatter"
	"github.com/mcncl/inspectorjson/internal/generator"
	"github.com/mcncl/inspectorjson/internal/keys"
	"github.com/mcncl/inspectorjson/internal/metrics"
	"github.com/mcncl/inspectorjson/internal/parser"
	"github.com/mcncl/inspectorjson/internal/protocol"
	"github.com/mcncl/inspectorjson/internal/schema"
	"github.com/mcncl/inspectorjson/internal/transport"
)

// FmtCmd rewrites a document, optionally indented and with renamed keys
type FmtCmd struct {
	InputFlag `embed:""`

	Output   string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Pretty   bool   `help:"Indent the output." short:"p"`
	Compact  bool   `help:"Write the single-line form even if the config enables pretty output."`
	Indent   string `help:"Indentation used for pretty output. 'tab' means a tab character."`
	KeyStyle string `help:"Rewrite object keys: keep, camel, pascal, snake or kebab." short:"k"`
}

func (f *FmtCmd) Run(ctx *Context) error {
	v, err := readInput(ctx, f.Input)
	if err != nil {
		return err
	}

	styleName := ctx.Config.Output.KeyStyle
	if f.KeyStyle != "" {
		styleName = f.KeyStyle
	}
	style, err := keys.ParseStyle(styleName)
	if err != nil {
		return errors.NewConfigError(err.Error(), errors.ErrInvalidConfig)
	}
	v = keys.Rewrite(v, style)

	indent := ctx.Config.Output.Indent
	if f.Indent != "" {
		indent = f.Indent
	}
	if indent == "tab" {
		indent = "\t"
	}

	out := v.ToJSONString()
	if (ctx.Config.Output.Pretty || f.Pretty) && !f.Compact {
		out = formatter.NewFormatter(indent).Pretty(v)
	}

	ctx.Logger.Debug("formatted document",
		zap.Int("bytes", len(out)),
		zap.String("key_style", string(style)),
	)
	return writeOutput(ctx, f.Output, out)
}

// ValidateCmd checks inputs without printing them
type ValidateCmd struct {
	Files []string `arg:"" optional:"" help:"JSON files to check. Reads stdin when none are given." type:"path"`
}

func (c *ValidateCmd) Run(ctx *Context) error {
	if len(c.Files) == 0 {
		v, err := readInput(ctx, "")
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.Stdout, "stdin: ok (%s)\n", v.Type())
		return nil
	}

	failed := 0
	for _, path := range c.Files {
		v, err := parser.ParseFile(path)
		if err != nil {
			failed++
			fmt.Fprintf(ctx.Stdout, "%s: %s\n", path, errors.UserFriendlyError(err))
			continue
		}
		fmt.Fprintf(ctx.Stdout, "%s: ok (%s)\n", path, v.Type())
	}

	if failed > 0 {
		return errors.NewInputError(fmt.Sprintf("%d of %d inputs failed validation", failed, len(c.Files)), nil)
	}
	return nil
}

// StatsCmd prints an analyzer summary as JSON
type StatsCmd struct {
	InputFlag `embed:""`

	Compact bool `help:"Print the summary on a single line."`
}

func (s *StatsCmd) Run(ctx *Context) error {
	v, err := readInput(ctx, s.Input)
	if err != nil {
		return err
	}

	summary := analyzer.Analyze(v).Value()
	if s.Compact {
		return writeOutput(ctx, "", summary.ToJSONString())
	}
	return writeOutput(ctx, "", formatter.NewFormatter(ctx.Config.Output.Indent).Pretty(summary))
}

// GenCmd generates Go code that rebuilds the input document
type GenCmd struct {
	InputFlag `embed:""`

	Output   string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Package  string `help:"Package name for generated code." short:"p" default:"main"`
	FuncName string `help:"Name of the generated function." short:"f" name:"func" default:"Build"`
	KeyStyle string `help:"Rewrite object keys before generating: keep, camel, pascal, snake or kebab." short:"k"`
	Format   bool   `help:"Format the generated code." default:"true" negatable:""`
}

func (g *GenCmd) Run(ctx *Context) error {
	v, err := readInput(ctx, g.Input)
	if err != nil {
		return err
	}

	style, err := keys.ParseStyle(g.KeyStyle)
	if err != nil {
		return errors.NewConfigError(err.Error(), errors.ErrInvalidConfig)
	}
	v = keys.Rewrite(v, style)

	code, err := generator.NewGenerator().Generate(v, generator.Options{
		Package:  g.Package,
		FuncName: g.FuncName,
	})
	if err != nil {
		return err
	}

	if g.Format {
		code, err = formatter.NewFormatter("").Format(code)
		if err != nil {
			return errors.NewFormatError("failed to format generated code", err)
		}
	}

	ctx.Logger.Debug("generated code", zap.String("package", g.Package), zap.Int("bytes", len(code)))
	return writeOutput(ctx, g.Output, code)
}

// ServeCmd runs the websocket protocol endpoint until interrupted
type ServeCmd struct {
	Addr            string        `help:"Listen address. Overrides server.addr from the config."`
	Path            string        `help:"Websocket endpoint path. Overrides server.path from the config."`
	Protocol        string        `help:"Protocol description whose commands are served as validating stubs." type:"existingfile"`
	ShutdownTimeout time.Duration `help:"Time allowed for in-flight HTTP requests on shutdown." default:"5s"`
}

func (s *ServeCmd) Run(ctx *Context) error {
	addr := ctx.Config.Server.Addr
	if s.Addr != "" {
		addr = s.Addr
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.NewTransportError(fmt.Sprintf("failed to listen on %s", addr), err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.serve(runCtx, ctx, ln)
}

// serve answers on ln until runCtx is cancelled. Sessions receive
// Inspector.detached before the HTTP server shuts down.
func (s *ServeCmd) serve(runCtx context.Context, ctx *Context, ln net.Listener) error {
	cfg := ctx.Config.Server
	if s.Path != "" {
		cfg.Path = s.Path
	}
	logger := ctx.Logger.Named("serve")

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)

	d := protocol.NewDispatcher(m)
	version := "1.0"
	if s.Protocol != "" {
		p, err := schema.ParseFile(s.Protocol)
		if err != nil {
			_ = ln.Close()
			return err
		}
		p.Register(d)
		version = p.Version
		commands, events := p.Counts()
		logger.Info("protocol description loaded",
			zap.String("file", s.Protocol),
			zap.String("version", version),
			zap.Int("commands", commands),
			zap.Int("events", events),
		)
	}
	d.RegisterSchema(version)

	ws := transport.NewServer(d, transport.Options{
		ReadLimit: cfg.ReadLimit,
		Logger:    ctx.Logger,
		Metrics:   m,
	})

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, ws)
	mux.Handle(cfg.MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	logger.Info("listening",
		zap.String("addr", ln.Addr().String()),
		zap.String("path", cfg.Path),
		zap.String("metrics_path", cfg.MetricsPath),
		zap.Strings("domains", d.Domains()),
	)

	select {
	case err := <-errCh:
		_ = ws.Close()
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.NewTransportError("server stopped", err)
	case <-runCtx.Done():
	}

	logger.Info("shutting down", zap.Int("sessions", len(ws.Sessions())))
	_ = ws.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.NewTransportError("shutdown failed", err)
	}
	return nil
}
