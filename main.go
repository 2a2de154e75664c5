package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"go.uber.org/zap"

	"github.com/mcncl/inspectorjson/internal/config"
	"github.com/mcncl/inspectorjson/internal/errors"
	"github.com/mcncl/inspectorjson/internal/logging"
	"github.com/mcncl/inspectorjson/internal/parser"
	"github.com/mcncl/inspectorjson/pkg/jsonvalue"
)

// CLI defines the command-line interface
var CLI struct {
	Config  string           `help:"Path to config file. Defaults to .inspectorjson.yml in this or a parent directory." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Fmt      FmtCmd      `cmd:"" help:"Rewrite a JSON document in canonical or indented form."`
	Validate ValidateCmd `cmd:"" help:"Check that inputs are single valid JSON documents."`
	Stats    StatsCmd    `cmd:"" help:"Summarize the shape of a JSON document."`
	Gen      GenCmd      `cmd:"" help:"Generate Go code that rebuilds a JSON document."`
	Serve    ServeCmd    `cmd:"" help:"Serve the inspector protocol over websockets."`
}

// Context holds the runtime context shared by every command
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *logging.Logger
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	app := kong.Must(&CLI,
		kong.Name("inspectorjson"),
		kong.Description("JSON tooling and a protocol endpoint built on the inspector value model"),
		kong.UsageOnError(),
		kong.Vars{"version": "inspectorjson version " + Version},
	)

	kctx, err := app.Parse(os.Args[1:])
	app.FatalIfErrorf(err)

	ctx, err := newContext(CLI.Config, CLI.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	err = kctx.Run(ctx)
	_ = ctx.Logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: inspectorjson --help\n")
		os.Exit(1)
	}
}

// newContext loads configuration and builds the logger. --debug forces the
// debug level whatever the config says.
func newContext(configPath string, debug bool) (*Context, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = cfg.Logging.Level
	logCfg.Development = cfg.Logging.Development
	if debug {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, errors.NewConfigError("failed to create logger", err)
	}
	logger.Debug("configuration loaded",
		zap.String("output.key_style", cfg.Output.KeyStyle),
		zap.String("server.addr", cfg.Server.Addr),
	)

	return &Context{
		Debug:  debug,
		Config: cfg,
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}, nil
}

// InputFlag selects the JSON source of a command
type InputFlag struct {
	Input string `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
}

// readInput parses JSON from path, or from stdin when path is empty. A
// terminal on stdin means nothing was piped in.
func readInput(ctx *Context, path string) (jsonvalue.Value, error) {
	if path != "" {
		ctx.Logger.Debug("reading input file", zap.String("path", path))
		return parser.ParseFile(path)
	}

	if f, ok := ctx.Stdin.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return nil, errors.NewInputError("failed to access stdin", err)
		}
		if stat.Mode()&os.ModeCharDevice != 0 {
			return nil, errors.NewInputError("no input provided", errors.ErrNoInput)
		}
	}

	return parser.Parse(ctx.Stdin)
}

// writeOutput writes text to path, or to stdout when path is empty
func writeOutput(ctx *Context, path, text string) error {
	if path != "" {
		if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(ctx.Stderr, "Output written to %s\n", path)
		return nil
	}

	if _, err := fmt.Fprintln(ctx.Stdout, strings.TrimRight(text, "\n")); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}
