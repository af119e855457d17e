package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/joseph-ayodele/docid/internal/common"
	"github.com/joseph-ayodele/docid/internal/identity"
	"github.com/joseph-ayodele/docid/internal/pipeline"
)

const usage = `usage: docid [--config FILE] <command> [flags] args

commands:
  id [--json] FILE...              business identifier, universal fallback
  universal [--json] FILE...       universal identifier only
  verify FILE ID                   exit 1 when FILE no longer yields ID
  verify-universal FILE ID
  compare [--universal] A B
  invoice --nip --number --date --amount [--buyer] [--prefix]
  receipt --nip --date --amount [--number] [--register] [--prefix]
  contract --nip1 --nip2 --date [--number] [--prefix]
  fields FILE.json                 identifier from a JSON field document
  extract FILE                     extracted content and fields
  batch [--xlsx OUT] [--skip-hidden] [--universal] [--json] DIR
  watch [--universal] DIR...
`

// exit codes
const (
	exitOK       = 0
	exitMismatch = 1
	exitError    = 1
	exitUsage    = 2
)

type app struct {
	cfg    *common.Config
	logger *slog.Logger
	pipe   *pipeline.Pipeline
	stdout io.Writer
	stderr io.Writer
}

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"id":               cmdID,
	"universal":        cmdUniversal,
	"verify":           cmdVerify,
	"verify-universal": cmdVerifyUniversal,
	"compare":          cmdCompare,
	"invoice":          cmdInvoice,
	"receipt":          cmdReceipt,
	"contract":         cmdContract,
	"fields":           cmdFields,
	"extract":          cmdExtract,
	"batch":            cmdBatch,
	"watch":            cmdWatch,
}

// errUsage marks argument errors (exit 2).
var errUsage = errors.New("usage")

// errMismatch marks a failed verification (exit 1, nothing logged).
var errMismatch = errors.New("identifier mismatch")

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("docid", flag.ContinueOnError)
	global.SetOutput(stderr)
	configPath := global.String("config", "", "YAML config file (default $DOCID_CONFIG)")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return exitUsage
	}
	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return exitUsage
	}
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
		global.Usage()
		return exitUsage
	}

	cfg, err := common.LoadConfig(*configPath)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
	level, _ := common.ParseLogLevel(cfg.Log.Level)
	logger := slog.New(slog.NewJSONHandler(stderr, &slog.HandlerOptions{Level: level}))

	a := &app{
		cfg:    cfg,
		logger: logger,
		pipe:   pipeline.New(pipeline.ConfigFromApp(cfg, logger), logger),
		stdout: stdout,
		stderr: stderr,
	}
	switch err := cmd(ctx, a, rest[1:]); {
	case err == nil:
		return exitOK
	case errors.Is(err, errMismatch):
		return exitMismatch
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return exitUsage
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}

// flags builds a subcommand flag set writing to stderr.
func (a *app) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.stderr)
	return fs
}

func (a *app) usageErr(format string, args ...any) error {
	fmt.Fprintf(a.stderr, format+"\n", args...)
	return errUsage
}

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) println(args ...any) {
	fmt.Fprintln(a.stdout, args...)
}

// generator returns the configured generator, or one with prefix.
func (a *app) generator(prefix string) *identity.Generator {
	if prefix == "" {
		return a.pipe.Generator()
	}
	return identity.NewGenerator(strings.ToUpper(prefix), a.logger)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
