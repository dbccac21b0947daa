// Command reelconvert converts one media description file into another
// format by driving a reelworker subprocess.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/alexflint/go-arg"
	"go.opentelemetry.io/otel/trace"

	"reelbridge/internal/infra/config"
	"reelbridge/internal/infra/logger"
	"reelbridge/internal/infra/tracer"
	"reelbridge/pkg/bridge"
)

type runArgs struct {
	Input         string   `arg:"-i,--input" help:"file to read"`
	Output        string   `arg:"-o,--output" help:"file to write"`
	InputAdapter  string   `arg:"--input-adapter" help:"adapter for the input (default: detect from suffix)"`
	OutputAdapter string   `arg:"--output-adapter" help:"adapter for the output (default: detect from suffix)"`
	InputArgs     []string `arg:"--input-arg,separate" help:"read adapter argument, key=value"`
	OutputArgs    []string `arg:"--output-arg,separate" help:"write adapter argument, key=value"`
	List          bool     `arg:"--list" help:"list the worker's formats and exit"`
	Config        string   `arg:"--config" default:"reelbridge.yaml" help:"YAML config file"`
	Worker        string   `arg:"--worker" help:"worker binary path (default: reelworker on PATH)"`
	Manifest      string   `arg:"--manifest" help:"command adapter manifest handed to the worker"`
}

func (runArgs) Description() string {
	return "convert media description files between formats via a reelworker subprocess"
}

func main() {
	var args runArgs
	arg.MustParse(&args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args runArgs) error {
	// 1. Config: YAML file when present, REELBRIDGE_* overrides, then flags.
	cfg, err := config.Load(args.Config)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if args.Worker != "" {
		cfg.Worker.Path = args.Worker
	}
	if args.Manifest != "" {
		cfg.Worker.Manifest = args.Manifest
	}

	// 2. Logger & tracer.
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer logCloser()

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Worker bridge.
	b, err := bridge.New(
		bridge.WithWorkerPath(cfg.Worker.Path),
		bridge.WithAdapterManifest(cfg.Worker.Manifest),
		bridge.WithLogger(log),
	)
	if err != nil {
		return err
	}
	defer b.Close()

	if args.List {
		printFormats(b)
		return nil
	}
	if args.Input == "" || args.Output == "" {
		return fmt.Errorf("both --input and --output are required (or use --list)")
	}

	inArgs, err := parseKVArgs("--input-arg", args.InputArgs)
	if err != nil {
		return err
	}
	outArgs, err := parseKVArgs("--output-arg", args.OutputArgs)
	if err != nil {
		return err
	}

	// Explicitly named adapters are checked against the discover table up
	// front; suffix detection is left to the worker.
	for _, name := range []string{args.InputAdapter, args.OutputAdapter} {
		if name == "" {
			continue
		}
		if _, err := b.Lookup(name); err != nil {
			return err
		}
	}

	// 4. Convert.
	ctx, span := tracer.StartSpan(ctx, "convert.run", trace.WithAttributes(
		tracer.StringAttr("input", args.Input),
		tracer.StringAttr("output", args.Output),
	))
	defer span.End()

	doc, err := b.ReadFile(ctx, args.Input, args.InputAdapter, inArgs)
	if err != nil {
		tracer.RecordError(span, err)
		return err
	}
	if err := b.WriteFile(ctx, doc, args.Output, args.OutputAdapter, outArgs); err != nil {
		tracer.RecordError(span, err)
		return err
	}
	tracer.SetOK(span)

	fmt.Printf("%s -> %s (%d bytes canonical)\n", args.Input, args.Output, len(doc))
	return nil
}

func printFormats(b *bridge.Bridge) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSUFFIXES\tREAD\tWRITE")
	for _, f := range b.Formats() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			f.Name, strings.Join(f.Suffixes, ","), yesNo(f.Features.Read), yesNo(f.Features.Write))
	}
	w.Flush()
}

func parseKVArgs(flag string, pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%s: want key=value, got %q", flag, p)
		}
		out[k] = v
	}
	return out, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
