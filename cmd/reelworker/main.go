package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"reelbridge/internal/adapter/format"
	"reelbridge/internal/adapter/gateway"
	"reelbridge/internal/infra/config"
	"reelbridge/internal/infra/logger"
	"reelbridge/internal/infra/tracer"
	"reelbridge/internal/usecase/conversion"
)

// version is stamped by the release build.
var version = "dev"

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--help", "-h", "help":
			showUsage()
			return
		case "version":
			fmt.Println("reelworker " + version)
			return
		default:
			fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'reelworker help' for usage information.\n", os.Args[1])
			os.Exit(1)
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`reelworker - persistent format conversion worker

Serves a line-delimited JSON request/response protocol over stdin/stdout.
Start it with no arguments and write one request per line; it answers one
response per line, in order, until stdin closes.

USAGE:
    reelworker [COMMAND]

COMMANDS:
    help        Show this help message
    version     Print the version

    (no command) - Serve the protocol on stdin/stdout

ENVIRONMENT:`)
	config.EnvUsage(os.Stdout)
}

func run() error {
	// 1. Environment (diagnostics and adapter provisioning only; the
	// protocol itself needs none of it)
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}

	// 2. Logger and tracer, both kept off stdout: stdout is the wire.
	log := logger.ForWorker(env).With("session", newSessionID())

	ctx := context.Background()
	tracerShutdown, err := tracer.Setup(ctx, env.TracerConfig())
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer tracerShutdown(ctx)

	// 3. Conversion stack over the default adapter registry.
	reg := format.LazyDefault()
	svc := conversion.NewService(reg, log)
	srv := gateway.NewServer(svc, log)

	if adapters, err := reg.Adapters(); err != nil {
		log.Warn("adapter registry init failed", "error", err)
	} else {
		log.Info("reelworker ready", "version", version, "adapters", len(adapters))
	}

	// 4. Serve until stdin closes.
	return srv.Serve(ctx, os.Stdin, os.Stdout)
}

func newSessionID() string {
	t := time.Now()
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
