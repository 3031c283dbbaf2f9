// Package main is the statewire demo driver.
//
// It loads plugins from a directory, wires their declared handlers to an
// in-process notification bus, then reads JSON-encoded notifications from
// stdin (one per line) and publishes them:
//
//	echo '{"state":"login","params":{"user":"ada"}}' | statewire -plugins ./plugins
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/statewire/internal/log"
	"github.com/dshills/statewire/internal/notify"
	"github.com/dshills/statewire/internal/plugin"
	"github.com/dshills/statewire/internal/processor"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		pluginsDir  string
		logLevel    string
		showVersion bool
	)

	flag.StringVar(&pluginsDir, "plugins", "plugins", "Path to the plugins directory")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("statewire %s (%s)\n", version, commit)
		return 0
	}

	logger := log.New(log.Config{
		Level:  log.ParseLevel(logLevel),
		Output: os.Stderr,
		Prefix: "statewire",
	})

	bus := notify.NewBus()

	proc, err := processor.New(bus, processor.WithProcessorSink(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	loader := plugin.NewLoader(proc, plugin.WithLoaderLogger(logger))
	defer func() { _ = loader.Close() }()

	loaded, err := loader.LoadDir(pluginsDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("loaded %d plugins, %d handlers", loaded, proc.HandlerCount())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return 0
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		n, err := notify.ParseNotification(line)
		if err != nil {
			logger.Warn("skipping input: %v", err)
			continue
		}

		if err := bus.Publish(ctx, n); err != nil {
			logger.Error("publish %q: %v", n.State, err)
		}
	}

	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: read stdin: %v\n", err)
		return 1
	}

	stats := bus.Stats()
	logger.Info("done: %d published, %d delivered, %d handler errors",
		stats.Published, stats.Delivered, stats.HandlerErrors)
	return 0
}
