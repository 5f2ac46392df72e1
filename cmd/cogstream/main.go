// Package main implements the entry point for the cogstream daemon.
// Cogstream is a real-time text classification engine that scores text
// by normalized Shannon entropy, routes notes into cognitive memory
// zones, and streams transitions and metrics to connected clients.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/cogstream/config"
	"github.com/c360/cogstream/engine"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "cogstream"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	// The config file may carry logging settings the flags did not;
	// rebuild the logger with the merged result.
	level, format := resolveLogging(cliCfg, cfg.Logging)
	logger = setupLogger(level, format)
	slog.SetDefault(logger)

	ctx := context.Background()
	eng, err := engine.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	return runWithSignalHandling(ctx, eng, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting cogstream (real-time cognitive classification)",
		"version", Version,
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// runWithSignalHandling starts the engine and blocks until a shutdown
// signal arrives or stdin closes.
func runWithSignalHandling(ctx context.Context, eng *engine.Engine, shutdownTimeout time.Duration) error {
	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(signalCtx); err != nil {
		return fmt.Errorf("start engine: %w", err)
	}
	slog.Info("Cogstream started successfully (classification pipeline ready)")

	go readStdin(signalCtx, eng)

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	done := make(chan error, 1)
	go func() { done <- eng.Stop() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("shutdown timed out after %s", shutdownTimeout)
	}

	slog.Info("Cogstream shutdown complete")
	return nil
}

// readStdin classifies each line of standard input with the configured
// default lens. EOF ends ingest; the daemon keeps serving clients.
func readStdin(ctx context.Context, eng *engine.Engine) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		result, err := eng.Process(ctx, line, "")
		if err != nil {
			slog.Error("Processing failed", "error", err)
			continue
		}
		slog.Info("Note classified",
			"id", result.Note.ID,
			"zone", result.Note.Zone,
			"entropy", result.Note.Entropy,
			"lens", result.Note.Lens)
	}
	if err := scanner.Err(); err != nil {
		slog.Warn("Stdin ingest stopped", "error", err)
	}
}

// printHelp prints help information
func printHelp() {
	printDetailedHelp()
}
