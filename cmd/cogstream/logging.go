package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/c360/cogstream/config"
)

// resolveLogging merges the CLI flags with the loaded configuration:
// flags given explicitly on the command line win, otherwise the config
// file's logging section applies; --debug forces debug level regardless.
func resolveLogging(cliCfg *CLIConfig, logCfg config.LoggingConfig) (level, format string) {
	level = logCfg.Level
	if cliCfg.LogLevelSet || level == "" {
		level = cliCfg.LogLevel
	}
	format = logCfg.Format
	if cliCfg.LogFormatSet || format == "" {
		format = cliCfg.LogFormat
	}
	if cliCfg.Debug {
		level = "debug"
	}
	return level, format
}

func setupLogger(level, format string) *slog.Logger {
	var handler slog.Handler

	// Parse level
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     logLevel,
		AddSource: level == "debug",
	}

	// Create handler based on format
	switch strings.ToLower(format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler).With(
		"service", "cogstream",
		"version", Version,
		"pid", os.Getpid(),
	)
}
