// Package slog provides structured logging.
// It is a wrapper for the https://pkg.go.dev/log/slog
// with some extra functionality to configure levels and formatters from the environment.
package slog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
)

type (
	// A Handler handles log records produced by a Logger.
	Handler = slog.Handler

	// HandlerOptions are options for a text or JSON handler.
	// A zero HandlerOptions consists entirely of default values.
	HandlerOptions = slog.HandlerOptions

	// Level determines the importance or severity of a log record
	Level = slog.Level

	// Logger represents a logger instance with its own context.
	// It extends Go's slog.Logger by adding new methods, like [Logger.Fatal].
	Logger struct {
		*slog.Logger
	}

	// Format determines the output format of the log records
	Format string
)

// All available log levels
const (
	LevelInfo    Level = slog.LevelInfo
	LevelDebug   Level = slog.LevelDebug
	LevelWarn    Level = slog.LevelWarn
	LevelError   Level = slog.LevelError
	LevelDisable Level = math.MaxInt
)

// All available log formats
const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatGcloud Format = "gcloud"
)

// Default configurations
const (
	DefaultLevel  = slog.LevelInfo
	DefaultFormat = FormatText
)

// Config represents log configuration.
type Config struct {
	Level  Level
	Format Format
}

// envConfig is how [Config] is read from the environment, before validation.
type envConfig struct {
	Level  string `env:"LOG_LEVEL"`
	Format string `env:"LOG_FMT"`
}

// Fatal is equivalent to [Logger.Error] followed by a call to os.Exit(1).
func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}

// With calls Logger.With returning a new Logger instance.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{l.Logger.With(args...)}
}

// LoadConfig will load the log Config from environment variables.
// The prefix is prepended to the variable names, so a prefix "REMODEL"
// loads the log level from "REMODEL_LOG_LEVEL" and the format from "REMODEL_LOG_FMT".
//
// Available log levels are: "debug", "info", "warn", "error", "disable"
// Available log fmts are: "text", "json", "gcloud"
//
// If the environment variables are not found it will use default values.
func LoadConfig(prefix string) (Config, error) {
	var raw envConfig
	if err := env.ParseWithOptions(&raw, env.Options{Prefix: prefix + "_"}); err != nil {
		return Config{}, fmt.Errorf("parsing log config: %w", err)
	}

	logFormat, err := ParseFormat(raw.Format)
	if err != nil {
		return Config{}, err
	}

	logLevel, err := ParseLevel(raw.Level)
	if err != nil {
		return Config{}, err
	}

	return Config{
		Level:  logLevel,
		Format: logFormat,
	}, nil
}

// New creates a new Logger with the given non-nil Handler.
func New(h Handler) *Logger {
	return &Logger{slog.New(h)}
}

// NewHandler creates a handler writing to w in the given format.
func NewHandler(w io.Writer, format Format, opts *HandlerOptions) (Handler, error) {
	switch format {
	case FormatText:
		return slog.NewTextHandler(w, opts), nil
	case FormatJSON:
		return slog.NewJSONHandler(w, opts), nil
	case FormatGcloud:
		return NewGoogleCloudHandler(w, opts), nil
	}
	return nil, fmt.Errorf("unknown log format: %v", format)
}

// NewGoogleCloudHandler creates a JSON handler that writes to w in a format that works well with Google Cloud Logging.
func NewGoogleCloudHandler(w io.Writer, opts *HandlerOptions) *slog.JSONHandler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	opts.ReplaceAttr = func(groups []string, a slog.Attr) slog.Attr {
		// More: https://cloud.google.com/logging/docs/agent/logging/configuration#process-payload
		if len(groups) > 0 {
			return a
		}
		switch a.Key {
		case slog.LevelKey:
			a.Key = "severity"
		case slog.MessageKey:
			a.Key = "message"
		}
		return a
	}
	return slog.NewJSONHandler(w, opts)
}

// Configure will change the default logger configuration.
// It should be called as soon as possible, usually on the main of your program.
func Configure(cfg Config) error {
	handler, err := NewHandler(os.Stderr, cfg.Format, &HandlerOptions{Level: cfg.Level})
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// Error calls Logger.Error on the default logger.
func Error(msg string, args ...any) {
	slog.Error(msg, args...)
}

// Fatal is equivalent to Error() followed by a call to os.Exit(1).
func Fatal(msg string, args ...any) {
	Error(msg, args...)
	os.Exit(1)
}

// Default creates a new [Logger] with default configurations.
func Default() *Logger {
	return &Logger{slog.Default()}
}

// FromCtx gets the [Logger] associated with the given context. A default [Logger] is
// returned if the context has no [Logger] associated with it.
func FromCtx(ctx context.Context) *Logger {
	log, ok := ctx.Value(loggerKey).(*Logger)
	if !ok {
		return Default()
	}
	return log
}

// NewContext creates a new [context.Context] with the given [Logger] associated with it.
// Call [FromCtx] to retrieve the [Logger].
func NewContext(ctx context.Context, log *Logger) context.Context {
	return context.WithValue(ctx, loggerKey, log)
}

// key is the type used to store data on contexts.
type key int

const (
	loggerKey key = iota
)

// ParseLevel parses the string and returns the corresponding [Level].
func ParseLevel(level string) (Level, error) {
	switch strings.ToLower(level) {
	case "info", "":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	case "warn":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "disable":
		return LevelDisable, nil
	default:
		return DefaultLevel, fmt.Errorf("invalid log level: %q", level)
	}
}

// ParseFormat parses the string and returns the corresponding [Format].
func ParseFormat(format string) (Format, error) {
	switch f := Format(strings.ToLower(format)); f {
	case FormatText, FormatJSON, FormatGcloud:
		return f, nil
	case "":
		return DefaultFormat, nil
	default:
		return "", fmt.Errorf("unknown log format %q", format)
	}
}
