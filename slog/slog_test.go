package slog_test

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/birdie-ai/remodel/slog"
)

func ExampleNew() {
	logger := slog.New(slog.NewGoogleCloudHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	logger.Info("omit", "a", 666)
	logger.Warn("yeah", "b", "yeah")
}

func TestLoadConfigDefault(t *testing.T) {
	config, err := slog.LoadConfig("DEFAULT")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Level != slog.DefaultLevel {
		t.Errorf("got %v, want default level %v", config.Level, slog.DefaultLevel)
	}
	if config.Format != slog.DefaultFormat {
		t.Errorf("got %v, want default fmt %v", config.Format, slog.DefaultFormat)
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv(logLevelEnv, "debug")
	t.Setenv(logFmtEnv, "json")

	config, err := slog.LoadConfig(prefix)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if config.Level != slog.LevelDebug {
		t.Errorf("got %v, want level %v", config.Level, slog.LevelDebug)
	}
	if config.Format != slog.FormatJSON {
		t.Errorf("got %v, want fmt %v", config.Format, slog.FormatJSON)
	}
}

func TestLoadConfigErr(t *testing.T) {
	t.Setenv(logLevelEnv, "debug")
	t.Setenv(logFmtEnv, "wrong")

	config, err := slog.LoadConfig(prefix)
	if err == nil {
		t.Fatalf("expected error, got config: %v", config)
	}

	t.Setenv(logLevelEnv, "wrong")
	t.Setenv(logFmtEnv, "text")

	config, err = slog.LoadConfig(prefix)
	if err == nil {
		t.Fatalf("expected error, got config: %v", config)
	}
}

func TestGoogleCloudHandlerKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewGoogleCloudHandler(&buf, nil))
	logger.Warn("skipped", "command", "renameField")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("invalid JSON log %q: %v", buf.String(), err)
	}
	if record["severity"] != "WARN" {
		t.Errorf("got severity %v; want WARN", record["severity"])
	}
	if record["message"] != "skipped" {
		t.Errorf("got message %v; want skipped", record["message"])
	}
	if record["command"] != "renameField" {
		t.Errorf("got command %v; want renameField", record["command"])
	}
}

func TestNewHandler(t *testing.T) {
	for _, format := range []slog.Format{slog.FormatText, slog.FormatJSON, slog.FormatGcloud} {
		var buf bytes.Buffer
		h, err := slog.NewHandler(&buf, format, &slog.HandlerOptions{Level: slog.LevelInfo})
		if err != nil {
			t.Fatalf("format %q: %v", format, err)
		}
		slog.New(h).Info("msg")
		if buf.Len() == 0 {
			t.Errorf("format %q: nothing logged", format)
		}
	}
	if _, err := slog.NewHandler(&bytes.Buffer{}, "xml", nil); err == nil {
		t.Fatal("want error for unknown format")
	}
}

func TestContextIntegration(t *testing.T) {
	want := &slog.Logger{}
	ctx := slog.NewContext(context.Background(), want)
	got := slog.FromCtx(ctx)

	if want != got {
		t.Fatalf("got %+v != want %+v", got, want)
	}
}

func TestDefaultLoggerFromContext(t *testing.T) {
	got := slog.FromCtx(context.Background())
	if got == nil {
		t.Fatal("want valid logger, got nil")
	}
}

func TestParseLevel(t *testing.T) {
	testcases := []struct {
		Input  string
		Output slog.Level
	}{
		{Input: "", Output: slog.LevelInfo},
		{Input: "info", Output: slog.LevelInfo},
		{Input: "DEBUG", Output: slog.LevelDebug},
		{Input: "warn", Output: slog.LevelWarn},
		{Input: "error", Output: slog.LevelError},
		{Input: "disable", Output: slog.LevelDisable},
	}
	for _, tc := range testcases {
		t.Run(tc.Input, func(t *testing.T) {
			level, err := slog.ParseLevel(tc.Input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if level != tc.Output {
				t.Errorf("got %v, want %v", level, tc.Output)
			}
		})
	}
}

func TestParseLevelInvalid(t *testing.T) {
	_, err := slog.ParseLevel("invalid")
	if err == nil {
		t.Fatal("want error, got nil")
	}
}

func TestParseFormat(t *testing.T) {
	testcases := []struct {
		Input  string
		Output slog.Format
	}{
		{Input: "", Output: slog.FormatText},
		{Input: "gcloud", Output: slog.FormatGcloud},
		{Input: "text", Output: slog.FormatText},
		{Input: "JSON", Output: slog.FormatJSON},
	}
	for _, tc := range testcases {
		t.Run(tc.Input, func(t *testing.T) {
			format, err := slog.ParseFormat(tc.Input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if format != tc.Output {
				t.Errorf("got %v, want %v", format, tc.Output)
			}
		})
	}
}

func TestParseFormatInvalid(t *testing.T) {
	_, err := slog.ParseFormat("invalid")
	if err == nil {
		t.Fatal("want error, got nil")
	}
}

const (
	prefix      = "TEST"
	logLevelEnv = prefix + "_LOG_LEVEL"
	logFmtEnv   = prefix + "_LOG_FMT"
)
