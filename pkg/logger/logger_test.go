package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerJSONOutput(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithFormat("json"), WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	_ = SetLevelString("info")

	ctx := context.Background()
	Named("generator").Info(ctx, "batch written",
		String("collection", "matches"),
		Int("size", 1000),
		Duration("took", 1500*time.Millisecond),
	)

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("output is not JSON: %v (%q)", err, buf.String())
	}
	if rec["msg"] != "batch written" {
		t.Errorf("unexpected msg %v", rec["msg"])
	}
	if rec["component"] != "generator" {
		t.Errorf("expected component=generator, got %v", rec["component"])
	}
	if rec["collection"] != "matches" {
		t.Errorf("expected collection=matches, got %v", rec["collection"])
	}
	if rec["took"] != "1.5s" {
		t.Errorf("expected took=1.5s, got %v", rec["took"])
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	if err := SetLevelString("warn"); err != nil {
		t.Fatalf("SetLevelString: %v", err)
	}
	defer func() { _ = SetLevelString("info") }()

	ctx := context.Background()
	Get().Info(ctx, "hidden")
	Get().Warn(ctx, "shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, "shown") {
		t.Error("warn record should be written at warn level")
	}
}

func TestSetLevelStringRejectsUnknown(t *testing.T) {
	if err := SetLevelString("verbose"); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestLoggerWithFields(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(WithWriter(&buf), WithCaller(true)); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	_ = SetLevelString("debug")
	defer func() { _ = SetLevelString("info") }()

	Get().With(Int("worker_id", 3)).Debug(context.Background(), "worker started")

	out := buf.String()
	if !strings.Contains(out, "worker_id=3") {
		t.Errorf("expected worker_id field in %q", out)
	}
	if !strings.Contains(out, "logger_test.go") {
		t.Errorf("expected caller source in %q", out)
	}
}

func TestNopLogger(t *testing.T) {
	l := Nop()
	l.Error(context.Background(), "discarded")
	if l.Named("x") == nil {
		t.Fatal("named nop logger is nil")
	}
}
