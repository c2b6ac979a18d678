package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewLogger_DefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Level != LevelInfo {
		t.Errorf("expected default level to be info, got %s", cfg.Level)
	}
	if cfg.ServiceName != "recap" {
		t.Errorf("expected default service name to be 'recap', got %s", cfg.ServiceName)
	}
	if cfg.JSONFormat {
		t.Error("expected default JSONFormat to be false")
	}
}

func TestNewLogger_NilConfig(t *testing.T) {
	log := NewLogger(nil)
	if log == nil {
		t.Error("expected non-nil logger with nil config")
	}
}

func TestLogger_JSONFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &Config{
		Level:       LevelDebug,
		ServiceName: "test-service",
		JSONFormat:  true,
		Output:      buf,
	}

	log := NewLogger(cfg)
	log.Info("test message", F("key", "value"))

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if output["message"] != "test message" {
		t.Errorf("expected message 'test message', got %v", output["message"])
	}
	if output["service_name"] != "test-service" {
		t.Errorf("expected service_name 'test-service', got %v", output["service_name"])
	}
	if output["key"] != "value" {
		t.Errorf("expected key 'value', got %v", output["key"])
	}
	if _, ok := output["time"]; !ok {
		t.Error("expected timestamp in output")
	}
}

func TestLogger_ConsoleFormat(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &Config{
		Level:      LevelDebug,
		JSONFormat: false,
		Output:     buf,
	}

	log := NewLogger(cfg)
	log.Info("console message", F("key", "value"))

	out := buf.String()
	if !strings.Contains(out, "console message") {
		t.Errorf("expected output to contain message, got %q", out)
	}
	if !strings.Contains(out, "key") {
		t.Errorf("expected output to contain field key, got %q", out)
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	cfg := &Config{
		Level:      LevelWarn,
		JSONFormat: true,
		Output:     buf,
	}

	log := NewLogger(cfg)
	log.Debug("debug message")
	log.Info("info message")
	log.Warn("warn message")

	out := buf.String()
	if strings.Contains(out, "debug message") {
		t.Error("debug message should be filtered at warn level")
	}
	if strings.Contains(out, "info message") {
		t.Error("info message should be filtered at warn level")
	}
	if !strings.Contains(out, "warn message") {
		t.Error("warn message should pass at warn level")
	}
}

func TestLogger_FieldTypes(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelDebug, JSONFormat: true, Output: buf})

	log.Info("typed fields",
		F("str", "s"),
		F("int", 42),
		F("int64", int64(99)),
		F("float", 1.5),
		F("bool", true),
		F("dur", 2*time.Second),
		Err(errors.New("boom")),
	)

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}

	if output["str"] != "s" {
		t.Errorf("expected str 's', got %v", output["str"])
	}
	if output["int"] != float64(42) {
		t.Errorf("expected int 42, got %v", output["int"])
	}
	if output["bool"] != true {
		t.Errorf("expected bool true, got %v", output["bool"])
	}
	if output["error"] != "boom" {
		t.Errorf("expected error 'boom', got %v", output["error"])
	}
}

func TestLogger_With(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelDebug, JSONFormat: true, Output: buf})

	child := log.With(F("component", "pipeline"))
	child.Info("attached field")

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if output["component"] != "pipeline" {
		t.Errorf("expected component 'pipeline', got %v", output["component"])
	}
}

func TestLogger_WithContextNoSpan(t *testing.T) {
	buf := &bytes.Buffer{}
	log := NewLogger(&Config{Level: LevelDebug, JSONFormat: true, Output: buf})

	// A context with no active span leaves the logger unchanged.
	log.WithContext(context.Background()).Info("no trace")

	var output map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("failed to parse JSON output: %v", err)
	}
	if _, ok := output["trace_id"]; ok {
		t.Error("expected no trace_id without an active span")
	}
}

func TestGlobal_Lifecycle(t *testing.T) {
	orig := global
	defer func() { global = orig }()

	global = nil
	log := MustGlobal()
	if log == nil {
		t.Fatal("MustGlobal returned nil")
	}
	if Global() != log {
		t.Error("Global should return the instance MustGlobal created")
	}

	replacement := NewNopLogger()
	SetGlobal(replacement)
	if Global() != replacement {
		t.Error("SetGlobal did not replace the global logger")
	}
}

func TestNopLogger(t *testing.T) {
	log := NewNopLogger()
	log.Info("discarded")
	log.With(F("k", "v")).Error("also discarded", Err(errors.New("x")))
	log.WithContext(context.Background()).Debug("still discarded")
}
