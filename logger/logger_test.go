package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/inject/errors"
)

func jsonLogger(level string, buf *bytes.Buffer) *Logger {
	return NewWithWriter(&Config{Level: level, Format: FormatJSON}, "garage", buf)
}

func decode(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	if idx := strings.LastIndex(line, "\n"); idx >= 0 {
		line = line[idx+1:]
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid json %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.Service() != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.Service())
	}
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger("debug", &buf)
	l.Info("Instance constructed", RequestFields("*garage.Engine", "@named(v8)"))

	m := decode(t, &buf)
	if m["message"] != "Instance constructed" {
		t.Errorf("unexpected message %v", m["message"])
	}
	if m[FieldRequest] != "*garage.Engine" || m[FieldQualifier] != "@named(v8)" {
		t.Errorf("unexpected request fields %v", m)
	}
	if m["service"] != "garage" {
		t.Errorf("expected service field, got %v", m["service"])
	}
}

func TestNewWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger("warn", &buf)
	l.Debug("hidden")
	l.Info("hidden")
	if buf.Len() != 0 {
		t.Errorf("expected nothing below warn, got %q", buf.String())
	}
	l.Warn("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warn message, got %q", buf.String())
	}
}

func TestNewWithWriter_InvalidLevel(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger("invalid-level", &buf)
	l.Info("falls back to info")
	if !strings.Contains(buf.String(), "falls back to info") {
		t.Errorf("expected info output, got %q", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger("info", &buf).WithComponent("di")
	l.Info("ready")
	if m := decode(t, &buf); m[FieldComponent] != "di" {
		t.Errorf("expected component field, got %v", m)
	}
	if l.Service() != "garage" {
		t.Errorf("service should be preserved, got %q", l.Service())
	}
}

func TestWithContext_SpanIDs(t *testing.T) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(tracetest.NewInMemoryExporter())))
	ctx, span := tp.Tracer("test").Start(context.Background(), "resolve")
	defer span.End()

	var buf bytes.Buffer
	jsonLogger("info", &buf).WithContext(ctx).Info("traced")
	m := decode(t, &buf)
	if m[FieldTraceID] != span.SpanContext().TraceID().String() {
		t.Errorf("expected trace id, got %v", m[FieldTraceID])
	}
	if m[FieldSpanID] != span.SpanContext().SpanID().String() {
		t.Errorf("expected span id, got %v", m[FieldSpanID])
	}

	plain := jsonLogger("info", &buf)
	if plain.WithContext(context.Background()) != plain {
		t.Error("expected the same logger when ctx has no span")
	}
}

func TestWithFieldsAndError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger("info", &buf).
		WithFields(map[string]interface{}{FieldContextID: "ctx-1"}).
		WithError(fmt.Errorf("boom")).
		Error("failed")
	m := decode(t, &buf)
	if m[FieldContextID] != "ctx-1" || m["error"] != "boom" {
		t.Errorf("unexpected fields %v", m)
	}
}

func TestNewNop(t *testing.T) {
	l := NewNop()
	l.Info("dropped")
	l.Error("dropped")
}

func TestInitAndGlobal(t *testing.T) {
	Init(Config{ServiceName: "garage", Level: "info", Format: "console"})
	gl := GetGlobalLogger()
	if gl == nil || gl.Service() != "garage" {
		t.Fatalf("expected global logger for garage, got %v", gl)
	}

	custom := NewNop()
	SetGlobalLogger(custom)
	if GetGlobalLogger() != custom {
		t.Error("expected custom global logger")
	}
	SetGlobalLogger(nil)
	if GetGlobalLogger() == nil {
		t.Error("expected a default logger to be created")
	}
}

func TestRegistry(t *testing.T) {
	Reset()
	defer Reset()

	named := NewNop()
	Register("inspect", named)
	if Get("inspect") != named {
		t.Error("expected registered logger")
	}
	derived := Get("unknown")
	if derived == nil {
		t.Fatal("expected fallback logger")
	}
	if Get("unknown") != derived {
		t.Error("expected the derived logger to be reused")
	}

	prev := GetGlobalLogger()
	defer SetGlobalLogger(prev)
	SetGlobalLogger(NewNop())
	if Get("unknown") == derived {
		t.Error("expected a fresh logger after the global logger changed")
	}
	if Get("inspect") != named {
		t.Error("expected registered logger to survive a global change")
	}
}

func TestConfig_DefaultsAndValidate(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()
	if cfg.Level != "info" || cfg.Format != "console" || cfg.Output != "stdout" || !cfg.Timestamp {
		t.Errorf("unexpected defaults %+v", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"level", Config{Level: "loud", Format: "json", Output: "stdout"}},
		{"format", Config{Level: "info", Format: "xml", Output: "stdout"}},
		{"output", Config{Level: "info", Format: "json", Output: "file"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if !errors.HasCode(err, errors.ErrCodeInvalidConfig) {
				t.Fatalf("expected INVALID_CONFIG, got %v", err)
			}
			if !strings.Contains(err.Error(), "logging."+tt.name) {
				t.Errorf("expected field in message, got %q", err.Error())
			}
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	f := Fields("a", 1, "b", "two", 3, "ignored")
	if f["a"] != 1 || f["b"] != "two" || len(f) != 2 {
		t.Errorf("unexpected fields %v", f)
	}

	rf := RequestFields("garage.Motor", "")
	if _, ok := rf[FieldQualifier]; ok {
		t.Error("expected no qualifier field for an empty qualifier")
	}

	ef := ErrorFields("resolve", errors.UnknownRequest("garage.Motor"))
	if ef[FieldCode] != string(errors.ErrCodeUnknownRequest) {
		t.Errorf("expected code field, got %v", ef)
	}
	if _, ok := ErrorFields("resolve", fmt.Errorf("plain"))[FieldCode]; ok {
		t.Error("expected no code for plain errors")
	}

	df := DurationFields("boot", 1500*time.Millisecond)
	if df[FieldDuration] != int64(1500) {
		t.Errorf("unexpected duration %v", df[FieldDuration])
	}

	merged := Merge(Fields("a", 1), Fields("a", 2, "b", 3))
	if merged["a"] != 2 || merged["b"] != 3 {
		t.Errorf("unexpected merge %v", merged)
	}
}
