package logger_adapter

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Fvicente04/ca1-real-estate-app/internal/core/port"
)

type postedRecord struct {
	tag  string
	data port.Fields
}

type fakePoster struct {
	mu      sync.Mutex
	records []postedRecord
	closed  bool
}

func (p *fakePoster) Post(tag string, message interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.records = append(p.records, postedRecord{tag: tag, data: message.(port.Fields)})
	return nil
}

func (p *fakePoster) Close() error {
	p.closed = true
	return nil
}

func TestFluentLoggerAdapter(t *testing.T) {
	poster := &fakePoster{}
	a, err := NewFluentLoggerAdapter(poster, slog.LevelInfo)
	if err != nil {
		t.Fatal(err)
	}
	a.now = func() time.Time { return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC) }

	logger := a.WithFields(port.Fields{"component": "test"})
	logger.Debug("dropped", nil)
	logger.Info("hello", port.Fields{"listing_id": "l1"})
	logger.Error("boom", errors.New("disk full"), nil)

	if len(poster.records) != 2 {
		t.Fatalf("posted %d records, want 2", len(poster.records))
	}

	info := poster.records[0]
	if info.tag != "info" || info.data["message"] != "hello" || info.data["component"] != "test" || info.data["listing_id"] != "l1" {
		t.Errorf("info record: %+v", info)
	}
	if info.data["timestamp"] != "2025-01-01T00:00:00Z" {
		t.Errorf("timestamp: %v", info.data["timestamp"])
	}

	errRecord := poster.records[1]
	if errRecord.tag != "error" || errRecord.data["error"] != "disk full" {
		t.Errorf("error record: %+v", errRecord)
	}

	if err := a.Close(); err != nil || !poster.closed {
		t.Error("close not forwarded")
	}
}

func TestFluentWithFieldsDoesNotLeak(t *testing.T) {
	poster := &fakePoster{}
	a, _ := NewFluentLoggerAdapter(poster, nil)

	_ = a.WithFields(port.Fields{"visit_id": "v1"})
	a.Info("plain", nil)

	if _, ok := poster.records[0].data["visit_id"]; ok {
		t.Error("child fields leaked into parent logger")
	}
}

func TestNewFluentLoggerAdapterRequiresClient(t *testing.T) {
	if _, err := NewFluentLoggerAdapter(nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestSlogAdapterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelDebug, IsJSON: true}).
		WithFields(port.Fields{"component": "shell"})

	logger.Error("Navigation failed", errors.New("nope"), port.Fields{"route": "/home"})

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("not json: %q", buf.String())
	}
	if record["msg"] != "Navigation failed" || record["component"] != "shell" || record["route"] != "/home" {
		t.Errorf("record: %v", record)
	}
	if record["err"] != "nope" {
		t.Errorf("error attr: %v", record["err"])
	}
}

func TestSlogAdapterLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewSlogAdapter(SlogConfig{Writer: &buf, Level: slog.LevelWarn})
	logger.Info("quiet", nil)
	logger.Warn("loud", nil)

	out := buf.String()
	if strings.Contains(out, "quiet") || !strings.Contains(out, "loud") {
		t.Errorf("output: %q", out)
	}
}

type countingLogger struct {
	calls  *int
	fields port.Fields
}

func (c countingLogger) Info(string, port.Fields)         { *c.calls++ }
func (c countingLogger) Warn(string, port.Fields)         { *c.calls++ }
func (c countingLogger) Error(string, error, port.Fields) { *c.calls++ }
func (c countingLogger) Debug(string, port.Fields)        { *c.calls++ }
func (c countingLogger) WithFields(f port.Fields) port.LoggerPort {
	return countingLogger{calls: c.calls, fields: f}
}

func TestMultiLoggerFansOut(t *testing.T) {
	var a, b int
	m, err := NewMultiloggerAdapter(countingLogger{calls: &a}, nil, countingLogger{calls: &b})
	if err != nil {
		t.Fatal(err)
	}

	child := m.WithFields(port.Fields{"k": "v"})
	child.Info("x", nil)
	child.Error("y", nil, nil)

	if a != 2 || b != 2 {
		t.Errorf("calls: %d/%d, want 2/2", a, b)
	}

	if _, err := NewMultiloggerAdapter(nil, nil); err == nil {
		t.Error("expected error without loggers")
	}
}
