package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newCaptureLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	zl := zerolog.New(&buf)
	return &Logger{logger: zl, service: "test"}, &buf
}

func TestWithComponent(t *testing.T) {
	l, buf := newCaptureLogger()
	l.WithComponent("segmenter").Info("planned segments")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v", err)
	}
	if entry[FieldComponent] != "segmenter" {
		t.Fatalf("expected component=segmenter, got %v", entry[FieldComponent])
	}
	if entry["message"] != "planned segments" {
		t.Fatalf("expected message, got %v", entry["message"])
	}
}

func TestWithJob(t *testing.T) {
	l, buf := newCaptureLogger()
	l.WithJob("job-42").Warn("progress write failed")

	if !strings.Contains(buf.String(), `"job_id":"job-42"`) {
		t.Fatalf("expected job_id field, got %s", buf.String())
	}
}

func TestFieldsHelpers(t *testing.T) {
	m := Fields("op", "stitch", "segments", 4)
	if m["op"] != "stitch" || m["segments"] != 4 {
		t.Fatalf("unexpected fields map: %v", m)
	}

	// Odd trailing key is dropped.
	m = Fields("only")
	if len(m) != 0 {
		t.Fatalf("expected empty map, got %v", m)
	}

	d := DurationFields("probe", 1500*time.Millisecond)
	if d[FieldDuration] != int64(1500) {
		t.Fatalf("expected 1500ms, got %v", d[FieldDuration])
	}
}

func TestConfigApplyDefaults_Timestamp(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if cfg.Timestamp == nil || !*cfg.Timestamp {
		t.Fatal("expected timestamps enabled by default")
	}

	// An explicit false survives defaulting.
	disabled := false
	cfg = &Config{Timestamp: &disabled}
	cfg.ApplyDefaults()
	if *cfg.Timestamp {
		t.Fatal("explicit timestamp=false was overridden")
	}
}

func TestNew_TimestampDisabled(t *testing.T) {
	disabled := false
	cfg := &Config{Format: "json", Timestamp: &disabled}
	cfg.ApplyDefaults()

	var buf bytes.Buffer
	l := New(cfg, "test")
	l.logger = l.logger.Output(&buf)
	l.Info("no clock")

	if strings.Contains(buf.String(), `"time"`) {
		t.Fatalf("expected no time field, got %s", buf.String())
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := &Config{}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg.Level = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid level")
	}

	cfg.Level = "info"
	cfg.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid format")
	}
}
