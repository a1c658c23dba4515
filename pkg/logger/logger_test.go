package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
)

func TestInfoWritesKeyValues(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	defer Init("production")

	Info("snapshot rebuilt", "version", uint64(3), "entries", 12, "stale", false)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	if got["message"] != "snapshot rebuilt" {
		t.Errorf("message = %v", got["message"])
	}
	if got["version"] != float64(3) {
		t.Errorf("version = %v, want 3", got["version"])
	}
	if got["entries"] != float64(12) {
		t.Errorf("entries = %v, want 12", got["entries"])
	}
	if got["stale"] != false {
		t.Errorf("stale = %v, want false", got["stale"])
	}
}

func TestErrorAcceptsBareError(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	defer Init("production")

	Error("load interactions", errors.New("connection refused"))

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if got["error"] != "connection refused" {
		t.Errorf("error = %v, want connection refused", got["error"])
	}
	if got["level"] != "error" {
		t.Errorf("level = %v, want error", got["level"])
	}
}

func TestDebugSuppressedOutsideDevelopment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	InitWithWriter("production", &buf)
	defer Init("production")

	Debug("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug output in production: %q", buf.String())
	}
}
