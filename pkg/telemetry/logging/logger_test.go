package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	logger, err := New(Config{})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if logger == nil {
		t.Fatal("New() returned nil logger")
	}
}

func TestNew_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("transaction screened", "transaction_id", "tx-1", "action", "block")

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["msg"] != "transaction screened" {
		t.Errorf("msg = %v, want transaction screened", entry["msg"])
	}
	if entry["transaction_id"] != "tx-1" {
		t.Errorf("transaction_id = %v, want tx-1", entry["transaction_id"])
	}
}

func TestNew_TextOutput(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "info", Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Info("rules reloaded", "version", "2.0")

	out := buf.String()
	if !strings.Contains(out, "rules reloaded") || !strings.Contains(out, "version=2.0") {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	logger.Debug("suppressed")
	logger.Info("suppressed")
	if buf.Len() != 0 {
		t.Errorf("below-threshold logs written: %s", buf.String())
	}

	logger.Warn("emitted")
	if buf.Len() == 0 {
		t.Error("warn log was suppressed")
	}
}

func TestNew_InvalidInputs(t *testing.T) {
	if _, err := New(Config{Level: "verbose"}); err == nil {
		t.Error("unknown level should be rejected")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("unknown format should be rejected")
	}
}

func TestParseLevel_CaseInsensitive(t *testing.T) {
	for _, level := range []string{"debug", "DEBUG", "info", "warn", "warning", "error", ""} {
		if _, err := parseLevel(level); err != nil {
			t.Errorf("parseLevel(%q) error = %v", level, err)
		}
	}
}
