package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestConfigure_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "debug", Output: &buf, Service: "test"})
	t.Cleanup(func() { Configure(Config{}) })

	WithComponent("web").Debug().Str("path", "/bios/").Msg("hello")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("unmarshal %q: %v", buf.String(), err)
	}
	if entry["service"] != "test" {
		t.Errorf("service = %v, want test", entry["service"])
	}
	if entry["component"] != "web" {
		t.Errorf("component = %v, want web", entry["component"])
	}
	if entry["message"] != "hello" {
		t.Errorf("message = %v, want hello", entry["message"])
	}
}

func TestConfigure_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Level: "warn", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	Base().Info().Msg("dropped")
	if buf.Len() != 0 {
		t.Errorf("info entry written at warn level: %q", buf.String())
	}
	Base().Warn().Msg("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn entry missing: %q", buf.String())
	}
}

func TestConfigure_Console(t *testing.T) {
	var buf bytes.Buffer
	Configure(Config{Format: "console", Output: &buf})
	t.Cleanup(func() { Configure(Config{}) })

	Base().Info().Msg("readable")
	if strings.HasPrefix(strings.TrimSpace(buf.String()), "{") {
		t.Errorf("console format produced JSON: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "readable") {
		t.Errorf("message missing: %q", buf.String())
	}
}
