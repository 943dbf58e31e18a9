package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// run executes the root command with args and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeConfig writes a config file rooted in a temp dir and returns its path.
func writeConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	body := fmt.Sprintf(`log_file_path: %s
database:
  driver: sqlite
  path: %s
logging:
  level: error
%s`, filepath.Join(dir, "es_log.txt"), filepath.Join(dir, "retromgr.db"), extra)
	path := filepath.Join(dir, "retromgr.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path, dir
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "retromgr dev") {
		t.Errorf("expected output to contain 'retromgr dev', got: %s", out)
	}
	if !strings.Contains(out, "commit: none") {
		t.Errorf("expected output to contain 'commit: none', got: %s", out)
	}
}

func TestVersionCmdWithCustomValues(t *testing.T) {
	origVersion, origCommit, origDate := Version, Commit, Date
	Version, Commit, Date = "1.0.0", "abc123", "2026-01-01"
	defer func() { Version, Commit, Date = origVersion, origCommit, origDate }()

	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	for _, want := range []string{"retromgr 1.0.0", "commit: abc123", "built: 2026-01-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got: %s", want, out)
		}
	}
}

func TestRootCmdHelp(t *testing.T) {
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help failed: %v", err)
	}
	for _, sub := range []string{"serve", "logs", "db", "config", "monitor", "version"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q", sub)
		}
	}
}

func TestConfigShow_Defaults(t *testing.T) {
	out, err := run(t, "config", "show", "--config", "")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "name: Recalbox Manager") {
		t.Errorf("missing default site name:\n%s", out)
	}
	if !strings.Contains(out, `port: "8001"`) {
		t.Errorf("missing default port:\n%s", out)
	}
}

func TestConfigShow_ProductionProfile(t *testing.T) {
	out, err := run(t, "config", "show", "--config", "", "--profile", "production")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	for _, want := range []string{
		"name: Retropie Manager",
		`port: "8000"`,
		"log_file_path: /opt/retropie/configs/all/emulationstation/es_log.txt",
		"assets_packaged: true",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in:\n%s", want, out)
		}
	}
}

func TestConfigShow_UnknownProfile(t *testing.T) {
	if _, err := run(t, "config", "show", "--config", "", "--profile", "staging"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestConfigShow_MasksSecrets(t *testing.T) {
	path, _ := writeConfig(t, "notify:\n  slack_webhook_url: https://hooks.slack.com/services/T0/B0/xyzzytoken\n")
	out, err := run(t, "config", "show", "--config", path)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "xyzzytoken") || !strings.Contains(out, masked) {
		t.Errorf("webhook not masked:\n%s", out)
	}
}

func TestConfigProfiles(t *testing.T) {
	out, err := run(t, "config", "profiles")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "production") {
		t.Errorf("profiles = %q", out)
	}
}

func TestDBMigrate(t *testing.T) {
	path, dir := writeConfig(t, "")
	out, err := run(t, "db", "migrate", "--config", path)
	if err != nil {
		t.Fatalf("db migrate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Migrated 2 tables") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "retromgr.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestLogs(t *testing.T) {
	path, dir := writeConfig(t, "")
	if err := os.WriteFile(filepath.Join(dir, "es_log.txt"), []byte("one\ntwo\nthree\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "logs", "--config", path, "-n", "2")
	if err != nil {
		t.Fatalf("logs: %v", err)
	}
	if out != "two\nthree\n" {
		t.Errorf("output = %q", out)
	}
}

func TestLogs_MissingFile(t *testing.T) {
	path, _ := writeConfig(t, "")
	if _, err := run(t, "logs", "--config", path); err == nil {
		t.Fatal("expected error for missing log file")
	}
}

func TestLogs_Empty(t *testing.T) {
	path, dir := writeConfig(t, "")
	if err := os.WriteFile(filepath.Join(dir, "es_log.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "logs", "--config", path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Log file is empty.") {
		t.Errorf("output = %q", out)
	}
}

func TestMonitorRecord(t *testing.T) {
	path, dir := writeConfig(t, "")
	proc := filepath.Join(dir, "proc")
	if err := os.MkdirAll(proc, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(proc, "loadavg"), []byte("1.50 1.00 0.50 1/100 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgBody, _ := os.ReadFile(path)
	cfgBody = append(cfgBody, []byte(fmt.Sprintf("monitoring:\n  proc_root: %s\npaths:\n  share: %s\n", dir, dir))...)
	if err := os.WriteFile(path, cfgBody, 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, "monitor", "--config", path, "--record")
	if err != nil {
		t.Fatalf("monitor: %v", err)
	}
	if !strings.Contains(out, "Load:        1.50 1.00 0.50") {
		t.Errorf("output = %q", out)
	}
}

func TestClip(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"hello", 0, "hello"},
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 6, "hello…"},
		{"héllo", 3, "hé…"},
		{"abc", 1, "…"},
	}
	for _, tt := range tests {
		if got := clip(tt.in, tt.width); got != tt.want {
			t.Errorf("clip(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
