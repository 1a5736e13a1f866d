package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCLIConfig(t *testing.T, enableCache bool) string {
	t.Helper()

	base := t.TempDir()
	content := fmt.Sprintf(`[paths]
output_dir = %q
cache_dir = %q
log_dir = %q
work_dir = %q

[audio_cache]
enabled = %t
max_gib = 1
`,
		filepath.Join(base, "out"),
		filepath.Join(base, "cache"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "work"),
		enableCache,
	)

	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)

	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(out, "scribe ") {
		t.Errorf("unexpected version output %q", out)
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	if _, err := runCLI(t, "", "config", "init", "--path", target); err != nil {
		t.Fatalf("config init: %v", err)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("config file not written: %v", err)
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists")
	}

	if _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestBatchRequiresInputOrResume(t *testing.T) {
	cfgPath := writeCLIConfig(t, false)
	if _, err := runCLI(t, cfgPath, "batch"); err == nil {
		t.Fatal("expected error without directory or --resume")
	}
}

func TestBatchRejectsEmptyDirectory(t *testing.T) {
	cfgPath := writeCLIConfig(t, false)
	empty := t.TempDir()

	_, err := runCLI(t, cfgPath, "batch", empty)
	if err == nil {
		t.Fatal("expected error for directory without media")
	}
	if !strings.Contains(err.Error(), "no supported media files") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestBatchResumeUnknownID(t *testing.T) {
	cfgPath := writeCLIConfig(t, false)

	_, err := runCLI(t, cfgPath, "batch", "--resume", "bogus-id")
	if err == nil {
		t.Fatal("expected error for unknown batch ID")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSingleRejectsUnsupportedExtension(t *testing.T) {
	cfgPath := writeCLIConfig(t, false)
	path := filepath.Join(t.TempDir(), "notes.txt")
	if err := os.WriteFile(path, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	_, err := runCLI(t, cfgPath, "single", path)
	if err == nil {
		t.Fatal("expected error for unsupported extension")
	}
	if !strings.Contains(err.Error(), "unsupported file extension") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestCacheStatusDisabled(t *testing.T) {
	cfgPath := writeCLIConfig(t, false)
	if _, err := runCLI(t, cfgPath, "cache", "status"); err == nil {
		t.Fatal("expected error when cache disabled")
	}
}

func TestCacheStatusEmpty(t *testing.T) {
	cfgPath := writeCLIConfig(t, true)
	out, err := runCLI(t, cfgPath, "cache", "status")
	if err != nil {
		t.Fatalf("cache status: %v", err)
	}
	if !strings.Contains(out, "Entries:  0") {
		t.Errorf("unexpected output:\n%s", out)
	}
}
