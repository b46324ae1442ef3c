package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Output.Format != "text" {
		t.Errorf("Format = %q, want text", cfg.Output.Format)
	}
	if !cfg.Segment.Normalize {
		t.Error("Normalize should default to true")
	}
	if cfg.Segment.MaxFileSize != 1_000_000 {
		t.Errorf("MaxFileSize = %d", cfg.Segment.MaxFileSize)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
	if cfg.WorkerCount() < 1 {
		t.Errorf("WorkerCount() = %d", cfg.WorkerCount())
	}
}

func TestLoadNonExistent(t *testing.T) {
	t.Parallel()

	cfg, err := Load("/nonexistent/path/funcseg.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoadValidYAML(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	content := `
segment:
  workers: 3
  normalize: false
output:
  format: json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Segment.Workers != 3 {
		t.Errorf("Workers = %d, want 3", cfg.Segment.Workers)
	}
	if cfg.Segment.Normalize {
		t.Error("Normalize = true, want false")
	}
	if cfg.Output.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Output.Format)
	}
	// Unset fields keep their defaults.
	if cfg.Segment.MaxFileSize != 1_000_000 {
		t.Errorf("MaxFileSize = %d, want default", cfg.Segment.MaxFileSize)
	}
	if cfg.WorkerCount() != 3 {
		t.Errorf("WorkerCount() = %d, want 3", cfg.WorkerCount())
	}
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("output:\n  format: xml\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unsupported format")
	}

	if err := os.WriteFile(path, []byte("segment: [\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLoadFromDir(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".funcseg"), 0o755); err != nil {
		t.Fatal(err)
	}
	content := "cache:\n  path: segs.db\n"
	if err := os.WriteFile(filepath.Join(dir, ".funcseg", "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(dir)
	if err != nil {
		t.Fatalf("LoadFromDir: %v", err)
	}
	if cfg.Cache.Path != "segs.db" {
		t.Errorf("Cache.Path = %q, want segs.db", cfg.Cache.Path)
	}

	empty, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromDir(empty): %v", err)
	}
	if empty.Cache.Path != "" {
		t.Errorf("expected defaults, got cache path %q", empty.Cache.Path)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	cfg := DefaultConfig()
	cfg.Output.Format = "toon"
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Output.Format != "toon" {
		t.Errorf("Format = %q, want toon", loaded.Output.Format)
	}
}
