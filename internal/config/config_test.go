package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slate/internal/config"
)

func TestLoadDefaultsWithEnvRoot(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	root := filepath.Join(tempHome, "projects", "show")
	t.Setenv("SLATE_PROJECT_ROOT", root)
	t.Setenv("SLATE_USER", "alice")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".config", "slate", "config.toml"); resolved != want {
		t.Fatalf("resolved path %q, want %q", resolved, want)
	}
	if cfg.Project.Root != root {
		t.Fatalf("project root %q, want %q", cfg.Project.Root, root)
	}
	if cfg.User.Name != "alice" {
		t.Fatalf("user %q, want alice", cfg.User.Name)
	}
	if cfg.Versioning.Padding != 4 || cfg.Versioning.Lowest != 1 {
		t.Fatalf("unexpected versioning defaults: %+v", cfg.Versioning)
	}
	if cfg.DocExtension() != ".yml" {
		t.Fatalf("default document extension %q, want .yml", cfg.DocExtension())
	}
}

func TestLoadParsesFileAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[project]
root = "` + filepath.Join(dir, "show") + `"
local_root = "` + filepath.Join(dir, "local") + `"

[documents]
format = "JSON"

[versioning]
padding = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected existing config file")
	}
	if cfg.Documents.Format != "json" {
		t.Fatalf("format %q, want json", cfg.Documents.Format)
	}
	if cfg.DocExtension() != ".json" {
		t.Fatalf("document extension %q, want .json", cfg.DocExtension())
	}
	if got := cfg.VersionFormat(7); got != "v007" {
		t.Fatalf("VersionFormat(7) = %q, want v007", got)
	}
	if !cfg.UseLocal() {
		t.Fatal("expected local root enabled")
	}
}

func TestLoadRequiresProjectRoot(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("SLATE_PROJECT_ROOT", "")

	_, _, _, err := config.Load("")
	if err == nil || !strings.Contains(err.Error(), "project.root") {
		t.Fatalf("expected project.root error, got %v", err)
	}
}

func TestPipelineConfigPathHonorsEnvName(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SLATE_PROJECT_ROOT", dir)
	t.Setenv("SLATE_PROJECT_CONFIG_NAME", "custom.yml")

	cfg, _, _, err := config.Load(filepath.Join(dir, "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	want := filepath.Join(dir, "00_Pipeline", "custom.yml")
	if got := cfg.PipelineConfigPath(); got != want {
		t.Fatalf("pipeline config path %q, want %q", got, want)
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error when target exists")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[project]") {
		t.Fatal("sample config missing [project] section")
	}
}
