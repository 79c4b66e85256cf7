package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, root string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := fmt.Sprintf(`[project]
root = %q

[user]
name = "tester"

[logging]
level = "error"
`, root)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return configPath
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("output does not mention target path: %q", stdout)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when target already exists")
	}
}

func TestConfigValidateReportsPaths(t *testing.T) {
	root := t.TempDir()
	configPath := writeTestConfig(t, root)

	stdout, _, err := runCLI(t, configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(stdout, root) {
		t.Fatalf("output does not mention project root: %q", stdout)
	}
	if !strings.Contains(stdout, "Configuration valid") {
		t.Fatalf("missing validity line: %q", stdout)
	}
}

func TestIngestThenVersionFlow(t *testing.T) {
	root := t.TempDir()
	configPath := writeTestConfig(t, root)
	src := t.TempDir()
	fileA := writeSource(t, src, "hero_rig.ma", "rig")
	fileB := writeSource(t, src, "hero_rig.fbx", "rig")

	stdout, _, err := runCLI(t, configPath, "ingest",
		"asset:Characters/Hero", "Rig", fileA, fileB, "--comment", "first pass")
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !strings.Contains(stdout, "v0001") {
		t.Fatalf("ingest output missing version: %q", stdout)
	}
	versionDir := filepath.Join(root, "Assets", "Characters", "Hero", "Export", "Rig", "v0001")
	if _, err := os.Stat(filepath.Join(versionDir, "hero_rig.ma")); err != nil {
		t.Fatalf("ingested file missing: %v", err)
	}

	stdout, _, err = runCLI(t, configPath, "next", "asset:Characters/Hero", "Rig")
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if strings.TrimSpace(stdout) != "v0002" {
		t.Fatalf("next = %q, want v0002", strings.TrimSpace(stdout))
	}

	stdout, _, err = runCLI(t, configPath, "versions", "asset:Characters/Hero", "Rig")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if !strings.Contains(stdout, "v0001") || !strings.Contains(stdout, "first pass") {
		t.Fatalf("versions output incomplete: %q", stdout)
	}

	stdout, _, err = runCLI(t, configPath, "latest", "asset:Characters/Hero", "Rig")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !strings.Contains(stdout, "v0001") || !strings.Contains(stdout, versionDir) {
		t.Fatalf("latest output incomplete: %q", stdout)
	}
}

func TestMasterUpdateCommand(t *testing.T) {
	root := t.TempDir()
	configPath := writeTestConfig(t, root)
	src := t.TempDir()
	file := writeSource(t, src, "env_v0001.usd", "scene")

	if _, _, err := runCLI(t, configPath, "ingest", "asset:Sets/Diner", "Model", file); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	versionDir := filepath.Join(root, "Assets", "Sets", "Diner", "Export", "Model", "v0001")
	stdout, _, err := runCLI(t, configPath, "master", "update", versionDir)
	if err != nil {
		t.Fatalf("master update: %v", err)
	}
	if !strings.Contains(stdout, "master (v0001)") {
		t.Fatalf("master update output missing label: %q", stdout)
	}
	masterDir := filepath.Join(root, "Assets", "Sets", "Diner", "Export", "Model", "master")
	if _, err := os.Stat(filepath.Join(masterDir, "env_master.usd")); err != nil {
		t.Fatalf("master file missing: %v", err)
	}

	stdout, _, err = runCLI(t, configPath, "master", "outdated", "asset:Sets/Diner")
	if err != nil {
		t.Fatalf("master outdated: %v", err)
	}
	if !strings.Contains(stdout, "All masters are current") {
		t.Fatalf("unexpected outdated output: %q", stdout)
	}
}

func TestLocationsAddAndList(t *testing.T) {
	root := t.TempDir()
	configPath := writeTestConfig(t, root)
	extra := t.TempDir()

	if _, _, err := runCLI(t, configPath, "locations", "add", "archive", extra); err != nil {
		t.Fatalf("locations add: %v", err)
	}
	stdout, _, err := runCLI(t, configPath, "locations", "list")
	if err != nil {
		t.Fatalf("locations list: %v", err)
	}
	if !strings.Contains(stdout, "global") || !strings.Contains(stdout, "archive") {
		t.Fatalf("locations list incomplete: %q", stdout)
	}

	if _, _, err := runCLI(t, configPath, "locations", "remove", "archive"); err != nil {
		t.Fatalf("locations remove: %v", err)
	}
}

func TestResolveAndExtract(t *testing.T) {
	root := t.TempDir()
	configPath := writeTestConfig(t, root)

	stdout, _, err := runCLI(t, configPath, "resolve", "assets", "asset_path=Characters/Hero")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := filepath.Join(root, "Assets", "Characters", "Hero")
	if strings.TrimSpace(stdout) != want {
		t.Fatalf("resolve = %q, want %q", strings.TrimSpace(stdout), want)
	}

	stdout, _, err = runCLI(t, configPath, "extract", "assets", want)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(stdout, "Characters/Hero") && !strings.Contains(stdout, filepath.Join("Characters", "Hero")) {
		t.Fatalf("extract output missing asset path: %q", stdout)
	}
}

func TestPreflightPassesOnUsableRoot(t *testing.T) {
	root := t.TempDir()
	configPath := writeTestConfig(t, root)

	stdout, _, err := runCLI(t, configPath, "preflight")
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	if !strings.Contains(stdout, "pass") {
		t.Fatalf("preflight output missing pass: %q", stdout)
	}
}
