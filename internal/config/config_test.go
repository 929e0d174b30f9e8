package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"depotkit/internal/config"
)

func TestLoadDefaultsExpandPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}
	if want := filepath.Join(tempHome, ".cache", "depotkit", "scratch"); cfg.Paths.ScratchDir != want {
		t.Fatalf("unexpected scratch dir: got %q want %q", cfg.Paths.ScratchDir, want)
	}
	if cfg.Paths.SteamPath != "" {
		t.Fatalf("expected empty steam path, got %q", cfg.Paths.SteamPath)
	}
	if cfg.Network.PreferMirrors != "auto" {
		t.Fatalf("unexpected mirror preference: %q", cfg.Network.PreferMirrors)
	}
	if cfg.Network.TreeFetchPolicy != "fail_fast" {
		t.Fatalf("unexpected tree fetch policy: %q", cfg.Network.TreeFetchPolicy)
	}
	if len(cfg.GitHub.Repos) == 0 {
		t.Fatal("expected default repos")
	}
	if !cfg.Unlocker.AutoRestartSteam {
		t.Fatal("expected auto restart enabled by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[github]
token = "  tok123  "
repos = ["me/manifests"]

[unlocker]
force = "Script"
auto_update_only = true

[network]
prefer_mirrors = "never"
tree_fetch_policy = "best_effort"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if cfg.GitHub.Token != "tok123" {
		t.Fatalf("token not trimmed: %q", cfg.GitHub.Token)
	}
	if cfg.Unlocker.Force != "script" {
		t.Fatalf("force not lowered: %q", cfg.Unlocker.Force)
	}
	if cfg.Network.TreeFetchPolicy != "best_effort" {
		t.Fatalf("policy: %q", cfg.Network.TreeFetchPolicy)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(path, []byte("[unlocker]\nforce = \"both\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, _, _, err := config.Load(path)
	if err == nil || !strings.Contains(err.Error(), "unlocker.force") {
		t.Fatalf("expected force validation error, got %v", err)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "[github]") {
		t.Fatal("sample config missing github section")
	}
}
