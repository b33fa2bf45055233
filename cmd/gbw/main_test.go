package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aculich/gcp-billing-watcher/internal/config"
	"github.com/aculich/gcp-billing-watcher/internal/services/settings"
	"github.com/aculich/gcp-billing-watcher/internal/version"
)

func setupEnv(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvSettingsPath, filepath.Join(dir, "settings.yaml"))
	t.Setenv(config.EnvLogPath, filepath.Join(dir, "gbw.log"))
	t.Setenv(config.EnvLanguageTag, "en_US")
	t.Setenv(config.EnvNotifications, "false")
	t.Setenv(settings.EnvProjectID, "")
	t.Chdir(dir)
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		onceFlags.jsonOutput = false
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"once": false, "serve": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, version.Info()) {
		t.Errorf("output %q missing %q", out, version.Info())
	}
	if !strings.Contains(out, "Go Version:") {
		t.Errorf("output %q missing Go version", out)
	}
}

func TestOnce_Unconfigured(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "once")
	if !errors.Is(err, errNotHealthy) {
		t.Fatalf("err = %v, want errNotHealthy", err)
	}
	if !strings.Contains(out, "GCP") {
		t.Errorf("summary missing from output: %q", out)
	}
	if lines := strings.Split(strings.TrimSpace(out), "\n"); len(lines) < 2 {
		t.Errorf("expected summary plus detail lines, got %q", out)
	}
}

func TestOnce_JSON(t *testing.T) {
	setupEnv(t)

	out, err := execute(t, "once", "--json")
	if !errors.Is(err, errNotHealthy) {
		t.Fatalf("err = %v, want errNotHealthy", err)
	}

	var got struct {
		Configured bool `json:"configured"`
		Output     struct {
			Summary string `json:"summary"`
			Level   string `json:"level"`
		} `json:"output"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if got.Configured {
		t.Error("Configured = true, want false")
	}
	if got.Output.Summary == "" {
		t.Error("empty summary")
	}
	if got.Output.Level != "unconfigured" {
		t.Errorf("level = %q, want unconfigured", got.Output.Level)
	}
}

func TestLoadConfig_MetricsOverride(t *testing.T) {
	setupEnv(t)
	t.Setenv(config.EnvMetricsAddr, "127.0.0.1:1")
	metricsAddr = "127.0.0.1:2"
	t.Cleanup(func() { metricsAddr = "" })

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.MetricsAddr != "127.0.0.1:2" {
		t.Errorf("MetricsAddr = %q, want flag value", cfg.MetricsAddr)
	}
}
