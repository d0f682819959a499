package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

const (
	testLevel   = "debug"
	testContext = "env"
	testFormat  = "console"
	testGRPC    = "1.2.3.4:2"
	testMetrics = "1.2.3.4:3"
	fileYAML    = "level: warn\ncontext: file\n"
	fileUpdated = "level: error\ncontext: file\n"
	waitSeconds = 5
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvLevel, EnvContext, EnvFormat, EnvGRPC, EnvMetrics} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Level != DefaultLevel || cfg.Context != DefaultContext || cfg.Format != DefaultFormat || cfg.GRPC != DefaultGRPC || cfg.Metrics != DefaultMetrics {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvLevel, testLevel)
	t.Setenv(EnvContext, testContext)
	t.Setenv(EnvFormat, testFormat)
	t.Setenv(EnvGRPC, testGRPC)
	t.Setenv(EnvMetrics, testMetrics)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Level != testLevel || cfg.Context != testContext || cfg.Format != testFormat || cfg.GRPC != testGRPC || cfg.Metrics != testMetrics {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "logbridge.yaml")
	if err := os.WriteFile(path, []byte(fileYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Level != "warn" || cfg.Context != "file" || cfg.Format != DefaultFormat {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestLoadFileFromEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	if err := os.WriteFile(path, []byte(fileYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv(EnvConfig, path)
	cfg, err := Load("")
	if err != nil || cfg.Level != "warn" {
		t.Fatalf("unexpected cfg: %+v %v", cfg, err)
	}
}

func TestLoadBadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("level: [\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRejectsUnknownValues(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvFormat, "xml")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown format")
	}

	clearEnv(t)
	t.Setenv(EnvLevel, "verbose")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestWatchReloads(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "logbridge.yaml")
	if err := os.WriteFile(path, []byte(fileYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Config, 8)
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, func(c Config) { got <- c }, nil) }()

	deadline := time.After(waitSeconds * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case c := <-got:
			if c.Level == "error" {
				cancel()
				if err := <-done; err != nil {
					t.Fatalf("watch: %v", err)
				}
				return
			}
		case <-tick.C:
			// Rewrite until the watcher is registered and reports the change.
			if err := os.WriteFile(path, []byte(fileUpdated), 0o600); err != nil {
				t.Fatalf("write: %v", err)
			}
		case <-deadline:
			t.Fatalf("no reload observed")
		}
	}
}

func TestWatchEmptyPath(t *testing.T) {
	if err := Watch(context.Background(), "", func(Config) {}, nil); err == nil {
		t.Fatalf("expected error")
	}
}
