package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != ":8080" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.HTTPTimeout != 0 {
		t.Fatalf("expected no client timeout by default, got %s", cfg.HTTPTimeout)
	}
	if cfg.PollInterval != 300*time.Second {
		t.Fatalf("PollInterval = %s", cfg.PollInterval)
	}
	if cfg.RequireSuccessStatus {
		t.Fatalf("expected status check disabled by default")
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LISTEN_ADDR", "127.0.0.1:9000")
	t.Setenv("HTTP_TIMEOUT_SECONDS", "7")
	t.Setenv("REQUIRE_SUCCESS_STATUS", "true")
	t.Setenv("POLL_INTERVAL", "60")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.ListenAddr != "127.0.0.1:9000" {
		t.Fatalf("ListenAddr = %q", cfg.ListenAddr)
	}
	if cfg.HTTPTimeout != 7*time.Second {
		t.Fatalf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if !cfg.RequireSuccessStatus {
		t.Fatalf("expected RequireSuccessStatus from env")
	}
	if cfg.PollInterval != time.Minute {
		t.Fatalf("PollInterval = %s", cfg.PollInterval)
	}
}

func TestLoadRejectsInvalidIntervals(t *testing.T) {
	t.Setenv("POLL_INTERVAL", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero poll_interval")
	}
}

func TestFinalizeRejectsNegativeTimeout(t *testing.T) {
	cfg := Config{
		HTTPTimeoutSeconds:     -1,
		ShutdownTimeoutSeconds: 1,
		PollIntervalSeconds:    1,
		StorageTTLSeconds:      1,
		StorageCleanupSeconds:  1,
	}
	if err := cfg.finalize(); err == nil {
		t.Fatalf("expected error for negative http_timeout_seconds")
	}
}
