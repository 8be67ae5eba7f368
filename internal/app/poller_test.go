package app

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-json-relay/internal/config"
	"github.com/samvad-hq/samvad-json-relay/pkg/publishers"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func pollerConfig(t *testing.T, targetsYAML, publishersYAML string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		TargetsFile:            writeFile(t, dir, "targets.yaml", targetsYAML),
		PublishersFile:         writeFile(t, dir, "publishers.yaml", publishersYAML),
		PollInterval:           time.Hour,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(dir, "digests.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestNewPollerRequiresPublishers(t *testing.T) {
	targetsYAML := "targets:\n  - id: one\n    name: One\n    urls:\n      - http://127.0.0.1:1/x\n"
	cfg := pollerConfig(t, targetsYAML, "publishers:\n  - id: off\n    type: log\n    enabled: false\n")
	if _, err := NewPoller(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error when no publishers are enabled")
	}
}

func TestNewPollerRejectsMissingTargetsFile(t *testing.T) {
	cfg := pollerConfig(t, "", "publishers:\n  - id: stdout\n    type: log\n")
	cfg.TargetsFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewPoller(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing targets file")
	}
}

func TestPollerPublishesInitialPoll(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"path":"`+r.URL.Path+`"}`)
	}))
	defer upstream.Close()

	events := make(chan publishers.Event, 1)
	sink := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt publishers.Event
		if err := json.NewDecoder(r.Body).Decode(&evt); err == nil {
			select {
			case events <- evt:
			default:
			}
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer sink.Close()

	targetsYAML := "targets:\n" +
		"  - id: pair\n" +
		"    name: Pair\n" +
		"    urls:\n" +
		"      - " + upstream.URL + "/a\n" +
		"      - " + upstream.URL + "/b\n"
	publishersYAML := "publishers:\n" +
		"  - id: sink\n" +
		"    type: http\n" +
		"    http:\n" +
		"      url: " + sink.URL + "\n"

	p, err := NewPoller(context.Background(), pollerConfig(t, targetsYAML, publishersYAML), nil)
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	select {
	case evt := <-events:
		if evt.TargetID != "pair" {
			t.Fatalf("target id = %q", evt.TargetID)
		}
		if len(evt.Results) != 2 {
			t.Fatalf("expected 2 results, got %d", len(evt.Results))
		}
		if evt.Digest == "" {
			t.Fatalf("expected digest on event")
		}
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatalf("no event published")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("poller did not stop")
	}
}

func TestPollerIdleWithoutEnabledTargets(t *testing.T) {
	targetsYAML := "targets:\n  - id: off\n    name: Off\n    enabled: false\n    urls:\n      - http://127.0.0.1:1/x\n"
	cfg := pollerConfig(t, targetsYAML, "publishers:\n  - id: stdout\n    type: log\n")
	p, err := NewPoller(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewPoller: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := p.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
