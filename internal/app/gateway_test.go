package app

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-json-relay/internal/config"
)

func TestNewGatewayRequiresConfig(t *testing.T) {
	if _, err := NewGateway(nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}

func TestGatewayServesProxyAndShutsDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer upstream.Close()

	cfg := &config.Config{ListenAddr: "127.0.0.1:0", ShutdownTimeout: time.Second}
	gw, err := NewGateway(cfg, nil)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- gw.serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/proxy?url=" + upstream.URL)
	if err != nil {
		cancel()
		t.Fatalf("proxy request: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if strings.TrimSpace(string(body)) != `{"ok":true}` {
		t.Fatalf("body = %q", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("gateway did not shut down")
	}
}

func TestGatewayRunFailsOnBadAddress(t *testing.T) {
	gw, err := NewGateway(&config.Config{ListenAddr: "256.0.0.1:bogus", ShutdownTimeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("NewGateway: %v", err)
	}
	if err := gw.Run(context.Background()); err == nil {
		t.Fatalf("expected listen error")
	}
}
