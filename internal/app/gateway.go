package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/samvad-hq/samvad-json-relay/internal/config"
	"github.com/samvad-hq/samvad-json-relay/internal/logger"
	"github.com/samvad-hq/samvad-json-relay/internal/server"
	"github.com/samvad-hq/samvad-json-relay/pkg/fetch"
	"github.com/samvad-hq/samvad-json-relay/pkg/httpclient"
)

// Gateway serves the proxy and batch endpoints over HTTP.
type Gateway struct {
	cfg             *config.Config
	server          *http.Server
	shutdownTimeout time.Duration
	log             logger.Logger
}

// NewGateway builds the HTTP runtime from config.
func NewGateway(cfg *config.Config, log logger.Logger) (*Gateway, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}

	client := httpclient.NewRestyClient(cfg.HTTPTimeout, httpclient.WithUserAgent(cfg.AppName))
	fetcher := fetch.New(client, fetch.Options{RequireSuccessStatus: cfg.RequireSuccessStatus}, log)
	router := server.NewRouter(server.NewHandler(fetcher, cfg.MaxBatchURLs, log), log)

	return &Gateway{
		cfg: cfg,
		server: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             log,
	}, nil
}

// Run listens on the configured address until the context is cancelled,
// then shuts down gracefully.
func (g *Gateway) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", g.server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", g.server.Addr, err)
	}
	return g.serve(ctx, ln)
}

func (g *Gateway) serve(ctx context.Context, ln net.Listener) error {
	if g == nil || g.server == nil {
		return fmt.Errorf("gateway is not initialized")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- g.server.Serve(ln)
	}()
	g.log.InfoObj("gateway listening", "gateway_state", map[string]any{
		"addr":                   ln.Addr().String(),
		"require_success_status": g.cfg.RequireSuccessStatus,
		"max_batch_urls":         g.cfg.MaxBatchURLs,
	})

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	g.log.InfoObj("gateway shutting down", "reason", ctx.Err())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), g.shutdownTimeout)
	defer cancel()
	if err := g.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
