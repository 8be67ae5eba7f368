package app

import (
	"context"
	"fmt"
	"time"

	"github.com/samvad-hq/samvad-json-relay/internal/config"
	"github.com/samvad-hq/samvad-json-relay/internal/logger"
	"github.com/samvad-hq/samvad-json-relay/internal/runner"
	"github.com/samvad-hq/samvad-json-relay/internal/storage"
	"github.com/samvad-hq/samvad-json-relay/pkg/fetch"
	"github.com/samvad-hq/samvad-json-relay/pkg/httpclient"
	"github.com/samvad-hq/samvad-json-relay/pkg/publishers"
	"github.com/samvad-hq/samvad-json-relay/pkg/targets"
)

// Poller represents the scheduled batch runtime. It polls every enabled
// target on an interval, publishing changed results and remembering their
// digests.
type Poller struct {
	cfg          *config.Config
	targetReg    *targets.Registry
	fanout       *publishers.Fanout
	runService   *runner.Service
	pollInterval time.Duration
	log          logger.Logger
	store        storage.Store
}

// NewPoller builds a poller runtime from config files.
func NewPoller(ctx context.Context, cfg *config.Config, log logger.Logger) (*Poller, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	targetReg, err := targets.LoadRegistry(cfg.TargetsFile)
	if err != nil {
		return nil, fmt.Errorf("load targets registry: %w", err)
	}
	targetList := targetReg.Enabled()
	targetIDs := make([]string, 0, len(targetList))
	for _, t := range targetList {
		targetIDs = append(targetIDs, t.ID)
	}
	log.InfoObj("targets registry loaded", "targets_meta", map[string]any{
		"count": len(targetIDs),
		"ids":   targetIDs,
	})

	publisherReg, err := publishers.LoadRegistry(cfg.PublishersFile)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}

	enabledPublishers := publisherReg.Enabled()
	if len(enabledPublishers) == 0 {
		return nil, fmt.Errorf("no publishers configured")
	}

	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabledPublishers, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}
	fanout := publishers.NewFanout(pubClients)
	publisherSummaries := make([]map[string]string, 0, len(enabledPublishers))
	for _, pubCfg := range enabledPublishers {
		publisherSummaries = append(publisherSummaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(publisherSummaries),
		"publishers": publisherSummaries,
	})

	storeOpts := storage.Options{
		DigestTTL:       cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	}
	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storeOpts)
	if err != nil {
		_ = fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"digest_ttl_seconds":       int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	client := httpclient.NewRestyClient(cfg.HTTPTimeout, httpclient.WithUserAgent(cfg.AppName))
	factory := func(headers map[string]string) runner.BatchFetcher {
		return fetch.New(client, fetch.Options{
			Headers:              headers,
			RequireSuccessStatus: cfg.RequireSuccessStatus,
		}, log)
	}

	return &Poller{
		cfg:          cfg,
		targetReg:    targetReg,
		fanout:       fanout,
		runService:   runner.NewService(factory, fanout, log, store),
		pollInterval: cfg.PollInterval,
		log:          log,
		store:        store,
	}, nil
}

// Run starts the poll loop until the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	if p == nil || p.runService == nil {
		return fmt.Errorf("poller is not initialized")
	}
	defer p.close()

	enabled := p.targetReg.Enabled()
	if len(enabled) == 0 {
		p.log.WarnObj("no enabled targets; poller idle", "targets_file", p.cfg.TargetsFile)
		<-ctx.Done()
		return nil
	}

	p.log.InfoObj("poller loop starting", "poller_state", map[string]any{
		"targets_count":    len(enabled),
		"publishers_count": p.fanout.Size(),
		"poll_interval":    p.pollInterval.String(),
	})

	if err := p.runOnce(ctx, enabled); err != nil {
		p.log.ErrorObj("initial poll failed", "error", err)
	}

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoObj("poller loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := p.runOnce(ctx, enabled); err != nil {
				p.log.ErrorObj("scheduled poll failed", "error", err)
			}
		}
	}
}

// runOnce performs a single pass across all enabled targets.
func (p *Poller) runOnce(ctx context.Context, ts []targets.Target) error {
	start := time.Now()
	p.log.InfoObj("poll started", "poll_meta", map[string]any{
		"targets_count": len(ts),
		"started_at":    start.UTC(),
	})
	if err := p.runService.Run(ctx, ts); err != nil {
		return err
	}
	p.log.InfoObj("poll completed", "poll_meta", map[string]any{
		"targets_count": len(ts),
		"elapsed_ms":    time.Since(start).Milliseconds(),
	})
	return nil
}

// close releases the publishers and the storage backend, logging any errors.
func (p *Poller) close() {
	if err := p.fanout.Close(); err != nil {
		p.log.ErrorObj("publishers close failed", "error", err)
	}
	if p.store == nil {
		return
	}
	if err := p.store.Close(); err != nil {
		p.log.ErrorObj("storage close failed", "error", err)
	}
}
