package runner

import (
	"context"
	"crypto/sha1" //nolint:gosec // non-cryptographic change detection
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samvad-hq/samvad-json-relay/internal/domain"
	"github.com/samvad-hq/samvad-json-relay/internal/logger"
	"github.com/samvad-hq/samvad-json-relay/pkg/publishers"
	"github.com/samvad-hq/samvad-json-relay/pkg/targets"
)

// Service batch-fetches every target and publishes results that changed
// since the last publish.
type Service struct {
	fetchers  FetcherFactory
	publisher EventPublisher
	store     DigestStore
	log       logger.Logger
}

// NewService wires a runner. A nil store publishes every run; a nil logger
// discards logs.
func NewService(fetchers FetcherFactory, pub EventPublisher, log logger.Logger, store DigestStore) *Service {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Service{
		fetchers:  fetchers,
		publisher: pub,
		store:     store,
		log:       log,
	}
}

// Run executes one pass over all targets. Failures of individual targets do
// not stop the pass; they are joined into the returned error.
func (s *Service) Run(ctx context.Context, ts []targets.Target) error {
	if s == nil || s.fetchers == nil || s.publisher == nil {
		return fmt.Errorf("runner service is not initialized")
	}
	if len(ts) == 0 {
		return fmt.Errorf("no targets configured for polling")
	}

	errs := s.runAll(ctx, ts)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func (s *Service) runAll(ctx context.Context, ts []targets.Target) []error {
	errs := make([]error, 0, len(ts))

	for _, t := range ts {
		if ctx.Err() != nil {
			break
		}
		if err := s.runTarget(ctx, t); err != nil {
			errs = append(errs, err)
			s.log.ErrorObj("target run failed", "target_error", map[string]any{
				"target_id": t.ID,
				"error":     err.Error(),
			})
		}
	}

	return errs
}

func (s *Service) runTarget(ctx context.Context, t targets.Target) error {
	results, err := s.fetchers(t.Headers).BatchFetch(ctx, t.URLs)
	if err != nil {
		return fmt.Errorf("batch fetch target %s: %w", t.ID, err)
	}

	digest, err := digestResults(results)
	if err != nil {
		return fmt.Errorf("digest target %s: %w", t.ID, err)
	}

	if s.store != nil {
		seen, err := s.store.SeenDigest(t.ID, digest)
		if err != nil {
			s.log.WarnObj("digest lookup failed; publishing anyway", "digest_error", map[string]any{
				"target_id": t.ID,
				"error":     err.Error(),
			})
		} else if seen {
			s.log.DebugObj("target unchanged; skipping publish", "target_result", map[string]any{
				"target_id": t.ID,
				"digest":    digest,
			})
			return nil
		}
	}

	evt := publishers.NewEvent(t.ID, t.Name, t.URLs, results, digest)
	delivered, err := s.publisher.Publish(ctx, evt)
	if delivered > 0 && s.store != nil {
		if markErr := s.store.MarkDigest(t.ID, digest); markErr != nil {
			s.log.WarnObj("digest mark failed", "digest_error", map[string]any{
				"target_id": t.ID,
				"error":     markErr.Error(),
			})
		}
	}
	if err != nil {
		return fmt.Errorf("publish target %s: %w", t.ID, err)
	}

	s.log.InfoObj("target run completed", "target_result", map[string]any{
		"target_id": t.ID,
		"urls":      len(t.URLs),
		"delivered": delivered,
		"digest":    digest,
	})
	return nil
}

// digestResults hashes the canonical JSON encoding of results. Map keys are
// sorted by encoding/json, so equal documents hash equally.
func digestResults(results []domain.Result) (string, error) {
	raw, err := json.Marshal(results)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:]), nil
}
