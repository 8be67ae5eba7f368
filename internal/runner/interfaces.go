package runner

import (
	"context"

	"github.com/samvad-hq/samvad-json-relay/internal/domain"
	"github.com/samvad-hq/samvad-json-relay/pkg/publishers"
)

// BatchFetcher fetches a batch of URLs as parsed JSON.
type BatchFetcher interface {
	BatchFetch(ctx context.Context, urls []string) ([]domain.Result, error)
}

// FetcherFactory builds the fetcher for a target's request headers.
type FetcherFactory func(headers map[string]string) BatchFetcher

// EventPublisher publishes batch events downstream and reports how many
// sinks accepted the event.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// DigestStore remembers the last published digest per target.
type DigestStore interface {
	SeenDigest(targetID, digest string) (bool, error)
	MarkDigest(targetID, digest string) error
}
