// Package storage remembers the last published result digest per target so
// the poller can skip batches whose results have not changed.
package storage

import (
	"fmt"
	"strings"
	"time"
)

// Store tracks which batch digests have already been published.
type Store interface {
	Close() error
	SeenDigest(targetID, digest string) (bool, error)
	MarkDigest(targetID, digest string) error
}

// Options tunes digest retention. Zero values fall back to the defaults.
type Options struct {
	DigestTTL       time.Duration
	CleanupInterval time.Duration
}

// Backend names accepted by NewStore.
const (
	TypeNone  = "none"
	TypeBBolt = "bbolt"
)

const (
	defaultDigestTTL       = 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore opens the backend named by typ. An empty type disables storage.
func NewStore(typ, path string, opts Options) (Store, error) {
	if opts.DigestTTL <= 0 {
		opts.DigestTTL = defaultDigestTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}

	switch t := strings.ToLower(strings.TrimSpace(typ)); t {
	case "", TypeNone, "disabled":
		return noopStore{}, nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		store, err := openBolt(path, opts)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported storage type %q", t)
	}
}

// noopStore never remembers anything, so every batch is published.
type noopStore struct{}

func (noopStore) Close() error                            { return nil }
func (noopStore) SeenDigest(string, string) (bool, error) { return false, nil }
func (noopStore) MarkDigest(string, string) error         { return nil }
