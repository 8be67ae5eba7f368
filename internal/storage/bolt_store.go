package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

var digestBucket = []byte("digests")

const expiryPrefixLen = 8

var errBucketMissing = errors.New("digest bucket missing")

// boltStore keeps one record per target: an 8-byte big-endian unix expiry
// followed by the digest bytes.
type boltStore struct {
	db  *bolt.DB
	ttl time.Duration

	sweepEvery time.Duration
	sweepMu    sync.Mutex
	lastSweep  time.Time
	now        func() time.Time
}

func openBolt(path string, opts Options) (*boltStore, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(digestBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return &boltStore{
		db:         db,
		ttl:        opts.DigestTTL,
		sweepEvery: opts.CleanupInterval,
		lastSweep:  time.Now(),
		now:        time.Now,
	}, nil
}

func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// SeenDigest reports whether digest matches the unexpired record for targetID.
func (b *boltStore) SeenDigest(targetID, digest string) (bool, error) {
	now := b.now()
	if err := b.sweep(now); err != nil {
		return false, err
	}

	var seen bool
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(digestBucket)
		if bucket == nil {
			return errBucketMissing
		}
		expiry, stored, ok := decodeEntry(bucket.Get([]byte(targetID)))
		seen = ok && expiry.After(now) && stored == digest
		return nil
	})
	return seen, err
}

// MarkDigest replaces the record for targetID and restarts its TTL.
func (b *boltStore) MarkDigest(targetID, digest string) error {
	now := b.now()
	if err := b.sweep(now); err != nil {
		return err
	}

	return b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(digestBucket)
		if bucket == nil {
			return errBucketMissing
		}
		return bucket.Put([]byte(targetID), encodeEntry(now.Add(b.ttl), digest))
	})
}

// sweep drops expired or malformed records at most once per sweepEvery.
func (b *boltStore) sweep(now time.Time) error {
	b.sweepMu.Lock()
	defer b.sweepMu.Unlock()

	if now.Sub(b.lastSweep) < b.sweepEvery {
		return nil
	}

	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(digestBucket)
		if bucket == nil {
			return errBucketMissing
		}

		// Collect first: deleting through a cursor mid-iteration skips keys.
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			if expiry, _, ok := decodeEntry(v); !ok || !expiry.After(now) {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}
		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sweep expired digests: %w", err)
	}
	b.lastSweep = now
	return nil
}

func encodeEntry(expiry time.Time, digest string) []byte {
	buf := make([]byte, expiryPrefixLen, expiryPrefixLen+len(digest))
	binary.BigEndian.PutUint64(buf, uint64(expiry.Unix()))
	return append(buf, digest...)
}

func decodeEntry(value []byte) (time.Time, string, bool) {
	if len(value) < expiryPrefixLen {
		return time.Time{}, "", false
	}
	unix := int64(binary.BigEndian.Uint64(value[:expiryPrefixLen]))
	if unix <= 0 {
		return time.Time{}, "", false
	}
	return time.Unix(unix, 0), string(value[expiryPrefixLen:]), true
}
