// Package cache keeps rendered outlines keyed by document content hash.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dgallion1/doctoc/internal/toc"
)

const outlineKeyPrefix = "outline:"

const maxConflictRetries = 10

// Cache is a BadgerDB-backed outline cache. A nil *Cache is a valid,
// always-missing cache.
type Cache struct {
	db  *badger.DB
	ttl time.Duration
	log *slog.Logger
}

// Open opens (or creates) a cache under dir. Entries expire after ttl;
// ttl <= 0 keeps them forever.
func Open(dir string, ttl time.Duration, log *slog.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}
	opts := badger.DefaultOptions(dir).
		WithLogger(badgerLogger{log.With("component", "badgerdb")}).
		WithNumVersionsToKeep(1)
	return open(opts, ttl, log)
}

// OpenInMemory opens a cache that lives only as long as the process.
func OpenInMemory(ttl time.Duration, log *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(badgerLogger{log.With("component", "badgerdb")})
	return open(opts, ttl, log)
}

func open(opts badger.Options, ttl time.Duration, log *slog.Logger) (*Cache, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}
	return &Cache{db: db, ttl: ttl, log: log}, nil
}

// Get returns the cached outline for a content hash.
func (c *Cache) Get(hash string) (toc.Outline, bool, error) {
	var o toc.Outline
	if c == nil {
		return o, false, nil
	}
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(outlineKeyPrefix + hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &o)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return toc.Outline{}, false, nil
	}
	if err != nil {
		return toc.Outline{}, false, fmt.Errorf("cache get %s: %w", hash, err)
	}
	return o, true, nil
}

// Put stores the outline for a content hash.
func (c *Cache) Put(hash string, o toc.Outline) error {
	if c == nil {
		return nil
	}
	val, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}
	return c.update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(outlineKeyPrefix+hash), val)
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes a cached outline. Missing keys are not an error.
func (c *Cache) Delete(hash string) error {
	if c == nil {
		return nil
	}
	return c.update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(outlineKeyPrefix + hash))
	})
}

// RunGC runs value-log garbage collection every interval until ctx ends.
func (c *Cache) RunGC(ctx context.Context, interval time.Duration) {
	if c == nil {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// RunValueLogGC returns ErrNoRewrite when there is nothing to do.
			for c.db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.db.Close()
}

// update wraps db.Update with a retry loop for transaction conflicts.
func (c *Cache) update(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := c.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		c.log.Debug("badger transaction conflict, retrying", "attempt", i+1)
	}
	return fmt.Errorf("cache update: transaction conflict not resolved after %d retries", maxConflictRetries)
}

// badgerLogger routes badger's printf-style logging into slog.
type badgerLogger struct {
	log *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...any) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...any) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...any) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
