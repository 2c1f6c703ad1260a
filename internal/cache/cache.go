// Package cache is a small TTL cache for upstream lookups, backed by Badger.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// MemoryPath selects an in-memory cache.
const MemoryPath = "memory"

const gcInterval = 10 * time.Minute

// Cache stores JSON values with a per-entry TTL.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger

	stop     chan struct{}
	wg       sync.WaitGroup
	inMemory bool
}

// Open opens the cache at path, or in memory when path is MemoryPath or empty.
func Open(path string, logger *slog.Logger) (*Cache, error) {
	inMemory := path == "" || path == MemoryPath

	var opts badger.Options
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
		opts.CompactL0OnClose = true
	}
	opts.Logger = nil // Disable Badger's internal logging

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	c := &Cache{
		db:       db,
		logger:   logger,
		stop:     make(chan struct{}),
		inMemory: inMemory,
	}

	if !inMemory {
		c.wg.Add(1)
		go c.gcLoop()
	}

	if logger != nil {
		logger.Info("Lookup cache opened", "path", path, "in_memory", inMemory)
	}
	return c, nil
}

// GetJSON decodes the value stored under key into dst.
// It reports false when the key is missing or expired.
func (c *Cache) GetJSON(key string, dst any) (bool, error) {
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dst)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return true, nil
}

// SetJSON stores v under key. A ttl of zero or less never expires.
func (c *Cache) SetJSON(key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
}

// Delete removes key. Deleting a missing key is not an error.
func (c *Cache) Delete(key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
}

// Fetch returns the cached value for key, calling load and caching its
// result on a miss. Cache failures are logged and fall through to load.
func Fetch[T any](c *Cache, key string, ttl time.Duration, load func() (T, error)) (T, error) {
	var cached T
	if c != nil {
		found, err := c.GetJSON(key, &cached)
		if err != nil {
			c.log().Warn("cache read failed", "key", key, "error", err)
		} else if found {
			return cached, nil
		}
	}

	value, err := load()
	if err != nil {
		return value, err
	}

	if c != nil {
		if err := c.SetJSON(key, value, ttl); err != nil {
			c.log().Warn("cache write failed", "key", key, "error", err)
		}
	}
	return value, nil
}

// Close stops background garbage collection and closes the database.
func (c *Cache) Close() error {
	close(c.stop)
	c.wg.Wait()
	return c.db.Close()
}

func (c *Cache) gcLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			// Rewrite value log files until there is nothing left to reclaim.
			for c.db.RunValueLogGC(0.5) == nil {
			}
		}
	}
}

func (c *Cache) log() *slog.Logger {
	if c.logger == nil {
		return slog.Default()
	}
	return c.logger
}
