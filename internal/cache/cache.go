// Package cache persists API lookup results as one file per key so that
// repeated runs against the same bibliography reuse earlier responses.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Cache stores payloads under dir, named by a content hash of the
// lookup key. A payload is fresh while its file modification time is
// within maxAge; maxAge <= 0 means nothing is ever fresh, forcing live
// fetches. Records are never mutated in place, only overwritten whole.
type Cache struct {
	dir    string
	maxAge time.Duration
}

// New creates a cache rooted at dir. The directory is created lazily on
// the first Put.
func New(dir string, maxAge time.Duration) *Cache {
	return &Cache{dir: dir, maxAge: maxAge}
}

// DOIKey builds the cache key for a DOI lookup. The same DOI always
// maps to the same record.
func DOIKey(doi string) string {
	return "doi:" + doi
}

// TitleKey builds the cache key for a title search. Titles are
// lowercased so case-variant spellings of the same paper share a record.
func TitleKey(title string) string {
	return "title:" + strings.ToLower(title)
}

// Get returns the stored payload for key if it exists and is fresh.
// Unreadable or stale files are treated as misses, never as errors.
func (c *Cache) Get(key string) ([]byte, bool) {
	if c.maxAge <= 0 {
		return nil, false
	}

	path := c.keyPath(key)
	info, err := os.Stat(path)
	if err != nil {
		return nil, false
	}
	if time.Since(info.ModTime()) > c.maxAge {
		return nil, false
	}

	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return payload, true
}

// GetAny returns the stored payload for key regardless of age. This is
// the reprocess-mode read: any record on disk is usable, and a miss
// means there is no data at all.
func (c *Cache) GetAny(key string) ([]byte, bool) {
	payload, err := os.ReadFile(c.keyPath(key))
	if err != nil {
		return nil, false
	}
	return payload, true
}

// Put writes a payload for key, creating the cache directory if needed.
// An existing record for the key is overwritten.
func (c *Cache) Put(key string, payload []byte) error {
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}
	if err := os.WriteFile(c.keyPath(key), payload, 0644); err != nil {
		return fmt.Errorf("writing cache record: %w", err)
	}
	return nil
}

// keyPath derives the file path for a key from a SHA-256 of the key
// text, so arbitrary titles stay filesystem-safe.
func (c *Cache) keyPath(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".json")
}
