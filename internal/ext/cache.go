package ext

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
)

// summaryVersion is bumped when the Summary format changes so stale
// persisted entries are ignored.
const summaryVersion = "v1"

// Cache hands out one Summary per header location. Summaries are kept in
// memory for the life of the cache and, when a Store is attached, persisted
// by content so unchanged headers are not re-read on later runs.
type Cache struct {
	reader HeaderReader
	store  *Store
	mem    map[string]*Summary
}

// NewCache creates a cache over reader. store may be nil.
func NewCache(reader HeaderReader, store *Store) *Cache {
	if reader == nil {
		reader = ManifestReader{}
	}
	return &Cache{reader: reader, store: store, mem: make(map[string]*Summary)}
}

// Summary returns the summary of the header at location.
func (c *Cache) Summary(location string) (*Summary, error) {
	if s, ok := c.mem[location]; ok {
		return s, nil
	}

	var key string
	if c.store != nil {
		k, err := computeKey(location)
		if err != nil {
			return nil, err
		}
		key = k
		if s, ok, err := c.store.Load(key, location); err != nil {
			slog.Warn("summary cache read failed", "path", location, "error", err)
		} else if ok {
			slog.Debug("summary cache hit", "path", location)
			c.mem[location] = s
			return s, nil
		}
	}

	s, err := c.reader.ReadHeader(location)
	if err != nil {
		return nil, err
	}
	s.Location = location
	c.mem[location] = s

	if c.store != nil {
		if err := c.store.Save(key, s); err != nil {
			slog.Warn("summary cache write failed", "path", location, "error", err)
		}
	}
	return s, nil
}

// Len returns the number of summaries held in memory.
func (c *Cache) Len() int {
	return len(c.mem)
}

// computeKey hashes the header and its manifest, if any.
func computeKey(location string) (string, error) {
	header, err := os.ReadFile(location)
	if err != nil {
		return "", fmt.Errorf("reading header: %w", err)
	}
	manifest, err := os.ReadFile(ManifestPath(location))
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("reading manifest: %w", err)
	}

	h := sha256.New()
	h.Write(header)
	h.Write([]byte("\x00"))
	h.Write(manifest)
	h.Write([]byte("\x00"))
	h.Write([]byte(summaryVersion))
	return hex.EncodeToString(h.Sum(nil)), nil
}
