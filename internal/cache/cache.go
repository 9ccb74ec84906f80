// Package cache keeps parsed properties files on disk, keyed by the SHA-256 of
// their bytes, so unchanged files are not re-parsed by the props tool.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/bishiboosh/properties-serializer/internal/flatmap"
	"github.com/bishiboosh/properties-serializer/internal/proptext"
)

// Current schema version - increment when the payload format changes.
const schemaVersion uint16 = 1

// Digest identifies file content.
type Digest [sha256.Size]byte

// DigestOf hashes data.
func DigestOf(data []byte) Digest { return sha256.Sum256(data) }

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Cache stores flat maps on disk. Safe for concurrent use; a nil *Cache is a
// cache that never hits.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// payload is the msgpack record of one parsed file.
type payload struct {
	Schema uint16   `msgpack:"schema"`
	Keys   []string `msgpack:"keys"`
	Values []string `msgpack:"values"`
}

// Open returns the cache of app below $XDG_CACHE_HOME or ~/.cache.
func Open(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt returns a cache rooted at dir, creating it if needed.
func OpenAt(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "maps", key.String()+".mp")
}

// Put stores m under key, replacing any previous entry atomically.
func (c *Cache) Put(key Digest, m *flatmap.Map) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	rec := payload{Schema: schemaVersion, Keys: make([]string, 0, m.Len()), Values: make([]string, 0, m.Len())}
	for k, v := range m.All() {
		rec.Keys = append(rec.Keys, k)
		rec.Values = append(rec.Values, v)
	}
	if err = msgpack.NewEncoder(f).Encode(&rec); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get returns the map stored under key. Entries written by another schema
// version are reported as misses.
func (c *Cache) Get(key Digest) (*flatmap.Map, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var rec payload
	if err := msgpack.NewDecoder(f).Decode(&rec); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	if rec.Schema != schemaVersion || len(rec.Keys) != len(rec.Values) {
		return nil, false, nil
	}
	m := flatmap.New(len(rec.Keys))
	for i, k := range rec.Keys {
		m.Put(k, rec.Values[i])
	}
	return m, true, nil
}

// Parse returns the flat map of data, from the cache when possible. A fresh
// parse is stored for next time; a failed parse is never cached.
func (c *Cache) Parse(data []byte) (m *flatmap.Map, hit bool, err error) {
	key := DigestOf(data)
	if m, ok, err := c.Get(key); err == nil && ok {
		return m, true, nil
	}
	m, err = proptext.ReadBytes(data)
	if err != nil {
		return nil, false, err
	}
	if err := c.Put(key, m); err != nil {
		return m, false, fmt.Errorf("failed to store cache entry: %w", err)
	}
	return m, false, nil
}

// DropAll removes every entry.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
