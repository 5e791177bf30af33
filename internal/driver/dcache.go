package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"swell/internal/diag"
	"swell/internal/ir"
	"swell/internal/project"
	"swell/internal/version"
)

// bump when cachePayload changes shape
const cacheSchema uint16 = 1

// DiskCache keeps lowered IR of successful builds, one file per key.
// Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is what one cache file holds. The graph is always rebuilt
// from source, so file ids in cached spans stay valid.
type cachePayload struct {
	Schema   uint16
	Version  string
	IR       []byte
	Warnings []diag.Diagnostic
}

// OpenDiskCache uses $XDG_CACHE_HOME/<app>, falling back to ~/.cache/<app>.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewDiskCache(filepath.Join(base, app))
}

// NewDiskCache stores entries below dir, creating it if needed.
func NewDiskCache(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("cache dir: %w", err)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *DiskCache) Dir() string { return c.dir }

func (c *DiskCache) pathFor(key project.Digest) string {
	return filepath.Join(c.dir, "ir", hex.EncodeToString(key[:])+".mp")
}

func (c *DiskCache) put(key project.Digest, payload *cachePayload) (err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, os.Remove(f.Name()))
		}
	}()
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		return errors.Join(err, f.Close())
	}
	if err := f.Close(); err != nil {
		return err
	}
	// атомарная замена
	return os.Rename(f.Name(), p)
}

func (c *DiskCache) get(key project.Digest) (*cachePayload, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var out cachePayload
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, false, err
	}
	return &out, true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "ir"))
}

// cacheKey combines the graph hash with everything else that changes the
// lowered output.
func cacheKey(g *project.Graph, opts Options) project.Digest {
	h := sha256.New()
	h.Write([]byte(version.Version))
	h.Write([]byte{0})
	for _, k := range slices.Sorted(maps.Keys(opts.Cfg)) {
		h.Write([]byte(k + "=" + opts.Cfg[k]))
		h.Write([]byte{0})
	}
	h.Write([]byte(strconv.Itoa(opts.StorageValueBytes)))
	var optsDigest project.Digest
	copy(optsDigest[:], h.Sum(nil))
	return project.Combine(g.Module(g.Root).Hash, optsDigest)
}

// loadCached decodes a hit and replays its warnings into sink. Corrupt or
// stale entries count as misses.
func loadCached(c *DiskCache, key project.Digest, sink *diag.Bag) (*ir.Module, bool) {
	payload, ok, err := c.get(key)
	if err != nil || !ok || payload.Schema != cacheSchema || payload.Version != version.Version {
		return nil, false
	}
	mod, err := ir.Unmarshal(payload.IR)
	if err != nil {
		return nil, false
	}
	for _, d := range payload.Warnings {
		sink.Add(d)
	}
	return mod, true
}

func storeCached(c *DiskCache, key project.Digest, mod *ir.Module, sink *diag.Bag) error {
	data, err := ir.Marshal(mod)
	if err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	payload := &cachePayload{Schema: cacheSchema, Version: version.Version, IR: data}
	payload.Warnings = sink.Items()
	if err := c.put(key, payload); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	return nil
}
