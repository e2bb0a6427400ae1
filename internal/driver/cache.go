package driver

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"mapgen/internal/analyze"
	"mapgen/internal/diagnostic"
	"mapgen/internal/gen"
	"mapgen/internal/plan"
)

// Current schema version; bump when cacheEntry changes.
const cacheSchemaVersion uint16 = 2

// ErrCacheSchema is returned for on-disk entries written by another schema.
var ErrCacheSchema = errors.New("cache entry schema mismatch")

// Cache stores per-model outcomes keyed by model fingerprint and generator
// configuration. Entries live in memory and, when a directory is set, on
// disk. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	mem map[plan.Digest]outcome
	dir string
}

// NewCache creates a cache. An empty dir keeps entries in memory only.
func NewCache(dir string) *Cache {
	return &Cache{mem: make(map[plan.Digest]outcome), dir: dir}
}

// DefaultCacheDir returns the per-user cache directory for app.
func DefaultCacheDir(app string) (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating user cache dir: %w", err)
	}

	return filepath.Join(base, app), nil
}

// Dir returns the on-disk location, empty for memory-only caches.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}

	return c.dir
}

// Len returns the number of entries held in memory.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.mem)
}

// cacheKey binds a model fingerprint to everything else that shapes output.
func cacheKey(m *plan.MappingModel, cfg gen.GeneratorConfig) (plan.Digest, error) {
	fp, err := m.Fingerprint()
	if err != nil {
		return plan.Digest{}, err
	}

	data, err := msgpack.Marshal(struct {
		Schema uint16
		Model  plan.Digest
		Config gen.GeneratorConfig
	}{cacheSchemaVersion, fp, cfg})
	if err != nil {
		return plan.Digest{}, fmt.Errorf("encoding cache key for %s: %w", m, err)
	}

	return sha256.Sum256(data), nil
}

// Get returns the outcome stored under key. A disk entry is promoted to
// memory on first read.
func (c *Cache) Get(key plan.Digest) (outcome, bool, error) {
	if c == nil {
		return outcome{}, false, nil
	}

	c.mu.RLock()
	out, ok := c.mem[key]
	c.mu.RUnlock()

	if ok || c.dir == "" {
		return out, ok, nil
	}

	out, ok, err := c.readDisk(key)
	if err != nil || !ok {
		return outcome{}, false, err
	}

	c.mu.Lock()
	c.mem[key] = out
	c.mu.Unlock()

	return out, true, nil
}

// Put stores out under key.
func (c *Cache) Put(key plan.Digest, out outcome) error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	c.mem[key] = out
	c.mu.Unlock()

	if c.dir == "" {
		return nil
	}

	return c.writeDisk(key, out)
}

// Clear drops every entry, including the on-disk ones.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.mem = make(map[plan.Digest]outcome)

	if c.dir == "" {
		return nil
	}

	if err := os.RemoveAll(filepath.Join(c.dir, "models")); err != nil {
		return fmt.Errorf("clearing cache: %w", err)
	}

	return nil
}

func (c *Cache) pathFor(key plan.Digest) string {
	return filepath.Join(c.dir, "models", key.String()+".mp")
}

func (c *Cache) readDisk(key plan.Digest) (outcome, bool, error) {
	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return outcome{}, false, nil
		}

		return outcome{}, false, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry cacheEntry
	if err := msgpack.Unmarshal(data, &entry); err != nil {
		return outcome{}, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	if entry.Schema != cacheSchemaVersion {
		return outcome{}, false, fmt.Errorf("%w: got %d, want %d", ErrCacheSchema, entry.Schema, cacheSchemaVersion)
	}

	out, err := entry.outcome()
	if err != nil {
		return outcome{}, false, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	return out, true, nil
}

func (c *Cache) writeDisk(key plan.Digest, out outcome) error {
	p := c.pathFor(key)

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	data, err := msgpack.Marshal(newCacheEntry(out))
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return fmt.Errorf("creating cache entry: %w", err)
	}

	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing cache entry: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	return os.Rename(tmp, p)
}

// cacheEntry is the on-disk form of an outcome. Diagnostics are flattened to
// code and arguments since msgpack cannot decode the payload interface.
type cacheEntry struct {
	Schema      uint16
	Unit        *gen.GeneratedUnit
	Diagnostics []cachedDiagnostic
}

type cachedDiagnostic struct {
	Code        string
	Location    analyze.Location
	Args        []string
	Suggestions []string
}

func newCacheEntry(out outcome) cacheEntry {
	entry := cacheEntry{Schema: cacheSchemaVersion, Unit: out.Unit}

	for _, d := range out.Diagnostics {
		entry.Diagnostics = append(entry.Diagnostics, cachedDiagnostic{
			Code:        d.Code,
			Location:    d.Location,
			Args:        d.Args(),
			Suggestions: d.Suggestions,
		})
	}

	return entry
}

func (e cacheEntry) outcome() (outcome, error) {
	out := outcome{Unit: e.Unit}

	for _, cd := range e.Diagnostics {
		kind, ok := diagnostic.KindOfCode(cd.Code)
		if !ok {
			return outcome{}, fmt.Errorf("unknown diagnostic code %q", cd.Code)
		}

		d, err := diagnostic.FromArgs(kind, cd.Location, cd.Args)
		if err != nil {
			return outcome{}, err
		}

		if len(cd.Suggestions) > 0 {
			d = d.WithSuggestions(cd.Suggestions...)
		}

		out.Diagnostics = append(out.Diagnostics, d)
	}

	return out, nil
}
