package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"f90norm/internal/proc"
)

// cacheSchema versions the payload layout; bump it when proc.Unit changes
// shape so stale entries never decode into fresh runs.
const cacheSchema uint16 = 1

// DiskCache persists procedure indexes keyed by file content hash.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// indexPayload is the on-disk shape of one cached procedure index.
type indexPayload struct {
	Schema uint16      `msgpack:"schema"`
	Units  []proc.Unit `msgpack:"units"`
}

// OpenDiskCache initializes the cache at the standard user location,
// honoring XDG_CACHE_HOME.
func OpenDiskCache() (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, "f90norm", "procindex")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir reports where the cache lives, for the clean command's output.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key [32]byte) string {
	// Версия схемы в пути: устаревшие записи просто перестают находиться.
	return filepath.Join(c.dir, fmt.Sprintf("v%d", cacheSchema), hex.EncodeToString(key[:])+".msgpack")
}

// Put atomically writes the units for the given content hash.
func (c *DiskCache) Put(key [32]byte, units []proc.Unit) error {
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
		// после Rename файла уже нет; любой другой сбой убирает мусор
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(indexPayload{Schema: cacheSchema, Units: units}); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get loads the units cached for key. A missing entry is (nil, false, nil);
// decode failures surface as errors so callers can fall back to a fresh
// pass.
func (c *DiskCache) Get(key [32]byte) ([]proc.Unit, bool, error) {
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
	defer func() {
		_ = f.Close()
	}()

	var payload indexPayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != cacheSchema {
		return nil, false, nil
	}
	return payload.Units, true, nil
}

// DropAll wipes the cache directory.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	// Переименовать и удалить: параллельные читатели не увидят
	// полуразобранный каталог.
	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}
