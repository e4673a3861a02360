package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/ragline/ragline/internal/config"
)

// Cache keeps at most one loaded Runtime. A runtime stays cached while the
// backing model file's path and mtime are unchanged; touching or replacing
// the file forces a reload on the next acquire. All state transitions happen
// under one mutex, so concurrent acquires never load two runtimes.
type Cache struct {
	factory Factory
	cfg     config.RuntimeConfig
	logger  *slog.Logger

	mu      sync.Mutex
	path    string
	mtimeNS int64
	handle  Runtime
}

// NewCache creates a Cache.
func NewCache(factory Factory, cfg config.RuntimeConfig, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{factory: factory, cfg: cfg, logger: logger}
}

// Acquire returns a runtime for the model file, reusing the cached one when
// the file is unchanged. The second return reports a cache hit. A load
// failure leaves the cache empty rather than poisoned: the failed file is
// retried on the next acquire, and the previously cached runtime is already
// gone because it was released before the load attempt.
func (c *Cache) Acquire(ctx context.Context, modelPath string) (Runtime, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(modelPath)
	if err != nil {
		return nil, false, fmt.Errorf("stat model file: %w", err)
	}
	mtimeNS := info.ModTime().UnixNano()

	if c.handle != nil && c.path == modelPath && c.mtimeNS == mtimeNS {
		return c.handle, true, nil
	}

	if c.handle != nil {
		// Closing tears the runtime down immediately: a generation still in
		// flight on the old handle fails with a GenerationError rather than
		// completing against a stale model. The cache does not refcount
		// handles, so a reload cannot wait for in-flight completions.
		c.logger.Info("releasing cached runtime", "path", c.path)
		if err := c.handle.Close(); err != nil {
			c.logger.Warn("close cached runtime", "path", c.path, "error", err)
		}
		c.handle = nil
		c.path = ""
		c.mtimeNS = 0
	}

	c.logger.Info("loading model runtime", "path", modelPath)
	handle, err := c.factory(ctx, modelPath, c.cfg)
	if err != nil {
		return nil, false, NewLoadError(modelPath, err)
	}

	c.handle = handle
	c.path = modelPath
	c.mtimeNS = mtimeNS
	return handle, false, nil
}

// IsLoaded reports whether the given model file currently backs the cached
// runtime. The file is stated so a replaced or deleted file stops counting
// as loaded immediately, without waiting for the next Acquire.
func (c *Cache) IsLoaded(modelPath string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil || c.path != modelPath {
		return false
	}
	info, err := os.Stat(modelPath)
	if err != nil {
		return false
	}
	return info.ModTime().UnixNano() == c.mtimeNS
}

// Close releases the cached runtime, if any.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.handle == nil {
		return nil
	}
	err := c.handle.Close()
	c.handle = nil
	c.path = ""
	c.mtimeNS = 0
	return err
}
