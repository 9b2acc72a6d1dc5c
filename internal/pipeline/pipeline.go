// Package pipeline turns a set of source files into the enriched table and
// caches the result until the sources change.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/KaramelBytes/salesdash/internal/enrich"
	"github.com/KaramelBytes/salesdash/internal/ingest"
	"github.com/KaramelBytes/salesdash/internal/logging"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

// Options configures one build.
type Options struct {
	Ingest  ingest.Options
	Palette []string
	// OnLoad, when set, observes every successful ingestion.
	OnLoad func(*sales.Dataset)
}

// Build ingests sources and enriches the result.
func Build(ctx context.Context, sources []string, opt Options) (*sales.Table, error) {
	ds, err := ingest.Load(ctx, sources, opt.Ingest)
	if err != nil {
		return nil, err
	}
	if opt.OnLoad != nil {
		opt.OnLoad(ds)
	}
	return enrich.Apply(ds, opt.Palette), nil
}

// Fingerprint identifies a source set by path, size and modification time,
// in order. Files that cannot be stat'ed contribute their path only, so they
// change the key when they reappear.
func Fingerprint(sources []string) string {
	h := sha256.New()
	for _, p := range sources {
		fmt.Fprintf(h, "%s\x00", p)
		if info, err := os.Stat(p); err == nil {
			fmt.Fprintf(h, "%d\x00%d\x00", info.Size(), info.ModTime().UnixNano())
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Cache holds the most recent table and rebuilds it only when the source
// fingerprint changes or Invalidate is called. It is safe for concurrent use.
type Cache struct {
	opt    Options
	logger *slog.Logger

	mu    sync.Mutex
	key   string
	table *sales.Table
}

// NewCache returns an empty cache. A nil logger discards output.
func NewCache(opt Options, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Cache{opt: opt, logger: logger.With("component", "pipeline")}
}

// Get returns the table for sources, building it when needed. Build errors
// are not cached.
func (c *Cache) Get(ctx context.Context, sources []string) (*sales.Table, error) {
	key := Fingerprint(sources)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.table != nil && c.key == key {
		c.logger.Debug("cache hit", "dataset", c.table.ID)
		return c.table, nil
	}
	t, err := Build(ctx, sources, c.opt)
	if err != nil {
		return nil, err
	}
	c.key, c.table = key, t
	c.logger.Info("dataset built", "dataset", t.ID, "rows", t.Len(), "sources", len(t.Sources))
	return t, nil
}

// Invalidate drops the cached table.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.key, c.table = "", nil
	c.mu.Unlock()
}
