// Package ingest reads sales CSV and XLSX exports, normalizes their columns and
// coerces every row onto the fixed consolidated schema.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/KaramelBytes/salesdash/internal/logging"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

// DefaultPattern matches the monthly sales export naming convention.
const DefaultPattern = "sales_data_*.csv"

var (
	// ErrNoSources is returned when there is nothing to ingest.
	ErrNoSources = errors.New("no source files found")
	// ErrEmptyDataset is returned when ingestion produced zero usable rows.
	ErrEmptyDataset = errors.New("source files contained no usable rows")
)

// Options controls ingestion.
type Options struct {
	// DateLayouts are tried before DefaultDateLayouts.
	DateLayouts []string
	// Workers bounds concurrent file reads; 0 means 4.
	Workers int
	Logger  *slog.Logger
}

// Discover returns the regular files in dir matching pattern, sorted.
func Discover(dir, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = DefaultPattern
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, m)
	}
	sort.Strings(files)
	return files, nil
}

// Load ingests sources in order and returns the consolidated dataset. A
// source that cannot be read or decoded is skipped and reported in
// Dataset.Skipped; it never fails the whole load.
func Load(ctx context.Context, sources []string, opt Options) (*sales.Dataset, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	logger := opt.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	logger = logger.With("component", "ingest")
	workers := opt.Workers
	if workers <= 0 {
		workers = 4
	}
	layouts := append(append([]string{}, opt.DateLayouts...), DefaultDateLayouts...)

	tables := make([]*rawTable, len(sources))
	failures := make([]error, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range sources {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tables[i], failures[i] = readSource(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &sales.Dataset{ID: uuid.NewString()}
	for i, t := range tables {
		if failures[i] != nil {
			se := &sales.SourceError{Path: sources[i], Err: failures[i]}
			ds.Skipped = append(ds.Skipped, se)
			logger.Warn("skipping source", "path", sources[i], "error", failures[i])
			continue
		}
		ds.Sources = append(ds.Sources, t.path)
		if _, ok := t.labels[ColOrderID]; ok {
			ds.HasOrderID = true
		}
		ds.Dropped += t.repeatedHeaders + t.malformed
		kept := 0
		for _, raw := range t.rows {
			rec, ok := Normalize(raw, layouts)
			if !ok {
				ds.Dropped++
				continue
			}
			rec.Source = t.path
			ds.Records = append(ds.Records, rec)
			kept++
		}
		if t.malformed > 0 {
			logger.Warn("dropped malformed rows", "path", t.path, "rows", t.malformed)
		}
		logger.Debug("decoded source", "path", t.path, "encoding", t.encoding, "rows", len(t.rows), "kept", kept)
	}

	logger.Info("ingested sources",
		"files", len(ds.Sources), "skipped", len(ds.Skipped),
		"rows", len(ds.Records), "dropped", ds.Dropped)

	if len(ds.Records) == 0 {
		return nil, fmt.Errorf("%w (%d read, %d skipped, %d rows dropped)",
			ErrEmptyDataset, len(ds.Sources), len(ds.Skipped), ds.Dropped)
	}
	return ds, nil
}

// Normalize converts a raw row into a consolidated record. It reports false
// when the row must be dropped for an empty or placeholder product.
func Normalize(raw RawRecord, dateLayouts []string) (sales.Record, bool) {
	product, _ := raw.Get(ColProduct)
	if IsPlaceholder(product) {
		return sales.Record{}, false
	}
	rec := sales.Record{Product: product}
	rec.OrderID, _ = raw.Get(ColOrderID)
	rec.Address, _ = raw.Get(ColAddress)
	if v, ok := raw.Get(ColQuantity); ok {
		rec.Quantity = parseNumber(v)
	}
	if v, ok := raw.Get(ColPrice); ok {
		rec.PriceEach = parseNumber(v)
	}
	rec.Sales = multiply(rec.Quantity, rec.PriceEach)
	if v, ok := raw.Get(ColDate); ok {
		rec.OrderDate, rec.HasDate = parseDate(v, dateLayouts)
	}
	return rec, true
}
