package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/salesdash/internal/dashboard"
	"github.com/KaramelBytes/salesdash/internal/ingest"
	"github.com/KaramelBytes/salesdash/internal/pipeline"
	"github.com/KaramelBytes/salesdash/internal/sales"
	"github.com/KaramelBytes/salesdash/internal/utils"
)

// resolveSources expands file and glob arguments in argument order, dropping
// duplicates. Without arguments the configured directory and pattern apply.
func resolveSources(args []string) ([]string, error) {
	if len(args) == 0 {
		dir := utils.ExpandHome(cfg.SourceDir)
		files, err := ingest.Discover(dir, cfg.SourcePattern)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("%w matching %s", ingest.ErrNoSources,
				filepath.Join(dir, cfg.SourcePattern))
		}
		return files, nil
	}
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w matching %v", ingest.ErrNoSources, args)
	}
	return files, nil
}

// loadTable resolves sources and builds the enriched table, reporting
// skipped files on stderr.
func loadTable(cmd *cobra.Command, args []string) (*sales.Table, error) {
	files, err := resolveSources(args)
	if err != nil {
		return nil, err
	}
	t, err := pipeline.Build(context.Background(), files, pipelineOptions())
	if err != nil {
		return nil, err
	}
	for _, se := range t.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Skipped %s: %v\n", se.Path, se.Err)
	}
	return t, nil
}

// Filter flags shared by report and export.
type filterFlags struct {
	months   []string
	cities   []string
	products []string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.months, "month", nil, "months to include: names, 3-letter abbreviations or numbers (repeatable; omit for all, pass \"\" for none)")
	cmd.Flags().StringArrayVar(&f.cities, "city", nil, "city label to include, e.g. \"Austin (TX)\" (repeatable; omit for all)")
	cmd.Flags().StringArrayVar(&f.products, "product", nil, "product to include (repeatable; omit for all)")
}

// selection builds the filter. Flags that were not given leave their
// dimension unrestricted.
func (f *filterFlags) selection(cmd *cobra.Command) (dashboard.Selection, error) {
	var sel dashboard.Selection
	if cmd.Flags().Changed("month") {
		c, err := dashboard.ParseMonths(f.months)
		if err != nil {
			return sel, err
		}
		sel.Months = c
	}
	if cmd.Flags().Changed("city") {
		sel.Cities = dashboard.OnlyStrings(f.cities)
	}
	if cmd.Flags().Changed("product") {
		sel.Products = dashboard.OnlyStrings(f.products)
	}
	return sel, nil
}
