// Package enrich attaches calendar and geography fields to ingested sales
// records and assigns stable chart colors to cities.
package enrich

import (
	"sort"
	"time"

	"github.com/KaramelBytes/salesdash/internal/sales"
)

// DefaultPalette is the qualitative color sequence cities cycle through.
var DefaultPalette = []string{
	"#636EFA", "#EF553B", "#00CC96", "#AB63FA", "#FFA15A",
	"#19D3F3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Apply builds the enriched table for ds. The dataset's records are copied,
// never modified. An empty palette selects DefaultPalette.
func Apply(ds *sales.Dataset, palette []string) *sales.Table {
	t := &sales.Table{}
	if ds == nil {
		t.Colors = map[string]string{}
		return t
	}
	t.ID = ds.ID
	t.Sources = append([]string(nil), ds.Sources...)
	t.Skipped = append([]*sales.SourceError(nil), ds.Skipped...)
	t.HasOrderID = ds.HasOrderID
	t.Rows = make([]sales.Enriched, len(ds.Records))

	seenMonth := make(map[time.Month]bool)
	cities := make(map[string]struct{})
	products := make(map[string]struct{})
	for i, r := range ds.Records {
		e := Record(r)
		t.Rows[i] = e
		if e.HasMonth() {
			seenMonth[e.Month] = true
		}
		if e.City != "" {
			cities[e.City] = struct{}{}
		}
		products[e.Product] = struct{}{}
	}
	for _, m := range sales.Months() {
		if seenMonth[m] {
			t.Months = append(t.Months, m)
		}
	}
	t.Cities = sortedKeys(cities)
	t.Products = sortedKeys(products)
	t.Colors = AssignColors(t.Cities, palette)
	return t
}

// Record derives the calendar and city fields for one record.
func Record(r sales.Record) sales.Enriched {
	e := sales.Enriched{Record: r, City: CityLabel(r.Address)}
	if r.HasDate {
		e.Month = r.OrderDate.Month()
		e.Hour = r.OrderDate.Hour()
	}
	return e
}

// AssignColors maps each city to a palette entry by its index in cities,
// cycling when there are more cities than colors.
func AssignColors(cities []string, palette []string) map[string]string {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	out := make(map[string]string, len(cities))
	for i, c := range cities {
		out[c] = palette[i%len(palette)]
	}
	return out
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
