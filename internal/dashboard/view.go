// Package dashboard filters the enriched sales table and computes the
// grouped aggregates every dashboard view is drawn from.
package dashboard

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/KaramelBytes/salesdash/internal/sales"
)

// EmptyMessage is shown when a selection matches no rows.
const EmptyMessage = "no rows match the current filter"

// Options controls aggregate sizes.
type Options struct {
	TopN          int // default 10
	SecondaryTopN int // default 5
}

func (o Options) withDefaults() Options {
	if o.TopN <= 0 {
		o.TopN = 10
	}
	if o.SecondaryTopN <= 0 {
		o.SecondaryTopN = 5
	}
	return o
}

// Total is the sales sum for one named group.
type Total struct {
	Name  string          `json:"name"`
	Sales decimal.Decimal `json:"sales"`
}

// MonthTotal is the sales sum for one calendar month.
type MonthTotal struct {
	Month time.Month      `json:"month"`
	Name  string          `json:"name"`
	Sales decimal.Decimal `json:"sales"`
}

// HourTotal is the sales sum for one hour of the day.
type HourTotal struct {
	Hour  int             `json:"hour"`
	Sales decimal.Decimal `json:"sales"`
}

// CellTotal is one segment of the month by city stacked series.
type CellTotal struct {
	Month     time.Month      `json:"month"`
	MonthName string          `json:"month_name"`
	City      string          `json:"city"`
	Sales     decimal.Decimal `json:"sales"`
}

// Summary holds the headline figures of a view.
type Summary struct {
	TotalSales decimal.Decimal `json:"total_sales"`
	Orders     int             `json:"orders"`
	Products   int             `json:"products"`
	Rows       int             `json:"rows"`
}

// View is one filtered snapshot of the table with its aggregates. When Empty
// is set the aggregate slices are nil.
type View struct {
	DatasetID            string            `json:"dataset_id"`
	Rows                 []sales.Enriched  `json:"-"`
	Empty                bool              `json:"empty"`
	Message              string            `json:"message,omitempty"`
	Summary              Summary           `json:"summary"`
	Monthly              []MonthTotal      `json:"monthly"`
	TopProducts          []Total           `json:"top_products"`
	TopProductsSecondary []Total           `json:"top_products_secondary"`
	Cities               []Total           `json:"cities"`
	Hours                []HourTotal       `json:"hours"`
	Stacked              []CellTotal       `json:"stacked"`
	MissingProducts      []string          `json:"missing_products"`
	Colors               map[string]string `json:"colors"`
}

// Compute filters t by sel and aggregates the result. It never fails: an
// empty result is reported through View.Empty.
func Compute(t *sales.Table, sel Selection, opt Options) *View {
	opt = opt.withDefaults()
	v := &View{Colors: map[string]string{}}
	if t != nil {
		v.DatasetID = t.ID
		for k, c := range t.Colors {
			v.Colors[k] = c
		}
	}
	v.Rows = Filter(t, sel)
	v.MissingProducts = missingProducts(t, v.Rows)
	if len(v.Rows) == 0 {
		v.Empty = true
		v.Message = EmptyMessage
		v.Summary.TotalSales = decimal.Zero
		return v
	}

	v.Summary = summarize(v.Rows, t.HasOrderID)
	v.Monthly = monthly(v.Rows)
	products := byKey(v.Rows, func(r sales.Enriched) (string, bool) { return r.Product, true })
	v.TopProducts = top(products, opt.TopN)
	v.TopProductsSecondary = top(products, opt.SecondaryTopN)
	v.Cities = byKey(v.Rows, func(r sales.Enriched) (string, bool) { return r.City, r.City != "" })
	v.Hours = hourly(v.Rows)
	v.Stacked = stacked(v.Rows)
	return v
}

func amount(r sales.Enriched) decimal.Decimal {
	if !r.Sales.Valid {
		return decimal.Zero
	}
	return r.Sales.Decimal
}

func summarize(rows []sales.Enriched, hasOrderID bool) Summary {
	s := Summary{TotalSales: decimal.Zero, Rows: len(rows)}
	orders := make(map[string]struct{})
	products := make(map[string]struct{})
	for _, r := range rows {
		s.TotalSales = s.TotalSales.Add(amount(r))
		if r.OrderID != "" {
			orders[r.OrderID] = struct{}{}
		}
		products[r.Product] = struct{}{}
	}
	s.Orders = len(orders)
	if !hasOrderID {
		s.Orders = len(rows)
	}
	s.Products = len(products)
	return s
}

func monthly(rows []sales.Enriched) []MonthTotal {
	sums := make(map[time.Month]decimal.Decimal)
	for _, r := range rows {
		if !r.HasMonth() {
			continue
		}
		sums[r.Month] = sums[r.Month].Add(amount(r))
	}
	var out []MonthTotal
	for _, m := range sales.Months() {
		if s, ok := sums[m]; ok {
			out = append(out, MonthTotal{Month: m, Name: sales.MonthName(m), Sales: s})
		}
	}
	return out
}

// byKey sums sales per key, sorted by descending sales then name.
func byKey(rows []sales.Enriched, key func(sales.Enriched) (string, bool)) []Total {
	sums := make(map[string]decimal.Decimal)
	for _, r := range rows {
		k, ok := key(r)
		if !ok {
			continue
		}
		sums[k] = sums[k].Add(amount(r))
	}
	out := make([]Total, 0, len(sums))
	for k, s := range sums {
		out = append(out, Total{Name: k, Sales: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Sales.Cmp(out[j].Sales); c != 0 {
			return c > 0
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func top(totals []Total, n int) []Total {
	if len(totals) > n {
		totals = totals[:n]
	}
	return append([]Total(nil), totals...)
}

func hourly(rows []sales.Enriched) []HourTotal {
	var sums [24]decimal.Decimal
	var seen [24]bool
	for _, r := range rows {
		if !r.HasHour() || r.Hour < 0 || r.Hour > 23 {
			continue
		}
		sums[r.Hour] = sums[r.Hour].Add(amount(r))
		seen[r.Hour] = true
	}
	var out []HourTotal
	for h := 0; h < 24; h++ {
		if seen[h] {
			out = append(out, HourTotal{Hour: h, Sales: sums[h]})
		}
	}
	return out
}

func stacked(rows []sales.Enriched) []CellTotal {
	type cell struct {
		month time.Month
		city  string
	}
	sums := make(map[cell]decimal.Decimal)
	for _, r := range rows {
		if !r.HasMonth() || r.City == "" {
			continue
		}
		k := cell{r.Month, r.City}
		sums[k] = sums[k].Add(amount(r))
	}
	out := make([]CellTotal, 0, len(sums))
	for k, s := range sums {
		out = append(out, CellTotal{Month: k.month, MonthName: sales.MonthName(k.month), City: k.city, Sales: s})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Month != out[j].Month {
			return out[i].Month < out[j].Month
		}
		return out[i].City < out[j].City
	})
	return out
}

// missingProducts lists products of the full table that the filtered rows
// do not contain, comparing trimmed lower-case names.
func missingProducts(t *sales.Table, rows []sales.Enriched) []string {
	if t == nil {
		return nil
	}
	present := make(map[string]struct{}, len(rows))
	for _, r := range rows {
		present[foldName(r.Product)] = struct{}{}
	}
	out := []string{}
	reported := make(map[string]struct{})
	for _, p := range t.Products {
		k := foldName(p)
		if _, ok := present[k]; ok {
			continue
		}
		if _, dup := reported[k]; dup {
			continue
		}
		reported[k] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func foldName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
