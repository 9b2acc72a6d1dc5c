package dashboard

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/salesdash/internal/enrich"
	"github.com/KaramelBytes/salesdash/internal/sales"
)

func row(id, product, qty, price, date, address string) sales.Record {
	r := sales.Record{OrderID: id, Product: product, Address: address}
	if qty != "" {
		r.Quantity = decimal.NewNullDecimal(decimal.RequireFromString(qty))
	}
	if price != "" {
		r.PriceEach = decimal.NewNullDecimal(decimal.RequireFromString(price))
	}
	if r.Quantity.Valid && r.PriceEach.Valid {
		r.Sales = decimal.NewNullDecimal(r.Quantity.Decimal.Mul(r.PriceEach.Decimal))
	}
	if date != "" {
		d, err := time.Parse("01/02/06 15:04", date)
		r.OrderDate, r.HasDate = d, err == nil
	}
	return r
}

func fixture(t *testing.T) *sales.Table {
	t.Helper()
	ds := &sales.Dataset{
		ID:         "fixture",
		HasOrderID: true,
		Records: []sales.Record{
			row("1", "USB-C Charging Cable", "2", "11.95", "04/19/19 08:46", "917 1st St, New York City, NY 10001"),
			row("2", "Google Phone", "1", "600", "01/05/19 21:10", "Austin, TX"),
			row("2", "Wired Headphones", "1", "11.99", "01/05/19 21:10", "Austin, TX"),
			row("3", "iPhone", "1", "700", "not parsed", "1 A St, Boston, MA 02215"),
			row("4", "Google Phone", "1", "600", "12/30/19 09:00", "1 A St, Boston, MA 02215"),
			row("5", "AA Batteries (4-pack)", "", "3.84", "12/01/19 09:30", ""),
		},
	}
	// "not parsed" leaves the date zero, matching an unparseable source value.
	tbl := enrich.Apply(ds, nil)
	require.Equal(t, 6, tbl.Len())
	return tbl
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func names(totals []Total) []string {
	out := make([]string, len(totals))
	for i, t := range totals {
		out[i] = t.Name
	}
	return out
}

func TestCompute_AllSelection(t *testing.T) {
	tbl := fixture(t)
	v := Compute(tbl, All(), Options{})
	require.False(t, v.Empty)
	assert.Len(t, v.Rows, 6)
	assert.Empty(t, v.MissingProducts)

	assert.True(t, v.Summary.TotalSales.Equal(d("1935.89")), v.Summary.TotalSales.String())
	assert.Equal(t, 5, v.Summary.Orders)
	assert.Equal(t, 5, v.Summary.Products)
	assert.Equal(t, 6, v.Summary.Rows)

	require.Len(t, v.Monthly, 3)
	assert.Equal(t, []time.Month{time.January, time.April, time.December},
		[]time.Month{v.Monthly[0].Month, v.Monthly[1].Month, v.Monthly[2].Month})
	assert.Equal(t, "January", v.Monthly[0].Name)
	assert.True(t, v.Monthly[0].Sales.Equal(d("611.99")))
	assert.True(t, v.Monthly[2].Sales.Equal(d("600")))

	assert.Equal(t, []string{"Google Phone", "iPhone", "USB-C Charging Cable", "Wired Headphones", "AA Batteries (4-pack)"},
		names(v.TopProducts))
	assert.Len(t, v.TopProductsSecondary, 5)

	// Undated iPhone row counts for its city; undated and city-less rows are
	// left out of the aggregates keyed on those fields.
	assert.Equal(t, []string{"Boston (MA)", "Austin (TX)", "New York City (NY)"}, names(v.Cities))
	assert.True(t, v.Cities[0].Sales.Equal(d("1300")))

	hours := make([]int, len(v.Hours))
	for i, h := range v.Hours {
		hours[i] = h.Hour
	}
	assert.Equal(t, []int{8, 9, 21}, hours)

	require.Len(t, v.Stacked, 3)
	assert.Equal(t, CellTotal{Month: time.January, MonthName: "January", City: "Austin (TX)", Sales: v.Stacked[0].Sales}, v.Stacked[0])
	assert.Equal(t, "New York City (NY)", v.Stacked[1].City)
	assert.Equal(t, "Boston (MA)", v.Stacked[2].City)
}

func TestCompute_EmptyMonthSelectionExcludesAll(t *testing.T) {
	tbl := fixture(t)
	v := Compute(tbl, Selection{Months: Only[time.Month]()}, Options{})
	assert.True(t, v.Empty)
	assert.Equal(t, EmptyMessage, v.Message)
	assert.Empty(t, v.Rows)
	assert.Nil(t, v.Monthly)
	assert.Nil(t, v.TopProducts)
	assert.True(t, v.Summary.TotalSales.IsZero())
	assert.Len(t, v.MissingProducts, 5)
	assert.Len(t, v.Colors, 3)
}

func TestCompute_FilterCorrectness(t *testing.T) {
	tbl := fixture(t)
	sel := Selection{
		Months: Only(time.January, time.December),
		Cities: Only("Austin (TX)", "Boston (MA)"),
	}
	v := Compute(tbl, sel, Options{})
	require.False(t, v.Empty)
	for _, r := range v.Rows {
		assert.Contains(t, []time.Month{time.January, time.December}, r.Month)
		assert.Contains(t, []string{"Austin (TX)", "Boston (MA)"}, r.City)
	}
	assert.Len(t, v.Rows, 3)
	for _, r := range tbl.Rows {
		if !sel.Match(r) {
			inMonth := r.Month == time.January || r.Month == time.December
			inCity := r.City == "Austin (TX)" || r.City == "Boston (MA)"
			assert.False(t, inMonth && inCity, "excluded row %s matched every dimension", r.Product)
		}
	}
	assert.Equal(t, []string{"AA Batteries (4-pack)", "USB-C Charging Cable", "iPhone"}, v.MissingProducts)
}

func TestCompute_MissingValuesPassAnyOnly(t *testing.T) {
	tbl := fixture(t)

	v := Compute(tbl, Selection{Cities: Only("Boston (MA)")}, Options{})
	assert.Len(t, v.Rows, 2, "undated Boston row passes an unrestricted month dimension")

	v = Compute(tbl, Selection{Months: Only(time.April, time.January, time.December)}, Options{})
	for _, r := range v.Rows {
		assert.True(t, r.HasMonth())
	}
	assert.Len(t, v.Rows, 5)
}

func TestCompute_ProductFilterAndTopN(t *testing.T) {
	tbl := fixture(t)
	v := Compute(tbl, Selection{Products: Only("Google Phone", "Wired Headphones")}, Options{TopN: 1, SecondaryTopN: 1})
	require.False(t, v.Empty)
	assert.Equal(t, []string{"Google Phone"}, names(v.TopProducts))
	assert.Len(t, v.TopProductsSecondary, 1)
	assert.Equal(t, 2, v.Summary.Orders)
}

func TestCompute_TopNTieBreaksByName(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Record{
		row("", "Zeta", "1", "5", "", ""),
		row("", "Alpha", "1", "5", "", ""),
		row("", "Mid", "1", "5", "", ""),
	}}
	v := Compute(enrich.Apply(ds, nil), All(), Options{TopN: 2})
	assert.Equal(t, []string{"Alpha", "Mid"}, names(v.TopProducts))
	assert.Equal(t, 3, v.Summary.Orders, "row count without an order id column")
	assert.Nil(t, v.Monthly)
	assert.Nil(t, v.Hours)
	assert.Empty(t, v.Cities)
}

func TestCompute_MonthOrderIgnoresFirstOccurrence(t *testing.T) {
	ds := &sales.Dataset{Records: []sales.Record{
		row("1", "A", "1", "1", "12/01/19 10:00", ""),
		row("2", "A", "1", "1", "03/01/19 10:00", ""),
		row("3", "A", "1", "1", "02/01/19 10:00", ""),
		row("4", "A", "1", "1", "09/01/19 10:00", ""),
	}}
	v := Compute(enrich.Apply(ds, nil), All(), Options{})
	got := make([]string, len(v.Monthly))
	for i, m := range v.Monthly {
		got[i] = m.Name
	}
	assert.Equal(t, []string{"February", "March", "September", "December"}, got)
}

func TestMissingProductsCaseInsensitive(t *testing.T) {
	tbl := &sales.Table{
		Products: []string{"Google Phone", "iPhone"},
	}
	rows := []sales.Enriched{{Record: sales.Record{Product: " google phone "}}}
	assert.Equal(t, []string{"iPhone"}, missingProducts(tbl, rows))
}

func TestColorsStableAcrossSelections(t *testing.T) {
	tbl := fixture(t)
	a := Compute(tbl, All(), Options{})
	b := Compute(tbl, Selection{Cities: Only("Boston (MA)")}, Options{})
	assert.Equal(t, a.Colors, b.Colors)
	assert.Equal(t, tbl.Colors, b.Colors)
}

func TestParseMonths(t *testing.T) {
	c, err := ParseMonths([]string{"jan", "April", "12", " "})
	require.NoError(t, err)
	assert.ElementsMatch(t, []time.Month{time.January, time.April, time.December}, c.Values())
	assert.False(t, c.IsAny())

	c, err = ParseMonths([]string{""})
	require.NoError(t, err)
	assert.False(t, c.Allows(time.March, true))

	_, err = ParseMonths([]string{"Smarch"})
	assert.Error(t, err)

	assert.True(t, Any[time.Month]().Allows(0, false))
}

func TestMarkdown(t *testing.T) {
	tbl := fixture(t)
	out := Compute(tbl, All(), Options{}).Markdown(2)
	for _, want := range []string{
		"[SUMMARY]", "Total sales: $", "[MONTHLY SALES]", "- January: $611.99",
		"[TOP PRODUCTS]", "1. Google Phone: $", "[SALES BY HOUR]", "- 08:00: $23.90",
		"[SALES BY CITY PER MONTH]", "[PREVIEW]", "| USB-C Charging Cable | 2 | 11.95 |",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "[EXCLUDED PRODUCTS]")
	assert.Equal(t, 2, strings.Count(out, "\n| ")-1, "header plus two preview rows")

	empty := Compute(tbl, Selection{Products: Only[string]()}, Options{}).Markdown(5)
	assert.Contains(t, empty, "⚠ "+EmptyMessage)
	assert.Contains(t, empty, "[EXCLUDED PRODUCTS]")
	assert.NotContains(t, empty, "[MONTHLY SALES]")
	assert.NotContains(t, empty, "[PREVIEW]")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$23.90", Money(d("23.9")))
	assert.Equal(t, "$0.00", Money(decimal.Zero))
}
