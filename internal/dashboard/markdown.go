package dashboard

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// Money formats d with thousands separators and two decimals.
func Money(d decimal.Decimal) string {
	return printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// Markdown renders the view as sectioned text. previewRows limits the
// filtered-row preview; 0 omits it.
func (v *View) Markdown(previewRows int) string {
	var b strings.Builder
	b.WriteString("[SUMMARY]\n")
	if v.DatasetID != "" {
		b.WriteString(fmt.Sprintf("Dataset: %s\n", v.DatasetID))
	}
	b.WriteString(fmt.Sprintf("Total sales: %s\n", Money(v.Summary.TotalSales)))
	b.WriteString(printer.Sprintf("Orders: %d\n", v.Summary.Orders))
	b.WriteString(printer.Sprintf("Products: %d\n", v.Summary.Products))
	b.WriteString(printer.Sprintf("Rows: %d\n", v.Summary.Rows))

	if v.Empty {
		b.WriteString("\n⚠ " + v.Message + "\n")
	} else {
		b.WriteString("\n[MONTHLY SALES]\n")
		for _, m := range v.Monthly {
			b.WriteString(fmt.Sprintf("- %s: %s\n", m.Name, Money(m.Sales)))
		}
		writeTotals(&b, "TOP PRODUCTS", v.TopProducts)
		writeTotals(&b, "TOP PRODUCTS (SHORT LIST)", v.TopProductsSecondary)
		writeTotals(&b, "SALES BY CITY", v.Cities)

		b.WriteString("\n[SALES BY HOUR]\n")
		for _, h := range v.Hours {
			b.WriteString(fmt.Sprintf("- %02d:00: %s\n", h.Hour, Money(h.Sales)))
		}

		b.WriteString("\n[SALES BY CITY PER MONTH]\n")
		for _, c := range v.Stacked {
			b.WriteString(fmt.Sprintf("- %s / %s: %s\n", c.MonthName, c.City, Money(c.Sales)))
		}
	}

	if len(v.MissingProducts) > 0 {
		b.WriteString("\n[EXCLUDED PRODUCTS]\n")
		b.WriteString(strings.Join(v.MissingProducts, ", "))
		b.WriteString("\n")
	}

	if previewRows > 0 && len(v.Rows) > 0 {
		b.WriteString("\n[PREVIEW]\n")
		b.WriteString("| Product | Quantity | Price | Order Date | City | Sales |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for i, r := range v.Rows {
			if i >= previewRows {
				break
			}
			date := ""
			if r.HasDate {
				date = r.OrderDate.Format("2006-01-02 15:04")
			}
			b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				cell(r.Product), nullable(r.Quantity), nullable(r.PriceEach),
				date, cell(r.City), nullable(r.Sales)))
		}
	}
	return b.String()
}

func writeTotals(b *strings.Builder, title string, totals []Total) {
	b.WriteString("\n[" + title + "]\n")
	for i, t := range totals {
		b.WriteString(fmt.Sprintf("%d. %s: %s\n", i+1, t.Name, Money(t.Sales)))
	}
}

func nullable(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func cell(s string) string { return strings.ReplaceAll(s, "|", "\\|") }
