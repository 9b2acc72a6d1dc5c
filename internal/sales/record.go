package sales

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Record is one consolidated sales row after ingestion. Product is always
// non-empty; every other field may be missing.
type Record struct {
	OrderID   string
	Product   string
	Quantity  decimal.NullDecimal
	PriceEach decimal.NullDecimal
	// Sales is Quantity*PriceEach, valid only when both operands are.
	Sales     decimal.NullDecimal
	OrderDate time.Time
	// HasDate is set when OrderDate was parsed; OrderDate is meaningless otherwise.
	HasDate bool
	Address string
	Source  string
}

// Enriched extends a Record with calendar and geography fields.
type Enriched struct {
	Record
	Month time.Month // 0 when OrderDate is missing
	Hour  int
	City  string // "" when no label could be derived
}

// HasMonth reports whether a calendar month was derived.
func (e Enriched) HasMonth() bool { return e.Month >= time.January && e.Month <= time.December }

// HasHour reports whether Hour carries a value.
func (e Enriched) HasHour() bool { return e.HasDate }

// MonthName returns the English month name or "" when missing.
func (e Enriched) MonthName() string { return MonthName(e.Month) }

// SourceError records a source file that could not be ingested.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// Dataset is the consolidated output of one ingestion pass.
type Dataset struct {
	ID         string
	Sources    []string
	Skipped    []*SourceError
	HasOrderID bool
	Records    []Record
	// Dropped counts rows removed for an empty or placeholder product,
	// including repeated header rows.
	Dropped int
}

// Table is the enriched, read-only dataset every view is computed from.
type Table struct {
	ID         string
	Sources    []string
	Skipped    []*SourceError
	HasOrderID bool
	Rows       []Enriched
	Months     []time.Month // present months in calendar order
	Cities     []string     // sorted distinct city labels
	Products   []string     // sorted distinct products
	Colors     map[string]string
}

// Len returns the number of enriched rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
