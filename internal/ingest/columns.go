package ingest

import "strings"

// Canonical column keys. Source headers are matched case-insensitively.
const (
	ColOrderID  = "order id"
	ColProduct  = "product"
	ColQuantity = "quantity ordered"
	ColPrice    = "price each"
	ColDate     = "order date"
	ColAddress  = "purchase address"
)

var canonicalColumns = map[string]struct{}{
	ColOrderID:  {},
	ColProduct:  {},
	ColQuantity: {},
	ColPrice:    {},
	ColDate:     {},
	ColAddress:  {},
}

// RawRecord is one untyped source row keyed by canonical column. Columns
// absent from the source file are absent from the map.
type RawRecord map[string]string

// Get returns the trimmed value of col and whether the column was present.
func (r RawRecord) Get(col string) (string, bool) {
	v, ok := r[col]
	if !ok {
		return "", false
	}
	return strings.TrimSpace(v), true
}

// CanonicalColumn maps a source header onto the canonical schema. It returns
// false for headers the pipeline does not use.
func CanonicalColumn(header string) (string, bool) {
	key := canonicalHeader(header)
	_, ok := canonicalColumns[key]
	return key, ok
}

func canonicalHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	return strings.Join(strings.Fields(h), " ")
}

var placeholderProducts = map[string]struct{}{
	"":     {},
	"nan":  {},
	"none": {},
	"n/a":  {},
	"na":   {},
}

// IsPlaceholder reports whether a product value stands in for "no value".
func IsPlaceholder(product string) bool {
	_, ok := placeholderProducts[strings.ToLower(strings.TrimSpace(product))]
	return ok
}
