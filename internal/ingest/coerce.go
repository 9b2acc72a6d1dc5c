package ingest

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultDateLayouts are tried in order after any configured layouts. The
// first entry is the layout the sales exports are written in.
var DefaultDateLayouts = []string{
	"01/02/06 15:04",
	"1/2/06 15:04",
	"01/02/2006 15:04",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02",
	"1/2/2006",
	"1/2/06",
}

// parseNumber coerces text to a decimal. Anything unparseable is missing.
func parseNumber(s string) decimal.NullDecimal {
	raw := strings.ReplaceAll(s, "\u00a0", " ")
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}

// parseDate tries each layout in turn and reports whether one matched.
func parseDate(s string, layouts []string) (time.Time, bool) {
	v := strings.TrimSpace(s)
	if v == "" {
		return time.Time{}, false
	}
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func multiply(a, b decimal.NullDecimal) decimal.NullDecimal {
	if !a.Valid || !b.Valid {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(a.Decimal.Mul(b.Decimal))
}
