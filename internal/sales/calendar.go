package sales

import (
	"strconv"
	"strings"
	"time"
)

var monthOrder = []time.Month{
	time.January, time.February, time.March, time.April, time.May, time.June,
	time.July, time.August, time.September, time.October, time.November, time.December,
}

// Months returns the fixed month vocabulary, January through December.
func Months() []time.Month {
	out := make([]time.Month, len(monthOrder))
	copy(out, monthOrder)
	return out
}

// MonthName returns the full English name of m, or "" outside 1..12.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return m.String()
}

// ParseMonth accepts a full month name, a three-letter abbreviation or a
// month number, case-insensitively.
func ParseMonth(s string) (time.Month, bool) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n >= 1 && n <= 12 {
			return time.Month(n), true
		}
		return 0, false
	}
	for _, m := range monthOrder {
		name := strings.ToLower(m.String())
		if v == name || (len(v) == 3 && strings.HasPrefix(name, v)) {
			return m, true
		}
	}
	return 0, false
}
