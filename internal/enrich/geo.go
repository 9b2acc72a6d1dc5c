package enrich

import "strings"

// Strategy derives a city label from a purchase address. It reports false
// when the address does not have the shape the strategy understands.
type Strategy func(address string) (string, bool)

// Strategies are evaluated in order; the first success wins.
var Strategies = []Strategy{threePart, twoPart, rawAddress}

// CityLabel returns the display label for address, or "" when the address is
// empty. It never fails: unrecognized shapes fall back to the raw address.
func CityLabel(address string) string {
	if strings.TrimSpace(address) == "" {
		return ""
	}
	for _, s := range Strategies {
		if label, ok := s(address); ok {
			return label
		}
	}
	return ""
}

// threePart handles "street, city, ST zip".
func threePart(address string) (string, bool) {
	seg := strings.Split(address, ",")
	if len(seg) < 3 {
		return "", false
	}
	city := strings.TrimSpace(seg[1])
	state := firstToken(seg[2])
	if city == "" || state == "" {
		return "", false
	}
	return label(city, strings.ToUpper(state)), true
}

// twoPart handles "city, ST" and "street, city".
func twoPart(address string) (string, bool) {
	seg := strings.Split(address, ",")
	if len(seg) != 2 {
		return "", false
	}
	head := strings.TrimSpace(seg[0])
	tail := strings.TrimSpace(seg[1])
	if tok := firstToken(tail); head != "" && tok != "" && len(tok) <= 3 {
		return label(head, strings.ToUpper(tok)), true
	}
	if tail == "" {
		return "", false
	}
	return tail, true
}

func rawAddress(address string) (string, bool) {
	v := strings.TrimSpace(address)
	return v, v != ""
}

func firstToken(s string) string {
	f := strings.Fields(s)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func label(city, state string) string { return city + " (" + state + ")" }
