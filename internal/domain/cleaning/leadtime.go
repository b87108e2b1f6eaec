package cleaning

import (
	"regexp"
	"strconv"
	"strings"
)

var leadTimeRange = regexp.MustCompile(`^(\d+)\s*[-a]\s*(\d+)`)

// ParseLeadTime converts free-text lead-time entries to days. Supplier
// extracts mix plain numbers with ranges ("25-30 días") and the odd
// "inmediato"; ranges resolve to their midpoint.
func ParseLeadTime(raw string) (float64, bool) {
	s := foldKey(raw)
	if s == "" || sentinelTokens[s] {
		return 0, false
	}
	if s == "inmediato" || s == "immediate" {
		return 1, true
	}
	if m := leadTimeRange.FindStringSubmatch(s); m != nil {
		lo, err1 := strconv.ParseFloat(m[1], 64)
		hi, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			return (lo + hi) / 2, true
		}
	}
	s = strings.TrimSuffix(strings.TrimSuffix(s, "días"), "dias")
	s = strings.TrimSpace(strings.TrimSuffix(s, "days"))
	if v, err := strconv.ParseFloat(s, 64); err == nil && v >= 0 {
		return v, true
	}
	return 0, false
}
