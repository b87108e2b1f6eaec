package cleaning

import "strings"

// UnknownLabel is the canonical category for recognized sentinel tokens.
// Downstream analysis treats it as neither a missing numeric nor a valid
// business category; quality metrics count it separately.
const UnknownLabel = "Unknown"

// Outcome tags the result of normalizing one categorical value.
type Outcome int

const (
	// OutcomeCanonical means the raw spelling mapped to a canonical label.
	OutcomeCanonical Outcome = iota
	// OutcomeUnknown means the raw value was a sentinel token.
	OutcomeUnknown
	// OutcomeUnmapped means a non-empty value had no mapping; it passes
	// through unchanged and is only counted, never invented.
	OutcomeUnmapped
)

// Result is the tagged outcome of one normalization.
type Result struct {
	Label   string
	Outcome Outcome
}

// sentinelTokens normalize to the single Unknown category.
var sentinelTokens = map[string]bool{
	"":        true,
	"???":     true,
	"n/a":     true,
	"na":      true,
	"nan":     true,
	"none":    true,
	"null":    true,
	"unknown": true,
	"-":       true,
}

// Mapping is a case-insensitive table from accepted raw spellings and
// abbreviations to one canonical label. Keys are stored lowercase; every
// canonical label must map to itself so normalization is idempotent.
type Mapping map[string]string

// NewMapping builds a mapping, lowering the keys and adding self-mappings
// for every canonical label.
func NewMapping(table map[string]string) Mapping {
	m := make(Mapping, len(table)*2)
	for raw, canonical := range table {
		m[foldKey(raw)] = canonical
	}
	for _, canonical := range table {
		key := strings.ToLower(canonical)
		if _, ok := m[key]; !ok {
			m[key] = canonical
		}
	}
	return m
}

func foldKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Normalize resolves one raw value to its tagged canonical form.
func (m Mapping) Normalize(raw string) Result {
	key := foldKey(raw)
	if sentinelTokens[key] {
		return Result{Label: UnknownLabel, Outcome: OutcomeUnknown}
	}
	if canonical, ok := m[key]; ok {
		return Result{Label: canonical, Outcome: OutcomeCanonical}
	}
	return Result{Label: strings.TrimSpace(raw), Outcome: OutcomeUnmapped}
}
