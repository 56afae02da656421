package analytics

import (
	"sort"
	"strconv"
	"strings"

	"github.com/salespulse/backend/internal/models"
)

// FindColumn scans column names case-insensitively for each pattern in
// priority order and returns the first column containing a pattern. First
// match wins even when a later pattern would hit a closer column. Returns ""
// when nothing matches; callers treat that as "feature unavailable" and
// degrade to empty results.
func FindColumn(columns []string, patterns ...string) string {
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		for _, col := range columns {
			if strings.Contains(strings.ToLower(col), p) {
				return col
			}
		}
	}
	return ""
}

// Locator resolves semantic columns once per batch and caches the result so
// the per-row hot path never rescans headers.
type Locator struct {
	columns []string
	cache   map[string]string
}

func NewLocator(batch []models.Row) *Locator {
	l := &Locator{cache: map[string]string{}}
	if len(batch) == 0 {
		return l
	}
	for col := range batch[0] {
		l.columns = append(l.columns, col)
	}
	// map iteration order is random; sorted columns keep lookups stable
	sort.Strings(l.columns)
	return l
}

func (l *Locator) Find(patterns ...string) string {
	key := strings.Join(patterns, "|")
	if col, ok := l.cache[key]; ok {
		return col
	}
	col := FindColumn(l.columns, patterns...)
	l.cache[key] = col
	return col
}

// Semantic column patterns, in priority order. These cover the header
// variants seen across department export configurations.
var (
	datePatterns    = []string{"trip date", "date of trip", "created", "enquiry date", "date"}
	regionPatterns  = []string{"destination", "region", "country", "location", "program"}
	ownerPatterns   = []string{"owner", "agent", "consultant", "manager", "assigned"}
	reasonPatterns  = []string{"reason", "why not", "why", "comment"}
	passPatterns    = []string{"passthrough date", "pass date", "passed", "handoff", "passthrough"}
	quotePatterns   = []string{"quote date", "quote sent", "quoted", "quote"}
	hotPassPatterns = []string{"hot pass", "hot", "priority"}
	clientPatterns  = []string{"client type", "repeat", "returning", "segment"}
	channelPatterns = []string{"business type", "channel", "b2b"}
)

// ForwardFillOwners returns the effective owner for every row. Export
// formats leave the owner blank on continuation rows, so a blank (or purely
// numeric, which marks a subtotal line) cell inherits the last explicit
// owner seen while scanning top to bottom.
func ForwardFillOwners(rows []models.Row, ownerCol string) []string {
	owners := make([]string, len(rows))
	if ownerCol == "" {
		return owners
	}
	current := ""
	for i, row := range rows {
		v := strings.TrimSpace(row[ownerCol])
		if v != "" && !isNumeric(v) {
			current = v
		}
		owners[i] = current
	}
	return owners
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	return err == nil
}

// affirmative reports whether a companion cell marks the row as converted.
// Any non-empty value counts except explicit negatives and placeholders.
func affirmative(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	switch v {
	case "", "-", "—", "n", "no", "0", "false", "none", "n/a":
		return false
	}
	return true
}
