package analytics

import (
	"sort"
	"strings"

	"github.com/salespulse/backend/internal/models"
)

// Thresholds is tunable aggregation and scoring policy. The defaults
// preserve the relative ordering behavior the dashboards rely on; absolute
// values are configurable rather than contractual.
type Thresholds struct {
	DepartmentMinSample int
	AgentMinSample      int
	SegmentMinSample    int
	HighDeviation       float64
	MediumDeviation     float64
	HighVolume          int
	TopN                int
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DepartmentMinSample: 3,
		AgentMinSample:      2,
		SegmentMinSample:    3,
		HighDeviation:       15,
		MediumDeviation:     7,
		HighVolume:          20,
		TopN:                5,
	}
}

// grouping parametrizes one aggregation pass: which window to keep, how to
// key a row, what counts as a conversion, and the minimum sample size.
// Accessors are index-based so callers can feed derived columns (for
// example forward-filled owners) without copying rows.
type grouping struct {
	Window    Window
	MinSample int
	KeyOf     func(i int) string
	HitOf     func(i int) bool
	DateOf    func(i int) *ParsedDate // nil func: batch has no date column
}

type groupCount struct {
	Key         string
	Denominator int
	Numerator   int
	Rate        float64
}

// aggregate is the single grouping routine behind every dimension family.
// Rows without a parseable date are excluded from every rate computation so
// small windows and "all" agree on denominators. When the batch has no date
// column at all, only unbounded windows see the rows.
//
// The second return value rolls up every qualified row. The min-sample
// threshold gates ranked bucket inclusion only; baselines computed from the
// rollup must not shift when a thin group drops out of the ranking.
func aggregate(n int, g grouping) ([]groupCount, groupCount) {
	counts := map[string]*groupCount{}
	var order []string
	var total groupCount

	for i := 0; i < n; i++ {
		if g.DateOf != nil {
			d := g.DateOf(i)
			if d == nil || !g.Window.Contains(d.Date) {
				continue
			}
		} else if g.Window.Bounded() {
			continue
		}

		key := strings.TrimSpace(g.KeyOf(i))
		if len([]rune(key)) < 2 {
			// guards against stray punctuation acting as a dimension
			continue
		}
		hit := g.HitOf(i)

		total.Denominator++
		if hit {
			total.Numerator++
		}

		c, ok := counts[key]
		if !ok {
			c = &groupCount{Key: key}
			counts[key] = c
			order = append(order, key)
		}
		c.Denominator++
		if hit {
			c.Numerator++
		}
	}
	total.Rate = rate(total.Numerator, total.Denominator)

	out := make([]groupCount, 0, len(order))
	for _, key := range order {
		c := counts[key]
		if c.Denominator < g.MinSample || c.Denominator == 0 {
			continue
		}
		c.Rate = rate(c.Numerator, c.Denominator)
		out = append(out, *c)
	}

	// stable sort keeps insertion order on rate ties
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rate > out[j].Rate
	})
	return out, total
}

func rate(numerator, denominator int) float64 {
	if denominator == 0 {
		return 0
	}
	return float64(numerator) / float64(denominator) * 100
}

// topRanked returns the first n buckets of a rate-sorted list.
func topRanked(buckets []models.AggregateBucket, n int) []models.AggregateBucket {
	if n > len(buckets) {
		n = len(buckets)
	}
	out := make([]models.AggregateBucket, n)
	copy(out, buckets[:n])
	return out
}

// bottomRanked returns the last n buckets in ascending-rate order, worst
// first.
func bottomRanked(buckets []models.AggregateBucket, n int) []models.AggregateBucket {
	if n > len(buckets) {
		n = len(buckets)
	}
	out := make([]models.AggregateBucket, 0, n)
	for i := len(buckets) - 1; i >= len(buckets)-n; i-- {
		out = append(out, buckets[i])
	}
	return out
}
