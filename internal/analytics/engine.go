package analytics

import (
	"strings"
	"time"

	"github.com/salespulse/backend/internal/models"
	"github.com/salespulse/backend/internal/roster"
)

const (
	MetricTP      = "tp"      // passthroughs / trips
	MetricPQ      = "pq"      // quotes / passthroughs
	MetricHotPass = "hotpass" // hot passes / passthroughs
)

// Engine derives every dashboard aggregate. All methods are pure: results
// depend only on (rows, timeframe, now), and now is always injected.
type Engine struct {
	Policy Thresholds
}

func NewEngine() Engine {
	return Engine{Policy: DefaultThresholds()}
}

type metricSpec struct {
	name        string
	source      func(models.RawData) []models.Row
	hitPatterns []string
}

var metricSpecs = map[string]metricSpec{
	MetricTP: {
		name:        MetricTP,
		source:      func(d models.RawData) []models.Row { return d.Trips },
		hitPatterns: passPatterns,
	},
	MetricPQ: {
		name:        MetricPQ,
		source:      func(d models.RawData) []models.Row { return d.Passthroughs },
		hitPatterns: quotePatterns,
	},
	MetricHotPass: {
		name:        MetricHotPass,
		source:      func(d models.RawData) []models.Row { return d.Passthroughs },
		hitPatterns: hotPassPatterns,
	},
}

// bucket maps a generic group count onto the metric family's fields: the
// denominator lands in trips for T>P and in passthroughs for the
// passthrough-based families.
func (m metricSpec) bucket(c groupCount) models.AggregateBucket {
	b := models.AggregateBucket{Key: c.Key, Rate: c.Rate}
	switch m.name {
	case MetricPQ:
		b.Passthroughs = c.Denominator
		b.Quotes = c.Numerator
	case MetricHotPass:
		b.Passthroughs = c.Denominator
		b.HotPasses = c.Numerator
	default:
		b.Trips = c.Denominator
		b.Passthroughs = c.Numerator
	}
	return b
}

// totals maps the whole-window rollup, which covers sub-threshold groups too.
func (m metricSpec) totals(total groupCount) models.Totals {
	var t models.Totals
	switch m.name {
	case MetricPQ:
		t.Passthroughs = total.Denominator
		t.Quotes = total.Numerator
	case MetricHotPass:
		t.Passthroughs = total.Denominator
		t.HotPasses = total.Numerator
	default:
		t.Trips = total.Denominator
		t.Passthroughs = total.Numerator
	}
	return t
}

func overallRate(metric string, t models.Totals) float64 {
	switch metric {
	case MetricPQ:
		return rate(t.Quotes, t.Passthroughs)
	case MetricHotPass:
		return rate(t.HotPasses, t.Passthroughs)
	default:
		return rate(t.Passthroughs, t.Trips)
	}
}

func parseDates(rows []models.Row, col string) []*ParsedDate {
	if col == "" {
		return nil
	}
	out := make([]*ParsedDate, len(rows))
	for i, row := range rows {
		out[i] = ParseCellDate(row[col])
	}
	return out
}

// RegionPerformance is the department-level destination rollup for the
// chosen metric family. Unknown metrics fall back to T>P.
func (e Engine) RegionPerformance(data models.RawData, metric, token string, now time.Time) models.DepartmentPerformance {
	spec, ok := metricSpecs[metric]
	if !ok {
		spec = metricSpecs[MetricTP]
	}
	perf := models.DepartmentPerformance{
		Metric:    spec.name,
		Timeframe: token,
		Buckets:   []models.AggregateBucket{},
		Top:       []models.AggregateBucket{},
		Bottom:    []models.AggregateBucket{},
	}

	rows := spec.source(data)
	loc := NewLocator(rows)
	regionCol := loc.Find(regionPatterns...)
	hitCol := loc.Find(spec.hitPatterns...)
	if len(rows) == 0 || regionCol == "" || hitCol == "" {
		return perf
	}
	w := ResolveTimeframe(token, now)
	if loc.Find(datePatterns...) == "" && w.Bounded() {
		// no date column means no row can satisfy a bounded window
		return perf
	}

	counts, total := e.regionCounts(rows, loc, regionCol, hitCol, e.Policy.DepartmentMinSample, w)
	for _, c := range counts {
		perf.Buckets = append(perf.Buckets, spec.bucket(c))
	}
	perf.Totals = spec.totals(total)
	perf.OverallRate = overallRate(spec.name, perf.Totals)
	perf.Top = topRanked(perf.Buckets, e.Policy.TopN)
	perf.Bottom = bottomRanked(perf.Buckets, e.Policy.TopN)
	perf.DataAvailable = true
	return perf
}

func (e Engine) regionCounts(rows []models.Row, loc *Locator, regionCol, hitCol string, minSample int, w Window) ([]groupCount, groupCount) {
	dates := parseDates(rows, loc.Find(datePatterns...))
	g := grouping{
		Window:    w,
		MinSample: minSample,
		KeyOf:     func(i int) string { return rows[i][regionCol] },
		HitOf:     func(i int) bool { return affirmative(rows[i][hitCol]) },
	}
	if dates != nil {
		g.DateOf = func(i int) *ParsedDate { return dates[i] }
	}
	return aggregate(len(rows), g)
}

// AgentPerformance groups trips by their effective owner (forward-filled)
// and partitions agents around the department rate. Per-agent region
// breakdowns use the laxer agent sample threshold.
func (e Engine) AgentPerformance(data models.RawData, token string, now time.Time, rosters roster.Rosters) models.AgentPerformance {
	perf := models.AgentPerformance{
		Timeframe:    token,
		Agents:       []models.AgentBucket{},
		AboveAverage: []models.AgentBucket{},
		BelowAverage: []models.AgentBucket{},
	}

	rows := data.Trips
	loc := NewLocator(rows)
	ownerCol := loc.Find(ownerPatterns...)
	hitCol := loc.Find(passPatterns...)
	if len(rows) == 0 || ownerCol == "" || hitCol == "" {
		return perf
	}
	w := ResolveTimeframe(token, now)
	dates := parseDates(rows, loc.Find(datePatterns...))
	if dates == nil && w.Bounded() {
		return perf
	}

	owners := ForwardFillOwners(rows, ownerCol)
	regionCol := loc.Find(regionPatterns...)

	g := grouping{
		Window:    w,
		MinSample: e.Policy.AgentMinSample,
		KeyOf:     func(i int) string { return owners[i] },
		HitOf:     func(i int) bool { return affirmative(rows[i][hitCol]) },
	}
	if dates != nil {
		g.DateOf = func(i int) *ParsedDate { return dates[i] }
	}
	counts, total := aggregate(len(rows), g)
	spec := metricSpecs[MetricTP]

	perf.Totals = spec.totals(total)
	perf.OverallRate = overallRate(MetricTP, perf.Totals)

	for _, c := range counts {
		agent := models.AgentBucket{
			AggregateBucket: spec.bucket(c),
			Team:            rosters.TeamOf(c.Key),
			Senior:          rosters.IsSenior(c.Key),
			Deviation:       c.Rate - perf.OverallRate,
			Regions:         []models.AggregateBucket{},
		}
		if regionCol != "" {
			agent.Regions = e.agentRegions(rows, owners, dates, c.Key, regionCol, hitCol, w)
		}
		perf.Agents = append(perf.Agents, agent)
		if agent.Deviation >= 0 {
			perf.AboveAverage = append(perf.AboveAverage, agent)
		} else {
			perf.BelowAverage = append(perf.BelowAverage, agent)
		}
	}
	perf.DataAvailable = true
	return perf
}

func (e Engine) agentRegions(rows []models.Row, owners []string, dates []*ParsedDate, agent, regionCol, hitCol string, w Window) []models.AggregateBucket {
	g := grouping{
		Window:    w,
		MinSample: e.Policy.AgentMinSample,
		KeyOf: func(i int) string {
			if !strings.EqualFold(strings.TrimSpace(owners[i]), agent) {
				return ""
			}
			return rows[i][regionCol]
		},
		HitOf: func(i int) bool { return affirmative(rows[i][hitCol]) },
	}
	if dates != nil {
		g.DateOf = func(i int) *ParsedDate { return dates[i] }
	}
	counts, _ := aggregate(len(rows), g)
	out := make([]models.AggregateBucket, 0, len(counts))
	for _, c := range counts {
		out = append(out, metricSpecs[MetricTP].bucket(c))
	}
	return out
}

// SegmentPerformance groups trips by the two categorical client dimensions:
// repeat vs new, and B2B vs B2C.
func (e Engine) SegmentPerformance(data models.RawData, token string, now time.Time) models.SegmentPerformance {
	perf := models.SegmentPerformance{
		Timeframe:  token,
		ClientType: []models.AggregateBucket{},
		Channel:    []models.AggregateBucket{},
	}

	rows := data.Trips
	loc := NewLocator(rows)
	hitCol := loc.Find(passPatterns...)
	if len(rows) == 0 || hitCol == "" {
		return perf
	}

	dates := parseDates(rows, loc.Find(datePatterns...))
	w := ResolveTimeframe(token, now)
	if dates == nil && w.Bounded() {
		return perf
	}

	if clientCol := loc.Find(clientPatterns...); clientCol != "" {
		perf.ClientType = e.segmentBuckets(rows, dates, hitCol, w, func(i int) string {
			return classifyClientType(rows[i][clientCol])
		})
		perf.DataAvailable = true
	}
	if channelCol := loc.Find(channelPatterns...); channelCol != "" {
		perf.Channel = e.segmentBuckets(rows, dates, hitCol, w, func(i int) string {
			return classifyChannel(rows[i][channelCol])
		})
		perf.DataAvailable = true
	}
	return perf
}

func (e Engine) segmentBuckets(rows []models.Row, dates []*ParsedDate, hitCol string, w Window, keyOf func(i int) string) []models.AggregateBucket {
	g := grouping{
		Window:    w,
		MinSample: e.Policy.SegmentMinSample,
		KeyOf:     keyOf,
		HitOf:     func(i int) bool { return affirmative(rows[i][hitCol]) },
	}
	if dates != nil {
		g.DateOf = func(i int) *ParsedDate { return dates[i] }
	}
	counts, _ := aggregate(len(rows), g)
	out := make([]models.AggregateBucket, 0, len(counts))
	for _, c := range counts {
		out = append(out, metricSpecs[MetricTP].bucket(c))
	}
	return out
}

func classifyClientType(v string) string {
	l := strings.ToLower(strings.TrimSpace(v))
	if l == "" {
		return ""
	}
	if strings.Contains(l, "repeat") || strings.Contains(l, "return") || l == "yes" || l == "y" {
		return "Repeat"
	}
	return "New"
}

func classifyChannel(v string) string {
	l := strings.ToLower(strings.TrimSpace(v))
	if l == "" {
		return ""
	}
	if strings.Contains(l, "b2b") || strings.Contains(l, "business") || strings.Contains(l, "corporate") {
		return "B2B"
	}
	return "B2C"
}

// PeriodTrend recomputes the destination rollup for each of the trailing
// calendar months anchored to now, oldest first.
func (e Engine) PeriodTrend(data models.RawData, months int, now time.Time) models.PeriodTrend {
	if months <= 0 {
		months = 6
	}
	trend := models.PeriodTrend{
		Periods:     []string{},
		TopByPeriod: map[string][]models.AggregateBucket{},
		Points:      []models.ChartPoint{},
	}

	rows := data.Trips
	loc := NewLocator(rows)
	regionCol := loc.Find(regionPatterns...)
	hitCol := loc.Find(passPatterns...)
	if len(rows) == 0 || regionCol == "" || hitCol == "" || loc.Find(datePatterns...) == "" {
		return trend
	}

	spec := metricSpecs[MetricTP]
	for k := months - 1; k >= 0; k-- {
		start := startOfMonth(now).AddDate(0, -k, 0)
		end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
		w := Window{Start: &start, End: &end}
		label := monthLabel(start)
		trend.Periods = append(trend.Periods, label)

		counts, _ := e.regionCounts(rows, loc, regionCol, hitCol, e.Policy.DepartmentMinSample, w)
		buckets := make([]models.AggregateBucket, 0, len(counts))
		for _, c := range counts {
			b := spec.bucket(c)
			buckets = append(buckets, b)
			trend.Points = append(trend.Points, models.ChartPoint{
				Period: label,
				Key:    b.Key,
				Rate:   b.Rate,
				Trips:  b.Trips,
			})
		}
		trend.TopByPeriod[label] = topRanked(buckets, e.Policy.TopN)
	}
	trend.DataAvailable = true
	return trend
}
