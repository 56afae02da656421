package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/salespulse/backend/internal/models"
	"github.com/salespulse/backend/internal/roster"
)

var weekdayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Timing breaks bookings down by weekday and time-of-day bucket. Bookings
// are preferred; quotes are the fallback when no bookings were uploaded.
// The simple timeframe vocabulary (week|month|quarter|ytd|all) applies here.
func (e Engine) Timing(data models.RawData, token string, now time.Time) models.TimingInsights {
	ins := models.TimingInsights{
		Timeframe:   token,
		ByWeekday:   []models.LabelCount{},
		ByTimeOfDay: []models.LabelCount{},
	}

	rows := data.Bookings
	if len(rows) == 0 {
		rows = data.Quotes
	}
	loc := NewLocator(rows)
	dateCol := loc.Find(datePatterns...)
	if len(rows) == 0 || dateCol == "" {
		return ins
	}

	w := ResolveSimple(token, now)
	dates := parseDates(rows, dateCol)
	kept := make([]*ParsedDate, 0, len(dates))
	for _, d := range dates {
		if d == nil || !w.Contains(d.Date) {
			continue
		}
		kept = append(kept, d)
	}
	if len(kept) == 0 {
		return ins
	}

	byDay := map[time.Weekday]int{}
	byBucket := map[string]int{}
	for _, d := range kept {
		byDay[d.Weekday]++
		byBucket[d.Bucket]++
	}

	total := len(kept)
	for _, wd := range weekdayOrder {
		ins.ByWeekday = append(ins.ByWeekday, models.LabelCount{
			Label:      wd.String(),
			Count:      byDay[wd],
			Percentage: rate(byDay[wd], total),
		})
	}
	ins.BestDay = bestLabel(ins.ByWeekday)

	ins.HasTimeOfDay = HasTimeOfDay(kept)
	if ins.HasTimeOfDay {
		for _, b := range timeBuckets {
			ins.ByTimeOfDay = append(ins.ByTimeOfDay, models.LabelCount{
				Label:      b.Label,
				Count:      byBucket[b.Label],
				Percentage: rate(byBucket[b.Label], total),
			})
		}
		ins.BestTime = bestLabel(ins.ByTimeOfDay)
	}
	ins.DataAvailable = true
	return ins
}

// bestLabel returns the label with the highest count, or nil when every
// count is zero. Scalars may be nil; list results never are.
func bestLabel(counts []models.LabelCount) *string {
	best := -1
	var label string
	for _, c := range counts {
		if c.Count > best {
			best = c.Count
			label = c.Label
		}
	}
	if best <= 0 {
		return nil
	}
	return &label
}

// NonConversionReasons ranks the stated reasons leads did not convert.
func (e Engine) NonConversionReasons(data models.RawData, limit int) []models.LabelCount {
	out := []models.LabelCount{}
	rows := data.NonConverted
	loc := NewLocator(rows)
	reasonCol := loc.Find(reasonPatterns...)
	if len(rows) == 0 || reasonCol == "" {
		return out
	}

	counts := map[string]int{}
	display := map[string]string{}
	var order []string
	total := 0
	for _, row := range rows {
		reason := strings.TrimSpace(row[reasonCol])
		if len([]rune(reason)) < 2 {
			continue
		}
		// reasons are free text; fold case so "Too expensive" and
		// "too expensive" land in one bucket
		key := strings.ToLower(reason)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
			display[key] = reason
		}
		counts[key]++
		total++
	}

	for _, key := range order {
		out = append(out, models.LabelCount{
			Label:      display[key],
			Count:      counts[key],
			Percentage: rate(counts[key], total),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// CollectInsights assembles the snapshot the narrative prompt is built from.
func (e Engine) CollectInsights(data models.RawData, token string, now time.Time, rosters roster.Rosters) models.Insights {
	region := e.RegionPerformance(data, MetricTP, token, now)
	pq := e.RegionPerformance(data, MetricPQ, token, now)
	agents := e.AgentPerformance(data, token, now, rosters)

	topAgents := agents.Agents
	if len(topAgents) > 3 {
		topAgents = topAgents[:3]
	}

	return models.Insights{
		Timeframe:  token,
		Totals:     region.Totals,
		TPRate:     region.OverallRate,
		PQRate:     pq.OverallRate,
		Timing:     e.Timing(data, simpleToken(token), now),
		Reasons:    e.NonConversionReasons(data, 8),
		TopRegions: region.Top,
		TopAgents:  topAgents,
	}
}

// simpleToken maps the full timeframe vocabulary onto the insights path's
// shorter one.
func simpleToken(token string) string {
	switch token {
	case "lastWeek":
		return "week"
	case "thisMonth", "lastMonth":
		return "month"
	case "thisQuarter", "lastQuarter":
		return "quarter"
	case "lastYear":
		return "ytd"
	default:
		return "all"
	}
}
