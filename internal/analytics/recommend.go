package analytics

import (
	"fmt"
	"sort"
	"strings"

	"github.com/salespulse/backend/internal/models"
)

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var priorityRank = map[string]int{
	PriorityHigh:   0,
	PriorityMedium: 1,
	PriorityLow:    2,
}

// Recommendations scores every bucket running below the department average.
// Larger gaps on larger volumes rank higher; potential gain estimates the
// extra conversions if the bucket were lifted to the baseline.
func (e Engine) Recommendations(perf models.DepartmentPerformance) []models.Recommendation {
	out := []models.Recommendation{}
	for _, b := range perf.Buckets {
		if b.Rate >= perf.OverallRate {
			continue
		}
		out = append(out, e.scoreBucket(b, perf.Metric, perf.OverallRate))
	}
	sortRecommendations(out)
	return out
}

// AgentRecommendations compares an agent's region buckets against the
// matching department buckets. Regions the department rollup dropped for
// insufficient sample have no baseline and are skipped.
func (e Engine) AgentRecommendations(agentRegions []models.AggregateBucket, dept models.DepartmentPerformance) []models.Recommendation {
	baseline := map[string]models.AggregateBucket{}
	for _, b := range dept.Buckets {
		baseline[strings.ToLower(b.Key)] = b
	}

	out := []models.Recommendation{}
	for _, b := range agentRegions {
		d, ok := baseline[strings.ToLower(b.Key)]
		if !ok || b.Rate >= d.Rate {
			continue
		}
		out = append(out, e.scoreBucket(b, dept.Metric, d.Rate))
	}
	sortRecommendations(out)
	return out
}

func (e Engine) scoreBucket(b models.AggregateBucket, metric string, baselineRate float64) models.Recommendation {
	volume := bucketDenominator(b, metric)
	deviation := b.Rate - baselineRate
	gap := -deviation

	priority := PriorityLow
	switch {
	case gap >= e.Policy.HighDeviation && volume >= e.Policy.HighVolume:
		priority = PriorityHigh
	case gap >= e.Policy.MediumDeviation:
		priority = PriorityMedium
	}

	return models.Recommendation{
		Key:            b.Key,
		Rate:           b.Rate,
		DepartmentRate: baselineRate,
		Deviation:      deviation,
		Trips:          volume,
		Priority:       priority,
		Reason: fmt.Sprintf("%s converts at %.1f%%, %.1f points below the %.1f%% baseline across %d %s",
			b.Key, b.Rate, gap, baselineRate, volume, volumeNoun(metric)),
		PotentialGain: float64(volume) * gap / 100,
	}
}

func bucketDenominator(b models.AggregateBucket, metric string) int {
	switch metric {
	case MetricPQ, MetricHotPass:
		return b.Passthroughs
	default:
		return b.Trips
	}
}

func volumeNoun(metric string) string {
	switch metric {
	case MetricPQ, MetricHotPass:
		return "passthroughs"
	default:
		return "trips"
	}
}

func sortRecommendations(recs []models.Recommendation) {
	sort.SliceStable(recs, func(i, j int) bool {
		if priorityRank[recs[i].Priority] != priorityRank[recs[j].Priority] {
			return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
		}
		return recs[i].PotentialGain > recs[j].PotentialGain
	})
}
