package analytics

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// ParsedDate is a normalized calendar timestamp derived from one cell.
type ParsedDate struct {
	Date    time.Time
	Weekday time.Weekday
	Hour    int
	Minute  int
	Bucket  string
}

// Spreadsheet serial dates count days from 1899-12-30; the fractional part
// encodes time of day.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
	"2/1/2006",
	"01/02/2006",
	"02.01.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// ParseCellDate parses a cell that may be a spreadsheet serial number or a
// date string. Returns nil when the cell is unparseable; callers drop such
// rows from date-dependent aggregates rather than failing the computation.
func ParseCellDate(value string) *ParsedDate {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil
	}

	if f, err := strconv.ParseFloat(v, 64); err == nil {
		if f <= 1000 || f >= 100000 {
			return nil
		}
		secs := math.Round(f * 86400)
		t := serialEpoch.Add(time.Duration(secs) * time.Second)
		return fromTime(t)
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return fromTime(t)
		}
	}
	return nil
}

func fromTime(t time.Time) *ParsedDate {
	return &ParsedDate{
		Date:    t,
		Weekday: t.Weekday(),
		Hour:    t.Hour(),
		Minute:  t.Minute(),
		Bucket:  TimeBucketFor(t.Hour()),
	}
}

type timeBucket struct {
	Label string
	Start int // inclusive hour
	End   int // exclusive hour
}

// Six fixed buckets covering the day; the last one wraps midnight.
var timeBuckets = []timeBucket{
	{"Early Morning", 6, 9},
	{"Morning", 9, 12},
	{"Afternoon", 12, 15},
	{"Late Afternoon", 15, 18},
	{"Evening", 18, 21},
	{"Night", 21, 6},
}

func TimeBucketFor(hour int) string {
	for _, b := range timeBuckets {
		if b.Start < b.End {
			if hour >= b.Start && hour < b.End {
				return b.Label
			}
		} else if hour >= b.Start || hour < b.End {
			return b.Label
		}
	}
	return ""
}

// HasTimeOfDay reports whether a batch carries genuine timestamps. Date-only
// cells default to midnight, so a batch where every parsed time is exactly
// 00:00 must not contribute to time-of-day breakdowns.
func HasTimeOfDay(parsed []*ParsedDate) bool {
	for _, p := range parsed {
		if p == nil {
			continue
		}
		if p.Hour != 0 || p.Minute != 0 {
			return true
		}
	}
	return false
}
