package analytics

import "time"

// Window is a resolved date range. A nil Start or End means unbounded on
// that side; the zero Window matches everything.
type Window struct {
	Start *time.Time
	End   *time.Time
}

func (w Window) Contains(t time.Time) bool {
	if w.Start != nil && t.Before(*w.Start) {
		return false
	}
	if w.End != nil && t.After(*w.End) {
		return false
	}
	return true
}

func (w Window) Bounded() bool {
	return w.Start != nil || w.End != nil
}

// ResolveTimeframe converts a named timeframe token into a concrete window
// anchored to now. Unknown tokens fail closed to "no filter", the same
// behavior as "all"; callers that care should validate the token upstream.
func ResolveTimeframe(token string, now time.Time) Window {
	switch token {
	case "lastWeek":
		start := now.AddDate(0, 0, -7)
		return Window{Start: &start, End: &now}
	case "thisMonth":
		start := startOfMonth(now)
		return Window{Start: &start, End: &now}
	case "lastMonth":
		start := startOfMonth(now).AddDate(0, -1, 0)
		end := startOfMonth(now).Add(-time.Nanosecond)
		return Window{Start: &start, End: &end}
	case "thisQuarter":
		start := startOfQuarter(now)
		return Window{Start: &start, End: &now}
	case "lastQuarter":
		start := startOfQuarter(now).AddDate(0, -3, 0)
		end := startOfQuarter(now).Add(-time.Nanosecond)
		return Window{Start: &start, End: &end}
	case "lastYear":
		start := time.Date(now.Year()-1, time.January, 1, 0, 0, 0, 0, now.Location())
		end := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()).Add(-time.Nanosecond)
		return Window{Start: &start, End: &end}
	default: // "all" and anything unrecognized
		return Window{}
	}
}

// ResolveSimple handles the shorter vocabulary used by the insights path.
// Windows are open-ended toward now: only a start boundary is set.
func ResolveSimple(token string, now time.Time) Window {
	switch token {
	case "week":
		start := now.AddDate(0, 0, -7)
		return Window{Start: &start}
	case "month":
		start := startOfMonth(now)
		return Window{Start: &start}
	case "quarter":
		start := startOfQuarter(now)
		return Window{Start: &start}
	case "ytd":
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		return Window{Start: &start}
	default:
		return Window{}
	}
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfQuarter(t time.Time) time.Time {
	q := (int(t.Month()) - 1) / 3
	return time.Date(t.Year(), time.Month(q*3+1), 1, 0, 0, 0, 0, t.Location())
}

// monthLabel is the period label used by trailing-month trends.
func monthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}
