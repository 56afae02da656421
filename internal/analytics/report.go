package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/salespulse/backend/internal/models"
	"github.com/salespulse/backend/internal/roster"
)

// BuildAgenda assembles the export-ready snapshot for one program filter and
// timeframe. It performs no I/O and always returns well-formed (possibly
// empty) lists so the document layer can render "no data" states.
func (e Engine) BuildAgenda(data models.RawData, program, token string, now time.Time, rosters roster.Rosters) models.MeetingAgendaData {
	filtered := filterProgram(data, program)

	region := e.RegionPerformance(filtered, MetricTP, token, now)
	pq := e.RegionPerformance(filtered, MetricPQ, token, now)
	hot := e.RegionPerformance(filtered, MetricHotPass, token, now)
	agents := e.AgentPerformance(filtered, token, now, rosters)

	topAgents := agents.Agents
	if len(topAgents) > 3 {
		topAgents = topAgents[:3]
	}

	totals := region.Totals
	totals.Quotes = pq.Totals.Quotes
	totals.HotPasses = hot.Totals.HotPasses

	return models.MeetingAgendaData{
		Program:         programLabel(program),
		Timeframe:       token,
		GeneratedAt:     now,
		Totals:          totals,
		TPRate:          region.OverallRate,
		PQRate:          pq.OverallRate,
		HotPassRate:     hot.OverallRate,
		TopRegions:      region.Top,
		BottomRegions:   region.Bottom,
		TopAgents:       topAgents,
		Recommendations: e.Recommendations(region),
		Timing:          e.Timing(filtered, simpleToken(token), now),
		Reasons:         e.NonConversionReasons(filtered, 8),
	}
}

// filterProgram narrows every batch to rows whose region column matches the
// chosen program. An empty or "all" program keeps everything.
func filterProgram(data models.RawData, program string) models.RawData {
	program = strings.TrimSpace(program)
	if program == "" || strings.EqualFold(program, "all") {
		return data
	}
	return models.RawData{
		Trips:        filterRowsByRegion(data.Trips, program),
		Quotes:       filterRowsByRegion(data.Quotes, program),
		Passthroughs: filterRowsByRegion(data.Passthroughs, program),
		HotPass:      filterRowsByRegion(data.HotPass, program),
		Bookings:     filterRowsByRegion(data.Bookings, program),
		NonConverted: filterRowsByRegion(data.NonConverted, program),
	}
}

func filterRowsByRegion(rows []models.Row, program string) []models.Row {
	loc := NewLocator(rows)
	col := loc.Find(regionPatterns...)
	if col == "" {
		// batch has no region column; keep it whole rather than lose it
		return rows
	}
	out := make([]models.Row, 0, len(rows))
	for _, row := range rows {
		if strings.EqualFold(strings.TrimSpace(row[col]), program) {
			out = append(out, row)
		}
	}
	return out
}

func programLabel(program string) string {
	program = strings.TrimSpace(program)
	if program == "" {
		return "all"
	}
	return program
}

// BuildPrompt renders the narrative prompt from a computed snapshot. The
// template is deterministic: same insights, same string, which also makes
// the assistant-side response cache effective.
func BuildPrompt(ins models.Insights) string {
	var b strings.Builder

	b.WriteString("You are a sales-performance analyst for a travel agency. ")
	b.WriteString("Write a concise narrative analysis of the following figures. ")
	b.WriteString("Use **bold** lines as section headings and \"- \" lines for bullet points.\n\n")

	fmt.Fprintf(&b, "Timeframe: %s\n", ins.Timeframe)
	fmt.Fprintf(&b, "Trips: %d, passthroughs: %d, quotes: %d\n", ins.Totals.Trips, ins.Totals.Passthroughs, ins.Totals.Quotes)
	fmt.Fprintf(&b, "Trip-to-passthrough rate: %.1f%%\n", ins.TPRate)
	fmt.Fprintf(&b, "Passthrough-to-quote rate: %.1f%%\n", ins.PQRate)

	if len(ins.TopRegions) > 0 {
		b.WriteString("\nTop destinations by conversion:\n")
		for _, r := range ins.TopRegions {
			fmt.Fprintf(&b, "- %s: %.1f%% (%d trips)\n", r.Key, r.Rate, r.Trips)
		}
	}

	if len(ins.TopAgents) > 0 {
		b.WriteString("\nTop agents:\n")
		for _, a := range ins.TopAgents {
			fmt.Fprintf(&b, "- %s: %.1f%% (%d trips", a.Key, a.Rate, a.Trips)
			if a.Team != "" {
				fmt.Fprintf(&b, ", team %s", a.Team)
			}
			b.WriteString(")\n")
		}
	}

	if ins.Timing.DataAvailable {
		b.WriteString("\nBooking timing:\n")
		if ins.Timing.BestDay != nil {
			fmt.Fprintf(&b, "- Strongest weekday: %s\n", *ins.Timing.BestDay)
		}
		if ins.Timing.HasTimeOfDay && ins.Timing.BestTime != nil {
			fmt.Fprintf(&b, "- Strongest time of day: %s\n", *ins.Timing.BestTime)
		}
		for _, d := range ins.Timing.ByWeekday {
			fmt.Fprintf(&b, "- %s: %d bookings (%.1f%%)\n", d.Label, d.Count, d.Percentage)
		}
	}

	if len(ins.Reasons) > 0 {
		b.WriteString("\nWhy leads did not convert:\n")
		for _, r := range ins.Reasons {
			fmt.Fprintf(&b, "- %s: %d (%.1f%%)\n", r.Label, r.Count, r.Percentage)
		}
	}

	b.WriteString("\nDiscuss the conversion funnel, the strongest and weakest areas, and two or three concrete actions for the next period.")
	return b.String()
}
