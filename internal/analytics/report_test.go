package analytics

import (
	"strings"
	"testing"

	"github.com/salespulse/backend/internal/models"
	"github.com/salespulse/backend/internal/roster"
)

func TestBuildAgendaEmptyInput(t *testing.T) {
	e := NewEngine()
	agenda := e.BuildAgenda(models.RawData{}, "", "all", testNow, roster.Rosters{})

	if agenda.Program != "all" {
		t.Fatalf("expected program label all, got %q", agenda.Program)
	}
	if agenda.TopRegions == nil || agenda.BottomRegions == nil || agenda.TopAgents == nil || agenda.Recommendations == nil {
		t.Fatalf("agenda lists must not be nil: %+v", agenda)
	}
	if agenda.Totals.Trips != 0 {
		t.Fatalf("expected zero totals, got %+v", agenda.Totals)
	}
}

func TestBuildAgendaPopulated(t *testing.T) {
	data := parisFixture()
	data.Bookings = []models.Row{bookingRow("2024-06-10 09:30:00")}
	data.NonConverted = []models.Row{{"Reason": "Too expensive"}}

	e := NewEngine()
	agenda := e.BuildAgenda(data, "all", "all", testNow, roster.Rosters{})

	if agenda.Totals.Trips != 12 || agenda.Totals.Passthroughs != 5 {
		t.Fatalf("unexpected totals: %+v", agenda.Totals)
	}
	if len(agenda.TopRegions) == 0 || agenda.TopRegions[0].Key != "Paris" {
		t.Fatalf("expected Paris on top, got %+v", agenda.TopRegions)
	}
	if len(agenda.TopAgents) == 0 || agenda.TopAgents[0].Key != "Alice" {
		t.Fatalf("expected Alice among top agents, got %+v", agenda.TopAgents)
	}
	if !agenda.Timing.DataAvailable {
		t.Fatalf("expected timing data in the agenda")
	}
	if len(agenda.Reasons) != 1 {
		t.Fatalf("expected one non-conversion reason, got %+v", agenda.Reasons)
	}
	if !agenda.GeneratedAt.Equal(testNow) {
		t.Fatalf("expected GeneratedAt %v, got %v", testNow, agenda.GeneratedAt)
	}
}

func TestBuildAgendaProgramFilter(t *testing.T) {
	e := NewEngine()
	agenda := e.BuildAgenda(parisFixture(), "Paris", "all", testNow, roster.Rosters{})

	if agenda.Program != "Paris" {
		t.Fatalf("expected program Paris, got %q", agenda.Program)
	}
	if agenda.Totals.Trips != 10 {
		t.Fatalf("expected only Paris trips, got %+v", agenda.Totals)
	}
	for _, r := range agenda.TopRegions {
		if r.Key != "Paris" {
			t.Fatalf("unexpected region after program filter: %+v", r)
		}
	}
}

func TestFilterProgramKeepsBatchesWithoutRegionColumn(t *testing.T) {
	data := models.RawData{
		Trips:        []models.Row{tripRow("2024-06-01", "Paris", "Alice", "")},
		NonConverted: []models.Row{{"Reason": "Too expensive"}},
	}
	filtered := filterProgram(data, "Paris")
	if len(filtered.NonConverted) != 1 {
		t.Fatalf("batch without a region column must be kept whole")
	}
}

func TestBuildPromptDeterministic(t *testing.T) {
	e := NewEngine()
	data := parisFixture()
	data.Bookings = []models.Row{bookingRow("2024-06-10 09:30:00")}

	ins := e.CollectInsights(data, "all", testNow, roster.Rosters{})
	a := BuildPrompt(ins)
	b := BuildPrompt(ins)
	if a != b {
		t.Fatalf("prompt must be deterministic for identical insights")
	}
}

func TestBuildPromptContent(t *testing.T) {
	e := NewEngine()
	data := parisFixture()
	data.NonConverted = []models.Row{{"Reason": "Too expensive"}}

	prompt := BuildPrompt(e.CollectInsights(data, "all", testNow, roster.Rosters{}))
	for _, want := range []string{
		"sales-performance analyst",
		"Timeframe: all",
		"Trips: 12",
		"- Paris: 40.0% (10 trips)",
		"Top agents:",
		"Why leads did not convert:",
		"- Too expensive: 1 (100.0%)",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestBuildPromptOmitsEmptySections(t *testing.T) {
	prompt := BuildPrompt(models.Insights{Timeframe: "all"})
	if strings.Contains(prompt, "Top destinations") || strings.Contains(prompt, "Booking timing") {
		t.Fatalf("empty insights should omit optional sections:\n%s", prompt)
	}
}
