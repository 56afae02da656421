package roster

import "testing"

func TestTeamOf(t *testing.T) {
	r := Rosters{Teams: map[string][]string{
		"Europe":    {"Alice Smith", "bob"},
		"Americas":  {"Carol"},
		"Antarctic": {},
	}}

	cases := []struct {
		agent string
		want  string
	}{
		{"Alice Smith", "Europe"},
		{"  alice smith  ", "Europe"},
		{"BOB", "Europe"},
		{"Carol", "Americas"},
		{"Dave", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := r.TeamOf(tc.agent); got != tc.want {
			t.Fatalf("TeamOf(%q) = %q, want %q", tc.agent, got, tc.want)
		}
	}
}

func TestTeamOfDuplicateMembershipIsStable(t *testing.T) {
	r := Rosters{Teams: map[string][]string{
		"Zulu":  {"Alice"},
		"Alpha": {"Alice"},
	}}
	for i := 0; i < 10; i++ {
		if got := r.TeamOf("Alice"); got != "Alpha" {
			t.Fatalf("expected the first team in sorted order, got %q", got)
		}
	}
}

func TestIsSenior(t *testing.T) {
	r := Rosters{SeniorAgents: []string{"Alice Smith", " bob "}}
	if !r.IsSenior("alice smith") || !r.IsSenior("Bob") {
		t.Fatalf("seniority check must be case-insensitive and trimmed")
	}
	if r.IsSenior("Carol") || r.IsSenior("") {
		t.Fatalf("unexpected senior match")
	}
}

func TestEmptyRosters(t *testing.T) {
	var r Rosters
	if r.TeamOf("Alice") != "" || r.IsSenior("Alice") {
		t.Fatalf("zero-value rosters must match nothing")
	}
}
