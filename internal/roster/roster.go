// Package roster holds the team and seniority lists supplied alongside a
// dataset. Membership checks are case-insensitive with trimming because
// export owner cells and roster files rarely agree on capitalization.
package roster

import (
	"sort"
	"strings"
)

type Rosters struct {
	Teams        map[string][]string `json:"teams,omitempty"`
	SeniorAgents []string            `json:"senior_agents,omitempty"`
}

func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TeamOf returns the team an agent belongs to, or "" when the agent is not
// on any roster.
func (r Rosters) TeamOf(agent string) string {
	want := Normalize(agent)
	if want == "" {
		return ""
	}
	teams := make([]string, 0, len(r.Teams))
	for team := range r.Teams {
		teams = append(teams, team)
	}
	// sorted so an agent listed on two teams resolves the same way every call
	sort.Strings(teams)
	for _, team := range teams {
		for _, m := range r.Teams[team] {
			if Normalize(m) == want {
				return team
			}
		}
	}
	return ""
}

func (r Rosters) IsSenior(agent string) bool {
	want := Normalize(agent)
	if want == "" {
		return false
	}
	for _, m := range r.SeniorAgents {
		if Normalize(m) == want {
			return true
		}
	}
	return false
}
