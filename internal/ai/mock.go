package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/salespulse/backend/internal/utils"
)

// MockAssistant produces a deterministic markdown-flavored narrative from a
// hash of the prompt, so the full pipeline works offline and in tests.
type MockAssistant struct {
	ModelVersion string
}

var mockFocusAreas = []string{
	"follow-up speed on fresh enquiries",
	"quote turnaround for long-haul destinations",
	"handoff quality between consultants and specialists",
	"repeat-client outreach cadence",
}

var mockActions = []string{
	"Schedule passthrough reviews twice a week",
	"Pair junior agents with the strongest destination performer",
	"Tighten the quote follow-up window to 48 hours",
	"Revisit pricing on the weakest destination before next quarter",
	"Shift outreach toward the strongest booking weekday",
}

func (m MockAssistant) Ask(ctx context.Context, prompt string, history []ChatMessage) (string, error) {
	// reduce in uint64; converting the hash to int first can go negative
	h := utils.HashStringToUint64(prompt)

	focus := mockFocusAreas[h%uint64(len(mockFocusAreas))]
	first := mockActions[(h/7)%uint64(len(mockActions))]
	second := mockActions[(h/13)%uint64(len(mockActions))]
	if second == first {
		second = mockActions[(h/13+1)%uint64(len(mockActions))]
	}

	var b strings.Builder
	b.WriteString("**Overview**\n")
	fmt.Fprintf(&b, "The period's funnel is broadly healthy, with the clearest leverage in %s.\n\n", focus)
	b.WriteString("**What stands out**\n")
	b.WriteString("- Conversion is concentrated in a small set of destinations; the tail underperforms the department baseline.\n")
	b.WriteString("- Agent results track closely with volume, which suggests process rather than talent gaps.\n\n")
	b.WriteString("**Suggested actions**\n")
	fmt.Fprintf(&b, "- %s.\n", first)
	fmt.Fprintf(&b, "- %s.\n", second)
	if m.ModelVersion != "" {
		fmt.Fprintf(&b, "\n_Generated by %s_\n", m.ModelVersion)
	}
	return b.String(), nil
}
