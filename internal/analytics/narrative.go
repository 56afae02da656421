package analytics

import (
	"strings"

	"github.com/salespulse/backend/internal/models"
)

const (
	BlockHeading   = "heading"
	BlockBullet    = "bullet"
	BlockParagraph = "paragraph"
	BlockBlank     = "blank"
)

// ClassifyNarrative splits assistant prose into tagged blocks using the
// informal convention the model is prompted with: "**...**" lines are
// headings, "- " lines are bullets, everything else is a paragraph.
func ClassifyNarrative(text string) []models.NarrativeBlock {
	blocks := []models.NarrativeBlock{}
	for _, line := range strings.Split(text, "\n") {
		t := strings.TrimSpace(line)
		switch {
		case t == "":
			blocks = append(blocks, models.NarrativeBlock{Kind: BlockBlank})
		case strings.HasPrefix(t, "**") && strings.HasSuffix(t, "**") && len(t) > 4:
			blocks = append(blocks, models.NarrativeBlock{
				Kind: BlockHeading,
				Text: strings.TrimSpace(strings.Trim(t, "*")),
			})
		case strings.HasPrefix(t, "- "):
			blocks = append(blocks, models.NarrativeBlock{
				Kind: BlockBullet,
				Text: strings.TrimSpace(strings.TrimPrefix(t, "- ")),
			})
		default:
			blocks = append(blocks, models.NarrativeBlock{Kind: BlockParagraph, Text: t})
		}
	}
	return blocks
}
