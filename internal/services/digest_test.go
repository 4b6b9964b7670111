package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
)

func TestEscapeMarkdownV2(t *testing.T) {
	assert.Equal(t, `PLD \- v1\.2 \(draft\)\!`, escapeMarkdownV2("PLD - v1.2 (draft)!"))
}

func TestRenderDigest(t *testing.T) {
	r := &domain.Report{
		Doc:          domain.Doc{Title: "PLD_2024"},
		Period:       "2 janvier - 16 février 2024",
		Stories:      []*domain.Story{{ID: 1}, {ID: 2}},
		Projects:     []*domain.Project{{Name: "API"}},
		SprintCharge: 2.5,
		Skipped:      []domain.SkippedIssue{{Number: 4, Reason: "missing section: actor"}},
		ProgressReport: domain.ProgressReport{Members: []*domain.Member{
			{Name: "Alice", ChargeDone: 1.5, ChargeTotal: 2},
		}},
	}

	got := RenderDigest(r)

	assert.Contains(t, got, "*PLD\\_2024*\n")
	assert.Contains(t, got, "2 janvier \\- 16 février 2024\n")
	assert.Contains(t, got, "*Stories:* 2\n")
	assert.Contains(t, got, "*Projects:* 1\n")
	assert.Contains(t, got, "*Sprint charge:* 2\\.5\n")
	assert.Contains(t, got, "\\- \\#4 missing section: actor\n")
	assert.Contains(t, got, "\\- Alice: 1\\.5/2\n")
}

func TestRenderDigest_DefaultTitle(t *testing.T) {
	got := RenderDigest(&domain.Report{})
	assert.Contains(t, got, "*PLD*\n")
	assert.NotContains(t, got, "Skipped")
}
