package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
)

var markdownV2 = strings.NewReplacer(
	"_", "\\_", "*", "\\*", "[", "\\[", "]", "\\]", "(", "\\(", ")", "\\)",
	"~", "\\~", "`", "\\`", ">", "\\>", "#", "\\#", "+", "\\+", "-", "\\-",
	"=", "\\=", "|", "\\|", "{", "\\{", "}", "\\}", ".", "\\.", "!", "\\!",
)

func escapeMarkdownV2(s string) string { return markdownV2.Replace(s) }

func formatCharge(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// RenderDigest renders a short MarkdownV2 message announcing a generated report.
func RenderDigest(r *domain.Report) string {
	b := &strings.Builder{}
	title := r.Doc.Title
	if title == "" {
		title = "PLD"
	}
	fmt.Fprintf(b, "*%s*\n", escapeMarkdownV2(title))
	if r.Period != "" {
		fmt.Fprintf(b, "%s\n", escapeMarkdownV2(r.Period))
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "*Stories:* %d\n", len(r.Stories))
	fmt.Fprintf(b, "*Projects:* %d\n", len(r.Projects))
	fmt.Fprintf(b, "*Sprint charge:* %s\n", escapeMarkdownV2(formatCharge(r.SprintCharge)))
	if len(r.Skipped) > 0 {
		fmt.Fprintf(b, "*Skipped:* %d\n", len(r.Skipped))
		for _, sk := range r.Skipped {
			fmt.Fprintf(b, "\\- \\#%d %s\n", sk.Number, escapeMarkdownV2(sk.Reason))
		}
	}
	if len(r.ProgressReport.Members) > 0 {
		b.WriteString("\n*Members:*\n")
		for _, m := range r.ProgressReport.Members {
			fmt.Fprintf(b, "\\- %s: %s/%s\n", escapeMarkdownV2(m.Name),
				escapeMarkdownV2(formatCharge(m.ChargeDone)), escapeMarkdownV2(formatCharge(m.ChargeTotal)))
		}
	}
	return b.String()
}
