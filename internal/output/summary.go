package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
)

func charge(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.DrawBorder = false
	return tbl
}

// Summary prints the stories and member loads of r as tables, then the
// skipped issues.
func Summary(w io.Writer, r *domain.Report) {
	title := color.New(color.Bold)
	title.Fprintf(w, "%s\n", r.Doc.Title)
	if r.Period != "" {
		fmt.Fprintf(w, "%s\n", r.Period)
	}
	fmt.Fprintln(w)

	stories := newTable()
	stories.AppendHeader(table.Row{"Num", "Story", "Charge", "Done", "Assignees"})
	for _, s := range r.Stories {
		done := ""
		if s.Done {
			done = "x"
		}
		stories.AppendRow(table.Row{s.Num, s.Name, charge(s.Charge), done, s.Assignees})
	}
	stories.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d stories", len(r.Stories)), charge(r.SprintCharge)})
	fmt.Fprintln(w, stories.Render())
	fmt.Fprintln(w)

	members := newTable()
	members.AppendHeader(table.Row{"Member", "Done", "Total", "Tasks"})
	for _, m := range r.ProgressReport.Members {
		members.AppendRow(table.Row{m.Name, charge(m.ChargeDone), charge(m.ChargeTotal), len(m.Tasks)})
	}
	fmt.Fprintln(w, members.Render())

	if len(r.IgnoredIssues) > 0 {
		color.New(color.FgCyan).Fprintf(w, "\n%d issue(s) ignored by label\n", len(r.IgnoredIssues))
	}
	if len(r.Skipped) > 0 {
		warn := color.New(color.FgYellow)
		warn.Fprintf(w, "\n%d issue(s) skipped:\n", len(r.Skipped))
		for _, sk := range r.Skipped {
			warn.Fprintf(w, "  - #%d %s: %s\n", sk.Number, sk.Title, sk.Reason)
		}
	}
}
