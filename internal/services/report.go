/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"sort"
	"strings"
	"time"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/goodsign/monday"
)

// AssembleInput is everything the report is built from.
type AssembleInput struct {
	Doc            domain.Doc
	Summary        string
	BlockingPoints string
	Conclusion     string
	Members        []*domain.Member
	Arena          *StoryArena
	Projects       []*domain.Project
	Active         []domain.Issue
	Ignored        []domain.Issue
	Skipped        []domain.SkippedIssue
	Start, End     time.Time
	Now            time.Time
}

// AssembleReport builds the final report. Sprint charge only counts stories
// placed on a board, through the project totals.
func AssembleReport(in AssembleInput) *domain.Report {
	stories := []*domain.Story{}
	if in.Arena != nil {
		stories = in.Arena.Stories()
	}
	SortStories(stories)

	total := 0.0
	for _, p := range in.Projects {
		total += p.Charge
	}

	AssignMemberTasks(in.Members, in.Active)

	projects := in.Projects
	if projects == nil {
		projects = []*domain.Project{}
	}
	ignored := in.Ignored
	if ignored == nil {
		ignored = []domain.Issue{}
	}
	skipped := in.Skipped
	if skipped == nil {
		skipped = []domain.SkippedIssue{}
	}

	return &domain.Report{
		Doc: in.Doc,
		ProgressReport: domain.ProgressReport{
			Summary:        in.Summary,
			BlockingPoints: in.BlockingPoints,
			Conclusion:     in.Conclusion,
			Members:        in.Members,
		},
		Stories:       stories,
		Projects:      projects,
		SprintCharge:  total,
		IgnoredIssues: ignored,
		Skipped:       skipped,
		Period:        FormatPeriod(in.Start, in.End),
		GeneratedAt:   in.Now,
	}
}

// AssignMemberTasks rebuilds each member's task list from the issue assignees.
func AssignMemberTasks(members []*domain.Member, issues []domain.Issue) {
	for _, m := range members {
		m.Tasks = []domain.MemberTask{}
		for _, issue := range issues {
			for _, a := range issue.Assignees {
				if a == m.Login {
					m.Tasks = append(m.Tasks, domain.MemberTask{Name: issue.Title, Done: issue.Closed()})
					break
				}
			}
		}
	}
}

// SortStories puts numbered stories first, in natural number order, then the
// unnumbered ones. Stories with equal numbers, and the unnumbered ones among
// themselves, are ordered by id.
func SortStories(stories []*domain.Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		a, b := stories[i], stories[j]
		switch {
		case a.Num != "" && b.Num == "":
			return true
		case a.Num == "" && b.Num != "":
			return false
		}
		if c := NaturalCompare(a.Num, b.Num); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})
}

// NaturalCompare compares strings with runs of digits compared by value, so
// "P - 2.9" sorts before "P - 2.10".
func NaturalCompare(a, b string) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		ca, cb := a[i], b[j]
		if isDigit(ca) && isDigit(cb) {
			si := i
			for i < len(a) && isDigit(a[i]) {
				i++
			}
			sj := j
			for j < len(b) && isDigit(b[j]) {
				j++
			}
			na := strings.TrimLeft(a[si:i], "0")
			nb := strings.TrimLeft(b[sj:j], "0")
			if len(na) != len(nb) {
				if len(na) < len(nb) {
					return -1
				}
				return 1
			}
			if c := strings.Compare(na, nb); c != 0 {
				return c
			}
			continue
		}
		if ca != cb {
			if ca < cb {
				return -1
			}
			return 1
		}
		i++
		j++
	}
	switch {
	case len(a)-i < len(b)-j:
		return -1
	case len(a)-i > len(b)-j:
		return 1
	}
	return 0
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// FormatPeriod renders the sprint period. The start year is only written when
// it differs from the end year.
func FormatPeriod(start, end time.Time) string {
	if start.IsZero() || end.IsZero() {
		return ""
	}
	layout := "2 January"
	if start.Year() != end.Year() {
		layout = "2 January 2006"
	}
	return monday.Format(start, layout, monday.LocaleFrFR) + " - " + monday.Format(end, "2 January 2006", monday.LocaleFrFR)
}
