/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/rs/zerolog"
)

// taskGroups is an ordered label -> stories map, in first-seen label order.
type taskGroups struct {
	index  map[string]int
	labels []string
	groups [][]*domain.Story
}

func newTaskGroups() *taskGroups { return &taskGroups{index: map[string]int{}} }

func (g *taskGroups) add(label string, s *domain.Story) {
	i, ok := g.index[label]
	if !ok {
		i = len(g.labels)
		g.index[label] = i
		g.labels = append(g.labels, label)
		g.groups = append(g.groups, nil)
	}
	g.groups[i] = append(g.groups[i], s)
}

func (g *taskGroups) len() int { return len(g.labels) }

// cardIssueNumber extracts the issue number from the last segment of a card's content URL.
func cardIssueNumber(contentURL string) (int, bool) {
	if strings.TrimSpace(contentURL) == "" {
		return 0, false
	}
	p := contentURL
	if u, err := url.Parse(contentURL); err == nil && u.Path != "" {
		p = u.Path
	}
	n, err := strconv.Atoi(path.Base(strings.TrimRight(p, "/")))
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// resolveCards maps the cards of every column, in board order, to stories.
// Cards without a matching story are dropped, as are repeated cards.
func resolveCards(board domain.Board, arena *StoryArena) []*domain.Story {
	seen := map[int]struct{}{}
	var out []*domain.Story
	for _, col := range board.Columns {
		for _, card := range col.Cards {
			n, ok := cardIssueNumber(card.ContentURL)
			if !ok {
				continue
			}
			s, ok := arena.Get(n)
			if !ok {
				continue
			}
			if _, dup := seen[n]; dup {
				continue
			}
			seen[n] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

// StoryNumber formats the hierarchical number of a story inside a project.
func StoryNumber(project string, task, story int) string {
	return fmt.Sprintf("%s - %d.%d", project, task, story)
}

// AggregateProject groups the board's stories into tasks by first label and
// records their numbers in table. It returns nil when no story has a label.
// Stories are not modified; numbers are written by NumberingTable.Apply.
func AggregateProject(board domain.Board, arena *StoryArena, table *NumberingTable) *domain.Project {
	groups := newTaskGroups()
	for _, s := range resolveCards(board, arena) {
		if len(s.Labels) == 0 {
			continue
		}
		groups.add(s.Labels[0], s)
	}
	if groups.len() == 0 {
		return nil
	}

	project := &domain.Project{ID: board.ProjectID, Name: board.Name, Tasks: make([]*domain.Task, 0, groups.len())}
	for i, label := range groups.labels {
		task := &domain.Task{Name: label, Index: i + 1, Stories: groups.groups[i]}
		for j, s := range task.Stories {
			table.Propose(board.ProjectID, s.ID, StoryNumber(board.Name, task.Index, j+1))
			task.Charge += s.Charge
		}
		project.Tasks = append(project.Tasks, task)
		project.Charge += task.Charge
	}
	return project
}

type proposalKey struct {
	project int64
	story   int
}

// NumberingTable collects the numbers proposed by each project for its
// stories, so that a story present on several boards gets one number chosen
// by project order rather than by aggregation timing.
type NumberingTable struct {
	proposals map[proposalKey]string
	byProject map[int64][]int
}

func NewNumberingTable() *NumberingTable {
	return &NumberingTable{proposals: map[proposalKey]string{}, byProject: map[int64][]int{}}
}

func (t *NumberingTable) Propose(projectID int64, storyID int, num string) {
	k := proposalKey{project: projectID, story: storyID}
	if _, ok := t.proposals[k]; ok {
		return
	}
	t.proposals[k] = num
	t.byProject[projectID] = append(t.byProject[projectID], storyID)
}

// Proposal returns the number a project proposed for a story.
func (t *NumberingTable) Proposal(projectID int64, storyID int) (string, bool) {
	num, ok := t.proposals[proposalKey{project: projectID, story: storyID}]
	return num, ok
}

// Apply writes the numbers onto the stories. Projects are visited in
// projectOrder and the first project proposing a number for a story wins.
func (t *NumberingTable) Apply(log zerolog.Logger, arena *StoryArena, projectOrder []int64) {
	assigned := map[int]int64{}
	for _, pid := range projectOrder {
		for _, sid := range t.byProject[pid] {
			num := t.proposals[proposalKey{project: pid, story: sid}]
			if owner, done := assigned[sid]; done {
				log.Debug().Int("story", sid).Int64("project", pid).Int64("numbered_by", owner).Str("num", num).Msg("numbering proposal ignored")
				continue
			}
			s, ok := arena.Get(sid)
			if !ok {
				continue
			}
			s.Num = num
			assigned[sid] = pid
		}
	}
}
