/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
	"github.com/rs/zerolog"
)

// requiredSections must be present for an issue to become a story.
var requiredSections = []string{FieldActor, FieldNeed, FieldTimeCharge}

// StoryArena owns the stories of a run, addressed by issue number.
type StoryArena struct {
	byID  map[int]*domain.Story
	order []int
}

func NewStoryArena() *StoryArena { return &StoryArena{byID: map[int]*domain.Story{}} }

// Add stores s; a second story with the same id is rejected.
func (a *StoryArena) Add(s *domain.Story) error {
	if _, dup := a.byID[s.ID]; dup {
		return fmt.Errorf("story #%d already built", s.ID)
	}
	a.byID[s.ID] = s
	a.order = append(a.order, s.ID)
	return nil
}

func (a *StoryArena) Get(id int) (*domain.Story, bool) {
	s, ok := a.byID[id]
	return s, ok
}

func (a *StoryArena) Len() int { return len(a.order) }

// Stories returns the stories in build order.
func (a *StoryArena) Stories() []*domain.Story {
	out := make([]*domain.Story, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, a.byID[id])
	}
	return out
}

// BuildStory turns one issue into a story and credits the issue's charge to
// the matching members. Members are only touched when the story is valid.
func BuildStory(issue domain.Issue, sections map[string]string, charge Charge, members []*domain.Member) (*domain.Story, error) {
	for _, f := range requiredSections {
		if _, ok := sections[f]; !ok {
			return nil, &ParseError{Issue: issue.Number, Err: fmt.Errorf("%w: %s", ErrMissingSection, f)}
		}
	}

	byLogin := make(map[string]*domain.Member, len(members))
	for _, m := range members {
		byLogin[m.Login] = m
	}

	names := make([]string, 0, len(issue.Assignees))
	k := float64(len(issue.Assignees))
	for _, login := range issue.Assignees {
		m, ok := byLogin[login]
		if !ok {
			names = append(names, login)
			continue
		}
		names = append(names, m.Name)
		m.ChargeTotal += charge.Total / k
		if charge.Done > 0 {
			m.ChargeDone += charge.Done / k
		} else if issue.Closed() {
			m.ChargeDone += charge.Total / k
		}
	}

	labels := append([]string(nil), issue.Labels...)
	if labels == nil {
		labels = []string{}
	}

	return &domain.Story{
		ID:          issue.Number,
		Name:        issue.Title,
		Actor:       sections[FieldActor],
		Need:        sections[FieldNeed],
		Description: splitLines(sections[FieldDescription]),
		DoD:         splitLines(sections[FieldDoD]),
		Charge:      charge.Total,
		Done:        issue.Closed(),
		Labels:      labels,
		Assignees:   strings.Join(names, ", "),
	}, nil
}

// parseIssue runs the section and charge parsers over one issue body.
func parseIssue(issue domain.Issue, headers map[string]string) (map[string]string, Charge, error) {
	sections, err := ParseSections(issue.Body, headers)
	if err != nil {
		return nil, Charge{}, &ParseError{Issue: issue.Number, Err: err}
	}
	raw, ok := sections[FieldTimeCharge]
	if !ok {
		return nil, Charge{}, &ParseError{Issue: issue.Number, Err: fmt.Errorf("%w: %s", ErrMissingSection, FieldTimeCharge)}
	}
	charge, err := ParseCharge(raw)
	if err != nil {
		return nil, Charge{}, &ParseError{Issue: issue.Number, Err: err}
	}
	return sections, charge, nil
}

// BuildStories builds a story for every issue it can parse. Issues that fail
// are logged and returned in the skipped list.
func BuildStories(log zerolog.Logger, issues []domain.Issue, headers map[string]string, members []*domain.Member) (*StoryArena, []domain.SkippedIssue) {
	arena := NewStoryArena()
	skipped := []domain.SkippedIssue{}
	skip := func(issue domain.Issue, err error) {
		log.Warn().Err(err).Int("issue", issue.Number).Str("title", issue.Title).Msg("issue skipped")
		skipped = append(skipped, domain.SkippedIssue{Number: issue.Number, Title: issue.Title, Reason: reason(err)})
	}
	for _, issue := range issues {
		if _, dup := arena.Get(issue.Number); dup {
			skip(issue, &ParseError{Issue: issue.Number, Err: errors.New("duplicate issue number")})
			continue
		}
		sections, charge, err := parseIssue(issue, headers)
		if err != nil {
			skip(issue, err)
			continue
		}
		story, err := BuildStory(issue, sections, charge, members)
		if err != nil {
			skip(issue, err)
			continue
		}
		if err := arena.Add(story); err != nil {
			skip(issue, err)
		}
	}
	return arena, skipped
}

func reason(err error) string {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}
