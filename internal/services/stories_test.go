/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
)

func testMembers() []*domain.Member {
	return []*domain.Member{
		{Name: "Alice", Login: "alice"},
		{Name: "Bob", Login: "bob"},
	}
}

func issueBody(charge string) string {
	return "### En tant que\nétudiant\n### Je veux\nun rapport\n### Estimation du temps\n" + charge +
		"\n### Description\na\nb\n### Definition of Done (DoD)\nfait"
}

func fullSections(charge string) map[string]string {
	return map[string]string{FieldActor: "étudiant", FieldNeed: "un rapport", FieldTimeCharge: charge}
}

func TestBuildStory_ClosedSplitsChargeEvenly(t *testing.T) {
	t.Parallel()

	members := testMembers()
	issue := domain.Issue{Number: 7, Title: "Export", State: domain.StateClosed, Assignees: []string{"alice", "bob"}, Labels: []string{"Backend"}}

	s, err := BuildStory(issue, fullSections("4"), Charge{Total: 4}, members)
	require.NoError(t, err)

	assert.Equal(t, 7, s.ID)
	assert.Equal(t, "Export", s.Name)
	assert.Equal(t, 4.0, s.Charge)
	assert.True(t, s.Done)
	assert.Equal(t, "Alice, Bob", s.Assignees)
	assert.Equal(t, []string{"Backend"}, s.Labels)
	assert.Equal(t, []string{}, s.Description)
	assert.Empty(t, s.Num)
	for _, m := range members {
		assert.Equal(t, 2.0, m.ChargeTotal, m.Name)
		assert.Equal(t, 2.0, m.ChargeDone, m.Name)
	}
}

func TestBuildStory_ExplicitDone(t *testing.T) {
	t.Parallel()

	members := testMembers()
	issue := domain.Issue{Number: 1, State: domain.StateOpen, Assignees: []string{"alice", "bob"}}

	_, err := BuildStory(issue, fullSections("2/4/J"), Charge{Total: 4, Done: 2}, members)
	require.NoError(t, err)

	assert.Equal(t, 2.0, members[0].ChargeTotal)
	assert.Equal(t, 1.0, members[0].ChargeDone)
	assert.Equal(t, 1.0, members[1].ChargeDone)
}

func TestBuildStory_OpenWithoutDone(t *testing.T) {
	t.Parallel()

	members := testMembers()
	issue := domain.Issue{Number: 1, State: domain.StateOpen, Assignees: []string{"alice"}}

	s, err := BuildStory(issue, fullSections("3"), Charge{Total: 3}, members)
	require.NoError(t, err)

	assert.False(t, s.Done)
	assert.Equal(t, 3.0, members[0].ChargeTotal)
	assert.Zero(t, members[0].ChargeDone)
	assert.Zero(t, members[1].ChargeTotal)
}

func TestBuildStory_UnknownAssigneeKeepsLogin(t *testing.T) {
	t.Parallel()

	members := testMembers()
	issue := domain.Issue{Number: 1, Assignees: []string{"carol", "alice"}}

	s, err := BuildStory(issue, fullSections("2"), Charge{Total: 2}, members)
	require.NoError(t, err)

	assert.Equal(t, "carol, Alice", s.Assignees)
	assert.Equal(t, 1.0, members[0].ChargeTotal)
}

func TestBuildStory_MissingSectionLeavesMembers(t *testing.T) {
	t.Parallel()

	members := testMembers()
	issue := domain.Issue{Number: 3, Assignees: []string{"alice"}, State: domain.StateClosed}
	sections := map[string]string{FieldNeed: "x", FieldTimeCharge: "1"}

	_, err := BuildStory(issue, sections, Charge{Total: 1}, members)
	require.ErrorIs(t, err, ErrMissingSection)

	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 3, pe.Issue)
	assert.Zero(t, members[0].ChargeTotal)
}

func TestBuildStories_SkipsAndKeepsOrder(t *testing.T) {
	t.Parallel()

	members := testMembers()
	issues := []domain.Issue{
		{Number: 4, Title: "b", Body: issueBody("1/2/J"), Assignees: []string{"alice"}},
		{Number: 2, Title: "bad charge", Body: issueBody("beaucoup"), Assignees: []string{"alice"}},
		{Number: 3, Title: "no template", Body: "hello", Assignees: []string{"bob"}},
		{Number: 1, Title: "a", Body: issueBody("2"), Assignees: []string{"bob"}, State: domain.StateClosed},
		{Number: 4, Title: "b again", Body: issueBody("5"), Assignees: []string{"alice"}},
	}

	arena, skipped := BuildStories(zerolog.Nop(), issues, DefaultSections, members)

	require.Equal(t, 2, arena.Len())
	stories := arena.Stories()
	assert.Equal(t, 4, stories[0].ID)
	assert.Equal(t, 1, stories[1].ID)
	assert.Equal(t, []string{"a", "b"}, stories[0].Description)
	assert.Equal(t, []string{"fait"}, stories[0].DoD)

	require.Len(t, skipped, 3)
	assert.Equal(t, 2, skipped[0].Number)
	assert.Contains(t, skipped[0].Reason, "invalid charge")
	assert.Equal(t, 3, skipped[1].Number)
	assert.Contains(t, skipped[1].Reason, "missing section")
	assert.Equal(t, 4, skipped[2].Number)
	assert.Equal(t, "b again", skipped[2].Title)

	// the duplicate is not credited
	assert.Equal(t, 2.0, members[0].ChargeTotal)
	assert.Equal(t, 1.0, members[0].ChargeDone)
	assert.Equal(t, 2.0, members[1].ChargeTotal)
	assert.Equal(t, 2.0, members[1].ChargeDone)
}

func TestStoryArena_RejectsDuplicate(t *testing.T) {
	t.Parallel()

	a := NewStoryArena()
	require.NoError(t, a.Add(&domain.Story{ID: 1}))
	require.Error(t, a.Add(&domain.Story{ID: 1}))

	s, ok := a.Get(1)
	require.True(t, ok)
	assert.Equal(t, 1, s.ID)
	_, ok = a.Get(2)
	assert.False(t, ok)
}
