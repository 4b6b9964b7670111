package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
)

func TestFilterIgnored_Partition(t *testing.T) {
	t.Parallel()

	issues := []domain.Issue{
		{Number: 1, Labels: []string{"Backend"}},
		{Number: 2, Labels: []string{"wontfix", "Backend"}},
		{Number: 3},
		{Number: 4, Labels: []string{"duplicate"}},
		{Number: 5, Labels: []string{"Front"}},
	}

	active, ignored := FilterIgnored(issues, []string{"wontfix", "duplicate"})

	numbers := func(is []domain.Issue) []int {
		out := []int{}
		for _, i := range is {
			out = append(out, i.Number)
		}
		return out
	}
	assert.Equal(t, []int{1, 3, 5}, numbers(active))
	assert.Equal(t, []int{2, 4}, numbers(ignored))
	assert.Len(t, append(active, ignored...), len(issues))
}

func TestFilterIgnored_NoLabels(t *testing.T) {
	t.Parallel()

	active, ignored := FilterIgnored(nil, nil)
	assert.NotNil(t, active)
	assert.NotNil(t, ignored)
	assert.Empty(t, active)
	assert.Empty(t, ignored)

	issues := []domain.Issue{{Number: 1, Labels: []string{"x"}}}
	active, ignored = FilterIgnored(issues, nil)
	assert.Equal(t, issues, active)
	assert.Empty(t, ignored)
}
