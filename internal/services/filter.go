package services

import "github.com/Chroma-Case/PLDGenerator/internal/domain"

// FilterIgnored partitions issues on the ignored label set, keeping input order.
func FilterIgnored(issues []domain.Issue, ignoredLabels []string) (active, ignored []domain.Issue) {
	set := make(map[string]struct{}, len(ignoredLabels))
	for _, l := range ignoredLabels {
		set[l] = struct{}{}
	}
	active = []domain.Issue{}
	ignored = []domain.Issue{}
	for _, issue := range issues {
		if hasAnyLabel(issue, set) {
			ignored = append(ignored, issue)
		} else {
			active = append(active, issue)
		}
	}
	return active, ignored
}

func hasAnyLabel(issue domain.Issue, set map[string]struct{}) bool {
	for _, l := range issue.Labels {
		if _, ok := set[l]; ok {
			return true
		}
	}
	return false
}
