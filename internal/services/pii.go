/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Chroma-Case/PLDGenerator/internal/domain"
)

var (
	emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+`)
	phoneRe = regexp.MustCompile(`\b\+?\d[\d\-\s]{7,}\b`)
	urlRe   = regexp.MustCompile(`https?://[^\s]+`)
	tokenRe = regexp.MustCompile(`(?i)\b(?:token|secret|password|apikey|api_key|bearer)[:=\s]+[A-Za-z0-9\-\._~+/]{8,}\b`)
)

func scrub(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = emailRe.ReplaceAllString(s, "<email>")
	s = phoneRe.ReplaceAllString(s, "<phone>")
	s = urlRe.ReplaceAllString(s, "<url>")
	s = tokenRe.ReplaceAllString(s, "<secret>")
	return s
}

// redactForLLM copies stories and members with obvious PII and secrets masked
// and member names replaced by stable aliases. The originals are untouched.
// restore maps aliases in a model answer back to member names.
func redactForLLM(stories []*domain.Story, members []*domain.Member) (rs []*domain.Story, rm []*domain.Member, restore func(string) string) {
	alias := map[string]string{}
	back := []string{}
	for _, m := range members {
		if _, ok := alias[m.Name]; ok {
			continue
		}
		a := fmt.Sprintf("member%02d", len(alias)+1)
		alias[m.Name] = a
		back = append(back, a, m.Name)
	}
	names := make([]string, 0, len(alias))
	lower := make(map[string]string, len(alias))
	for name, a := range alias {
		if strings.TrimSpace(name) == "" {
			continue
		}
		names = append(names, name)
		lower[strings.ToLower(name)] = a
	}
	nameRe := namePattern(names)
	clean := func(s string) string {
		s = scrub(s)
		if nameRe == nil {
			return s
		}
		return replaceWords(s, nameRe, func(m string) string { return lower[strings.ToLower(m)] })
	}
	cleanAll := func(lines []string) []string {
		out := make([]string, len(lines))
		for i, l := range lines {
			out[i] = clean(l)
		}
		return out
	}

	rs = make([]*domain.Story, 0, len(stories))
	for _, s := range stories {
		c := *s
		c.Name = clean(s.Name)
		c.Actor = clean(s.Actor)
		c.Need = clean(s.Need)
		c.Description = cleanAll(s.Description)
		c.DoD = cleanAll(s.DoD)
		c.Assignees = clean(s.Assignees)
		rs = append(rs, &c)
	}
	rm = make([]*domain.Member, 0, len(members))
	for _, m := range members {
		c := *m
		c.Name = alias[m.Name]
		c.Login = ""
		rm = append(rm, &c)
	}
	return rs, rm, strings.NewReplacer(back...).Replace
}

// namePattern matches any of names, longest first so that a name containing
// another one wins.
func namePattern(names []string) *regexp.Regexp {
	if len(names) == 0 {
		return nil
	}
	sorted := slices.Clone(names)
	slices.SortFunc(sorted, func(a, b string) int {
		if c := cmp.Compare(len(b), len(a)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	quoted := make([]string, len(sorted))
	for i, n := range sorted {
		quoted[i] = regexp.QuoteMeta(n)
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

// replaceWords replaces the matches of re that are whole words. RE2's \b only
// knows ASCII, so the boundaries are checked on the surrounding runes.
func replaceWords(s string, re *regexp.Regexp, repl func(string) string) string {
	var b strings.Builder
	last := 0
	for _, loc := range re.FindAllStringIndex(s, -1) {
		start, end := loc[0], loc[1]
		if !wordBoundary(s, start, end) {
			continue
		}
		r := repl(s[start:end])
		if r == "" {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(r)
		last = end
	}
	if last == 0 {
		return s
	}
	b.WriteString(s[last:])
	return b.String()
}

func wordBoundary(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
