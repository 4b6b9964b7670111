/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"fmt"
	"strings"
)

// Semantic field names produced by the section parser.
const (
	FieldActor       = "actor"
	FieldNeed        = "need"
	FieldTimeCharge  = "timeCharge"
	FieldDescription = "description"
	FieldDoD         = "dod"
)

const headerMarker = "### "

// DefaultSections maps the issue template headers to field names.
var DefaultSections = map[string]string{
	"En tant que":              FieldActor,
	"Je veux":                  FieldNeed,
	"Estimation du temps":      FieldTimeCharge,
	"Description":              FieldDescription,
	"Definition of Done (DoD)": FieldDoD,
}

func isHeader(line string) bool { return strings.HasPrefix(line, headerMarker) }

// ParseSections splits an issue body into fields keyed by the names in headers.
// Content under unknown headers is ignored and missing headers are absent from
// the result.
func ParseSections(body string, headers map[string]string) (map[string]string, error) {
	lines := strings.Split(strings.ReplaceAll(body, "\r\n", "\n"), "\n")
	out := map[string]string{}
	for i, line := range lines {
		if !isHeader(line) {
			continue
		}
		field, ok := headers[strings.TrimSpace(strings.TrimPrefix(line, headerMarker))]
		if !ok {
			continue
		}
		value, err := captureSection(lines, i)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", field, err)
		}
		out[field] = value
	}
	return out, nil
}

// captureSection returns the trimmed text between the header at index at and
// the next header.
func captureSection(lines []string, at int) (string, error) {
	if at < 0 || at >= len(lines) || !isHeader(lines[at]) {
		return "", ErrNotAHeader
	}
	var b strings.Builder
	for _, line := range lines[at+1:] {
		if isHeader(line) {
			break
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return strings.TrimSpace(b.String()), nil
}

// splitLines turns a captured section into its ordered lines.
func splitLines(value string) []string {
	if value == "" {
		return []string{}
	}
	return strings.Split(value, "\n")
}
