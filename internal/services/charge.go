/* Copyright (c) 2025 Hamed Shams <https://hamedshams.com>
 * SPDX-License-Identifier: BSD-3-Clause */
package services

import (
	"regexp"
	"strconv"
	"strings"
)

// Charge is the effort of a story in work days.
type Charge struct {
	Total float64
	Done  float64
}

// ParseCharge reads an effort estimate. "done/total/unit" yields both values,
// anything else is read as the total alone. Values that are not numbers are
// rejected with a *ChargeError.
func ParseCharge(text string) (Charge, error) {
	text = strings.TrimSpace(text)
	parts := strings.Split(text, "/")
	if len(parts) == 3 {
		total, err := parseChargeNumber(text, parts[1])
		if err != nil {
			return Charge{}, err
		}
		done, err := parseChargeNumber(text, parts[0])
		if err != nil {
			return Charge{}, err
		}
		if done < 0 {
			done = 0
		}
		return checkTotal(text, Charge{Total: total, Done: done})
	}
	total, err := parseChargeNumber(text, text)
	if err != nil {
		return Charge{}, err
	}
	return checkTotal(text, Charge{Total: total})
}

func checkTotal(text string, c Charge) (Charge, error) {
	if c.Total < 0 {
		return Charge{}, &ChargeError{Text: text}
	}
	return c, nil
}

// chargeNumber matches a number optionally followed by a unit, with or without
// a slash ("2", "0,5", "2 J", "2/J", "1.5 J/H").
var chargeNumber = regexp.MustCompile(`^([+-]?(?:\d+(?:[.,]\d*)?|[.,]\d+))\s*(?:/?\s*\p{L}[\p{L}/. ]*)?$`)

func parseChargeNumber(text, part string) (float64, error) {
	m := chargeNumber.FindStringSubmatch(strings.TrimSpace(part))
	if m == nil {
		return 0, &ChargeError{Text: text, Part: part}
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
	if err != nil {
		return 0, &ChargeError{Text: text, Part: part, Err: err}
	}
	return f, nil
}
