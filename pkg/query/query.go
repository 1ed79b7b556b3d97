// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package query parses list-shaped values out of query strings and env vars.
package query

import (
	"strconv"
	"strings"
)

// Ints parses repeated query values ("?season=1&season=3") as integers.
// Entries that are not integers are dropped.
func Ints(values []string) []int {
	var numbers []int
	for _, value := range values {
		if number, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			numbers = append(numbers, number)
		}
	}
	return numbers
}

// Split breaks a comma-separated list into trimmed, non-empty parts.
func Split(csv string) []string {
	var parts []string
	for part := range strings.SplitSeq(csv, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
