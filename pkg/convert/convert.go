// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package convert reads loosely typed query values.

Malformed input collapses to a fallback instead of an error, so only use it
where a bad value and a missing one mean the same thing.
*/
package convert

import "strconv"

// IntOr parses s as an int, returning fallback when s is empty or malformed.
func IntOr(s string, fallback int) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return fallback
}

// Bool parses "true", "1", "false", "0" and friends. Anything else is false.
func Bool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}
