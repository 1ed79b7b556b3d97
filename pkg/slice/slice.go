// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slice adds the generic Map and Filter the [slices] package lacks.
//
// Results are never nil, so an empty list still encodes as [] in JSON.
package slice

// Map returns fn applied to every element of input, in order.
func Map[T, U any](input []T, fn func(T) U) []U {
	out := make([]U, 0, len(input))
	for _, item := range input {
		out = append(out, fn(item))
	}
	return out
}

// Filter returns the elements of input for which keep is true.
func Filter[T any](input []T, keep func(T) bool) []T {
	out := make([]T, 0)
	for _, item := range input {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}
