// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package slice_test

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/pkg/slice"
)

func TestMap(t *testing.T) {
	assert.Equal(t, []string{"1", "2"}, slice.Map([]int{1, 2}, strconv.Itoa))
	assert.NotNil(t, slice.Map[int, string](nil, strconv.Itoa))
}

func TestFilter_EmptyEncodesAsArray(t *testing.T) {
	evens := slice.Filter([]int{1, 3}, func(n int) bool { return n%2 == 0 })

	encoded, err := json.Marshal(evens)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(encoded))
	assert.Equal(t, []int{2}, slice.Filter([]int{1, 2, 3}, func(n int) bool { return n%2 == 0 }))
}
