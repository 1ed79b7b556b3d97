// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package convert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/carta/pkg/convert"
)

func TestIntOr(t *testing.T) {
	assert.Equal(t, 4, convert.IntOr("4", 0))
	assert.Equal(t, -2, convert.IntOr("-2", 0))
	assert.Equal(t, 7, convert.IntOr("", 7))
	assert.Equal(t, 7, convert.IntOr("four", 7))
}

func TestBool(t *testing.T) {
	assert.True(t, convert.Bool("true"))
	assert.True(t, convert.Bool("1"))
	assert.False(t, convert.Bool("0"))
	assert.False(t, convert.Bool(""))
	assert.False(t, convert.Bool("yes"))
}
