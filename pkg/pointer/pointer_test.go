// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taibuivan/carta/pkg/pointer"
)

func TestFallback(t *testing.T) {
	assert.False(t, pointer.Fallback(pointer.To(false), true))
	assert.True(t, pointer.Fallback[bool](nil, true))
	assert.Equal(t, 300, pointer.Fallback(pointer.To(300), 0))
}
