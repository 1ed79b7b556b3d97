// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package notification_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/carta/internal/core/notification"
)

func entry(i int) notification.Notification {
	return notification.Entry{
		Type:    notification.TypeInfo,
		Title:   fmt.Sprintf("event %d", i),
		Section: notification.SectionSystem,
		Action:  "test",
	}.Stamp(time.Unix(int64(i), 0))
}

func TestLog_NewestFirstAndCapped(t *testing.T) {
	log := notification.NewLog(3)

	for i := 1; i <= 5; i++ {
		log.Record(entry(i))
	}

	all := log.All()
	require.Len(t, all, 3)
	assert.Equal(t, "event 5", all[0].Title)
	assert.Equal(t, "event 3", all[2].Title)
	assert.Equal(t, 3, log.Cap())
}

func TestLog_AllReturnsCopy(t *testing.T) {
	log := notification.NewLog(5)
	log.Record(entry(1))

	all := log.All()
	all[0].Title = "mutated"

	assert.Equal(t, "event 1", log.All()[0].Title)
}

func TestLog_ReplaceAndClear(t *testing.T) {
	log := notification.NewLog(2)
	log.Replace([]notification.Notification{entry(9), entry(8), entry(7)})

	assert.Equal(t, 2, log.Len())
	assert.Equal(t, "event 9", log.All()[0].Title)

	log.Clear()
	assert.Zero(t, log.Len())
	assert.Empty(t, log.All())
}

func TestNewLog_DefaultCap(t *testing.T) {
	assert.Equal(t, notification.DefaultCap, notification.NewLog(0).Cap())
}

func TestEntry_Stamp(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	a := entry(1)
	b := notification.Entry{Type: notification.TypeError}.Stamp(at)

	assert.NotEmpty(t, b.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, at, b.Timestamp)
	assert.True(t, b.Type.Valid())
	assert.False(t, notification.Type("fatal").Valid())
}
