package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
)

func TestSummaryKey(t *testing.T) {
	assert.Equal(t, "attendance:summary:3:12", SummaryKey(attendance.Pair{StudentID: 3, ClassID: 12}))
}

func TestOpen_disabled(t *testing.T) {
	client, err := Open(context.Background(), core.RedisConfig{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestOpen_unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := Open(context.Background(), core.RedisConfig{Address: addr})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func setup(t *testing.T) (*SummaryCache, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client, err := Open(context.Background(), core.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewSummaryCache(client, time.Minute), mr
}

func TestSummaryCache(t *testing.T) {
	c, mr := setup(t)
	ctx := context.Background()
	pair := attendance.Pair{StudentID: 3, ClassID: 12}
	sum := attendance.Summary{
		ID:             7,
		StudentID:      3,
		StudentName:    null.StringFrom("Amani Kabila"),
		ClassID:        12,
		ClassName:      null.StringFrom("GE-A1 Morning"),
		TotalSessions:  10,
		PresentCount:   7,
		AbsentCount:    2,
		LateCount:      1,
		AttendanceRate: 80,
		LastUpdated:    time.Date(2024, 1, 12, 9, 30, 0, 0, time.UTC),
	}

	_, ok, err := c.Get(ctx, pair)
	require.NoError(t, err)
	assert.False(t, ok, "empty cache")

	require.NoError(t, c.Set(ctx, sum))
	got, ok, err := c.Get(ctx, pair)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sum, got)
	assert.Equal(t, time.Minute, mr.TTL(SummaryKey(pair)))

	require.NoError(t, c.Invalidate(ctx, pair))
	_, ok, err = c.Get(ctx, pair)
	require.NoError(t, err)
	assert.False(t, ok, "invalidated")
	require.NoError(t, c.Invalidate(ctx, pair), "invalidating a missing entry")

	require.NoError(t, c.Set(ctx, sum))
	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, pair)
	require.NoError(t, err)
	assert.False(t, ok, "expired")

	require.NoError(t, mr.Set(SummaryKey(pair), "{not json"))
	_, ok, err = c.Get(ctx, pair)
	require.NoError(t, err)
	assert.False(t, ok, "unreadable entry is a miss")
}

func TestSummaryCache_down(t *testing.T) {
	c, mr := setup(t)
	ctx := context.Background()
	pair := attendance.Pair{StudentID: 3, ClassID: 12}
	mr.Close()

	_, _, err := c.Get(ctx, pair)
	assert.Error(t, err)
	assert.Error(t, c.Set(ctx, attendance.Summary{StudentID: 3, ClassID: 12}))
	assert.Error(t, c.Invalidate(ctx, pair))
}
