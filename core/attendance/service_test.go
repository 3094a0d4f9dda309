package attendance_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
	logsvc "github.com/trezcool/englishcenter/services/logger"
	inmemdb "github.com/trezcool/englishcenter/storage/database/inmem"
	"github.com/trezcool/englishcenter/tests"
)

var errCacheDown = errors.New("redis: connection refused")

// summaryCache is a map-backed SummaryCache whose writes can be made to fail.
type summaryCache struct {
	entries map[attendance.Pair]attendance.Summary
	hits    int
	sets    int

	failGet        bool
	failSetAfter   int // Set fails once it has succeeded this many times; 0 = never
	failInvalidate bool
}

func newSummaryCache() *summaryCache {
	return &summaryCache{entries: make(map[attendance.Pair]attendance.Summary)}
}

func (c *summaryCache) Get(_ context.Context, pair attendance.Pair) (attendance.Summary, bool, error) {
	if c.failGet {
		return attendance.Summary{}, false, errCacheDown
	}
	sum, ok := c.entries[pair]
	if ok {
		c.hits++
	}
	return sum, ok, nil
}

func (c *summaryCache) Set(_ context.Context, sum attendance.Summary) error {
	if c.failSetAfter > 0 && c.sets >= c.failSetAfter {
		return errCacheDown
	}
	c.sets++
	c.entries[attendance.Pair{StudentID: sum.StudentID, ClassID: sum.ClassID}] = sum
	return nil
}

func (c *summaryCache) Invalidate(_ context.Context, pair attendance.Pair) error {
	if c.failInvalidate {
		return errCacheDown
	}
	delete(c.entries, pair)
	return nil
}

type cacheEnv struct {
	svc   *attendance.Service
	cache *summaryCache
	fx    testutil.Fixture
	pair  attendance.Pair
}

func setupWithCache(t *testing.T) *cacheEnv {
	conf := &core.Config{Env: "TEST", TestMode: true}
	appLogger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	validate, _ := core.NewValidator()

	db := inmemdb.Open()
	fx := testutil.CreateFixture(t, testutil.FixtureRepos{
		Students: inmemdb.NewStudentRepository(db),
		Teachers: inmemdb.NewTeacherRepository(db),
		Courses:  inmemdb.NewCourseRepository(db),
		Classes:  inmemdb.NewClassRepository(db),
		Sessions: inmemdb.NewSessionRepository(db),
	})
	cache := newSummaryCache()
	return &cacheEnv{
		svc:   attendance.NewService(inmemdb.NewAttendanceRepository(db), cache, validate, appLogger),
		cache: cache,
		fx:    fx,
		pair:  attendance.Pair{StudentID: fx.Students[0].ID, ClassID: fx.Classes[0].ID},
	}
}

// markAndRecompute marks the first student at the first session and refreshes their summary.
func (env *cacheEnv) markAndRecompute(t *testing.T, status attendance.Status) attendance.Summary {
	ctx := context.Background()
	_, err := env.svc.Mark(ctx, attendance.Mark{
		SessionID: env.fx.Sessions[0].ID,
		StudentID: env.pair.StudentID,
		Status:    status,
	})
	require.NoError(t, err)
	sum, err := env.svc.RecomputeSummary(ctx, env.pair)
	require.NoError(t, err)
	return sum
}

func TestService_Summary_readThrough(t *testing.T) {
	env := setupWithCache(t)
	ctx := context.Background()

	stored := env.markAndRecompute(t, attendance.StatusPresent)
	assert.Equal(t, stored, env.cache.entries[env.pair], "recompute caches the fresh summary")

	// served from the cache, not the store
	doctored := stored
	doctored.AttendanceRate = 42
	env.cache.entries[env.pair] = doctored
	sum, err := env.svc.Summary(ctx, env.pair)
	require.NoError(t, err)
	assert.Equal(t, 42.0, sum.AttendanceRate)
	assert.Equal(t, 1, env.cache.hits)

	// a miss reads the store and fills the cache
	delete(env.cache.entries, env.pair)
	sum, err = env.svc.Summary(ctx, env.pair)
	require.NoError(t, err)
	assert.Equal(t, 100.0, sum.AttendanceRate)
	assert.Equal(t, sum, env.cache.entries[env.pair])

	// an unreachable cache falls back to the store
	env.cache.failGet = true
	sum, err = env.svc.Summary(ctx, env.pair)
	require.NoError(t, err)
	assert.Equal(t, 100.0, sum.AttendanceRate)

	_, err = env.svc.Summary(ctx, attendance.Pair{StudentID: env.fx.Students[2].ID, ClassID: env.fx.Classes[1].ID})
	assert.True(t, core.IsNotFound(err))
}

func TestService_RecomputeSummary_failedCacheWrite(t *testing.T) {
	env := setupWithCache(t)
	ctx := context.Background()

	first := env.markAndRecompute(t, attendance.StatusPresent)
	assert.Equal(t, 100.0, first.AttendanceRate)

	env.cache.failSetAfter = env.cache.sets
	second := env.markAndRecompute(t, attendance.StatusAbsent)
	assert.Equal(t, 0.0, second.AttendanceRate)
	assert.Equal(t, 1, second.AbsentCount)
	assert.NotContains(t, env.cache.entries, env.pair, "the outdated entry is evicted")

	sum, err := env.svc.Summary(ctx, env.pair)
	require.NoError(t, err)
	assert.Equal(t, 0.0, sum.AttendanceRate)
	assert.Equal(t, 1, sum.AbsentCount)
	assert.Equal(t, 0, sum.PresentCount)
}

func TestService_RecomputeSummary_unevictableEntry(t *testing.T) {
	env := setupWithCache(t)
	ctx := context.Background()

	env.markAndRecompute(t, attendance.StatusPresent)

	// the cache keeps the old entry: neither overwritten nor deleted
	env.cache.failSetAfter = env.cache.sets
	env.cache.failInvalidate = true
	env.markAndRecompute(t, attendance.StatusLate)
	env.markAndRecompute(t, attendance.StatusExcused)
	require.Equal(t, attendance.StatusPresent, statusOf(env.cache.entries[env.pair]))

	sum, err := env.svc.Summary(ctx, env.pair)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.ExcusedCount)
	assert.Equal(t, 0.0, sum.AttendanceRate)
	assert.Equal(t, 0, env.cache.hits, "a stale pair bypasses the cache")

	// once the cache takes writes again, the next recompute makes it trustworthy
	env.cache.failSetAfter = 0
	env.cache.failInvalidate = false
	env.markAndRecompute(t, attendance.StatusAbsent)

	sum, err = env.svc.Summary(ctx, env.pair)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.AbsentCount)
	assert.Equal(t, 1, env.cache.hits)
}

// statusOf reads back the single status tallied in a one-session summary.
func statusOf(sum attendance.Summary) attendance.Status {
	switch {
	case sum.PresentCount == 1:
		return attendance.StatusPresent
	case sum.AbsentCount == 1:
		return attendance.StatusAbsent
	case sum.LateCount == 1:
		return attendance.StatusLate
	case sum.ExcusedCount == 1:
		return attendance.StatusExcused
	}
	return ""
}
