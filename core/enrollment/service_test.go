package enrollment_test

import (
	"context"
	"io"
	"log"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/enrollment"
	logsvc "github.com/trezcool/englishcenter/services/logger"
	inmemdb "github.com/trezcool/englishcenter/storage/database/inmem"
	"github.com/trezcool/englishcenter/tests"
)

// occupancyCounter records the classes it is asked to recount and fails for those in `fail`.
type occupancyCounter struct {
	fail  map[int64]bool
	calls []int64
}

func (c *occupancyCounter) RecomputeOccupancy(_ context.Context, classID int64) (int, error) {
	c.calls = append(c.calls, classID)
	if c.fail[classID] {
		return 0, core.NewPersistenceError("recounting class students", errors.New("connection reset"), false)
	}
	return 0, nil
}

func setup(t *testing.T, counter *occupancyCounter) (*enrollment.Service, enrollment.Repository, testutil.Fixture) {
	conf := &core.Config{Env: "TEST", TestMode: true}
	appLogger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	validate, _ := core.NewValidator()

	db := inmemdb.Open()
	repo := inmemdb.NewEnrollmentRepository(db)
	fx := testutil.CreateFixture(t, testutil.FixtureRepos{
		Students: inmemdb.NewStudentRepository(db),
		Teachers: inmemdb.NewTeacherRepository(db),
		Courses:  inmemdb.NewCourseRepository(db),
		Classes:  inmemdb.NewClassRepository(db),
		Sessions: inmemdb.NewSessionRepository(db),
	})
	return enrollment.NewService(repo, counter, validate, appLogger), repo, fx
}

func isPersistenceError(err error) bool {
	_, ok := errors.Cause(err).(*core.PersistenceError)
	return ok
}

func TestService_recountsTouchedClasses(t *testing.T) {
	counter := &occupancyCounter{}
	svc, _, fx := setup(t, counter)
	ctx := context.Background()
	from, to := fx.Classes[0].ID, fx.Classes[1].ID

	enr, err := svc.Create(ctx, enrollment.NewEnrollment{StudentID: fx.Students[0].ID, ClassID: from})
	require.NoError(t, err)
	assert.Equal(t, []int64{from}, counter.calls)

	counter.calls = nil
	_, err = svc.Update(ctx, enr.ID, enrollment.UpdateEnrollment{ClassID: null.Int64From(to)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int64{from, to}, counter.calls)

	counter.calls = nil
	_, err = svc.Delete(ctx, enr.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{to}, counter.calls)
}

func TestService_recountFailure(t *testing.T) {
	ctx := context.Background()

	t.Run("create", func(t *testing.T) {
		counter := &occupancyCounter{}
		svc, repo, fx := setup(t, counter)
		counter.fail = map[int64]bool{fx.Classes[0].ID: true}

		_, err := svc.Create(ctx, enrollment.NewEnrollment{StudentID: fx.Students[0].ID, ClassID: fx.Classes[0].ID})
		require.Error(t, err)
		assert.True(t, isPersistenceError(err))

		// the enrollment itself is stored; a later recount repairs the counter
		stored, err := repo.Query(ctx, enrollment.QueryFilter{ClassID: fx.Classes[0].ID})
		require.NoError(t, err)
		assert.Len(t, stored, 1)
	})

	t.Run("move recounts both classes before failing", func(t *testing.T) {
		counter := &occupancyCounter{}
		svc, repo, fx := setup(t, counter)
		from, to := fx.Classes[0].ID, fx.Classes[1].ID
		enr := testutil.CreateEnrollment(t, repo, fx.Students[1].ID, from, enrollment.StatusActive)
		counter.fail = map[int64]bool{to: true}

		_, err := svc.Update(ctx, enr.ID, enrollment.UpdateEnrollment{ClassID: null.Int64From(to)})
		require.Error(t, err)
		assert.True(t, isPersistenceError(err))
		assert.ElementsMatch(t, []int64{from, to}, counter.calls)
	})

	t.Run("delete", func(t *testing.T) {
		counter := &occupancyCounter{}
		svc, repo, fx := setup(t, counter)
		enr := testutil.CreateEnrollment(t, repo, fx.Students[2].ID, fx.Classes[0].ID, enrollment.StatusActive)
		counter.fail = map[int64]bool{fx.Classes[0].ID: true}

		_, err := svc.Delete(ctx, enr.ID)
		require.Error(t, err)
		assert.True(t, isPersistenceError(err))
	})
}
