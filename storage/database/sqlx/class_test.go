package sqlxrepos

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/englishcenter/core"
)

func TestClassRepository_RecountStudents(t *testing.T) {
	db, mock := setup(t)
	repo := NewClassRepository(db)
	recount := stmt("SET current_students = (")

	mock.ExpectQuery(recount).
		WithArgs(int64(5), "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"current_students"}).AddRow(2))
	mock.ExpectQuery(recount).
		WithArgs(int64(404), "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"current_students"}))

	n, err := repo.RecountStudents(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = repo.RecountStudents(context.Background(), 404)
	assert.True(t, core.IsNotFound(err))
	checkExpectations(t, mock)
}
