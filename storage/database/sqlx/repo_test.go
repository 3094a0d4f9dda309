package sqlxrepos

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setup returns a sqlx handle on a mocked postgres connection.
// Expectations are ordered; every test ends with checkExpectations.
func setup(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, "postgres"), mock
}

func checkExpectations(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	assert.NoError(t, mock.ExpectationsWereMet())
}

// stmt matches the statement containing `fragment` literally.
func stmt(fragment string) string {
	return regexp.QuoteMeta(fragment)
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%amani%", likePattern("amani"))
	assert.Equal(t, `%100\%\_off\\%`, likePattern(`100%_off\`))
}

func TestFilter_selectQuery(t *testing.T) {
	var f filter
	assert.Equal(t, "SELECT * FROM students ORDER BY full_name", f.selectQuery("SELECT * FROM students", "full_name"))

	f.search("ama", "full_name", "email")
	f.add("status = ?", "ACTIVE")
	assert.Equal(t,
		"SELECT * FROM students WHERE (full_name ILIKE $1 OR email ILIKE $2) AND status = $3 ORDER BY full_name",
		f.selectQuery("SELECT * FROM students", "full_name"),
	)
	assert.Equal(t, []interface{}{"%ama%", "%ama%", "ACTIVE"}, f.args)
}
