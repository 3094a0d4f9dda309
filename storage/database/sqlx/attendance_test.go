package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
)

var (
	upsertAttendanceSQL = stmt("ON CONFLICT (session_id, student_id) DO UPDATE")

	attendanceCols = []string{
		"attendance_id", "session_id", "student_id", "student_name", "class_id", "session_date",
		"attendance_status", "notes", "created_date", "updated_date",
	}
	summaryCols = []string{
		"summary_id", "student_id", "student_name", "class_id", "class_name", "total_sessions",
		"present_count", "absent_count", "late_count", "excused_count", "attendance_rate", "last_updated",
	}
	stamp = time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)
)

func attendanceRow(id int64, m attendance.Mark) *sqlmock.Rows {
	return sqlmock.NewRows(attendanceCols).
		AddRow(id, m.SessionID, m.StudentID, "Amani Kabila", 4, stamp, string(m.Status), nil, stamp, stamp)
}

func sessionMarks(sessionID int64, statuses ...attendance.Status) []attendance.Mark {
	marks := make([]attendance.Mark, len(statuses))
	for i, status := range statuses {
		marks[i] = attendance.Mark{SessionID: sessionID, StudentID: int64(i + 1), Status: status}
	}
	return marks
}

func TestAttendanceRepository_Upsert(t *testing.T) {
	db, mock := setup(t)
	repo := NewAttendanceRepository(db)
	m := attendance.Mark{SessionID: 10, StudentID: 1, Status: attendance.StatusLate}

	mock.ExpectQuery(upsertAttendanceSQL).
		WithArgs(int64(10), int64(1), "LATE", sqlmock.AnyArg()).
		WillReturnRows(attendanceRow(7, m))
	mock.ExpectQuery(upsertAttendanceSQL).
		WithArgs(int64(10), int64(99), "PRESENT", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23503"})

	rec, err := repo.Upsert(context.Background(), m)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, attendance.StatusLate, rec.Status)
	assert.Equal(t, int64(4), rec.ClassID)
	assert.Equal(t, core.NewDate(2024, 1, 8), rec.SessionDate)

	_, err = repo.Upsert(context.Background(), attendance.Mark{SessionID: 10, StudentID: 99, Status: attendance.StatusPresent})
	assert.Equal(t, attendance.ErrInvalidReference, err)
	checkExpectations(t, mock)
}

func TestAttendanceRepository_UpsertMany(t *testing.T) {
	db, mock := setup(t)
	repo := NewAttendanceRepository(db)
	marks := sessionMarks(10, attendance.StatusPresent, attendance.StatusLate, attendance.StatusAbsent)

	mock.ExpectBegin()
	for i, m := range marks {
		mock.ExpectQuery(upsertAttendanceSQL).
			WithArgs(m.SessionID, m.StudentID, string(m.Status), sqlmock.AnyArg()).
			WillReturnRows(attendanceRow(int64(i+1), m))
	}
	mock.ExpectCommit()

	recs, err := repo.UpsertMany(context.Background(), marks)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i, rec := range recs {
		assert.Equal(t, marks[i].StudentID, rec.StudentID)
		assert.Equal(t, marks[i].Status, rec.Status)
	}
	checkExpectations(t, mock)
}

func TestAttendanceRepository_UpsertMany_rollback(t *testing.T) {
	marks := sessionMarks(10,
		attendance.StatusPresent, attendance.StatusPresent, attendance.StatusLate,
		attendance.StatusAbsent, attendance.StatusPresent,
	)

	tests := []struct {
		name      string
		failure   error
		wantErr   error
		wantKind  interface{}
		rollbackE error
	}{
		{
			name:    "unknown student",
			failure: &pq.Error{Code: "23503"},
			wantErr: core.NewInvalidReferenceError("record 2: invalid session or student id"),
		},
		{
			name:     "storage failure",
			failure:  &pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"},
			wantKind: &core.PersistenceError{},
		},
		{
			name:      "failed rollback",
			failure:   &pq.Error{Code: "23503"},
			wantKind:  &core.InvalidReferenceError{},
			rollbackE: errors.New("driver: bad connection"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setup(t)
			repo := NewAttendanceRepository(db)

			// records 1 and 2 are written, record 3 fails, 4 and 5 are never sent
			mock.ExpectBegin()
			for i, m := range marks[:2] {
				mock.ExpectQuery(upsertAttendanceSQL).
					WithArgs(m.SessionID, m.StudentID, string(m.Status), sqlmock.AnyArg()).
					WillReturnRows(attendanceRow(int64(i+1), m))
			}
			mock.ExpectQuery(upsertAttendanceSQL).
				WithArgs(marks[2].SessionID, marks[2].StudentID, string(marks[2].Status), sqlmock.AnyArg()).
				WillReturnError(tt.failure)
			rollback := mock.ExpectRollback()
			if tt.rollbackE != nil {
				rollback.WillReturnError(tt.rollbackE)
			}

			recs, err := repo.UpsertMany(context.Background(), marks)
			require.Error(t, err)
			assert.Nil(t, recs)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
			} else {
				assert.IsType(t, tt.wantKind, errors.Cause(err))
			}
			checkExpectations(t, mock)
		})
	}
}

func TestService_MarkBulk_invalidRecordNeverReachesStorage(t *testing.T) {
	db, mock := setup(t)
	validate, _ := core.NewValidator()
	svc := attendance.NewService(NewAttendanceRepository(db), nil, validate, nil)

	marks := sessionMarks(10,
		attendance.StatusPresent, attendance.StatusPresent, attendance.StatusLate,
		attendance.StatusAbsent, attendance.StatusPresent,
	)
	marks[2].StudentID = 0

	_, err := svc.MarkBulk(context.Background(), marks)
	require.Error(t, err)
	assert.IsType(t, &core.ValidationError{}, errors.Cause(err))
	checkExpectations(t, mock) // no BEGIN, no statement
}

func TestAttendanceRepository_RefreshSummary(t *testing.T) {
	db, mock := setup(t)
	repo := NewAttendanceRepository(db)
	pair := attendance.Pair{StudentID: 3, ClassID: 12}

	mock.ExpectBegin()
	mock.ExpectExec(stmt("ON CONFLICT (student_id, class_id) DO NOTHING")).
		WithArgs(int64(3), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(stmt("FOR UPDATE")).
		WithArgs(int64(3), int64(12)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(stmt("COUNT(*) FILTER")).
		WithArgs(int64(3), int64(12), "PRESENT", "ABSENT", "LATE", "EXCUSED").
		WillReturnRows(sqlmock.NewRows([]string{
			"total_sessions", "present_count", "absent_count", "late_count", "excused_count",
		}).AddRow(10, 7, 2, 1, 0))
	mock.ExpectExec(stmt("ON CONFLICT (student_id, class_id) DO UPDATE")).
		WithArgs(int64(3), int64(12), 10, 7, 2, 1, 0, 80.0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(stmt("FROM attendance_summary sm")).
		WithArgs(int64(3), int64(12)).
		WillReturnRows(sqlmock.NewRows(summaryCols).
			AddRow(5, 3, "Chantal Ilunga", 12, "GE-A1 Morning", 10, 7, 2, 1, 0, 80.0, stamp))
	mock.ExpectCommit()

	var tallied attendance.Tally
	sum, err := repo.RefreshSummary(context.Background(), pair, func(p attendance.Pair, tally attendance.Tally) attendance.Summary {
		tallied = tally
		return attendance.NewSummary(p, tally)
	})
	require.NoError(t, err)
	assert.Equal(t, attendance.Tally{Total: 10, Present: 7, Absent: 2, Late: 1}, tallied)
	assert.Equal(t, int64(5), sum.ID)
	assert.Equal(t, 80.0, sum.AttendanceRate)
	assert.Equal(t, "GE-A1 Morning", sum.ClassName.String)
	checkExpectations(t, mock)
}

func TestAttendanceRepository_RefreshSummary_rollback(t *testing.T) {
	pair := attendance.Pair{StudentID: 3, ClassID: 12}

	t.Run("unknown pair", func(t *testing.T) {
		db, mock := setup(t)
		mock.ExpectBegin()
		mock.ExpectExec(stmt("ON CONFLICT (student_id, class_id) DO NOTHING")).
			WillReturnError(&pq.Error{Code: "23503"})
		mock.ExpectRollback()

		_, err := NewAttendanceRepository(db).RefreshSummary(context.Background(), pair, attendance.NewSummary)
		assert.Equal(t, attendance.ErrInvalidSummaryReference, err)
		checkExpectations(t, mock)
	})

	t.Run("lock not granted", func(t *testing.T) {
		db, mock := setup(t)
		mock.ExpectBegin()
		mock.ExpectExec(stmt("ON CONFLICT (student_id, class_id) DO NOTHING")).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(stmt("FOR UPDATE")).
			WillReturnError(&pq.Error{Code: "55P03", Message: "could not obtain lock"})
		mock.ExpectRollback()

		built := false
		_, err := NewAttendanceRepository(db).RefreshSummary(context.Background(), pair,
			func(p attendance.Pair, tally attendance.Tally) attendance.Summary {
				built = true
				return attendance.NewSummary(p, tally)
			})
		require.Error(t, err)
		assert.IsType(t, &core.PersistenceError{}, err)
		assert.False(t, built, "no tally is taken without the lock")
		checkExpectations(t, mock)
	})
}
