package sqlxrepos

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
	"github.com/trezcool/englishcenter/storage/database"
)

const (
	attendanceColumns = `
		a.attendance_id, a.session_id, a.student_id, st.full_name AS student_name, s.class_id, s.session_date,
		a.attendance_status, a.notes, a.created_date, a.updated_date`

	attendanceSelect = `SELECT ` + attendanceColumns + `
	FROM attendance a
	JOIN sessions s ON s.session_id = a.session_id
	LEFT JOIN students st ON st.student_id = a.student_id`

	// the (session_id, student_id) unique constraint makes this the only write path for a record
	attendanceUpsert = `
	WITH a AS (
		INSERT INTO attendance (session_id, student_id, attendance_status, notes)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, student_id) DO UPDATE
		SET attendance_status = EXCLUDED.attendance_status,
			notes = EXCLUDED.notes,
			updated_date = CURRENT_TIMESTAMP
		RETURNING *
	)
	SELECT ` + attendanceColumns + `
	FROM a
	JOIN sessions s ON s.session_id = a.session_id
	LEFT JOIN students st ON st.student_id = a.student_id`

	summarySelect = `
	SELECT sm.summary_id, sm.student_id, st.full_name AS student_name, sm.class_id, c.class_name,
		sm.total_sessions, sm.present_count, sm.absent_count, sm.late_count, sm.excused_count,
		sm.attendance_rate, sm.last_updated
	FROM attendance_summary sm
	LEFT JOIN students st ON st.student_id = sm.student_id
	LEFT JOIN classes c ON c.class_id = sm.class_id`
)

var attendanceOrdering = map[string]string{
	"attendance_id":     "a.attendance_id",
	"session_date":      "s.session_date",
	"student_name":      "st.full_name",
	"attendance_status": "a.attendance_status",
	"updated_date":      "a.updated_date",
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) mapping() database.Mapping {
	return database.Mapping{NotFound: core.NewNotFoundError("attendance"), ForeignKey: attendance.ErrInvalidReference}
}

func upsertAttendance(ctx context.Context, exec sqlx.QueryerContext, m attendance.Mark) (attendance.Record, error) {
	var rec attendance.Record
	err := sqlx.GetContext(ctx, exec, &rec, attendanceUpsert, m.SessionID, m.StudentID, m.Status, m.Notes)
	return rec, err
}

func (repo *attendanceRepository) Upsert(ctx context.Context, m attendance.Mark) (attendance.Record, error) {
	rec, err := upsertAttendance(ctx, repo.db, m)
	if err != nil {
		return attendance.Record{}, database.TranslateError(err, "upserting attendance", repo.mapping())
	}
	return rec, nil
}

func (repo *attendanceRepository) UpsertMany(ctx context.Context, marks []attendance.Mark) ([]attendance.Record, error) {
	records := make([]attendance.Record, 0, len(marks))
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		for i, m := range marks {
			rec, err := upsertAttendance(ctx, tx, m)
			if err != nil {
				return database.TranslateError(err, fmt.Sprintf("upserting attendance record %d", i), database.Mapping{
					ForeignKey: core.NewInvalidReferenceError(fmt.Sprintf("record %d: invalid session or student id", i)),
				})
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (repo *attendanceRepository) Get(ctx context.Context, id int64) (attendance.Record, error) {
	var rec attendance.Record
	if err := repo.db.GetContext(ctx, &rec, attendanceSelect+` WHERE a.attendance_id = $1`, id); err != nil {
		return attendance.Record{}, database.TranslateError(err, "getting attendance", repo.mapping())
	}
	return rec, nil
}

func (repo *attendanceRepository) Query(ctx context.Context, qf attendance.QueryFilter) ([]attendance.Record, error) {
	var f filter
	if qf.SessionID != 0 {
		f.add("a.session_id = ?", qf.SessionID)
	}
	if qf.StudentID != 0 {
		f.add("a.student_id = ?", qf.StudentID)
	}
	if qf.ClassID != 0 {
		f.add("s.class_id = ?", qf.ClassID)
	}
	if qf.Status != "" {
		f.add("a.attendance_status = ?", qf.Status)
	}

	records := make([]attendance.Record, 0)
	q := f.selectQuery(attendanceSelect, core.OrderBy(qf.Ordering, attendanceOrdering, "s.session_date DESC, st.full_name ASC"))
	if err := repo.db.SelectContext(ctx, &records, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying attendance")
	}
	return records, nil
}

func (repo *attendanceRepository) Delete(ctx context.Context, id int64) (attendance.Record, error) {
	rec, err := repo.Get(ctx, id)
	if err != nil {
		return attendance.Record{}, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM attendance WHERE attendance_id = $1`, id)
	if err != nil {
		return attendance.Record{}, database.TranslateError(err, "deleting attendance")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return attendance.Record{}, core.NewNotFoundError("attendance")
	}
	return rec, nil
}

func (repo *attendanceRepository) RefreshSummary(
	ctx context.Context,
	pair attendance.Pair,
	build func(attendance.Pair, attendance.Tally) attendance.Summary,
) (attendance.Summary, error) {
	var sum attendance.Summary
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		// make sure the row exists, then hold it: refreshes of the same pair queue up here
		_, err := tx.ExecContext(ctx, `
			INSERT INTO attendance_summary (student_id, class_id) VALUES ($1, $2)
			ON CONFLICT (student_id, class_id) DO NOTHING`, pair.StudentID, pair.ClassID)
		if err != nil {
			return database.TranslateError(err, "creating attendance summary", database.Mapping{
				ForeignKey: attendance.ErrInvalidSummaryReference,
			})
		}
		if _, err = tx.ExecContext(ctx, `
			SELECT 1 FROM attendance_summary WHERE student_id = $1 AND class_id = $2 FOR UPDATE`,
			pair.StudentID, pair.ClassID); err != nil {
			return database.TranslateError(err, "locking attendance summary")
		}

		var tally attendance.Tally
		err = tx.GetContext(ctx, &tally, `
			SELECT COUNT(*) AS total_sessions,
				COUNT(*) FILTER (WHERE a.attendance_status = $3) AS present_count,
				COUNT(*) FILTER (WHERE a.attendance_status = $4) AS absent_count,
				COUNT(*) FILTER (WHERE a.attendance_status = $5) AS late_count,
				COUNT(*) FILTER (WHERE a.attendance_status = $6) AS excused_count
			FROM attendance a
			JOIN sessions s ON s.session_id = a.session_id
			WHERE a.student_id = $1 AND s.class_id = $2`,
			pair.StudentID, pair.ClassID,
			attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusLate, attendance.StatusExcused,
		)
		if err != nil {
			return database.TranslateError(err, "tallying attendance")
		}

		s := build(pair, tally)
		_, err = tx.ExecContext(ctx, `
			INSERT INTO attendance_summary (
				student_id, class_id, total_sessions, present_count, absent_count, late_count, excused_count,
				attendance_rate, last_updated
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
			ON CONFLICT (student_id, class_id) DO UPDATE
			SET total_sessions = EXCLUDED.total_sessions,
				present_count = EXCLUDED.present_count,
				absent_count = EXCLUDED.absent_count,
				late_count = EXCLUDED.late_count,
				excused_count = EXCLUDED.excused_count,
				attendance_rate = EXCLUDED.attendance_rate,
				last_updated = CURRENT_TIMESTAMP`,
			s.StudentID, s.ClassID, s.TotalSessions, s.PresentCount, s.AbsentCount, s.LateCount, s.ExcusedCount,
			s.AttendanceRate,
		)
		if err != nil {
			return database.TranslateError(err, "saving attendance summary")
		}

		if err = tx.GetContext(ctx, &sum, summarySelect+` WHERE sm.student_id = $1 AND sm.class_id = $2`,
			pair.StudentID, pair.ClassID); err != nil {
			return database.TranslateError(err, "reading attendance summary")
		}
		return nil
	})
	if err != nil {
		return attendance.Summary{}, err
	}
	return sum, nil
}

func (repo *attendanceRepository) GetSummary(ctx context.Context, pair attendance.Pair) (attendance.Summary, error) {
	var sum attendance.Summary
	err := repo.db.GetContext(ctx, &sum, summarySelect+` WHERE sm.student_id = $1 AND sm.class_id = $2`,
		pair.StudentID, pair.ClassID)
	if err != nil {
		return attendance.Summary{}, database.TranslateError(err, "getting attendance summary", database.Mapping{
			NotFound: core.NewNotFoundError("attendance summary"),
		})
	}
	return sum, nil
}

func (repo *attendanceRepository) QuerySummaries(ctx context.Context, sf attendance.SummaryFilter) ([]attendance.Summary, error) {
	var f filter
	if sf.StudentID != 0 {
		f.add("sm.student_id = ?", sf.StudentID)
	}
	if sf.ClassID != 0 {
		f.add("sm.class_id = ?", sf.ClassID)
	}

	sums := make([]attendance.Summary, 0)
	q := f.selectQuery(summarySelect, "sm.attendance_rate DESC, st.full_name ASC")
	if err := repo.db.SelectContext(ctx, &sums, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying attendance summaries")
	}
	return sums, nil
}

func (repo *attendanceRepository) SummaryPairs(ctx context.Context) ([]attendance.Pair, error) {
	pairs := make([]attendance.Pair, 0)
	err := repo.db.SelectContext(ctx, &pairs, `
		SELECT a.student_id, s.class_id
		FROM attendance a
		JOIN sessions s ON s.session_id = a.session_id
		UNION
		SELECT student_id, class_id FROM attendance_summary
		ORDER BY class_id, student_id`)
	if err != nil {
		return nil, database.TranslateError(err, "listing attendance summary pairs")
	}
	return pairs, nil
}
