package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/enrollment"
	"github.com/trezcool/englishcenter/storage/database"
)

const enrollmentSelect = `
	SELECT e.enrollment_id, e.student_id, s.full_name AS student_name, e.class_id, c.class_name, co.fee AS course_fee,
		e.enrollment_date, e.fee_paid, e.payment_status, e.status
	FROM enrollments e
	LEFT JOIN students s ON s.student_id = e.student_id
	LEFT JOIN classes c ON c.class_id = e.class_id
	LEFT JOIN courses co ON co.course_id = c.course_id`

var enrollmentOrdering = map[string]string{
	"enrollment_id":   "e.enrollment_id",
	"enrollment_date": "e.enrollment_date",
	"student_name":    "s.full_name",
	"class_name":      "c.class_name",
	"fee_paid":        "e.fee_paid",
	"status":          "e.status",
}

type enrollmentRepository struct {
	db *sqlx.DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *sqlx.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) mapping() database.Mapping {
	return database.Mapping{
		NotFound:   core.NewNotFoundError("enrollment"),
		ForeignKey: enrollment.ErrInvalidReference,
		Unique:     enrollment.ErrAlreadyEnrolled,
	}
}

func (repo *enrollmentRepository) Create(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	var id int64
	err := repo.db.GetContext(ctx, &id, `
		INSERT INTO enrollments (student_id, class_id, enrollment_date, fee_paid, payment_status, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING enrollment_id`,
		enr.StudentID, enr.ClassID, enr.EnrollmentDate, enr.FeePaid, enr.PaymentStatus, enr.Status,
	)
	if err != nil {
		return enrollment.Enrollment{}, database.TranslateError(err, "inserting enrollment", repo.mapping())
	}
	return repo.Get(ctx, id)
}

func (repo *enrollmentRepository) Get(ctx context.Context, id int64) (enrollment.Enrollment, error) {
	var enr enrollment.Enrollment
	if err := repo.db.GetContext(ctx, &enr, enrollmentSelect+` WHERE e.enrollment_id = $1`, id); err != nil {
		return enrollment.Enrollment{}, database.TranslateError(err, "getting enrollment", repo.mapping())
	}
	return enr, nil
}

func (repo *enrollmentRepository) Query(ctx context.Context, qf enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	var f filter
	f.search(qf.Search, "s.full_name", "c.class_name")
	if qf.StudentID != 0 {
		f.add("e.student_id = ?", qf.StudentID)
	}
	if qf.ClassID != 0 {
		f.add("e.class_id = ?", qf.ClassID)
	}
	if qf.Status != "" {
		f.add("e.status = ?", qf.Status)
	}

	enrollments := make([]enrollment.Enrollment, 0)
	q := f.selectQuery(enrollmentSelect, core.OrderBy(qf.Ordering, enrollmentOrdering, "e.enrollment_date DESC, e.enrollment_id DESC"))
	if err := repo.db.SelectContext(ctx, &enrollments, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying enrollments")
	}
	return enrollments, nil
}

func (repo *enrollmentRepository) Update(ctx context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE enrollments
		SET student_id = $1, class_id = $2, enrollment_date = $3, fee_paid = $4, payment_status = $5, status = $6
		WHERE enrollment_id = $7`,
		enr.StudentID, enr.ClassID, enr.EnrollmentDate, enr.FeePaid, enr.PaymentStatus, enr.Status, enr.ID,
	)
	if err != nil {
		return enrollment.Enrollment{}, database.TranslateError(err, "updating enrollment", repo.mapping())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enrollment.Enrollment{}, core.NewNotFoundError("enrollment")
	}
	return repo.Get(ctx, enr.ID)
}

func (repo *enrollmentRepository) Delete(ctx context.Context, id int64) (enrollment.Enrollment, error) {
	enr, err := repo.Get(ctx, id)
	if err != nil {
		return enrollment.Enrollment{}, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM enrollments WHERE enrollment_id = $1`, id)
	if err != nil {
		return enrollment.Enrollment{}, database.TranslateError(err, "deleting enrollment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return enrollment.Enrollment{}, core.NewNotFoundError("enrollment")
	}
	return enr, nil
}
