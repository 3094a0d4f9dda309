package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/student"
	"github.com/trezcool/englishcenter/storage/database"
)

const studentColumns = `student_id, full_name, email, phone, address, date_of_birth, gender, registration_date, status`

var studentOrdering = map[string]string{
	"student_id":        "student_id",
	"full_name":         "full_name",
	"email":             "email",
	"registration_date": "registration_date",
	"status":            "status",
}

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) mapping() database.Mapping {
	return database.Mapping{NotFound: core.NewNotFoundError("student"), Unique: student.ErrEmailExists}
}

func (repo *studentRepository) Create(ctx context.Context, std student.Student) (student.Student, error) {
	var created student.Student
	err := repo.db.GetContext(ctx, &created, `
		INSERT INTO students (full_name, email, phone, address, date_of_birth, gender, registration_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+studentColumns,
		std.FullName, std.Email, std.Phone, std.Address, std.DateOfBirth, std.Gender, std.RegistrationDate, std.Status,
	)
	if err != nil {
		return student.Student{}, database.TranslateError(err, "inserting student", repo.mapping())
	}
	return created, nil
}

func (repo *studentRepository) Get(ctx context.Context, id int64) (student.Student, error) {
	var std student.Student
	err := repo.db.GetContext(ctx, &std, `SELECT `+studentColumns+` FROM students WHERE student_id = $1`, id)
	if err != nil {
		return student.Student{}, database.TranslateError(err, "getting student", repo.mapping())
	}
	return std, nil
}

func (repo *studentRepository) Query(ctx context.Context, qf student.QueryFilter) ([]student.Student, error) {
	var f filter
	f.search(qf.Search, "full_name", "email", "phone")
	if qf.Status != "" {
		f.add("status = ?", qf.Status)
	}

	students := make([]student.Student, 0)
	q := f.selectQuery(`SELECT `+studentColumns+` FROM students`, core.OrderBy(qf.Ordering, studentOrdering, "full_name ASC"))
	if err := repo.db.SelectContext(ctx, &students, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) Update(ctx context.Context, std student.Student) (student.Student, error) {
	var updated student.Student
	err := repo.db.GetContext(ctx, &updated, `
		UPDATE students
		SET full_name = $1, email = $2, phone = $3, address = $4, date_of_birth = $5, gender = $6,
			registration_date = $7, status = $8
		WHERE student_id = $9
		RETURNING `+studentColumns,
		std.FullName, std.Email, std.Phone, std.Address, std.DateOfBirth, std.Gender, std.RegistrationDate, std.Status, std.ID,
	)
	if err != nil {
		return student.Student{}, database.TranslateError(err, "updating student", repo.mapping())
	}
	return updated, nil
}

func (repo *studentRepository) Delete(ctx context.Context, id int64) (student.Student, error) {
	var deleted student.Student
	err := repo.db.GetContext(ctx, &deleted, `DELETE FROM students WHERE student_id = $1 RETURNING `+studentColumns, id)
	if err != nil {
		return student.Student{}, database.TranslateError(err, "deleting student", database.Mapping{
			NotFound:   core.NewNotFoundError("student"),
			ForeignKey: student.ErrHasRecords,
		})
	}
	return deleted, nil
}
