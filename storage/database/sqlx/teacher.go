package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/teacher"
	"github.com/trezcool/englishcenter/storage/database"
)

const teacherColumns = `teacher_id, full_name, email, phone, qualification, experience_years, salary, hire_date, status`

var teacherOrdering = map[string]string{
	"teacher_id":       "teacher_id",
	"full_name":        "full_name",
	"email":            "email",
	"experience_years": "experience_years",
	"hire_date":        "hire_date",
	"status":           "status",
}

type teacherRepository struct {
	db *sqlx.DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *sqlx.DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) mapping() database.Mapping {
	return database.Mapping{NotFound: core.NewNotFoundError("teacher"), Unique: teacher.ErrEmailExists}
}

func (repo *teacherRepository) Create(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	var created teacher.Teacher
	err := repo.db.GetContext(ctx, &created, `
		INSERT INTO teachers (full_name, email, phone, qualification, experience_years, salary, hire_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+teacherColumns,
		tch.FullName, tch.Email, tch.Phone, tch.Qualification, tch.ExperienceYears, tch.Salary, tch.HireDate, tch.Status,
	)
	if err != nil {
		return teacher.Teacher{}, database.TranslateError(err, "inserting teacher", repo.mapping())
	}
	return created, nil
}

func (repo *teacherRepository) Get(ctx context.Context, id int64) (teacher.Teacher, error) {
	var tch teacher.Teacher
	err := repo.db.GetContext(ctx, &tch, `SELECT `+teacherColumns+` FROM teachers WHERE teacher_id = $1`, id)
	if err != nil {
		return teacher.Teacher{}, database.TranslateError(err, "getting teacher", repo.mapping())
	}
	return tch, nil
}

func (repo *teacherRepository) Query(ctx context.Context, qf teacher.QueryFilter) ([]teacher.Teacher, error) {
	var f filter
	f.search(qf.Search, "full_name", "email", "qualification")
	if qf.Status != "" {
		f.add("status = ?", qf.Status)
	}

	teachers := make([]teacher.Teacher, 0)
	q := f.selectQuery(`SELECT `+teacherColumns+` FROM teachers`, core.OrderBy(qf.Ordering, teacherOrdering, "full_name ASC"))
	if err := repo.db.SelectContext(ctx, &teachers, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying teachers")
	}
	return teachers, nil
}

func (repo *teacherRepository) Update(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	var updated teacher.Teacher
	err := repo.db.GetContext(ctx, &updated, `
		UPDATE teachers
		SET full_name = $1, email = $2, phone = $3, qualification = $4, experience_years = $5, salary = $6,
			hire_date = $7, status = $8
		WHERE teacher_id = $9
		RETURNING `+teacherColumns,
		tch.FullName, tch.Email, tch.Phone, tch.Qualification, tch.ExperienceYears, tch.Salary, tch.HireDate, tch.Status, tch.ID,
	)
	if err != nil {
		return teacher.Teacher{}, database.TranslateError(err, "updating teacher", repo.mapping())
	}
	return updated, nil
}

func (repo *teacherRepository) Delete(ctx context.Context, id int64) (teacher.Teacher, error) {
	var deleted teacher.Teacher
	err := repo.db.GetContext(ctx, &deleted, `DELETE FROM teachers WHERE teacher_id = $1 RETURNING `+teacherColumns, id)
	if err != nil {
		return teacher.Teacher{}, database.TranslateError(err, "deleting teacher", database.Mapping{
			NotFound:   core.NewNotFoundError("teacher"),
			ForeignKey: teacher.ErrHasClasses,
		})
	}
	return deleted, nil
}
