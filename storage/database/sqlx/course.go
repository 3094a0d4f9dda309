package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/course"
	"github.com/trezcool/englishcenter/storage/database"
)

const courseColumns = `course_id, course_name, description, level, duration_weeks, fee, max_students, status`

var courseOrdering = map[string]string{
	"course_id":      "course_id",
	"course_name":    "course_name",
	"level":          "level",
	"duration_weeks": "duration_weeks",
	"fee":            "fee",
	"status":         "status",
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) mapping() database.Mapping {
	return database.Mapping{NotFound: core.NewNotFoundError("course")}
}

func (repo *courseRepository) Create(ctx context.Context, crs course.Course) (course.Course, error) {
	var created course.Course
	err := repo.db.GetContext(ctx, &created, `
		INSERT INTO courses (course_name, description, level, duration_weeks, fee, max_students, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+courseColumns,
		crs.Name, crs.Description, crs.Level, crs.DurationWeeks, crs.Fee, crs.MaxStudents, crs.Status,
	)
	if err != nil {
		return course.Course{}, database.TranslateError(err, "inserting course", repo.mapping())
	}
	return created, nil
}

func (repo *courseRepository) Get(ctx context.Context, id int64) (course.Course, error) {
	var crs course.Course
	err := repo.db.GetContext(ctx, &crs, `SELECT `+courseColumns+` FROM courses WHERE course_id = $1`, id)
	if err != nil {
		return course.Course{}, database.TranslateError(err, "getting course", repo.mapping())
	}
	return crs, nil
}

func (repo *courseRepository) Query(ctx context.Context, qf course.QueryFilter) ([]course.Course, error) {
	var f filter
	f.search(qf.Search, "course_name", "description")
	if qf.Level != "" {
		f.add("level = ?", qf.Level)
	}
	if qf.Status != "" {
		f.add("status = ?", qf.Status)
	}

	courses := make([]course.Course, 0)
	q := f.selectQuery(`SELECT `+courseColumns+` FROM courses`, core.OrderBy(qf.Ordering, courseOrdering, "course_name ASC"))
	if err := repo.db.SelectContext(ctx, &courses, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying courses")
	}
	return courses, nil
}

func (repo *courseRepository) Update(ctx context.Context, crs course.Course) (course.Course, error) {
	var updated course.Course
	err := repo.db.GetContext(ctx, &updated, `
		UPDATE courses
		SET course_name = $1, description = $2, level = $3, duration_weeks = $4, fee = $5, max_students = $6, status = $7
		WHERE course_id = $8
		RETURNING `+courseColumns,
		crs.Name, crs.Description, crs.Level, crs.DurationWeeks, crs.Fee, crs.MaxStudents, crs.Status, crs.ID,
	)
	if err != nil {
		return course.Course{}, database.TranslateError(err, "updating course", repo.mapping())
	}
	return updated, nil
}

func (repo *courseRepository) Delete(ctx context.Context, id int64) (course.Course, error) {
	var deleted course.Course
	err := repo.db.GetContext(ctx, &deleted, `DELETE FROM courses WHERE course_id = $1 RETURNING `+courseColumns, id)
	if err != nil {
		return course.Course{}, database.TranslateError(err, "deleting course", database.Mapping{
			NotFound:   core.NewNotFoundError("course"),
			ForeignKey: course.ErrUsedByClasses,
		})
	}
	return deleted, nil
}
