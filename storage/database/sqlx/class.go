package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/class"
	"github.com/trezcool/englishcenter/core/enrollment"
	"github.com/trezcool/englishcenter/storage/database"
)

const classSelect = `
	SELECT c.class_id, c.class_name, c.course_id, co.course_name, c.teacher_id, t.full_name AS teacher_name,
		c.start_date, c.end_date, c.schedule, c.room, c.current_students, c.status
	FROM classes c
	LEFT JOIN courses co ON co.course_id = c.course_id
	LEFT JOIN teachers t ON t.teacher_id = c.teacher_id`

var classOrdering = map[string]string{
	"class_id":         "c.class_id",
	"class_name":       "c.class_name",
	"course_name":      "co.course_name",
	"teacher_name":     "t.full_name",
	"start_date":       "c.start_date",
	"current_students": "c.current_students",
	"status":           "c.status",
}

type classRepository struct {
	db *sqlx.DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *sqlx.DB) *classRepository {
	return &classRepository{db: db}
}

func (repo *classRepository) mapping() database.Mapping {
	return database.Mapping{NotFound: core.NewNotFoundError("class"), ForeignKey: class.ErrInvalidReference}
}

func (repo *classRepository) get(ctx context.Context, exec sqlx.QueryerContext, id int64) (class.Class, error) {
	var cls class.Class
	if err := sqlx.GetContext(ctx, exec, &cls, classSelect+` WHERE c.class_id = $1`, id); err != nil {
		return class.Class{}, database.TranslateError(err, "getting class", repo.mapping())
	}
	return cls, nil
}

// Create inserts the class with no students: a new class has no enrollments yet.
func (repo *classRepository) Create(ctx context.Context, cls class.Class) (class.Class, error) {
	var id int64
	err := repo.db.GetContext(ctx, &id, `
		INSERT INTO classes (class_name, course_id, teacher_id, start_date, end_date, schedule, room, current_students, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8)
		RETURNING class_id`,
		cls.Name, cls.CourseID, cls.TeacherID, cls.StartDate, cls.EndDate, cls.Schedule, cls.Room, cls.Status,
	)
	if err != nil {
		return class.Class{}, database.TranslateError(err, "inserting class", repo.mapping())
	}
	return repo.get(ctx, repo.db, id)
}

func (repo *classRepository) Get(ctx context.Context, id int64) (class.Class, error) {
	return repo.get(ctx, repo.db, id)
}

func (repo *classRepository) Query(ctx context.Context, qf class.QueryFilter) ([]class.Class, error) {
	var f filter
	f.search(qf.Search, "c.class_name", "co.course_name", "t.full_name")
	if qf.CourseID != 0 {
		f.add("c.course_id = ?", qf.CourseID)
	}
	if qf.TeacherID != 0 {
		f.add("c.teacher_id = ?", qf.TeacherID)
	}
	if qf.Status != "" {
		f.add("c.status = ?", qf.Status)
	}

	classes := make([]class.Class, 0)
	q := f.selectQuery(classSelect, core.OrderBy(qf.Ordering, classOrdering, "c.class_name ASC"))
	if err := repo.db.SelectContext(ctx, &classes, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying classes")
	}
	return classes, nil
}

func (repo *classRepository) Update(ctx context.Context, cls class.Class) (class.Class, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE classes
		SET class_name = $1, course_id = $2, teacher_id = $3, start_date = $4, end_date = $5, schedule = $6,
			room = $7, status = $8
		WHERE class_id = $9`,
		cls.Name, cls.CourseID, cls.TeacherID, cls.StartDate, cls.EndDate, cls.Schedule, cls.Room, cls.Status, cls.ID,
	)
	if err != nil {
		return class.Class{}, database.TranslateError(err, "updating class", repo.mapping())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return class.Class{}, core.NewNotFoundError("class")
	}
	return repo.get(ctx, repo.db, cls.ID)
}

func (repo *classRepository) Delete(ctx context.Context, id int64) (class.Class, error) {
	var cls class.Class
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var err error
		if cls, err = repo.get(ctx, tx, id); err != nil {
			return err
		}

		var enrolled bool
		if err = tx.GetContext(ctx, &enrolled, `SELECT EXISTS (SELECT 1 FROM enrollments WHERE class_id = $1)`, id); err != nil {
			return database.TranslateError(err, "checking class enrollments")
		}
		if enrolled {
			return class.ErrHasEnrollments
		}

		if _, err = tx.ExecContext(ctx, `DELETE FROM classes WHERE class_id = $1`, id); err != nil {
			return database.TranslateError(err, "deleting class", database.Mapping{ForeignKey: class.ErrHasDependents})
		}
		return nil
	})
	if err != nil {
		return class.Class{}, err
	}
	return cls, nil
}

func (repo *classRepository) RecountStudents(ctx context.Context, id int64) (int, error) {
	var n int
	err := repo.db.GetContext(ctx, &n, `
		UPDATE classes
		SET current_students = (
			SELECT COUNT(*) FROM enrollments e WHERE e.class_id = classes.class_id AND e.status = $2
		)
		WHERE class_id = $1
		RETURNING current_students`, id, enrollment.StatusActive)
	if err != nil {
		return 0, database.TranslateError(err, "recounting class students", repo.mapping())
	}
	return n, nil
}

func (repo *classRepository) IDs(ctx context.Context) ([]int64, error) {
	ids := make([]int64, 0)
	if err := repo.db.SelectContext(ctx, &ids, `SELECT class_id FROM classes ORDER BY class_id`); err != nil {
		return nil, database.TranslateError(err, "listing class ids")
	}
	return ids, nil
}
