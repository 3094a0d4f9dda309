package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) hydrate(enr enrollment.Enrollment) enrollment.Enrollment {
	enr.StudentName = repo.db.studentName(enr.StudentID)
	enr.ClassName = repo.db.className(enr.ClassID)
	enr.CourseFee = null.Float64{}
	if cls, ok := repo.db.classes[enr.ClassID]; ok {
		if crs, ok := repo.db.courses[cls.CourseID]; ok {
			enr.CourseFee = null.Float64From(crs.Fee)
		}
	}
	return enr
}

// check enforces the student & class references and the (student, class) key.
func (repo *enrollmentRepository) check(enr enrollment.Enrollment) error {
	if _, ok := repo.db.students[enr.StudentID]; !ok {
		return enrollment.ErrInvalidReference
	}
	if _, ok := repo.db.classes[enr.ClassID]; !ok {
		return enrollment.ErrInvalidReference
	}
	for _, e := range repo.db.enrollments {
		if e.StudentID == enr.StudentID && e.ClassID == enr.ClassID && e.ID != enr.ID {
			return enrollment.ErrAlreadyEnrolled
		}
	}
	return nil
}

func (repo *enrollmentRepository) Create(_ context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.check(enr); err != nil {
		return enrollment.Enrollment{}, err
	}
	enr.ID = repo.db.nextID()
	repo.db.enrollments[enr.ID] = &enr
	return repo.hydrate(enr), nil
}

func (repo *enrollmentRepository) Get(_ context.Context, id int64) (enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if enr, ok := repo.db.enrollments[id]; ok {
		return repo.hydrate(*enr), nil
	}
	return enrollment.Enrollment{}, core.NewNotFoundError("enrollment")
}

func (repo *enrollmentRepository) Query(_ context.Context, filter enrollment.QueryFilter) ([]enrollment.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	enrollments := make([]enrollment.Enrollment, 0, len(repo.db.enrollments))
	for _, e := range repo.db.enrollments {
		enr := repo.hydrate(*e)
		switch {
		case filter.StudentID != 0 && enr.StudentID != filter.StudentID,
			filter.ClassID != 0 && enr.ClassID != filter.ClassID,
			filter.Status != "" && enr.Status != filter.Status,
			!matches(filter.Search, enr.StudentName.String, enr.ClassName.String):
			continue
		}
		enrollments = append(enrollments, enr)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })
	return enrollments, nil
}

func (repo *enrollmentRepository) Update(_ context.Context, enr enrollment.Enrollment) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.enrollments[enr.ID]; !ok {
		return enrollment.Enrollment{}, core.NewNotFoundError("enrollment")
	}
	if err := repo.check(enr); err != nil {
		return enrollment.Enrollment{}, err
	}
	repo.db.enrollments[enr.ID] = &enr
	return repo.hydrate(enr), nil
}

func (repo *enrollmentRepository) Delete(_ context.Context, id int64) (enrollment.Enrollment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	enr, ok := repo.db.enrollments[id]
	if !ok {
		return enrollment.Enrollment{}, core.NewNotFoundError("enrollment")
	}
	deleted := repo.hydrate(*enr)
	delete(repo.db.enrollments, id)
	return deleted, nil
}
