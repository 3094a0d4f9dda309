package inmemdb

import (
	"context"
	"sort"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/class"
	"github.com/trezcool/englishcenter/core/enrollment"
)

type classRepository struct {
	db *DB
}

var _ class.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) *classRepository {
	return &classRepository{db: db}
}

// hydrate fills the joined names. Must be called with the lock held.
func (repo *classRepository) hydrate(cls class.Class) class.Class {
	cls.CourseName, cls.TeacherName = null.String{}, null.String{}
	if crs, ok := repo.db.courses[cls.CourseID]; ok {
		cls.CourseName = null.StringFrom(crs.Name)
	}
	if tch, ok := repo.db.teachers[cls.TeacherID]; ok {
		cls.TeacherName = null.StringFrom(tch.FullName)
	}
	return cls
}

func (repo *classRepository) checkRefs(cls class.Class) error {
	if _, ok := repo.db.courses[cls.CourseID]; !ok {
		return class.ErrInvalidReference
	}
	if _, ok := repo.db.teachers[cls.TeacherID]; !ok {
		return class.ErrInvalidReference
	}
	return nil
}

func (repo *classRepository) Create(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkRefs(cls); err != nil {
		return class.Class{}, err
	}
	cls.ID = repo.db.nextID()
	cls.CurrentStudents = 0
	repo.db.classes[cls.ID] = &cls
	return repo.hydrate(cls), nil
}

func (repo *classRepository) Get(_ context.Context, id int64) (class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if cls, ok := repo.db.classes[id]; ok {
		return repo.hydrate(*cls), nil
	}
	return class.Class{}, core.NewNotFoundError("class")
}

func (repo *classRepository) Query(_ context.Context, filter class.QueryFilter) ([]class.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	classes := make([]class.Class, 0, len(repo.db.classes))
	for _, c := range repo.db.classes {
		cls := repo.hydrate(*c)
		switch {
		case filter.CourseID != 0 && cls.CourseID != filter.CourseID,
			filter.TeacherID != 0 && cls.TeacherID != filter.TeacherID,
			filter.Status != "" && cls.Status != filter.Status,
			!matches(filter.Search, cls.Name, cls.CourseName.String, cls.TeacherName.String):
			continue
		}
		classes = append(classes, cls)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].Name < classes[j].Name })
	return classes, nil
}

func (repo *classRepository) Update(_ context.Context, cls class.Class) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	current, ok := repo.db.classes[cls.ID]
	if !ok {
		return class.Class{}, core.NewNotFoundError("class")
	}
	if err := repo.checkRefs(cls); err != nil {
		return class.Class{}, err
	}
	cls.CurrentStudents = current.CurrentStudents
	repo.db.classes[cls.ID] = &cls
	return repo.hydrate(cls), nil
}

func (repo *classRepository) Delete(_ context.Context, id int64) (class.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cls, ok := repo.db.classes[id]
	if !ok {
		return class.Class{}, core.NewNotFoundError("class")
	}
	for _, enr := range repo.db.enrollments {
		if enr.ClassID == id {
			return class.Class{}, class.ErrHasEnrollments
		}
	}
	for _, ses := range repo.db.sessions {
		if ses.ClassID == id {
			return class.Class{}, class.ErrHasDependents
		}
	}
	for pair := range repo.db.summaries {
		if pair.ClassID == id {
			delete(repo.db.summaries, pair)
		}
	}
	deleted := repo.hydrate(*cls)
	delete(repo.db.classes, id)
	return deleted, nil
}

func (repo *classRepository) RecountStudents(_ context.Context, id int64) (int, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	cls, ok := repo.db.classes[id]
	if !ok {
		return 0, core.NewNotFoundError("class")
	}
	n := 0
	for _, enr := range repo.db.enrollments {
		if enr.ClassID == id && enr.Status == enrollment.StatusActive {
			n++
		}
	}
	cls.CurrentStudents = n
	return n, nil
}

func (repo *classRepository) IDs(_ context.Context) ([]int64, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	ids := make([]int64, 0, len(repo.db.classes))
	for id := range repo.db.classes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}
