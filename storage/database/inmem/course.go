package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) Create(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs.ID = repo.db.nextID()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) Get(_ context.Context, id int64) (course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, core.NewNotFoundError("course")
}

func (repo *courseRepository) Query(_ context.Context, filter course.QueryFilter) ([]course.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if (filter.Level != "" && crs.Level != filter.Level) || (filter.Status != "" && crs.Status != filter.Status) {
			continue
		}
		if !matches(filter.Search, crs.Name, crs.Description.String) {
			continue
		}
		courses = append(courses, *crs)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Name < courses[j].Name })
	return courses, nil
}

func (repo *courseRepository) Update(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, core.NewNotFoundError("course")
	}
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) Delete(_ context.Context, id int64) (course.Course, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	crs, ok := repo.db.courses[id]
	if !ok {
		return course.Course{}, core.NewNotFoundError("course")
	}
	for _, cls := range repo.db.classes {
		if cls.CourseID == id {
			return course.Course{}, course.ErrUsedByClasses
		}
	}
	delete(repo.db.courses, id)
	return *crs, nil
}
