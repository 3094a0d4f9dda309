package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) *teacherRepository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) checkEmail(tch teacher.Teacher) error {
	for _, t := range repo.db.teachers {
		if t.Email == tch.Email && t.ID != tch.ID {
			return teacher.ErrEmailExists
		}
	}
	return nil
}

func (repo *teacherRepository) Create(_ context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkEmail(tch); err != nil {
		return teacher.Teacher{}, err
	}
	tch.ID = repo.db.nextID()
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) Get(_ context.Context, id int64) (teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if tch, ok := repo.db.teachers[id]; ok {
		return *tch, nil
	}
	return teacher.Teacher{}, core.NewNotFoundError("teacher")
}

func (repo *teacherRepository) Query(_ context.Context, filter teacher.QueryFilter) ([]teacher.Teacher, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	teachers := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		if filter.Status != "" && tch.Status != filter.Status {
			continue
		}
		if !matches(filter.Search, tch.FullName, tch.Email, tch.Qualification.String) {
			continue
		}
		teachers = append(teachers, *tch)
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].FullName < teachers[j].FullName })
	return teachers, nil
}

func (repo *teacherRepository) Update(_ context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.teachers[tch.ID]; !ok {
		return teacher.Teacher{}, core.NewNotFoundError("teacher")
	}
	if err := repo.checkEmail(tch); err != nil {
		return teacher.Teacher{}, err
	}
	repo.db.teachers[tch.ID] = &tch
	return tch, nil
}

func (repo *teacherRepository) Delete(_ context.Context, id int64) (teacher.Teacher, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	tch, ok := repo.db.teachers[id]
	if !ok {
		return teacher.Teacher{}, core.NewNotFoundError("teacher")
	}
	for _, cls := range repo.db.classes {
		if cls.TeacherID == id {
			return teacher.Teacher{}, teacher.ErrHasClasses
		}
	}
	delete(repo.db.teachers, id)
	return *tch, nil
}
