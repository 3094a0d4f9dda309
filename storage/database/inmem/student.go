package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

// checkEmail must be called with the lock held.
func (repo *studentRepository) checkEmail(std student.Student) error {
	for _, s := range repo.db.students {
		if s.Email == std.Email && s.ID != std.ID {
			return student.ErrEmailExists
		}
	}
	return nil
}

func (repo *studentRepository) Create(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if err := repo.checkEmail(std); err != nil {
		return student.Student{}, err
	}
	std.ID = repo.db.nextID()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) Get(_ context.Context, id int64) (student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return *std, nil
	}
	return student.Student{}, core.NewNotFoundError("student")
}

func (repo *studentRepository) Query(_ context.Context, filter student.QueryFilter) ([]student.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	students := make([]student.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		if filter.Status != "" && std.Status != filter.Status {
			continue
		}
		if !matches(filter.Search, std.FullName, std.Email, std.Phone.String) {
			continue
		}
		students = append(students, *std)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].FullName < students[j].FullName })
	return students, nil
}

func (repo *studentRepository) Update(_ context.Context, std student.Student) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[std.ID]; !ok {
		return student.Student{}, core.NewNotFoundError("student")
	}
	if err := repo.checkEmail(std); err != nil {
		return student.Student{}, err
	}
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) Delete(_ context.Context, id int64) (student.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	std, ok := repo.db.students[id]
	if !ok {
		return student.Student{}, core.NewNotFoundError("student")
	}
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == id {
			return student.Student{}, student.ErrHasRecords
		}
	}
	for _, rec := range repo.db.attendance {
		if rec.StudentID == id {
			return student.Student{}, student.ErrHasRecords
		}
	}
	for pair := range repo.db.summaries {
		if pair.StudentID == id {
			delete(repo.db.summaries, pair)
		}
	}
	delete(repo.db.students, id)
	return *std, nil
}
