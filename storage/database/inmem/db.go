// Package inmemdb implements the core repositories in memory. It enforces the same keys and
// references as the SQL schema and backs the service and API tests.
package inmemdb

import (
	"strings"
	"sync"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core/attendance"
	"github.com/trezcool/englishcenter/core/class"
	"github.com/trezcool/englishcenter/core/course"
	"github.com/trezcool/englishcenter/core/enrollment"
	"github.com/trezcool/englishcenter/core/session"
	"github.com/trezcool/englishcenter/core/student"
	"github.com/trezcool/englishcenter/core/teacher"
)

// DB holds every table behind a single lock, so cross-table checks see a consistent state.
type DB struct {
	mutex sync.RWMutex
	pk    int64

	students    map[int64]*student.Student
	teachers    map[int64]*teacher.Teacher
	courses     map[int64]*course.Course
	classes     map[int64]*class.Class
	sessions    map[int64]*session.Session
	enrollments map[int64]*enrollment.Enrollment
	attendance  map[int64]*attendance.Record
	summaries   map[attendance.Pair]*attendance.Summary
}

func Open() *DB {
	return &DB{
		students:    make(map[int64]*student.Student),
		teachers:    make(map[int64]*teacher.Teacher),
		courses:     make(map[int64]*course.Course),
		classes:     make(map[int64]*class.Class),
		sessions:    make(map[int64]*session.Session),
		enrollments: make(map[int64]*enrollment.Enrollment),
		attendance:  make(map[int64]*attendance.Record),
		summaries:   make(map[attendance.Pair]*attendance.Summary),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int64 {
	db.pk++
	return db.pk
}

func (db *DB) studentName(id int64) null.String {
	if std, ok := db.students[id]; ok {
		return null.StringFrom(std.FullName)
	}
	return null.String{}
}

func (db *DB) className(id int64) null.String {
	if cls, ok := db.classes[id]; ok {
		return null.StringFrom(cls.Name)
	}
	return null.String{}
}

// matches reports whether `term` is a case-insensitive substring of one of `fields`.
func matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
