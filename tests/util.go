// Package testutil builds fixtures for service and API tests.
package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
	"github.com/trezcool/englishcenter/core/class"
	"github.com/trezcool/englishcenter/core/course"
	"github.com/trezcool/englishcenter/core/enrollment"
	"github.com/trezcool/englishcenter/core/session"
	"github.com/trezcool/englishcenter/core/student"
	"github.com/trezcool/englishcenter/core/teacher"
)

func CreateStudent(t *testing.T, repo student.Repository, name, email string) student.Student {
	std, err := repo.Create(context.Background(), student.Student{
		FullName:         name,
		Email:            email,
		RegistrationDate: core.Today(),
		Status:           student.StatusActive,
	})
	if err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return std
}

func CreateTeacher(t *testing.T, repo teacher.Repository, name, email string) teacher.Teacher {
	tch, err := repo.Create(context.Background(), teacher.Teacher{
		FullName: name,
		Email:    email,
		HireDate: core.Today(),
		Status:   teacher.StatusActive,
	})
	if err != nil {
		t.Fatalf("createTeacher() failed: %v", err)
	}
	return tch
}

func CreateCourse(t *testing.T, repo course.Repository, name string, fee float64) course.Course {
	crs, err := repo.Create(context.Background(), course.Course{
		Name:          name,
		Level:         course.LevelBeginner,
		DurationWeeks: 12,
		Fee:           fee,
		MaxStudents:   20,
		Status:        course.StatusActive,
	})
	if err != nil {
		t.Fatalf("createCourse() failed: %v", err)
	}
	return crs
}

func CreateClass(t *testing.T, repo class.Repository, name string, courseID, teacherID int64) class.Class {
	cls, err := repo.Create(context.Background(), class.Class{
		Name:      name,
		CourseID:  courseID,
		TeacherID: teacherID,
		StartDate: core.NewDate(2024, 1, 8),
		EndDate:   core.NewDate(2024, 3, 29),
		Status:    class.StatusActive,
	})
	if err != nil {
		t.Fatalf("createClass() failed: %v", err)
	}
	return cls
}

func CreateSession(t *testing.T, repo session.Repository, classID int64, date core.Date) session.Session {
	ses, err := repo.Create(context.Background(), session.Session{
		ClassID:         classID,
		SessionDate:     date,
		DurationMinutes: 90,
		Status:          session.StatusScheduled,
	})
	if err != nil {
		t.Fatalf("createSession() failed: %v", err)
	}
	return ses
}

func CreateEnrollment(t *testing.T, repo enrollment.Repository, studentID, classID int64, status string) enrollment.Enrollment {
	enr, err := repo.Create(context.Background(), enrollment.Enrollment{
		StudentID:      studentID,
		ClassID:        classID,
		EnrollmentDate: core.Today(),
		PaymentStatus:  enrollment.PaymentPending,
		Status:         status,
	})
	if err != nil {
		t.Fatalf("createEnrollment() failed: %v", err)
	}
	return enr
}

func MarkAttendance(t *testing.T, repo attendance.Repository, sessionID, studentID int64, status attendance.Status) attendance.Record {
	rec, err := repo.Upsert(context.Background(), attendance.Mark{
		SessionID: sessionID,
		StudentID: studentID,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("markAttendance() failed: %v", err)
	}
	return rec
}

// Fixture is a small center: one course taught by one teacher in two classes,
// three students and five sessions of the first class.
type Fixture struct {
	Course   course.Course
	Teacher  teacher.Teacher
	Classes  []class.Class
	Students []student.Student
	Sessions []session.Session
}

type FixtureRepos struct {
	Students student.Repository
	Teachers teacher.Repository
	Courses  course.Repository
	Classes  class.Repository
	Sessions session.Repository
}

func CreateFixture(t *testing.T, repos FixtureRepos) Fixture {
	fx := Fixture{
		Course:  CreateCourse(t, repos.Courses, "General English", 300),
		Teacher: CreateTeacher(t, repos.Teachers, "Grace Mbuyi", "grace@center.test"),
	}
	for _, name := range []string{"GE-A1 Morning", "GE-A1 Evening"} {
		fx.Classes = append(fx.Classes, CreateClass(t, repos.Classes, name, fx.Course.ID, fx.Teacher.ID))
	}
	for i, name := range []string{"Amani Kabila", "Bora Tshisekedi", "Chantal Ilunga"} {
		fx.Students = append(fx.Students, CreateStudent(t, repos.Students, name, fmt.Sprintf("student%d@center.test", i+1)))
	}
	for day := 8; day <= 12; day++ {
		fx.Sessions = append(fx.Sessions, CreateSession(t, repos.Sessions, fx.Classes[0].ID, core.NewDate(2024, 1, day)))
	}
	return fx
}
