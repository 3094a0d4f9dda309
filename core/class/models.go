package class

import (
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

const (
	StatusActive    = "ACTIVE"
	StatusInactive  = "INACTIVE"
	StatusCompleted = "COMPLETED"
)

var (
	// errors
	ErrInvalidReference = core.NewInvalidReferenceError("invalid course or teacher id")
	ErrHasEnrollments   = core.NewConflictError("cannot delete class: students are enrolled in this class")
	ErrHasDependents    = core.NewConflictError("cannot delete class: it has sessions or tests")

	errEndBeforeStart = errors.New("end_date must not be before start_date")
)

type (
	// Class is a scheduled instance of a course. CurrentStudents is derived: the number of ACTIVE enrollments.
	Class struct {
		ID              int64       `db:"class_id" json:"class_id"`
		Name            string      `db:"class_name" json:"class_name"`
		CourseID        int64       `db:"course_id" json:"course_id"`
		CourseName      null.String `db:"course_name" json:"course_name"`
		TeacherID       int64       `db:"teacher_id" json:"teacher_id"`
		TeacherName     null.String `db:"teacher_name" json:"teacher_name"`
		StartDate       core.Date   `db:"start_date" json:"start_date"`
		EndDate         core.Date   `db:"end_date" json:"end_date"`
		Schedule        null.String `db:"schedule" json:"schedule"`
		Room            null.String `db:"room" json:"room"`
		CurrentStudents int         `db:"current_students" json:"current_students"`
		Status          string      `db:"status" json:"status"`
	}

	// Input is the body of create & update requests. The student count is never client-supplied.
	Input struct {
		Name      string      `json:"class_name" validate:"required,max=100"`
		CourseID  int64       `json:"course_id" validate:"required,gt=0"`
		TeacherID int64       `json:"teacher_id" validate:"required,gt=0"`
		StartDate core.Date   `json:"start_date"`
		EndDate   core.Date   `json:"end_date"`
		Schedule  null.String `json:"schedule" validate:"omitempty,max=100"`
		Room      null.String `json:"room" validate:"omitempty,max=50"`
		Status    string      `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE COMPLETED"`
	}

	QueryFilter struct {
		Search    string // case-insensitive match on class, course or teacher name
		CourseID  int64
		TeacherID int64
		Status    string
		Ordering  []core.DBOrdering
	}
)

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Status = core.CleanString(in.Status)
	if err := validate.Struct(in); err != nil {
		return err
	}
	if !in.StartDate.IsZero() && !in.EndDate.IsZero() && in.EndDate.Before(in.StartDate.Time) {
		return core.NewValidationError(errEndBeforeStart, core.FieldError{Field: "end_date", Error: errEndBeforeStart.Error()})
	}
	return nil
}

func (in Input) apply(cls Class) Class {
	cls.Name = in.Name
	cls.CourseID = in.CourseID
	cls.TeacherID = in.TeacherID
	cls.StartDate = in.StartDate
	cls.EndDate = in.EndDate
	cls.Schedule = in.Schedule
	cls.Room = in.Room
	if in.Status != "" {
		cls.Status = in.Status
	}
	if cls.Status == "" {
		cls.Status = StatusActive
	}
	return cls
}
