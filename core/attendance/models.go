package attendance

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

type Status string

const (
	StatusPresent Status = "PRESENT"
	StatusAbsent  Status = "ABSENT"
	StatusLate    Status = "LATE"
	StatusExcused Status = "EXCUSED"
)

var (
	// errors
	ErrInvalidReference        = core.NewInvalidReferenceError("invalid session or student id")
	ErrInvalidSummaryReference = core.NewInvalidReferenceError("invalid student or class id")
	ErrNoRecords               = core.NewValidationError(errors.New("attendance records array cannot be empty"))
	ErrKeyChange               = core.NewValidationError(errors.New("session_id and student_id of an attendance record cannot be changed"))
)

type (
	// Record is the attendance of one student at one session. (SessionID, StudentID) is unique.
	Record struct {
		ID          int64       `db:"attendance_id" json:"attendance_id"`
		SessionID   int64       `db:"session_id" json:"session_id"`
		StudentID   int64       `db:"student_id" json:"student_id"`
		StudentName null.String `db:"student_name" json:"student_name"`
		ClassID     int64       `db:"class_id" json:"class_id"`
		SessionDate core.Date   `db:"session_date" json:"session_date"`
		Status      Status      `db:"attendance_status" json:"attendance_status"`
		Notes       null.String `db:"notes" json:"notes"`
		CreatedAt   time.Time   `db:"created_date" json:"created_date"`
		UpdatedAt   time.Time   `db:"updated_date" json:"updated_date"`
	}

	// Mark is the body of attendance writes; it is upserted on (SessionID, StudentID).
	Mark struct {
		SessionID int64       `json:"session_id" validate:"required,gt=0"`
		StudentID int64       `json:"student_id" validate:"required,gt=0"`
		Status    Status      `json:"attendance_status" validate:"required,oneof=PRESENT ABSENT LATE EXCUSED"`
		Notes     null.String `json:"notes" validate:"omitempty,max=500"`
	}

	QueryFilter struct {
		SessionID int64
		StudentID int64
		ClassID   int64
		Status    Status
		Ordering  []core.DBOrdering
	}

	// Pair identifies the summary of a student in a class.
	Pair struct {
		StudentID int64 `db:"student_id"`
		ClassID   int64 `db:"class_id"`
	}

	// Tally counts a student's attendance records over the sessions of a class.
	Tally struct {
		Total   int `db:"total_sessions"`
		Present int `db:"present_count"`
		Absent  int `db:"absent_count"`
		Late    int `db:"late_count"`
		Excused int `db:"excused_count"`
	}

	// Summary is the stored aggregate of a (student, class) pair's attendance.
	Summary struct {
		ID             int64       `db:"summary_id" json:"summary_id"`
		StudentID      int64       `db:"student_id" json:"student_id"`
		StudentName    null.String `db:"student_name" json:"student_name"`
		ClassID        int64       `db:"class_id" json:"class_id"`
		ClassName      null.String `db:"class_name" json:"class_name"`
		TotalSessions  int         `db:"total_sessions" json:"total_sessions"`
		PresentCount   int         `db:"present_count" json:"present_count"`
		AbsentCount    int         `db:"absent_count" json:"absent_count"`
		LateCount      int         `db:"late_count" json:"late_count"`
		ExcusedCount   int         `db:"excused_count" json:"excused_count"`
		AttendanceRate float64     `db:"attendance_rate" json:"attendance_rate"`
		LastUpdated    time.Time   `db:"last_updated" json:"last_updated"`
	}

	SummaryFilter struct {
		StudentID int64
		ClassID   int64
	}
)

func (m *Mark) clean() {
	m.Status = Status(strings.ToUpper(core.CleanString(string(m.Status))))
}

func (m *Mark) Validate(validate *validator.Validate) error {
	m.clean()
	return validate.Struct(m)
}

func (r Record) Pair() Pair {
	return Pair{StudentID: r.StudentID, ClassID: r.ClassID}
}

// Rate is the share of attended sessions, lateness included, as a percentage with 2 decimals.
func (t Tally) Rate() float64 {
	return core.Percentage(t.Present+t.Late, t.Total)
}

// NewSummary builds the summary of `pair` from its tally.
func NewSummary(pair Pair, t Tally) Summary {
	return Summary{
		StudentID:      pair.StudentID,
		ClassID:        pair.ClassID,
		TotalSessions:  t.Total,
		PresentCount:   t.Present,
		AbsentCount:    t.Absent,
		LateCount:      t.Late,
		ExcusedCount:   t.Excused,
		AttendanceRate: t.Rate(),
	}
}

// ValidateMarks checks every mark of a batch, reporting the offending record index.
func ValidateMarks(validate *validator.Validate, marks []Mark) error {
	if len(marks) == 0 {
		return ErrNoRecords
	}

	var fields []core.FieldError
	for i := range marks {
		marks[i].clean()
		err := validate.Struct(&marks[i])
		if err == nil {
			continue
		}
		var vErrs validator.ValidationErrors
		if !errors.As(err, &vErrs) {
			return err
		}
		for _, fe := range vErrs {
			msg := fmt.Sprintf("%s is required in all attendance records", fe.Field())
			if fe.Tag() != "required" {
				msg = fmt.Sprintf("invalid %s", fe.Field())
			}
			fields = append(fields, core.FieldError{Field: fmt.Sprintf("records[%d].%s", i, fe.Field()), Error: msg})
		}
	}
	if len(fields) > 0 {
		return core.NewValidationError(fmt.Errorf("%s: %s", fields[0].Field, fields[0].Error), fields...)
	}
	return nil
}

// Pairs returns the distinct (student, class) pairs touched by `records`, in first-seen order.
func Pairs(records []Record) []Pair {
	seen := make(map[Pair]bool, len(records))
	pairs := make([]Pair, 0, len(records))
	for _, r := range records {
		p := r.Pair()
		if seen[p] {
			continue
		}
		seen[p] = true
		pairs = append(pairs, p)
	}
	return pairs
}
