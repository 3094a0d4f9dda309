package enrollment

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

const (
	StatusActive    = "ACTIVE"
	StatusPending   = "PENDING"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"

	PaymentPending = "PENDING"
	PaymentPartial = "PARTIAL"
	PaymentPaid    = "PAID"
)

var (
	// errors
	ErrAlreadyEnrolled  = core.NewDuplicateError("student already enrolled in this class")
	ErrInvalidReference = core.NewInvalidReferenceError("invalid student or class id")
)

type (
	// Enrollment links a student to a class. At most one exists per (StudentID, ClassID).
	Enrollment struct {
		ID             int64        `db:"enrollment_id" json:"enrollment_id"`
		StudentID      int64        `db:"student_id" json:"student_id"`
		StudentName    null.String  `db:"student_name" json:"student_name"`
		ClassID        int64        `db:"class_id" json:"class_id"`
		ClassName      null.String  `db:"class_name" json:"class_name"`
		CourseFee      null.Float64 `db:"course_fee" json:"course_fee"`
		EnrollmentDate core.Date    `db:"enrollment_date" json:"enrollment_date"`
		FeePaid        float64      `db:"fee_paid" json:"fee_paid"`
		PaymentStatus  string       `db:"payment_status" json:"payment_status"`
		Status         string       `db:"status" json:"status"`
	}

	NewEnrollment struct {
		StudentID      int64        `json:"student_id" validate:"required,gt=0"`
		ClassID        int64        `json:"class_id" validate:"required,gt=0"`
		EnrollmentDate core.Date    `json:"enrollment_date"`
		FeePaid        null.Float64 `json:"fee_paid" validate:"omitempty,gte=0"`
		PaymentStatus  string       `json:"payment_status" validate:"omitempty,oneof=PENDING PARTIAL PAID"`
		Status         string       `json:"status" validate:"omitempty,oneof=ACTIVE PENDING CANCELLED COMPLETED"`
	}

	// UpdateEnrollment is a patch: absent fields keep their current value.
	UpdateEnrollment struct {
		StudentID      null.Int64   `json:"student_id" validate:"omitempty,gt=0"`
		ClassID        null.Int64   `json:"class_id" validate:"omitempty,gt=0"`
		EnrollmentDate core.Date    `json:"enrollment_date"`
		FeePaid        null.Float64 `json:"fee_paid" validate:"omitempty,gte=0"`
		PaymentStatus  string       `json:"payment_status" validate:"omitempty,oneof=PENDING PARTIAL PAID"`
		Status         string       `json:"status" validate:"omitempty,oneof=ACTIVE PENDING CANCELLED COMPLETED"`
	}

	QueryFilter struct {
		Search    string // case-insensitive match on student or class name
		StudentID int64
		ClassID   int64
		Status    string
		Ordering  []core.DBOrdering
	}
)

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	ne.PaymentStatus = core.CleanString(ne.PaymentStatus)
	ne.Status = core.CleanString(ne.Status)
	return validate.Struct(ne)
}

// enrollment builds the Enrollment to insert, filling the defaults.
func (ne NewEnrollment) enrollment() Enrollment {
	enr := Enrollment{
		StudentID:      ne.StudentID,
		ClassID:        ne.ClassID,
		EnrollmentDate: ne.EnrollmentDate,
		FeePaid:        ne.FeePaid.Float64,
		PaymentStatus:  ne.PaymentStatus,
		Status:         ne.Status,
	}
	if enr.EnrollmentDate.IsZero() {
		enr.EnrollmentDate = core.Today()
	}
	if enr.PaymentStatus == "" {
		enr.PaymentStatus = PaymentPending
	}
	if enr.Status == "" {
		enr.Status = StatusActive
	}
	return enr
}

func (ue *UpdateEnrollment) Validate(validate *validator.Validate) error {
	ue.PaymentStatus = core.CleanString(ue.PaymentStatus)
	ue.Status = core.CleanString(ue.Status)
	return validate.Struct(ue)
}

func (ue UpdateEnrollment) apply(enr Enrollment) Enrollment {
	if ue.StudentID.Valid {
		enr.StudentID = ue.StudentID.Int64
	}
	if ue.ClassID.Valid {
		enr.ClassID = ue.ClassID.Int64
	}
	if !ue.EnrollmentDate.IsZero() {
		enr.EnrollmentDate = ue.EnrollmentDate
	}
	if ue.FeePaid.Valid {
		enr.FeePaid = ue.FeePaid.Float64
	}
	if ue.PaymentStatus != "" {
		enr.PaymentStatus = ue.PaymentStatus
	}
	if ue.Status != "" {
		enr.Status = ue.Status
	}
	return enr
}
