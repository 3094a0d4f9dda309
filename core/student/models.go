package student

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

var (
	// errors
	ErrEmailExists = core.NewDuplicateError("email already exists")
	ErrHasRecords  = core.NewConflictError("cannot delete student: the student has enrollments, attendance, scores or payments")
)

type (
	Student struct {
		ID               int64       `db:"student_id" json:"student_id"`
		FullName         string      `db:"full_name" json:"full_name"`
		Email            string      `db:"email" json:"email"`
		Phone            null.String `db:"phone" json:"phone"`
		Address          null.String `db:"address" json:"address"`
		DateOfBirth      core.Date   `db:"date_of_birth" json:"date_of_birth"`
		Gender           null.String `db:"gender" json:"gender"`
		RegistrationDate core.Date   `db:"registration_date" json:"registration_date"`
		Status           string      `db:"status" json:"status"`
	}

	// Input is the body of create & update requests.
	Input struct {
		FullName         string      `json:"full_name" validate:"required,max=100"`
		Email            string      `json:"email" validate:"required,email,max=100"`
		Phone            null.String `json:"phone" validate:"omitempty,phone"`
		Address          null.String `json:"address" validate:"omitempty,max=255"`
		DateOfBirth      core.Date   `json:"date_of_birth"`
		Gender           null.String `json:"gender" validate:"omitempty,max=10"`
		RegistrationDate core.Date   `json:"registration_date"`
		Status           string      `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	}

	QueryFilter struct {
		Search   string // case-insensitive match on full name, email or phone
		Status   string
		Ordering []core.DBOrdering
	}
)

func (in *Input) Validate(validate *validator.Validate) error {
	in.FullName = core.CleanString(in.FullName)
	in.Email = core.CleanString(in.Email, true)
	in.Status = core.CleanString(in.Status)
	return validate.Struct(in)
}

// apply copies the input onto `std`, keeping defaults for the fields left empty.
func (in Input) apply(std Student) Student {
	std.FullName = in.FullName
	std.Email = in.Email
	std.Phone = in.Phone
	std.Address = in.Address
	std.DateOfBirth = in.DateOfBirth
	std.Gender = in.Gender
	if !in.RegistrationDate.IsZero() {
		std.RegistrationDate = in.RegistrationDate
	}
	if std.RegistrationDate.IsZero() {
		std.RegistrationDate = core.Today()
	}
	if in.Status != "" {
		std.Status = in.Status
	}
	if std.Status == "" {
		std.Status = StatusActive
	}
	return std
}
