package teacher

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
	ErrHasClasses  = core.NewConflictError("cannot delete teacher: the teacher is assigned to classes")
)

type (
	Teacher struct {
		ID              int64        `db:"teacher_id" json:"teacher_id"`
		FullName        string       `db:"full_name" json:"full_name"`
		Email           string       `db:"email" json:"email"`
		Phone           null.String  `db:"phone" json:"phone"`
		Qualification   null.String  `db:"qualification" json:"qualification"`
		ExperienceYears int          `db:"experience_years" json:"experience_years"`
		Salary          null.Float64 `db:"salary" json:"salary"`
		HireDate        core.Date    `db:"hire_date" json:"hire_date"`
		Status          string       `db:"status" json:"status"`
	}

	// Input is the body of create & update requests.
	Input struct {
		FullName        string       `json:"full_name" validate:"required,max=100"`
		Email           string       `json:"email" validate:"required,email,max=100"`
		Phone           null.String  `json:"phone" validate:"omitempty,phone"`
		Qualification   null.String  `json:"qualification" validate:"omitempty,max=255"`
		ExperienceYears int          `json:"experience_years" validate:"gte=0,lte=80"`
		Salary          null.Float64 `json:"salary" validate:"omitempty,gte=0"`
		HireDate        core.Date    `json:"hire_date"`
		Status          string       `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	}

	QueryFilter struct {
		Search   string // case-insensitive match on full name, email or qualification
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

func (in Input) apply(tch Teacher) Teacher {
	tch.FullName = in.FullName
	tch.Email = in.Email
	tch.Phone = in.Phone
	tch.Qualification = in.Qualification
	tch.ExperienceYears = in.ExperienceYears
	tch.Salary = in.Salary
	if !in.HireDate.IsZero() {
		tch.HireDate = in.HireDate
	}
	if tch.HireDate.IsZero() {
		tch.HireDate = core.Today()
	}
	if in.Status != "" {
		tch.Status = in.Status
	}
	if tch.Status == "" {
		tch.Status = StatusActive
	}
	return tch
}
