package course

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

const (
	LevelBeginner     = "BEGINNER"
	LevelIntermediate = "INTERMEDIATE"
	LevelAdvanced     = "ADVANCED"

	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
)

var ErrUsedByClasses = core.NewConflictError("cannot delete course: it is being used in classes")

type (
	Course struct {
		ID            int64       `db:"course_id" json:"course_id"`
		Name          string      `db:"course_name" json:"course_name"`
		Description   null.String `db:"description" json:"description"`
		Level         string      `db:"level" json:"level"`
		DurationWeeks int         `db:"duration_weeks" json:"duration_weeks"`
		Fee           float64     `db:"fee" json:"fee"`
		MaxStudents   int         `db:"max_students" json:"max_students"`
		Status        string      `db:"status" json:"status"`
	}

	// Input is the body of create & update requests.
	Input struct {
		Name          string      `json:"course_name" validate:"required,max=100"`
		Description   null.String `json:"description"`
		Level         string      `json:"level" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED"`
		DurationWeeks int         `json:"duration_weeks" validate:"gte=0"`
		Fee           float64     `json:"fee" validate:"gte=0"`
		MaxStudents   int         `json:"max_students" validate:"gte=0"`
		Status        string      `json:"status" validate:"omitempty,oneof=ACTIVE INACTIVE"`
	}

	QueryFilter struct {
		Search   string // case-insensitive match on name or description
		Level    string
		Status   string
		Ordering []core.DBOrdering
	}
)

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Level = core.CleanString(in.Level)
	in.Status = core.CleanString(in.Status)
	return validate.Struct(in)
}

func (in Input) apply(crs Course) Course {
	crs.Name = in.Name
	crs.Description = in.Description
	crs.DurationWeeks = in.DurationWeeks
	crs.Fee = in.Fee
	crs.MaxStudents = in.MaxStudents
	if in.Level != "" {
		crs.Level = in.Level
	}
	if crs.Level == "" {
		crs.Level = LevelBeginner
	}
	if in.Status != "" {
		crs.Status = in.Status
	}
	if crs.Status == "" {
		crs.Status = StatusActive
	}
	return crs
}
