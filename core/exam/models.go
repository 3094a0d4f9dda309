// Package exam manages the tests students sit in a class.
package exam

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"

	DefaultMaxScore = 10
)

var (
	// errors
	ErrInvalidReference = core.NewInvalidReferenceError("invalid class or test type id")
	ErrHasScores        = core.NewConflictError("cannot delete test: scores have been recorded for it")
)

type (
	Test struct {
		ID              int64       `db:"test_id" json:"test_id"`
		Name            string      `db:"test_name" json:"test_name"`
		ClassID         null.Int64  `db:"class_id" json:"class_id"`
		ClassName       null.String `db:"class_name" json:"class_name"`
		TestTypeID      null.Int64  `db:"test_type_id" json:"test_type_id"`
		TestTypeName    null.String `db:"test_type_name" json:"test_type_name"`
		TestDate        core.Date   `db:"test_date" json:"test_date"`
		MaxScore        float64     `db:"max_score" json:"max_score"`
		DurationMinutes int         `db:"duration_minutes" json:"duration_minutes"`
		Description     null.String `db:"description" json:"description"`
		Status          string      `db:"status" json:"status"`
	}

	// Input is the body of create & update requests.
	Input struct {
		Name            string       `json:"test_name" validate:"required,max=100"`
		ClassID         null.Int64   `json:"class_id" validate:"omitempty,gt=0"`
		TestTypeID      null.Int64   `json:"test_type_id" validate:"omitempty,gt=0"`
		TestDate        core.Date    `json:"test_date" validate:"required"`
		MaxScore        null.Float64 `json:"max_score" validate:"omitempty,gt=0"`
		DurationMinutes int          `json:"duration_minutes" validate:"gte=0,lte=600"`
		Description     null.String  `json:"description"`
		Status          string       `json:"status" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
	}

	QueryFilter struct {
		Search   string // case-insensitive match on test, class or test type name
		ClassID  int64
		Status   string
		Ordering []core.DBOrdering
	}
)

func (in *Input) Validate(validate *validator.Validate) error {
	in.Name = core.CleanString(in.Name)
	in.Status = core.CleanString(in.Status)
	return validate.Struct(in)
}

func (in Input) apply(tst Test) Test {
	tst.Name = in.Name
	tst.ClassID = in.ClassID
	tst.TestTypeID = in.TestTypeID
	tst.TestDate = in.TestDate
	tst.MaxScore = in.MaxScore.Float64
	if tst.MaxScore == 0 {
		tst.MaxScore = DefaultMaxScore
	}
	tst.DurationMinutes = in.DurationMinutes
	tst.Description = in.Description
	if in.Status != "" {
		tst.Status = in.Status
	}
	if tst.Status == "" {
		tst.Status = StatusScheduled
	}
	return tst
}
