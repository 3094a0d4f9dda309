package session

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

const (
	StatusScheduled = "SCHEDULED"
	StatusCompleted = "COMPLETED"
	StatusCancelled = "CANCELLED"
)

var (
	// errors
	ErrInvalidClass       = core.NewInvalidReferenceError("invalid class id")
	ErrHasAttendance      = core.NewConflictError("cannot delete session: attendance has been recorded for it")
	// attendance summaries are per class, so attended sessions stay in their class
	ErrMoveWithAttendance = core.NewConflictError("cannot move session to another class: attendance has been recorded for it")
)

type (
	// Session is one meeting of a class.
	Session struct {
		ID              int64       `db:"session_id" json:"session_id"`
		ClassID         int64       `db:"class_id" json:"class_id"`
		ClassName       null.String `db:"class_name" json:"class_name"`
		SessionDate     core.Date   `db:"session_date" json:"session_date"`
		SessionTime     null.String `db:"session_time" json:"session_time"`
		DurationMinutes int         `db:"duration_minutes" json:"duration_minutes"`
		Topic           null.String `db:"topic" json:"topic"`
		Description     null.String `db:"description" json:"description"`
		Status          string      `db:"status" json:"status"`
		CreatedAt       time.Time   `db:"created_date" json:"created_date"`
		UpdatedAt       time.Time   `db:"updated_date" json:"updated_date"`
	}

	// Input is the body of create & update requests.
	Input struct {
		ClassID         int64       `json:"class_id" validate:"required,gt=0"`
		SessionDate     core.Date   `json:"session_date" validate:"required"`
		SessionTime     null.String `json:"session_time" validate:"omitempty,datetime=15:04"`
		DurationMinutes int         `json:"duration_minutes" validate:"gte=0,lte=600"`
		Topic           null.String `json:"topic" validate:"omitempty,max=255"`
		Description     null.String `json:"description"`
		Status          string      `json:"status" validate:"omitempty,oneof=SCHEDULED COMPLETED CANCELLED"`
	}

	QueryFilter struct {
		Search   string // case-insensitive match on topic, description or class name
		ClassID  int64
		Status   string
		Ordering []core.DBOrdering
	}
)

func (in *Input) Validate(validate *validator.Validate) error {
	in.Status = core.CleanString(in.Status)
	if in.SessionTime.Valid {
		in.SessionTime.String = core.CleanString(in.SessionTime.String)
		// "HH:MM:SS" -> "HH:MM"
		if len(in.SessionTime.String) == len("15:04:05") {
			in.SessionTime.String = in.SessionTime.String[:5]
		}
	}
	return validate.Struct(in)
}

func (in Input) apply(ses Session) Session {
	ses.ClassID = in.ClassID
	ses.SessionDate = in.SessionDate
	ses.SessionTime = in.SessionTime
	ses.DurationMinutes = in.DurationMinutes
	ses.Topic = in.Topic
	ses.Description = in.Description
	if in.Status != "" {
		ses.Status = in.Status
	}
	if ses.Status == "" {
		ses.Status = StatusScheduled
	}
	return ses
}
