package score

import (
	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/englishcenter/core"
)

var (
	// errors
	ErrExists           = core.NewDuplicateError("score already exists for this student and test")
	ErrInvalidReference = core.NewInvalidReferenceError("invalid student or test id")
)

type (
	// Score holds a student's four skill scores for a test. Total and Grade are derived.
	Score struct {
		ID             int64        `db:"score_id" json:"score_id"`
		StudentID      int64        `db:"student_id" json:"student_id"`
		StudentName    null.String  `db:"student_name" json:"student_name"`
		TestID         int64        `db:"test_id" json:"test_id"`
		TestName       null.String  `db:"test_name" json:"test_name"`
		ListeningScore null.Float64 `db:"listening_score" json:"listening_score"`
		SpeakingScore  null.Float64 `db:"speaking_score" json:"speaking_score"`
		ReadingScore   null.Float64 `db:"reading_score" json:"reading_score"`
		WritingScore   null.Float64 `db:"writing_score" json:"writing_score"`
		TotalScore     null.Float64 `db:"total_score" json:"total_score"`
		Grade          null.String  `db:"grade" json:"grade"`
		Notes          null.String  `db:"notes" json:"notes"`
	}

	// Input is the body of create & update requests.
	Input struct {
		StudentID      int64        `json:"student_id" validate:"required,gt=0"`
		TestID         int64        `json:"test_id" validate:"required,gt=0"`
		ListeningScore null.Float64 `json:"listening_score" validate:"omitempty,gte=0,lte=10"`
		SpeakingScore  null.Float64 `json:"speaking_score" validate:"omitempty,gte=0,lte=10"`
		ReadingScore   null.Float64 `json:"reading_score" validate:"omitempty,gte=0,lte=10"`
		WritingScore   null.Float64 `json:"writing_score" validate:"omitempty,gte=0,lte=10"`
		Notes          null.String  `json:"notes"`
	}

	QueryFilter struct {
		Search    string // case-insensitive match on student name, test name or grade
		StudentID int64
		TestID    int64
		Ordering  []core.DBOrdering
	}

	// Statistics summarises every stored score.
	Statistics struct {
		TotalScores  int            `boil:"total_scores" json:"total_scores"`
		AverageScore null.Float64   `boil:"average_score" json:"average_score"`
		HighestScore null.Float64   `boil:"highest_score" json:"highest_score"`
		LowestScore  null.Float64   `boil:"lowest_score" json:"lowest_score"`
		GradeCounts  map[string]int `boil:"-" json:"grade_counts"`
	}

	GradeCount struct {
		Grade string `boil:"grade"`
		Count int    `boil:"count"`
	}
)

func (in *Input) Validate(validate *validator.Validate) error {
	return validate.Struct(in)
}

// apply copies the input onto `scr` and derives its total and grade.
func (in Input) apply(scr Score, scale core.GradeScale) Score {
	scr.StudentID = in.StudentID
	scr.TestID = in.TestID
	scr.ListeningScore = in.ListeningScore
	scr.SpeakingScore = in.SpeakingScore
	scr.ReadingScore = in.ReadingScore
	scr.WritingScore = in.WritingScore
	scr.Notes = in.Notes
	scr.TotalScore, scr.Grade = Total(scr, scale)
	return scr
}

// Total is the mean of the four skill scores rounded to 2 decimals, graded on `scale`.
// Both are null unless every skill was scored.
func Total(scr Score, scale core.GradeScale) (null.Float64, null.String) {
	skills := []null.Float64{scr.ListeningScore, scr.SpeakingScore, scr.ReadingScore, scr.WritingScore}
	var sum float64
	for _, s := range skills {
		if !s.Valid {
			return null.Float64{}, null.String{}
		}
		sum += s.Float64
	}
	total := core.Round2(sum / float64(len(skills)))
	return null.Float64From(total), null.StringFrom(scale.Grade(total))
}
