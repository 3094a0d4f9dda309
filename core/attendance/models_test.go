package attendance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/englishcenter/core"
)

func TestNewSummary(t *testing.T) {
	pair := Pair{StudentID: 3, ClassID: 7}

	tests := []struct {
		name  string
		tally Tally
		want  float64
	}{
		{name: "no sessions", tally: Tally{}, want: 0},
		{name: "perfect", tally: Tally{Total: 5, Present: 5}, want: 100},
		{name: "late counts as attended", tally: Tally{Total: 5, Present: 3, Late: 1, Absent: 1}, want: 80},
		{name: "excused does not", tally: Tally{Total: 3, Present: 1, Excused: 2}, want: 33.33},
		{name: "never attended", tally: Tally{Total: 4, Absent: 3, Excused: 1}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum := NewSummary(pair, tt.tally)
			assert.Equal(t, Summary{
				StudentID:      3,
				ClassID:        7,
				TotalSessions:  tt.tally.Total,
				PresentCount:   tt.tally.Present,
				AbsentCount:    tt.tally.Absent,
				LateCount:      tt.tally.Late,
				ExcusedCount:   tt.tally.Excused,
				AttendanceRate: tt.want,
			}, sum)
		})
	}
}

func TestValidateMarks(t *testing.T) {
	validate, _ := core.NewValidator()

	assert.Equal(t, ErrNoRecords, ValidateMarks(validate, nil))
	assert.Equal(t, ErrNoRecords, ValidateMarks(validate, []Mark{}))

	marks := []Mark{
		{SessionID: 1, StudentID: 1, Status: " present "},
		{SessionID: 1, StudentID: 2, Status: "late"},
	}
	require.NoError(t, ValidateMarks(validate, marks))
	assert.Equal(t, StatusPresent, marks[0].Status, "statuses are normalized in place")
	assert.Equal(t, StatusLate, marks[1].Status)

	err := ValidateMarks(validate, []Mark{
		{SessionID: 1, StudentID: 1, Status: StatusPresent},
		{SessionID: 1, Status: "ON LEAVE"},
	})
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "records[1].student_id: student_id is required in all attendance records", vErr.Error())
	assert.Equal(t, []core.FieldError{
		{Field: "records[1].student_id", Error: "student_id is required in all attendance records"},
		{Field: "records[1].attendance_status", Error: "invalid attendance_status"},
	}, vErr.Fields)
}

func TestPairs(t *testing.T) {
	records := []Record{
		{ID: 1, StudentID: 1, ClassID: 10},
		{ID: 2, StudentID: 2, ClassID: 10},
		{ID: 3, StudentID: 1, ClassID: 10},
		{ID: 4, StudentID: 1, ClassID: 11},
	}
	assert.Equal(t, []Pair{
		{StudentID: 1, ClassID: 10},
		{StudentID: 2, ClassID: 10},
		{StudentID: 1, ClassID: 11},
	}, Pairs(records))
	assert.Empty(t, Pairs(nil))
}
