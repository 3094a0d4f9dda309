package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeScale_Grade(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{9, "Expert"},
		{8.5, "Expert"},
		{8.49, "Very Good"},
		{7.5, "Very Good"},
		{6.75, "Good"},
		{5.5, "Competent"},
		{4.5, "Modest"},
		{3.5, "Limited"},
		{3.49, "Extremely Limited"},
		{0, "Extremely Limited"},
		{-1, "Extremely Limited"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DefaultGradeScale.Grade(tt.score), "score %v", tt.score)
	}

	assert.Equal(t, "", GradeScale{}.Grade(5))
}

func TestParseGradeScale(t *testing.T) {
	scale, err := ParseGradeScale("")
	require.NoError(t, err)
	assert.Equal(t, DefaultGradeScale, scale)

	scale, err = ParseGradeScale(" 50:Pass , 80 : Distinction,0:Fail")
	require.NoError(t, err)
	assert.Equal(t, GradeScale{
		{Min: 80, Grade: "Distinction"},
		{Min: 50, Grade: "Pass"},
		{Min: 0, Grade: "Fail"},
	}, scale)
	assert.Equal(t, []string{"Distinction", "Pass", "Fail"}, scale.Grades())
	assert.Equal(t, "Pass", scale.Grade(79.99))

	for _, bad := range []string{"Pass", "x:Pass", "50:", "50:Pass,,0:Fail"} {
		_, err = ParseGradeScale(bad)
		assert.Error(t, err, bad)
	}
}
