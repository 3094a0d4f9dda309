package core

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// GradeBand assigns Grade to every score >= Min.
type GradeBand struct {
	Min   float64 `json:"min"`
	Grade string  `json:"grade"`
}

// GradeScale is an ordered (highest first) threshold table. The last band is the fallback.
type GradeScale []GradeBand

// DefaultGradeScale is the band scale used for skill scores out of 9.
var DefaultGradeScale = GradeScale{
	{Min: 8.5, Grade: "Expert"},
	{Min: 7.5, Grade: "Very Good"},
	{Min: 6.5, Grade: "Good"},
	{Min: 5.5, Grade: "Competent"},
	{Min: 4.5, Grade: "Modest"},
	{Min: 3.5, Grade: "Limited"},
	{Min: 0, Grade: "Extremely Limited"},
}

// Grade returns the grade of the first band whose threshold `score` reaches.
func (s GradeScale) Grade(score float64) string {
	if len(s) == 0 {
		return ""
	}
	for _, band := range s {
		if score >= band.Min {
			return band.Grade
		}
	}
	return s[len(s)-1].Grade
}

// Grades lists the grades from highest to lowest.
func (s GradeScale) Grades() []string {
	grades := make([]string, 0, len(s))
	for _, band := range s {
		grades = append(grades, band.Grade)
	}
	return grades
}

// ParseGradeScale parses "8.5:Expert,7.5:Very Good,0:Limited". An empty string yields DefaultGradeScale.
func ParseGradeScale(s string) (GradeScale, error) {
	s = CleanString(s)
	if s == "" {
		return DefaultGradeScale, nil
	}

	var scale GradeScale
	for _, item := range strings.Split(s, ",") {
		parts := strings.SplitN(item, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid grade band %q", item)
		}
		min, err := strconv.ParseFloat(CleanString(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid grade threshold %q", parts[0])
		}
		grade := CleanString(parts[1])
		if grade == "" {
			return nil, fmt.Errorf("empty grade in band %q", item)
		}
		scale = append(scale, GradeBand{Min: min, Grade: grade})
	}
	sort.SliceStable(scale, func(i, j int) bool { return scale[i].Min > scale[j].Min })
	return scale, nil
}
