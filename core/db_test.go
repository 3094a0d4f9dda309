package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderBy(t *testing.T) {
	columns := map[string]string{
		"full_name":         "s.full_name",
		"registration_date": "s.registration_date",
	}
	fallback := "s.full_name ASC"

	tests := []struct {
		name     string
		ordering []DBOrdering
		want     string
	}{
		{name: "none", want: fallback},
		{name: "unknown only", ordering: []DBOrdering{{Field: "password", Ascending: true}}, want: fallback},
		{name: "one", ordering: []DBOrdering{{Field: "full_name", Ascending: true}}, want: "s.full_name ASC"},
		{
			name:     "several, unknown skipped",
			ordering: []DBOrdering{{Field: "registration_date"}, {Field: "1; DROP TABLE students"}, {Field: "full_name", Ascending: true}},
			want:     "s.registration_date DESC, s.full_name ASC",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OrderBy(tt.ordering, columns, fallback))
		})
	}
}
