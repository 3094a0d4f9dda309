package sqlxrepos

import (
	"context"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/enrollment"
)

func TestEnrollmentRepository_Create_constraints(t *testing.T) {
	tests := []struct {
		name    string
		code    pq.ErrorCode
		wantErr error
	}{
		{name: "already enrolled", code: "23505", wantErr: enrollment.ErrAlreadyEnrolled},
		{name: "unknown student or class", code: "23503", wantErr: enrollment.ErrInvalidReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setup(t)
			mock.ExpectQuery(stmt("INSERT INTO enrollments")).
				WithArgs(int64(1), int64(2), "2024-01-08", 0.0, "PENDING", "ACTIVE").
				WillReturnError(&pq.Error{Code: tt.code})

			_, err := NewEnrollmentRepository(db).Create(context.Background(), enrollment.Enrollment{
				StudentID:      1,
				ClassID:        2,
				EnrollmentDate: core.NewDate(2024, 1, 8),
				PaymentStatus:  enrollment.PaymentPending,
				Status:         enrollment.StatusActive,
			})
			assert.Equal(t, tt.wantErr, err)
			checkExpectations(t, mock)
		})
	}
}
