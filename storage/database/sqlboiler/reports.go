// Package boiledrepos runs the reporting queries with sqlboiler raw queries.
package boiledrepos

import (
	"context"

	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/payment"
	"github.com/trezcool/englishcenter/core/score"
	"github.com/trezcool/englishcenter/core/student"
	"github.com/trezcool/englishcenter/storage/database"
)

type reportRepository struct {
	exec core.DBExecutor
}

var (
	// interface compliance checks
	_ score.Reporter   = (*reportRepository)(nil)
	_ payment.Reporter = (*reportRepository)(nil)
)

func NewReportRepository(exec core.DBExecutor) *reportRepository {
	return &reportRepository{exec: exec}
}

func (repo reportRepository) ScoreStatistics(ctx context.Context) (score.Statistics, error) {
	var stats score.Statistics
	err := queries.Raw(`
		SELECT COUNT(*) AS total_scores,
			ROUND(AVG(total_score), 2) AS average_score,
			MAX(total_score) AS highest_score,
			MIN(total_score) AS lowest_score
		FROM scores`,
	).Bind(ctx, repo.exec, &stats)
	if err != nil {
		return score.Statistics{}, database.TranslateError(err, "computing score statistics")
	}
	return stats, nil
}

func (repo reportRepository) GradeCounts(ctx context.Context) ([]score.GradeCount, error) {
	var counts []score.GradeCount
	err := queries.Raw(`
		SELECT grade, COUNT(*) AS count
		FROM scores
		WHERE grade IS NOT NULL
		GROUP BY grade`,
	).Bind(ctx, repo.exec, &counts)
	if err != nil {
		return nil, database.TranslateError(err, "counting grades")
	}
	return counts, nil
}

func (repo reportRepository) PaymentSummary(ctx context.Context) ([]payment.StudentTotal, error) {
	var totals []payment.StudentTotal
	err := queries.Raw(`
		SELECT s.student_id, s.full_name AS student_name,
			COUNT(p.payment_id) AS total_payments,
			COALESCE(SUM(p.amount), 0) AS total_amount,
			MAX(p.payment_date) AS last_payment_date,
			CASE WHEN COUNT(p.payment_id) > 0 THEN 'ACTIVE' ELSE 'INACTIVE' END AS payment_status
		FROM students s
		LEFT JOIN payments p ON p.student_id = s.student_id AND p.status = $1
		WHERE s.status = $2
		GROUP BY s.student_id, s.full_name
		ORDER BY total_amount DESC, s.full_name`,
		payment.StatusCompleted, student.StatusActive,
	).Bind(ctx, repo.exec, &totals)
	if err != nil {
		return nil, database.TranslateError(err, "summarising payments")
	}
	if totals == nil {
		totals = make([]payment.StudentTotal, 0)
	}
	return totals, nil
}
