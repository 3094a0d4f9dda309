package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/score"
	"github.com/trezcool/englishcenter/storage/database"
)

const scoreSelect = `
	SELECT sc.score_id, sc.student_id, s.full_name AS student_name, sc.test_id, t.test_name,
		sc.listening_score, sc.speaking_score, sc.reading_score, sc.writing_score, sc.total_score, sc.grade, sc.notes
	FROM scores sc
	LEFT JOIN students s ON s.student_id = sc.student_id
	LEFT JOIN tests t ON t.test_id = sc.test_id`

var scoreOrdering = map[string]string{
	"score_id":     "sc.score_id",
	"student_name": "s.full_name",
	"test_name":    "t.test_name",
	"total_score":  "sc.total_score",
	"grade":        "sc.grade",
}

type scoreRepository struct {
	db *sqlx.DB
}

var _ score.Repository = (*scoreRepository)(nil) // interface compliance check

func NewScoreRepository(db *sqlx.DB) *scoreRepository {
	return &scoreRepository{db: db}
}

func (repo *scoreRepository) mapping() database.Mapping {
	return database.Mapping{
		NotFound:   core.NewNotFoundError("score"),
		ForeignKey: score.ErrInvalidReference,
		Unique:     score.ErrExists,
	}
}

func (repo *scoreRepository) Create(ctx context.Context, scr score.Score) (score.Score, error) {
	var id int64
	err := repo.db.GetContext(ctx, &id, `
		INSERT INTO scores (
			student_id, test_id, listening_score, speaking_score, reading_score, writing_score, total_score, grade, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING score_id`,
		scr.StudentID, scr.TestID, scr.ListeningScore, scr.SpeakingScore, scr.ReadingScore, scr.WritingScore,
		scr.TotalScore, scr.Grade, scr.Notes,
	)
	if err != nil {
		return score.Score{}, database.TranslateError(err, "inserting score", repo.mapping())
	}
	return repo.Get(ctx, id)
}

func (repo *scoreRepository) Get(ctx context.Context, id int64) (score.Score, error) {
	var scr score.Score
	if err := repo.db.GetContext(ctx, &scr, scoreSelect+` WHERE sc.score_id = $1`, id); err != nil {
		return score.Score{}, database.TranslateError(err, "getting score", repo.mapping())
	}
	return scr, nil
}

func (repo *scoreRepository) Query(ctx context.Context, qf score.QueryFilter) ([]score.Score, error) {
	var f filter
	f.search(qf.Search, "s.full_name", "t.test_name", "sc.grade")
	if qf.StudentID != 0 {
		f.add("sc.student_id = ?", qf.StudentID)
	}
	if qf.TestID != 0 {
		f.add("sc.test_id = ?", qf.TestID)
	}

	scores := make([]score.Score, 0)
	q := f.selectQuery(scoreSelect, core.OrderBy(qf.Ordering, scoreOrdering, "sc.total_score DESC NULLS LAST, sc.score_id"))
	if err := repo.db.SelectContext(ctx, &scores, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying scores")
	}
	return scores, nil
}

func (repo *scoreRepository) Update(ctx context.Context, scr score.Score) (score.Score, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE scores
		SET student_id = $1, test_id = $2, listening_score = $3, speaking_score = $4, reading_score = $5,
			writing_score = $6, total_score = $7, grade = $8, notes = $9
		WHERE score_id = $10`,
		scr.StudentID, scr.TestID, scr.ListeningScore, scr.SpeakingScore, scr.ReadingScore, scr.WritingScore,
		scr.TotalScore, scr.Grade, scr.Notes, scr.ID,
	)
	if err != nil {
		return score.Score{}, database.TranslateError(err, "updating score", repo.mapping())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return score.Score{}, core.NewNotFoundError("score")
	}
	return repo.Get(ctx, scr.ID)
}

func (repo *scoreRepository) Delete(ctx context.Context, id int64) (score.Score, error) {
	scr, err := repo.Get(ctx, id)
	if err != nil {
		return score.Score{}, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM scores WHERE score_id = $1`, id)
	if err != nil {
		return score.Score{}, database.TranslateError(err, "deleting score")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return score.Score{}, core.NewNotFoundError("score")
	}
	return scr, nil
}
