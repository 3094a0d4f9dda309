package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/exam"
	"github.com/trezcool/englishcenter/storage/database"
)

const testSelect = `
	SELECT t.test_id, t.test_name, t.class_id, c.class_name, t.test_type_id, tt.type_name AS test_type_name,
		t.test_date, t.max_score, t.duration_minutes, t.description, t.status
	FROM tests t
	LEFT JOIN classes c ON c.class_id = t.class_id
	LEFT JOIN test_types tt ON tt.test_type_id = t.test_type_id`

var testOrdering = map[string]string{
	"test_id":    "t.test_id",
	"test_name":  "t.test_name",
	"test_date":  "t.test_date",
	"class_name": "c.class_name",
	"status":     "t.status",
}

type testRepository struct {
	db *sqlx.DB
}

var _ exam.Repository = (*testRepository)(nil) // interface compliance check

func NewTestRepository(db *sqlx.DB) *testRepository {
	return &testRepository{db: db}
}

func (repo *testRepository) mapping() database.Mapping {
	return database.Mapping{NotFound: core.NewNotFoundError("test"), ForeignKey: exam.ErrInvalidReference}
}

func (repo *testRepository) Create(ctx context.Context, tst exam.Test) (exam.Test, error) {
	var id int64
	err := repo.db.GetContext(ctx, &id, `
		INSERT INTO tests (test_name, class_id, test_type_id, test_date, max_score, duration_minutes, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING test_id`,
		tst.Name, tst.ClassID, tst.TestTypeID, tst.TestDate, tst.MaxScore, tst.DurationMinutes, tst.Description, tst.Status,
	)
	if err != nil {
		return exam.Test{}, database.TranslateError(err, "inserting test", repo.mapping())
	}
	return repo.Get(ctx, id)
}

func (repo *testRepository) Get(ctx context.Context, id int64) (exam.Test, error) {
	var tst exam.Test
	if err := repo.db.GetContext(ctx, &tst, testSelect+` WHERE t.test_id = $1`, id); err != nil {
		return exam.Test{}, database.TranslateError(err, "getting test", repo.mapping())
	}
	return tst, nil
}

func (repo *testRepository) Query(ctx context.Context, qf exam.QueryFilter) ([]exam.Test, error) {
	var f filter
	f.search(qf.Search, "t.test_name", "c.class_name", "tt.type_name")
	if qf.ClassID != 0 {
		f.add("t.class_id = ?", qf.ClassID)
	}
	if qf.Status != "" {
		f.add("t.status = ?", qf.Status)
	}

	tests := make([]exam.Test, 0)
	q := f.selectQuery(testSelect, core.OrderBy(qf.Ordering, testOrdering, "t.test_date DESC, t.test_id DESC"))
	if err := repo.db.SelectContext(ctx, &tests, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying tests")
	}
	return tests, nil
}

func (repo *testRepository) Update(ctx context.Context, tst exam.Test) (exam.Test, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE tests
		SET test_name = $1, class_id = $2, test_type_id = $3, test_date = $4, max_score = $5, duration_minutes = $6,
			description = $7, status = $8
		WHERE test_id = $9`,
		tst.Name, tst.ClassID, tst.TestTypeID, tst.TestDate, tst.MaxScore, tst.DurationMinutes, tst.Description,
		tst.Status, tst.ID,
	)
	if err != nil {
		return exam.Test{}, database.TranslateError(err, "updating test", repo.mapping())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Test{}, core.NewNotFoundError("test")
	}
	return repo.Get(ctx, tst.ID)
}

func (repo *testRepository) Delete(ctx context.Context, id int64) (exam.Test, error) {
	tst, err := repo.Get(ctx, id)
	if err != nil {
		return exam.Test{}, err
	}
	res, err := repo.db.ExecContext(ctx, `DELETE FROM tests WHERE test_id = $1`, id)
	if err != nil {
		return exam.Test{}, database.TranslateError(err, "deleting test", database.Mapping{ForeignKey: exam.ErrHasScores})
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return exam.Test{}, core.NewNotFoundError("test")
	}
	return tst, nil
}
