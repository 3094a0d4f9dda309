// Package sqlxrepos implements the core repositories on PostgreSQL with jmoiron/sqlx.
package sqlxrepos

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/storage/database"
)

// withTx runs fn inside a transaction, rolled back when fn (or the commit) fails.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return database.TranslateError(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Wrapf(err, "rollback failed: %v", rbErr)
		}
		return err
	}
	if err = tx.Commit(); err != nil {
		return database.TranslateError(err, "committing transaction")
	}
	return nil
}

// filter accumulates AND-ed conditions written with "?" placeholders.
type filter struct {
	conds []string
	args  []interface{}
}

func (f *filter) add(cond string, args ...interface{}) {
	f.conds = append(f.conds, cond)
	f.args = append(f.args, args...)
}

// search matches `term` case-insensitively against any of `columns`.
func (f *filter) search(term string, columns ...string) {
	if term == "" || len(columns) == 0 {
		return
	}
	val := likePattern(term)
	ors := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		ors = append(ors, col+" ILIKE ?")
		args = append(args, val)
	}
	f.add("("+strings.Join(ors, " OR ")+")", args...)
}

func (f filter) where() string {
	if len(f.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(f.conds, " AND ")
}

// selectQuery renders `base` + WHERE + ORDER BY with postgres bind vars.
func (f filter) selectQuery(base, orderBy string) string {
	return sqlx.Rebind(sqlx.DOLLAR, base+f.where()+" ORDER BY "+orderBy)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps `term` for a substring ILIKE, escaping its wildcards.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
