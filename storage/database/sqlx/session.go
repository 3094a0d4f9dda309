package sqlxrepos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/session"
	"github.com/trezcool/englishcenter/storage/database"
)

const sessionSelect = `
	SELECT s.session_id, s.class_id, c.class_name, s.session_date, to_char(s.session_time, 'HH24:MI') AS session_time,
		s.duration_minutes, s.topic, s.description, s.status, s.created_date, s.updated_date
	FROM sessions s
	LEFT JOIN classes c ON c.class_id = s.class_id`

var sessionOrdering = map[string]string{
	"session_id":   "s.session_id",
	"session_date": "s.session_date",
	"session_time": "s.session_time",
	"class_name":   "c.class_name",
	"status":       "s.status",
}

type sessionRepository struct {
	db *sqlx.DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *sqlx.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) mapping() database.Mapping {
	return database.Mapping{NotFound: core.NewNotFoundError("session"), ForeignKey: session.ErrInvalidClass}
}

func (repo *sessionRepository) Create(ctx context.Context, ses session.Session) (session.Session, error) {
	var id int64
	err := repo.db.GetContext(ctx, &id, `
		INSERT INTO sessions (class_id, session_date, session_time, duration_minutes, topic, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING session_id`,
		ses.ClassID, ses.SessionDate, ses.SessionTime, ses.DurationMinutes, ses.Topic, ses.Description, ses.Status,
	)
	if err != nil {
		return session.Session{}, database.TranslateError(err, "inserting session", repo.mapping())
	}
	return repo.Get(ctx, id)
}

func (repo *sessionRepository) Get(ctx context.Context, id int64) (session.Session, error) {
	var ses session.Session
	if err := repo.db.GetContext(ctx, &ses, sessionSelect+` WHERE s.session_id = $1`, id); err != nil {
		return session.Session{}, database.TranslateError(err, "getting session", repo.mapping())
	}
	return ses, nil
}

func (repo *sessionRepository) Query(ctx context.Context, qf session.QueryFilter) ([]session.Session, error) {
	var f filter
	f.search(qf.Search, "s.topic", "s.description", "c.class_name")
	if qf.ClassID != 0 {
		f.add("s.class_id = ?", qf.ClassID)
	}
	if qf.Status != "" {
		f.add("s.status = ?", qf.Status)
	}

	sessions := make([]session.Session, 0)
	q := f.selectQuery(sessionSelect, core.OrderBy(qf.Ordering, sessionOrdering, "s.session_date DESC, s.session_time DESC"))
	if err := repo.db.SelectContext(ctx, &sessions, q, f.args...); err != nil {
		return nil, database.TranslateError(err, "querying sessions")
	}
	return sessions, nil
}

func (repo *sessionRepository) Update(ctx context.Context, ses session.Session) (session.Session, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE sessions
		SET class_id = $1, session_date = $2, session_time = $3, duration_minutes = $4, topic = $5,
			description = $6, status = $7, updated_date = CURRENT_TIMESTAMP
		WHERE session_id = $8
			AND (class_id = $1 OR NOT EXISTS (SELECT 1 FROM attendance a WHERE a.session_id = $8))`,
		ses.ClassID, ses.SessionDate, ses.SessionTime, ses.DurationMinutes, ses.Topic, ses.Description, ses.Status, ses.ID,
	)
	if err != nil {
		return session.Session{}, database.TranslateError(err, "updating session", repo.mapping())
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// either gone or guarded by its attendance
		if _, err = repo.Get(ctx, ses.ID); err != nil {
			return session.Session{}, err
		}
		return session.Session{}, session.ErrMoveWithAttendance
	}
	return repo.Get(ctx, ses.ID)
}

func (repo *sessionRepository) Delete(ctx context.Context, id int64) (session.Session, error) {
	ses, err := repo.Get(ctx, id)
	if err != nil {
		return session.Session{}, err
	}
	if _, err = repo.db.ExecContext(ctx, `DELETE FROM sessions WHERE session_id = $1`, id); err != nil {
		return session.Session{}, database.TranslateError(err, "deleting session", database.Mapping{
			ForeignKey: session.ErrHasAttendance,
		})
	}
	return ses, nil
}
