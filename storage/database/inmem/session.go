package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/session"
)

type sessionRepository struct {
	db *DB
}

var _ session.Repository = (*sessionRepository)(nil) // interface compliance check

func NewSessionRepository(db *DB) *sessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) hydrate(ses session.Session) session.Session {
	ses.ClassName = repo.db.className(ses.ClassID)
	return ses
}

func (repo *sessionRepository) Create(_ context.Context, ses session.Session) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[ses.ClassID]; !ok {
		return session.Session{}, session.ErrInvalidClass
	}
	ses.ID = repo.db.nextID()
	ses.CreatedAt = time.Now().UTC()
	ses.UpdatedAt = ses.CreatedAt
	repo.db.sessions[ses.ID] = &ses
	return repo.hydrate(ses), nil
}

func (repo *sessionRepository) Get(_ context.Context, id int64) (session.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if ses, ok := repo.db.sessions[id]; ok {
		return repo.hydrate(*ses), nil
	}
	return session.Session{}, core.NewNotFoundError("session")
}

func (repo *sessionRepository) Query(_ context.Context, filter session.QueryFilter) ([]session.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sessions := make([]session.Session, 0, len(repo.db.sessions))
	for _, s := range repo.db.sessions {
		ses := repo.hydrate(*s)
		switch {
		case filter.ClassID != 0 && ses.ClassID != filter.ClassID,
			filter.Status != "" && ses.Status != filter.Status,
			!matches(filter.Search, ses.Topic.String, ses.Description.String, ses.ClassName.String):
			continue
		}
		sessions = append(sessions, ses)
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].SessionDate.After(sessions[j].SessionDate.Time) })
	return sessions, nil
}

func (repo *sessionRepository) hasAttendance(id int64) bool {
	for _, rec := range repo.db.attendance {
		if rec.SessionID == id {
			return true
		}
	}
	return false
}

func (repo *sessionRepository) Update(_ context.Context, ses session.Session) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	current, ok := repo.db.sessions[ses.ID]
	if !ok {
		return session.Session{}, core.NewNotFoundError("session")
	}
	if _, ok = repo.db.classes[ses.ClassID]; !ok {
		return session.Session{}, session.ErrInvalidClass
	}
	if current.ClassID != ses.ClassID && repo.hasAttendance(ses.ID) {
		return session.Session{}, session.ErrMoveWithAttendance
	}
	ses.CreatedAt = current.CreatedAt
	ses.UpdatedAt = time.Now().UTC()
	repo.db.sessions[ses.ID] = &ses
	return repo.hydrate(ses), nil
}

func (repo *sessionRepository) Delete(_ context.Context, id int64) (session.Session, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	ses, ok := repo.db.sessions[id]
	if !ok {
		return session.Session{}, core.NewNotFoundError("session")
	}
	if repo.hasAttendance(id) {
		return session.Session{}, session.ErrHasAttendance
	}
	deleted := repo.hydrate(*ses)
	delete(repo.db.sessions, id)
	return deleted, nil
}
