package inmemdb

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) hydrate(rec attendance.Record) attendance.Record {
	rec.StudentName = repo.db.studentName(rec.StudentID)
	if ses, ok := repo.db.sessions[rec.SessionID]; ok {
		rec.ClassID = ses.ClassID
		rec.SessionDate = ses.SessionDate
	}
	return rec
}

// find returns the record stored under the (session, student) key.
func (repo *attendanceRepository) find(sessionID, studentID int64) *attendance.Record {
	for _, rec := range repo.db.attendance {
		if rec.SessionID == sessionID && rec.StudentID == studentID {
			return rec
		}
	}
	return nil
}

func (repo *attendanceRepository) checkRefs(m attendance.Mark) bool {
	_, okSes := repo.db.sessions[m.SessionID]
	_, okStd := repo.db.students[m.StudentID]
	return okSes && okStd
}

// upsert must be called with the write lock held and the references checked.
func (repo *attendanceRepository) upsert(m attendance.Mark) attendance.Record {
	now := time.Now().UTC()
	if rec := repo.find(m.SessionID, m.StudentID); rec != nil {
		rec.Status = m.Status
		rec.Notes = m.Notes
		rec.UpdatedAt = now
		return repo.hydrate(*rec)
	}
	rec := &attendance.Record{
		ID:        repo.db.nextID(),
		SessionID: m.SessionID,
		StudentID: m.StudentID,
		Status:    m.Status,
		Notes:     m.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	repo.db.attendance[rec.ID] = rec
	return repo.hydrate(*rec)
}

func (repo *attendanceRepository) Upsert(_ context.Context, m attendance.Mark) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if !repo.checkRefs(m) {
		return attendance.Record{}, attendance.ErrInvalidReference
	}
	return repo.upsert(m), nil
}

func (repo *attendanceRepository) UpsertMany(_ context.Context, marks []attendance.Mark) ([]attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	// all references are checked before the first write, which leaves nothing to roll back
	for i, m := range marks {
		if !repo.checkRefs(m) {
			return nil, core.NewInvalidReferenceError(fmt.Sprintf("record %d: invalid session or student id", i))
		}
	}
	records := make([]attendance.Record, 0, len(marks))
	for _, m := range marks {
		records = append(records, repo.upsert(m))
	}
	return records, nil
}

func (repo *attendanceRepository) Get(_ context.Context, id int64) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec, ok := repo.db.attendance[id]; ok {
		return repo.hydrate(*rec), nil
	}
	return attendance.Record{}, core.NewNotFoundError("attendance")
}

func (repo *attendanceRepository) Query(_ context.Context, filter attendance.QueryFilter) ([]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	records := make([]attendance.Record, 0)
	for _, r := range repo.db.attendance {
		rec := repo.hydrate(*r)
		switch {
		case filter.SessionID != 0 && rec.SessionID != filter.SessionID,
			filter.StudentID != 0 && rec.StudentID != filter.StudentID,
			filter.ClassID != 0 && rec.ClassID != filter.ClassID,
			filter.Status != "" && rec.Status != filter.Status:
			continue
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

func (repo *attendanceRepository) Delete(_ context.Context, id int64) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	rec, ok := repo.db.attendance[id]
	if !ok {
		return attendance.Record{}, core.NewNotFoundError("attendance")
	}
	deleted := repo.hydrate(*rec)
	delete(repo.db.attendance, id)
	return deleted, nil
}

func (repo *attendanceRepository) hydrateSummary(sum attendance.Summary) attendance.Summary {
	sum.StudentName = repo.db.studentName(sum.StudentID)
	sum.ClassName = repo.db.className(sum.ClassID)
	return sum
}

func (repo *attendanceRepository) RefreshSummary(
	_ context.Context,
	pair attendance.Pair,
	build func(attendance.Pair, attendance.Tally) attendance.Summary,
) (attendance.Summary, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[pair.StudentID]; !ok {
		return attendance.Summary{}, attendance.ErrInvalidSummaryReference
	}
	if _, ok := repo.db.classes[pair.ClassID]; !ok {
		return attendance.Summary{}, attendance.ErrInvalidSummaryReference
	}

	var tally attendance.Tally
	for _, rec := range repo.db.attendance {
		ses, ok := repo.db.sessions[rec.SessionID]
		if !ok || rec.StudentID != pair.StudentID || ses.ClassID != pair.ClassID {
			continue
		}
		tally.Total++
		switch rec.Status {
		case attendance.StatusPresent:
			tally.Present++
		case attendance.StatusAbsent:
			tally.Absent++
		case attendance.StatusLate:
			tally.Late++
		case attendance.StatusExcused:
			tally.Excused++
		}
	}

	sum := build(pair, tally)
	if current, ok := repo.db.summaries[pair]; ok {
		sum.ID = current.ID
	} else {
		sum.ID = repo.db.nextID()
	}
	sum.LastUpdated = time.Now().UTC()
	repo.db.summaries[pair] = &sum
	return repo.hydrateSummary(sum), nil
}

func (repo *attendanceRepository) GetSummary(_ context.Context, pair attendance.Pair) (attendance.Summary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if sum, ok := repo.db.summaries[pair]; ok {
		return repo.hydrateSummary(*sum), nil
	}
	return attendance.Summary{}, core.NewNotFoundError("attendance summary")
}

func (repo *attendanceRepository) QuerySummaries(_ context.Context, filter attendance.SummaryFilter) ([]attendance.Summary, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	sums := make([]attendance.Summary, 0, len(repo.db.summaries))
	for pair, sum := range repo.db.summaries {
		if (filter.StudentID != 0 && pair.StudentID != filter.StudentID) || (filter.ClassID != 0 && pair.ClassID != filter.ClassID) {
			continue
		}
		sums = append(sums, repo.hydrateSummary(*sum))
	}
	sort.Slice(sums, func(i, j int) bool {
		if sums[i].AttendanceRate != sums[j].AttendanceRate {
			return sums[i].AttendanceRate > sums[j].AttendanceRate
		}
		return sums[i].StudentName.String < sums[j].StudentName.String
	})
	return sums, nil
}

func (repo *attendanceRepository) SummaryPairs(_ context.Context) ([]attendance.Pair, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	seen := make(map[attendance.Pair]bool)
	for _, rec := range repo.db.attendance {
		if ses, ok := repo.db.sessions[rec.SessionID]; ok {
			seen[attendance.Pair{StudentID: rec.StudentID, ClassID: ses.ClassID}] = true
		}
	}
	for pair := range repo.db.summaries {
		seen[pair] = true
	}
	pairs := make([]attendance.Pair, 0, len(seen))
	for pair := range seen {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].ClassID != pairs[j].ClassID {
			return pairs[i].ClassID < pairs[j].ClassID
		}
		return pairs[i].StudentID < pairs[j].StudentID
	})
	return pairs, nil
}
