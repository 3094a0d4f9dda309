package attendance

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core"
)

type (
	Repository interface {
		// Upsert inserts the record keyed by (SessionID, StudentID) or overwrites its status and notes.
		Upsert(ctx context.Context, m Mark) (Record, error)
		// UpsertMany upserts every mark inside one transaction: either all are stored or none.
		UpsertMany(ctx context.Context, marks []Mark) ([]Record, error)
		Get(ctx context.Context, id int64) (Record, error)
		Query(ctx context.Context, filter QueryFilter) ([]Record, error)
		Delete(ctx context.Context, id int64) (Record, error)

		// RefreshSummary tallies the pair's records and stores the summary `build` makes of them.
		// Concurrent refreshes of the same pair are serialized.
		RefreshSummary(ctx context.Context, pair Pair, build func(Pair, Tally) Summary) (Summary, error)
		GetSummary(ctx context.Context, pair Pair) (Summary, error)
		QuerySummaries(ctx context.Context, filter SummaryFilter) ([]Summary, error)
		// SummaryPairs lists every (student, class) pair that has records or a stored summary.
		SummaryPairs(ctx context.Context) ([]Pair, error)
	}

	// SummaryCache is an optional read-through cache of stored summaries.
	SummaryCache interface {
		Get(ctx context.Context, pair Pair) (Summary, bool, error)
		Set(ctx context.Context, s Summary) error
		Invalidate(ctx context.Context, pair Pair) error
	}

	Service struct {
		repo     Repository
		cache    SummaryCache
		validate *validator.Validate
		logger   core.Logger

		// pairs whose cached summary could not be evicted; reads bypass the cache for them
		// until a recompute caches a fresh summary
		stale sync.Map
	}
)

// NewService returns an attendance Service. cache may be nil.
func NewService(repo Repository, cache SummaryCache, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		validate: validate,
		logger:   logger,
	}
}

// Mark records one attendance. It does not refresh the summary; see RecomputeSummary.
func (svc *Service) Mark(ctx context.Context, m Mark) (Record, error) {
	if err := m.Validate(svc.validate); err != nil {
		return Record{}, err
	}
	rec, err := svc.repo.Upsert(ctx, m)
	if err != nil {
		return Record{}, errors.Wrap(err, "upserting attendance")
	}
	return rec, nil
}

// MarkBulk validates the whole batch first, then upserts it atomically.
func (svc *Service) MarkBulk(ctx context.Context, marks []Mark) ([]Record, error) {
	if err := ValidateMarks(svc.validate, marks); err != nil {
		return nil, err
	}
	recs, err := svc.repo.UpsertMany(ctx, marks)
	if err != nil {
		return nil, errors.Wrap(err, "upserting attendance batch")
	}
	return recs, nil
}

// Update rewrites the status and notes of the record `id`. Its (session, student) key is fixed.
func (svc *Service) Update(ctx context.Context, id int64, m Mark) (Record, error) {
	rec, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Record{}, errors.Wrap(err, "getting attendance")
	}
	if (m.SessionID != 0 && m.SessionID != rec.SessionID) || (m.StudentID != 0 && m.StudentID != rec.StudentID) {
		return Record{}, ErrKeyChange
	}
	m.SessionID = rec.SessionID
	m.StudentID = rec.StudentID
	return svc.Mark(ctx, m)
}

func (svc *Service) Get(ctx context.Context, id int64) (Record, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Record, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Delete(ctx context.Context, id int64) (Record, error) {
	rec, err := svc.repo.Delete(ctx, id)
	if err != nil {
		return Record{}, errors.Wrap(err, "deleting attendance")
	}
	return rec, nil
}

// RecomputeSummary re-derives and stores the summary of `pair` from its attendance records.
func (svc *Service) RecomputeSummary(ctx context.Context, pair Pair) (Summary, error) {
	if svc.cache != nil {
		svc.evict(ctx, pair)
	}
	sum, err := svc.repo.RefreshSummary(ctx, pair, NewSummary)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "refreshing summary of student %d in class %d", pair.StudentID, pair.ClassID)
	}
	if svc.cache != nil {
		if err = svc.cache.Set(ctx, sum); err != nil {
			svc.logger.Warn(fmt.Sprintf("caching summary %d/%d", pair.StudentID, pair.ClassID), err)
			svc.evict(ctx, pair)
		} else {
			svc.stale.Delete(pair)
		}
	}
	return sum, nil
}

// evict drops the cached summary of `pair`, marking the pair stale when Redis refuses.
func (svc *Service) evict(ctx context.Context, pair Pair) {
	if err := svc.cache.Invalidate(ctx, pair); err != nil {
		svc.stale.Store(pair, struct{}{})
		svc.logger.Warn(fmt.Sprintf("evicting cached summary %d/%d", pair.StudentID, pair.ClassID), err)
	}
}

// RecomputeSummaries refreshes the summary of every pair touched by `records`.
func (svc *Service) RecomputeSummaries(ctx context.Context, records []Record) ([]Summary, error) {
	pairs := Pairs(records)
	sums := make([]Summary, 0, len(pairs))
	for _, p := range pairs {
		sum, err := svc.RecomputeSummary(ctx, p)
		if err != nil {
			return sums, err
		}
		sums = append(sums, sum)
	}
	return sums, nil
}

// RecomputeAllSummaries refreshes every known pair and returns how many were refreshed.
func (svc *Service) RecomputeAllSummaries(ctx context.Context) (int, error) {
	pairs, err := svc.repo.SummaryPairs(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing summary pairs")
	}
	for i, p := range pairs {
		if _, err = svc.RecomputeSummary(ctx, p); err != nil {
			return i, err
		}
	}
	return len(pairs), nil
}

// Summary returns the stored summary of `pair`, from the cache when possible.
func (svc *Service) Summary(ctx context.Context, pair Pair) (Summary, error) {
	_, stale := svc.stale.Load(pair)
	cached := svc.cache != nil && !stale

	if cached {
		sum, ok, err := svc.cache.Get(ctx, pair)
		if err != nil {
			svc.logger.Warn(fmt.Sprintf("reading cached summary %d/%d", pair.StudentID, pair.ClassID), err)
		} else if ok {
			return sum, nil
		}
	}

	sum, err := svc.repo.GetSummary(ctx, pair)
	if err != nil {
		return Summary{}, err
	}
	if cached {
		if err = svc.cache.Set(ctx, sum); err != nil {
			svc.logger.Warn(fmt.Sprintf("caching summary %d/%d", pair.StudentID, pair.ClassID), err)
		}
	}
	return sum, nil
}

func (svc *Service) Summaries(ctx context.Context, filter SummaryFilter) ([]Summary, error) {
	return svc.repo.QuerySummaries(ctx, filter)
}
