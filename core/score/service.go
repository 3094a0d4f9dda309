package score

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core"
)

type (
	Repository interface {
		Create(ctx context.Context, scr Score) (Score, error)
		Get(ctx context.Context, id int64) (Score, error)
		Query(ctx context.Context, filter QueryFilter) ([]Score, error)
		Update(ctx context.Context, scr Score) (Score, error)
		Delete(ctx context.Context, id int64) (Score, error)
	}

	// Reporter computes read-only aggregates over the stored scores.
	Reporter interface {
		ScoreStatistics(ctx context.Context) (Statistics, error)
		GradeCounts(ctx context.Context) ([]GradeCount, error)
	}

	Service struct {
		repo     Repository
		reporter Reporter
		scale    core.GradeScale
		validate *validator.Validate
	}
)

func NewService(repo Repository, reporter Reporter, scale core.GradeScale, validate *validator.Validate) *Service {
	if len(scale) == 0 {
		scale = core.DefaultGradeScale
	}
	return &Service{
		repo:     repo,
		reporter: reporter,
		scale:    scale,
		validate: validate,
	}
}

func (svc *Service) Create(ctx context.Context, in Input) (Score, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Score{}, err
	}
	return svc.repo.Create(ctx, in.apply(Score{}, svc.scale))
}

func (svc *Service) Get(ctx context.Context, id int64) (Score, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Score, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int64, in Input) (Score, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Score{}, err
	}
	scr, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Score{}, errors.Wrap(err, "getting score")
	}
	return svc.repo.Update(ctx, in.apply(scr, svc.scale))
}

func (svc *Service) Delete(ctx context.Context, id int64) (Score, error) {
	return svc.repo.Delete(ctx, id)
}

// Statistics reports overall figures and the number of scores per grade of the scale.
func (svc *Service) Statistics(ctx context.Context) (Statistics, error) {
	stats, err := svc.reporter.ScoreStatistics(ctx)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "computing score statistics")
	}
	counts, err := svc.reporter.GradeCounts(ctx)
	if err != nil {
		return Statistics{}, errors.Wrap(err, "counting grades")
	}

	stats.GradeCounts = make(map[string]int, len(svc.scale))
	for _, grade := range svc.scale.Grades() {
		stats.GradeCounts[grade] = 0
	}
	for _, gc := range counts {
		stats.GradeCounts[gc.Grade] += gc.Count
	}
	return stats, nil
}
