package course

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		Create(ctx context.Context, crs Course) (Course, error)
		Get(ctx context.Context, id int64) (Course, error)
		Query(ctx context.Context, filter QueryFilter) ([]Course, error)
		Update(ctx context.Context, crs Course) (Course, error)
		Delete(ctx context.Context, id int64) (Course, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, in Input) (Course, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	return svc.repo.Create(ctx, in.apply(Course{}))
}

func (svc *Service) Get(ctx context.Context, id int64) (Course, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Course, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int64, in Input) (Course, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Course{}, err
	}
	crs, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Course{}, errors.Wrap(err, "getting course")
	}
	return svc.repo.Update(ctx, in.apply(crs))
}

func (svc *Service) Delete(ctx context.Context, id int64) (Course, error) {
	return svc.repo.Delete(ctx, id)
}
