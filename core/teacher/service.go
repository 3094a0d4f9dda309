package teacher

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		Create(ctx context.Context, tch Teacher) (Teacher, error)
		Get(ctx context.Context, id int64) (Teacher, error)
		Query(ctx context.Context, filter QueryFilter) ([]Teacher, error)
		Update(ctx context.Context, tch Teacher) (Teacher, error)
		Delete(ctx context.Context, id int64) (Teacher, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, in Input) (Teacher, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Teacher{}, err
	}
	return svc.repo.Create(ctx, in.apply(Teacher{}))
}

func (svc *Service) Get(ctx context.Context, id int64) (Teacher, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Teacher, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int64, in Input) (Teacher, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Teacher{}, err
	}
	tch, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Teacher{}, errors.Wrap(err, "getting teacher")
	}
	return svc.repo.Update(ctx, in.apply(tch))
}

func (svc *Service) Delete(ctx context.Context, id int64) (Teacher, error) {
	return svc.repo.Delete(ctx, id)
}
