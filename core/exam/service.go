package exam

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		Create(ctx context.Context, tst Test) (Test, error)
		Get(ctx context.Context, id int64) (Test, error)
		Query(ctx context.Context, filter QueryFilter) ([]Test, error)
		Update(ctx context.Context, tst Test) (Test, error)
		Delete(ctx context.Context, id int64) (Test, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, in Input) (Test, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Test{}, err
	}
	return svc.repo.Create(ctx, in.apply(Test{}))
}

func (svc *Service) Get(ctx context.Context, id int64) (Test, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Test, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int64, in Input) (Test, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Test{}, err
	}
	tst, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Test{}, errors.Wrap(err, "getting test")
	}
	return svc.repo.Update(ctx, in.apply(tst))
}

func (svc *Service) Delete(ctx context.Context, id int64) (Test, error) {
	return svc.repo.Delete(ctx, id)
}
