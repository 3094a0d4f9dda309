package student

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		Create(ctx context.Context, std Student) (Student, error)
		Get(ctx context.Context, id int64) (Student, error)
		Query(ctx context.Context, filter QueryFilter) ([]Student, error)
		Update(ctx context.Context, std Student) (Student, error)
		Delete(ctx context.Context, id int64) (Student, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, in Input) (Student, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	return svc.repo.Create(ctx, in.apply(Student{}))
}

func (svc *Service) Get(ctx context.Context, id int64) (Student, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int64, in Input) (Student, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Student{}, err
	}
	std, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Student{}, errors.Wrap(err, "getting student")
	}
	return svc.repo.Update(ctx, in.apply(std))
}

func (svc *Service) Delete(ctx context.Context, id int64) (Student, error) {
	return svc.repo.Delete(ctx, id)
}
