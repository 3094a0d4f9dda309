package session

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		Create(ctx context.Context, ses Session) (Session, error)
		Get(ctx context.Context, id int64) (Session, error)
		Query(ctx context.Context, filter QueryFilter) ([]Session, error)
		Update(ctx context.Context, ses Session) (Session, error)
		Delete(ctx context.Context, id int64) (Session, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, in Input) (Session, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Session{}, err
	}
	return svc.repo.Create(ctx, in.apply(Session{}))
}

func (svc *Service) Get(ctx context.Context, id int64) (Session, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Session, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int64, in Input) (Session, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Session{}, err
	}
	ses, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Session{}, errors.Wrap(err, "getting session")
	}
	return svc.repo.Update(ctx, in.apply(ses))
}

func (svc *Service) Delete(ctx context.Context, id int64) (Session, error) {
	return svc.repo.Delete(ctx, id)
}
