package payment

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		Create(ctx context.Context, pmt Payment) (Payment, error)
		Get(ctx context.Context, id int64) (Payment, error)
		Query(ctx context.Context, filter QueryFilter) ([]Payment, error)
		Update(ctx context.Context, pmt Payment) (Payment, error)
		Delete(ctx context.Context, id int64) (Payment, error)
	}

	// Reporter computes read-only aggregates over the stored payments.
	Reporter interface {
		PaymentSummary(ctx context.Context) ([]StudentTotal, error)
	}

	Service struct {
		repo     Repository
		reporter Reporter
		validate *validator.Validate
	}
)

func NewService(repo Repository, reporter Reporter, validate *validator.Validate) *Service {
	return &Service{repo: repo, reporter: reporter, validate: validate}
}

func (svc *Service) Create(ctx context.Context, in Input) (Payment, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Payment{}, err
	}
	return svc.repo.Create(ctx, in.apply(Payment{}))
}

func (svc *Service) Get(ctx context.Context, id int64) (Payment, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Payment, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int64, in Input) (Payment, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Payment{}, err
	}
	pmt, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Payment{}, errors.Wrap(err, "getting payment")
	}
	return svc.repo.Update(ctx, in.apply(pmt))
}

func (svc *Service) Delete(ctx context.Context, id int64) (Payment, error) {
	return svc.repo.Delete(ctx, id)
}

// Summary totals the COMPLETED payments of every active student, highest total first.
func (svc *Service) Summary(ctx context.Context) ([]StudentTotal, error) {
	totals, err := svc.reporter.PaymentSummary(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "summarising payments")
	}
	return totals, nil
}
