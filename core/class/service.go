package class

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

type (
	Repository interface {
		Create(ctx context.Context, cls Class) (Class, error)
		Get(ctx context.Context, id int64) (Class, error)
		Query(ctx context.Context, filter QueryFilter) ([]Class, error)
		// Update never writes CurrentStudents.
		Update(ctx context.Context, cls Class) (Class, error)
		Delete(ctx context.Context, id int64) (Class, error)
		// RecountStudents sets the class' current_students to its number of ACTIVE enrollments
		// in a single statement and returns the new count.
		RecountStudents(ctx context.Context, id int64) (int, error)
		IDs(ctx context.Context) ([]int64, error)
	}

	Service struct {
		repo     Repository
		validate *validator.Validate
	}
)

func NewService(repo Repository, validate *validator.Validate) *Service {
	return &Service{repo: repo, validate: validate}
}

func (svc *Service) Create(ctx context.Context, in Input) (Class, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Class{}, err
	}
	return svc.repo.Create(ctx, in.apply(Class{}))
}

func (svc *Service) Get(ctx context.Context, id int64) (Class, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Class, error) {
	return svc.repo.Query(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int64, in Input) (Class, error) {
	if err := in.Validate(svc.validate); err != nil {
		return Class{}, err
	}
	cls, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Class{}, errors.Wrap(err, "getting class")
	}
	return svc.repo.Update(ctx, in.apply(cls))
}

func (svc *Service) Delete(ctx context.Context, id int64) (Class, error) {
	return svc.repo.Delete(ctx, id)
}

// RecomputeOccupancy re-derives the class' current_students from its ACTIVE enrollments.
// It is idempotent and safe to run at any time.
func (svc *Service) RecomputeOccupancy(ctx context.Context, classID int64) (int, error) {
	n, err := svc.repo.RecountStudents(ctx, classID)
	if err != nil {
		return 0, errors.Wrapf(err, "recounting students of class %d", classID)
	}
	return n, nil
}

// RecomputeAllOccupancy runs RecomputeOccupancy for every class and returns how many were refreshed.
func (svc *Service) RecomputeAllOccupancy(ctx context.Context) (int, error) {
	ids, err := svc.repo.IDs(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing classes")
	}
	for i, id := range ids {
		if _, err = svc.RecomputeOccupancy(ctx, id); err != nil {
			return i, err
		}
	}
	return len(ids), nil
}
