package enrollment

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core"
)

type (
	// Repository persists enrollments. Writes map a missing student/class to ErrInvalidReference
	// and a second enrollment of the same student in the same class to ErrAlreadyEnrolled.
	Repository interface {
		Create(ctx context.Context, enr Enrollment) (Enrollment, error)
		Get(ctx context.Context, id int64) (Enrollment, error)
		Query(ctx context.Context, filter QueryFilter) ([]Enrollment, error)
		Update(ctx context.Context, enr Enrollment) (Enrollment, error)
		Delete(ctx context.Context, id int64) (Enrollment, error)
	}

	// OccupancyCounter re-derives a class' current_students.
	OccupancyCounter interface {
		RecomputeOccupancy(ctx context.Context, classID int64) (int, error)
	}

	Service struct {
		repo      Repository
		occupancy OccupancyCounter
		validate  *validator.Validate
		logger    core.Logger
	}
)

func NewService(repo Repository, occupancy OccupancyCounter, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		repo:      repo,
		occupancy: occupancy,
		validate:  validate,
		logger:    logger,
	}
}

// recount refreshes the occupancy of the given classes. Every class is attempted; the first
// failure is returned. The enrollment write it follows is not undone.
func (svc *Service) recount(ctx context.Context, enrollmentID int64, classIDs ...int64) error {
	var first error
	for _, id := range classIDs {
		if _, err := svc.occupancy.RecomputeOccupancy(ctx, id); err != nil {
			svc.logger.Warn(fmt.Sprintf("enrollment %d stored but class %d current_students is stale", enrollmentID, id), err)
			if first == nil {
				first = errors.Wrap(err, "updating class occupancy")
			}
		}
	}
	return first
}

func (svc *Service) Create(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	if err := ne.Validate(svc.validate); err != nil {
		return Enrollment{}, err
	}
	enr, err := svc.repo.Create(ctx, ne.enrollment())
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "creating enrollment")
	}
	if err = svc.recount(ctx, enr.ID, enr.ClassID); err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

func (svc *Service) Get(ctx context.Context, id int64) (Enrollment, error) {
	return svc.repo.Get(ctx, id)
}

func (svc *Service) Query(ctx context.Context, filter QueryFilter) ([]Enrollment, error) {
	return svc.repo.Query(ctx, filter)
}

// Update patches an enrollment. The new class is always recounted; the old one too when the
// enrollment moved away from it while ACTIVE.
func (svc *Service) Update(ctx context.Context, id int64, ue UpdateEnrollment) (Enrollment, error) {
	if err := ue.Validate(svc.validate); err != nil {
		return Enrollment{}, err
	}
	current, err := svc.repo.Get(ctx, id)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "getting enrollment")
	}

	enr, err := svc.repo.Update(ctx, ue.apply(current))
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "updating enrollment")
	}

	classes := []int64{enr.ClassID}
	if current.ClassID != enr.ClassID && current.Status == StatusActive {
		classes = append(classes, current.ClassID)
	}
	if err = svc.recount(ctx, enr.ID, classes...); err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

func (svc *Service) Delete(ctx context.Context, id int64) (Enrollment, error) {
	enr, err := svc.repo.Delete(ctx, id)
	if err != nil {
		return Enrollment{}, errors.Wrap(err, "deleting enrollment")
	}
	if err = svc.recount(ctx, enr.ID, enr.ClassID); err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}
