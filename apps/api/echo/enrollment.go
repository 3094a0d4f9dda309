package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core/enrollment"
)

type enrollmentApi struct {
	svc *enrollment.Service
}

func registerEnrollmentAPI(g *echo.Group, svc *enrollment.Service) {
	api := enrollmentApi{svc: svc}

	eg := g.Group("/enrollments")
	eg.GET("", api.query)
	eg.GET("/search", api.search)
	eg.GET("/student/:studentId", api.byStudent)
	eg.GET("/class/:classId", api.byClass)
	eg.POST("", api.create)
	eg.GET("/:id", api.retrieve)
	eg.PUT("/:id", api.update)
	eg.DELETE("/:id", api.destroy)
}

func (api *enrollmentApi) list(ctx echo.Context, filter enrollment.QueryFilter) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Ordering = ordering.Orderings

	enrollments, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying enrollments")
	}
	return ctx.JSON(http.StatusOK, enrollments)
}

func (api *enrollmentApi) query(ctx echo.Context) error {
	studentID, err := queryID(ctx, "student_id")
	if err != nil {
		return err
	}
	classID, err := queryID(ctx, "class_id")
	if err != nil {
		return err
	}
	return api.list(ctx, enrollment.QueryFilter{StudentID: studentID, ClassID: classID, Status: ctx.QueryParam("status")})
}

func (api *enrollmentApi) byStudent(ctx echo.Context) error {
	studentID, err := pathID(ctx, "studentId")
	if err != nil {
		return err
	}
	return api.list(ctx, enrollment.QueryFilter{StudentID: studentID})
}

func (api *enrollmentApi) byClass(ctx echo.Context) error {
	classID, err := pathID(ctx, "classId")
	if err != nil {
		return err
	}
	return api.list(ctx, enrollment.QueryFilter{ClassID: classID})
}

func (api *enrollmentApi) search(ctx echo.Context) error {
	q, err := searchTerm(ctx)
	if err != nil {
		return err
	}
	return api.list(ctx, enrollment.QueryFilter{Search: q})
}

func (api *enrollmentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	enr, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) create(ctx echo.Context) error {
	var data enrollment.NewEnrollment
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	enr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating enrollment")
	}
	return ctx.JSON(http.StatusCreated, enr)
}

func (api *enrollmentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data enrollment.UpdateEnrollment
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	enr, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating enrollment")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollmentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	enr, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting enrollment")
	}
	return ctx.JSON(http.StatusOK, deleted("enrollment", enr))
}
