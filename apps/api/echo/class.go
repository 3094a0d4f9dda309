package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core/class"
)

type classApi struct {
	svc *class.Service
}

func registerClassAPI(g *echo.Group, svc *class.Service) {
	api := classApi{svc: svc}

	cg := g.Group("/classes")
	cg.GET("", api.query)
	cg.GET("/search", api.search)
	cg.POST("", api.create)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.DELETE("/:id", api.destroy)
	cg.PUT("/:id/update-student-count", api.recount)
}

func (api *classApi) query(ctx echo.Context) error {
	courseID, err := queryID(ctx, "course_id")
	if err != nil {
		return err
	}
	teacherID, err := queryID(ctx, "teacher_id")
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	classes, err := api.svc.Query(ctx.Request().Context(), class.QueryFilter{
		CourseID:  courseID,
		TeacherID: teacherID,
		Status:    ctx.QueryParam("status"),
		Ordering:  ordering.Orderings,
	})
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) search(ctx echo.Context) error {
	q, err := searchTerm(ctx)
	if err != nil {
		return err
	}
	classes, err := api.svc.Query(ctx.Request().Context(), class.QueryFilter{Search: q})
	if err != nil {
		return errors.Wrap(err, "searching classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *classApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	cls, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) create(ctx echo.Context) error {
	var data class.Input
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	cls, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, cls)
}

func (api *classApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data class.Input
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	cls, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, cls)
}

func (api *classApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	cls, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.JSON(http.StatusOK, deleted("class", cls))
}

// recount re-derives current_students from the class' ACTIVE enrollments.
func (api *classApi) recount(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.RecomputeOccupancy(ctx.Request().Context(), id); err != nil {
		return err
	}
	cls, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Student count updated successfully", "class": cls})
}
