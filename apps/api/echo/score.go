package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core/score"
)

type scoreApi struct {
	svc *score.Service
}

func registerScoreAPI(g *echo.Group, svc *score.Service) {
	api := scoreApi{svc: svc}

	sg := g.Group("/scores")
	sg.GET("", api.query)
	sg.GET("/search", api.search)
	sg.GET("/statistics", api.statistics)
	sg.GET("/student/:studentId", api.byStudent)
	sg.GET("/test/:testId", api.byTest)
	sg.POST("", api.create)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func (api *scoreApi) list(ctx echo.Context, filter score.QueryFilter) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Ordering = ordering.Orderings

	scores, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying scores")
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *scoreApi) query(ctx echo.Context) error {
	studentID, err := queryID(ctx, "student_id")
	if err != nil {
		return err
	}
	testID, err := queryID(ctx, "test_id")
	if err != nil {
		return err
	}
	return api.list(ctx, score.QueryFilter{StudentID: studentID, TestID: testID})
}

func (api *scoreApi) byStudent(ctx echo.Context) error {
	studentID, err := pathID(ctx, "studentId")
	if err != nil {
		return err
	}
	return api.list(ctx, score.QueryFilter{StudentID: studentID})
}

func (api *scoreApi) byTest(ctx echo.Context) error {
	testID, err := pathID(ctx, "testId")
	if err != nil {
		return err
	}
	return api.list(ctx, score.QueryFilter{TestID: testID})
}

func (api *scoreApi) search(ctx echo.Context) error {
	q, err := searchTerm(ctx)
	if err != nil {
		return err
	}
	return api.list(ctx, score.QueryFilter{Search: q})
}

func (api *scoreApi) statistics(ctx echo.Context) error {
	stats, err := api.svc.Statistics(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stats)
}

func (api *scoreApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	scr, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting score")
	}
	return ctx.JSON(http.StatusOK, scr)
}

func (api *scoreApi) create(ctx echo.Context) error {
	var data score.Input
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	scr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating score")
	}
	return ctx.JSON(http.StatusCreated, scr)
}

func (api *scoreApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data score.Input
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	scr, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating score")
	}
	return ctx.JSON(http.StatusOK, scr)
}

func (api *scoreApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	scr, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting score")
	}
	return ctx.JSON(http.StatusOK, deleted("score", scr))
}
