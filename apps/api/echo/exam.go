package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core/exam"
)

type testApi struct {
	svc *exam.Service
}

func registerTestAPI(g *echo.Group, svc *exam.Service) {
	api := testApi{svc: svc}

	tg := g.Group("/tests")
	tg.GET("", api.query)
	tg.GET("/search", api.search)
	tg.POST("", api.create)
	tg.GET("/:id", api.retrieve)
	tg.PUT("/:id", api.update)
	tg.DELETE("/:id", api.destroy)
}

func (api *testApi) query(ctx echo.Context) error {
	classID, err := queryID(ctx, "class_id")
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tests, err := api.svc.Query(ctx.Request().Context(), exam.QueryFilter{
		ClassID:  classID,
		Status:   ctx.QueryParam("status"),
		Ordering: ordering.Orderings,
	})
	if err != nil {
		return errors.Wrap(err, "querying tests")
	}
	return ctx.JSON(http.StatusOK, tests)
}

func (api *testApi) search(ctx echo.Context) error {
	q, err := searchTerm(ctx)
	if err != nil {
		return err
	}
	tests, err := api.svc.Query(ctx.Request().Context(), exam.QueryFilter{Search: q})
	if err != nil {
		return errors.Wrap(err, "searching tests")
	}
	return ctx.JSON(http.StatusOK, tests)
}

func (api *testApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tst, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting test")
	}
	return ctx.JSON(http.StatusOK, tst)
}

func (api *testApi) create(ctx echo.Context) error {
	var data exam.Input
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	tst, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating test")
	}
	return ctx.JSON(http.StatusCreated, tst)
}

func (api *testApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data exam.Input
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	tst, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating test")
	}
	return ctx.JSON(http.StatusOK, tst)
}

func (api *testApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	tst, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting test")
	}
	return ctx.JSON(http.StatusOK, deleted("test", tst))
}
