package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core/session"
)

type sessionApi struct {
	svc *session.Service
}

func registerSessionAPI(g *echo.Group, svc *session.Service) {
	api := sessionApi{svc: svc}

	sg := g.Group("/sessions")
	sg.GET("", api.query)
	sg.GET("/search", api.search)
	sg.GET("/class/:classId", api.byClass)
	sg.POST("", api.create)
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)
}

func (api *sessionApi) list(ctx echo.Context, filter session.QueryFilter) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Ordering = ordering.Orderings

	sessions, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying sessions")
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *sessionApi) query(ctx echo.Context) error {
	classID, err := queryID(ctx, "class_id")
	if err != nil {
		return err
	}
	return api.list(ctx, session.QueryFilter{ClassID: classID, Status: ctx.QueryParam("status")})
}

func (api *sessionApi) byClass(ctx echo.Context) error {
	classID, err := pathID(ctx, "classId")
	if err != nil {
		return err
	}
	return api.list(ctx, session.QueryFilter{ClassID: classID})
}

func (api *sessionApi) search(ctx echo.Context) error {
	q, err := searchTerm(ctx)
	if err != nil {
		return err
	}
	return api.list(ctx, session.QueryFilter{Search: q})
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	ses, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting session")
	}
	return ctx.JSON(http.StatusOK, ses)
}

func (api *sessionApi) create(ctx echo.Context) error {
	var data session.Input
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	ses, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating session")
	}
	return ctx.JSON(http.StatusCreated, ses)
}

func (api *sessionApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data session.Input
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	ses, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating session")
	}
	return ctx.JSON(http.StatusOK, ses)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	ses, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return ctx.JSON(http.StatusOK, deleted("session", ses))
}
