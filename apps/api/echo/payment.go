package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core/payment"
)

type paymentApi struct {
	svc *payment.Service
}

func registerPaymentAPI(g *echo.Group, svc *payment.Service) {
	api := paymentApi{svc: svc}

	pg := g.Group("/payments")
	pg.GET("", api.query)
	pg.GET("/search", api.search)
	pg.GET("/summary", api.summary)
	pg.GET("/student/:studentId", api.byStudent)
	pg.POST("", api.create)
	pg.GET("/:id", api.retrieve)
	pg.PUT("/:id", api.update)
	pg.DELETE("/:id", api.destroy)
}

func (api *paymentApi) list(ctx echo.Context, filter payment.QueryFilter) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Ordering = ordering.Orderings

	payments, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) query(ctx echo.Context) error {
	studentID, err := queryID(ctx, "student_id")
	if err != nil {
		return err
	}
	return api.list(ctx, payment.QueryFilter{StudentID: studentID, Status: ctx.QueryParam("status")})
}

func (api *paymentApi) byStudent(ctx echo.Context) error {
	studentID, err := pathID(ctx, "studentId")
	if err != nil {
		return err
	}
	return api.list(ctx, payment.QueryFilter{StudentID: studentID})
}

func (api *paymentApi) search(ctx echo.Context) error {
	q, err := searchTerm(ctx)
	if err != nil {
		return err
	}
	return api.list(ctx, payment.QueryFilter{Search: q})
}

func (api *paymentApi) summary(ctx echo.Context) error {
	totals, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, totals)
}

func (api *paymentApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	pmt, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) create(ctx echo.Context) error {
	var data payment.Input
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	pmt, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating payment")
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

func (api *paymentApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data payment.Input
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	pmt, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating payment")
	}
	return ctx.JSON(http.StatusOK, pmt)
}

func (api *paymentApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	pmt, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting payment")
	}
	return ctx.JSON(http.StatusOK, deleted("payment", pmt))
}
