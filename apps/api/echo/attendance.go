package echoapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
)

type attendanceApi struct {
	svc    *attendance.Service
	logger core.Logger
}

func registerAttendanceAPI(g *echo.Group, svc *attendance.Service, logger core.Logger) {
	api := attendanceApi{svc: svc, logger: logger}

	ag := g.Group("/attendances")
	ag.GET("", api.query)
	ag.POST("", api.create)
	ag.POST("/bulk", api.bulkCreate)
	ag.GET("/summary", api.summary)
	ag.PUT("/summary/:studentId/:classId", api.recomputeSummary)
	ag.GET("/session/:sessionId", api.bySession)
	ag.GET("/student/:studentId", api.byStudent)
	ag.GET("/:id", api.retrieve)
	ag.PUT("/:id", api.update)
	ag.DELETE("/:id", api.destroy)
}

// refreshSummaries recomputes the summaries touched by `records`. The attendance write has already
// been committed, so a failure leaves a stale summary: it is logged, not returned.
func (api *attendanceApi) refreshSummaries(ctx context.Context, records ...attendance.Record) {
	for _, pair := range attendance.Pairs(records) {
		if _, err := api.svc.RecomputeSummary(ctx, pair); err != nil {
			api.logger.Warn(fmt.Sprintf("stale attendance summary of student %d in class %d", pair.StudentID, pair.ClassID), err)
		}
	}
}

func (api *attendanceApi) list(ctx echo.Context, filter attendance.QueryFilter) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)
	filter.Ordering = ordering.Orderings

	records, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) query(ctx echo.Context) error {
	var filter attendance.QueryFilter
	var err error
	if filter.SessionID, err = queryID(ctx, "session_id"); err != nil {
		return err
	}
	if filter.StudentID, err = queryID(ctx, "student_id"); err != nil {
		return err
	}
	if filter.ClassID, err = queryID(ctx, "class_id"); err != nil {
		return err
	}
	filter.Status = attendance.Status(ctx.QueryParam("status"))
	return api.list(ctx, filter)
}

func (api *attendanceApi) bySession(ctx echo.Context) error {
	sessionID, err := pathID(ctx, "sessionId")
	if err != nil {
		return err
	}
	return api.list(ctx, attendance.QueryFilter{SessionID: sessionID})
}

func (api *attendanceApi) byStudent(ctx echo.Context) error {
	studentID, err := pathID(ctx, "studentId")
	if err != nil {
		return err
	}
	return api.list(ctx, attendance.QueryFilter{StudentID: studentID})
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	rec, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "getting attendance")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) create(ctx echo.Context) error {
	var data attendance.Mark
	if err := bindBody(ctx, &data); err != nil {
		return err
	}
	rec, err := api.svc.Mark(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance")
	}
	api.refreshSummaries(ctx.Request().Context(), rec)
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) bulkCreate(ctx echo.Context) error {
	var data []attendance.Mark
	if err := bindBody(ctx, &data); err != nil {
		return core.NewValidationError(errors.New("expected an array of attendance records"))
	}
	records, err := api.svc.MarkBulk(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "marking attendance in bulk")
	}
	api.refreshSummaries(ctx.Request().Context(), records...)
	return ctx.JSON(http.StatusOK, records)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	var data attendance.Mark
	if err = bindBody(ctx, &data); err != nil {
		return err
	}
	rec, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	api.refreshSummaries(ctx.Request().Context(), rec)
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	id, err := pathID(ctx, "id")
	if err != nil {
		return err
	}
	rec, err := api.svc.Delete(ctx.Request().Context(), id)
	if err != nil {
		return errors.Wrap(err, "deleting attendance")
	}
	api.refreshSummaries(ctx.Request().Context(), rec)
	return ctx.JSON(http.StatusOK, deleted("attendance", rec))
}

// summary returns the summary of one (student, class) pair when both ids are given, else the matching list.
func (api *attendanceApi) summary(ctx echo.Context) error {
	studentID, err := queryID(ctx, "student_id")
	if err != nil {
		return err
	}
	classID, err := queryID(ctx, "class_id")
	if err != nil {
		return err
	}

	if studentID != 0 && classID != 0 {
		sum, err := api.svc.Summary(ctx.Request().Context(), attendance.Pair{StudentID: studentID, ClassID: classID})
		if err != nil {
			return errors.Wrap(err, "getting attendance summary")
		}
		return ctx.JSON(http.StatusOK, sum)
	}

	sums, err := api.svc.Summaries(ctx.Request().Context(), attendance.SummaryFilter{StudentID: studentID, ClassID: classID})
	if err != nil {
		return errors.Wrap(err, "querying attendance summaries")
	}
	return ctx.JSON(http.StatusOK, sums)
}

func (api *attendanceApi) recomputeSummary(ctx echo.Context) error {
	studentID, err := pathID(ctx, "studentId")
	if err != nil {
		return err
	}
	classID, err := pathID(ctx, "classId")
	if err != nil {
		return err
	}
	sum, err := api.svc.RecomputeSummary(ctx.Request().Context(), attendance.Pair{StudentID: studentID, ClassID: classID})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sum)
}
