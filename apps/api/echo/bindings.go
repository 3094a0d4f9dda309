package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core"
)

var orderingParam = "ordering"

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	data := ctx.QueryParams()
	if len(data) == 0 {
		return
	}
	val, ok := data[orderingParam]
	if !ok || len(val) == 0 || val[0] == "" {
		return
	}

	for _, field := range strings.Split(val[0], ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field == "" {
			continue
		}
		ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
	}
}

// pathID parses the positive integer path parameter `name`.
func pathID(ctx echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(errors.Errorf("invalid %s", name), core.FieldError{Field: name, Error: "must be a positive integer"})
	}
	return id, nil
}

// queryID parses the optional positive integer query parameter `name`; 0 when absent.
func queryID(ctx echo.Context, name string) (int64, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.NewValidationError(errors.Errorf("invalid %s", name), core.FieldError{Field: name, Error: "must be a positive integer"})
	}
	return id, nil
}

// searchTerm returns the required `q` query parameter of search endpoints.
func searchTerm(ctx echo.Context) (string, error) {
	q := core.CleanString(ctx.QueryParam("q"))
	if q == "" {
		return "", core.NewValidationError(errors.New("search query is required"))
	}
	return q, nil
}

// bindBody decodes the JSON body into `dst`, reporting malformed payloads as validation errors.
func bindBody(ctx echo.Context, dst interface{}) error {
	if err := ctx.Bind(dst); err != nil {
		var herr *echo.HTTPError
		if errors.As(err, &herr) {
			return core.NewValidationError(errors.Errorf("invalid request body: %v", herr.Message))
		}
		return errors.Wrap(err, "binding request body")
	}
	return nil
}

func deleted(entity string, obj interface{}) map[string]interface{} {
	return map[string]interface{}{
		"message": strings.ToUpper(entity[:1]) + entity[1:] + " deleted successfully",
		entity:    obj,
	}
}
