package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/englishcenter/core"
)

const msgStorageUnavailable = "storage unavailable"

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var resp errorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			resp.Error = fmt.Sprint(origErr.Message)
		case validator.ValidationErrors:
			resp.Fields = make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				resp.Fields[vErr.Field()] = vErr.Translate(translator)
			}
			resp.Error = origErr[0].Translate(translator)
			code = http.StatusBadRequest
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				resp.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					resp.Fields[fErr.Field] = fErr.Error
				}
			}
			resp.Error = origErr.Error()
			code = http.StatusBadRequest
		case *core.InvalidReferenceError:
			code, resp.Error = http.StatusBadRequest, origErr.Error()
		case *core.DuplicateError:
			code, resp.Error = http.StatusConflict, origErr.Error()
		case *core.ConflictError:
			code, resp.Error = http.StatusConflict, origErr.Error()
		case *core.NotFoundError:
			code, resp.Error = http.StatusNotFound, origErr.Error()
		case *core.PersistenceError:
			code, resp.Error = http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)
			if origErr.Unavailable {
				code, resp.Error = http.StatusServiceUnavailable, msgStorageUnavailable
			}
			logger.Error(resp.Error, errors.Wrap(err, resp.Error), requestInfo(ctx), ctx.Request())
		default: // any other error is a server error
			code = http.StatusInternalServerError
			resp.Error = http.StatusText(http.StatusInternalServerError)
			logger.Error(resp.Error, errors.Wrap(err, resp.Error), requestInfo(ctx), ctx.Request())

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			resp.Error = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func requestInfo(ctx echo.Context) map[string]interface{} {
	return map[string]interface{}{
		"method":     ctx.Request().Method,
		"path":       ctx.Request().URL.Path,
		"request_id": ctx.Response().Header().Get(echo.HeaderXRequestID),
	}
}
