package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/trezcool/englishcenter/core"
)

// redactedKeys are masked in logged request bodies.
var redactedKeys = map[string]bool{"password": true, "token": true}

func newRequestID() string {
	return uuid.New().String()
}

// bodyDumpMiddleware logs the JSON body of write requests.
func bodyDumpMiddleware(logger core.Logger) echo.MiddlewareFunc {
	return middleware.BodyDumpWithConfig(middleware.BodyDumpConfig{
		Skipper: func(ctx echo.Context) bool {
			m := ctx.Request().Method
			return m != http.MethodPost && m != http.MethodPut
		},
		Handler: func(ctx echo.Context, reqBody, _ []byte) {
			if len(reqBody) == 0 {
				return
			}
			logger.Debug(
				fmt.Sprintf("%s %s body: %s", ctx.Request().Method, ctx.Request().URL.Path, redact(reqBody)),
				requestInfo(ctx),
			)
		},
	})
}

// redact masks the sensitive keys of a JSON object or array of objects.
func redact(body []byte) string {
	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		return string(body)
	}
	out, err := json.Marshal(redactValue(data))
	if err != nil {
		return string(body)
	}
	return string(out)
}

func redactValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, sub := range val {
			if redactedKeys[k] {
				val[k] = "[REDACTED]"
				continue
			}
			val[k] = redactValue(sub)
		}
	case []interface{}:
		for i, sub := range val {
			val[i] = redactValue(sub)
		}
	}
	return v
}
