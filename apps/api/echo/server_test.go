package echoapi_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/englishcenter/apps/api/echo"
	"github.com/trezcool/englishcenter/core"
)

func Test_server_healthz(t *testing.T) {
	healthy := setup(t)

	down := setup(t, func(deps *ServerDeps) {
		deps.HealthCheck = func(context.Context) error {
			return core.NewPersistenceError("pinging database", errors.New("connection refused"), true)
		}
	})

	broken := setup(t, func(deps *ServerDeps) {
		deps.HealthCheck = func(context.Context) error {
			return core.NewPersistenceError("pinging database", errors.New("syntax error"), false)
		}
	})

	runHTTPTests(t, healthy.app, []httpTest{
		{name: "healthy", path: "/healthz", wantData: marchallObj(t, map[string]string{"status": "ok"})},
		{name: "unknown route", path: "/api/nope", wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "Not Found"})},
		{name: "trailing slash", path: "/healthz/", wantData: marchallObj(t, map[string]string{"status": "ok"})},
	})
	runHTTPTests(t, down.app, []httpTest{
		{name: "storage down", path: "/healthz", wantCode: http.StatusServiceUnavailable, wantData: marchallObj(t, httpErr{Error: "storage unavailable"})},
	})
	runHTTPTests(t, broken.app, []httpTest{
		{name: "storage error", path: "/healthz", wantCode: http.StatusInternalServerError, wantData: marchallObj(t, httpErr{Error: "Internal Server Error"})},
	})
}

func Test_server_index(t *testing.T) {
	env := setup(t)

	var resp struct {
		Message   string            `json:"message"`
		Version   string            `json:"version"`
		Timestamp string            `json:"timestamp"`
		Endpoints map[string]string `json:"endpoints"`
	}
	require.Equal(t, http.StatusOK, do(t, env.app, http.MethodGet, "/api", nil, &resp))
	assert.Equal(t, "English Center API", resp.Message)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.NotEmpty(t, resp.Timestamp)
	assert.Equal(t, "/api/attendances", resp.Endpoints["attendances"])
	assert.Len(t, resp.Endpoints, 10)
}

func Test_server_metrics(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodGet, "/api/students")
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	req, rec = newRequest(http.MethodGet, "/api/students/9999")
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	req, rec = newRequest(http.MethodGet, "/metrics")
	env.app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `http_requests_total{code="200",method="GET",route="/api/students"} 1`), body)
	assert.True(t, strings.Contains(body, `http_requests_total{code="404",method="GET",route="/api/students/:id"} 1`), body)
	assert.True(t, strings.Contains(body, "http_request_duration_seconds"), body)
}

func Test_server_requestID(t *testing.T) {
	env := setup(t)

	req, rec := newRequest(http.MethodGet, "/healthz")
	env.app.ServeHTTP(rec, req)
	assert.Len(t, rec.Header().Get("X-Request-Id"), 36)

	req, rec = newRequest(http.MethodGet, "/healthz")
	req.Header.Set("X-Request-Id", "from-the-proxy")
	env.app.ServeHTTP(rec, req)
	assert.Equal(t, "from-the-proxy", rec.Header().Get("X-Request-Id"))
}
