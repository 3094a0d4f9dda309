package echoapi_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/englishcenter/apps/api/echo"
	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/attendance"
	"github.com/trezcool/englishcenter/core/class"
	"github.com/trezcool/englishcenter/core/course"
	"github.com/trezcool/englishcenter/core/enrollment"
	"github.com/trezcool/englishcenter/core/session"
	"github.com/trezcool/englishcenter/core/student"
	"github.com/trezcool/englishcenter/core/teacher"
	logsvc "github.com/trezcool/englishcenter/services/logger"
	inmemdb "github.com/trezcool/englishcenter/storage/database/inmem"
	"github.com/trezcool/englishcenter/tests"
)

type testEnv struct {
	app *Server
	fx  testutil.Fixture

	stdRepo student.Repository
	tchRepo teacher.Repository
	crsRepo course.Repository
	clsRepo class.Repository
	sesRepo session.Repository
	enrRepo enrollment.Repository
	attRepo attendance.Repository

	clsSvc *class.Service
	attSvc *attendance.Service
}

func testConfig() *core.Config {
	return &core.Config{
		Env:        "TEST",
		TestMode:   true,
		AppName:    "English Center",
		Build:      "test",
		GradeScale: core.DefaultGradeScale,
		Server: core.ServerConfig{
			DisableRequestLogs: true,
			CORSOrigins:        []string{"*"},
		},
	}
}

// setup returns a server over a fresh in-memory store seeded with testutil.CreateFixture.
func setup(t *testing.T, opts ...func(*ServerDeps)) *testEnv {
	conf := testConfig()
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	validate, translator := core.NewValidator()

	// set up DB & repos
	db := inmemdb.Open()
	env := &testEnv{
		stdRepo: inmemdb.NewStudentRepository(db),
		tchRepo: inmemdb.NewTeacherRepository(db),
		crsRepo: inmemdb.NewCourseRepository(db),
		clsRepo: inmemdb.NewClassRepository(db),
		sesRepo: inmemdb.NewSessionRepository(db),
		enrRepo: inmemdb.NewEnrollmentRepository(db),
		attRepo: inmemdb.NewAttendanceRepository(db),
	}

	// set up services
	env.clsSvc = class.NewService(env.clsRepo, validate)
	env.attSvc = attendance.NewService(env.attRepo, nil, validate, logger)
	deps := ServerDeps{
		Conf:          conf,
		Logger:        logger,
		StudentSvc:    student.NewService(env.stdRepo, validate),
		TeacherSvc:    teacher.NewService(env.tchRepo, validate),
		CourseSvc:     course.NewService(env.crsRepo, validate),
		ClassSvc:      env.clsSvc,
		SessionSvc:    session.NewService(env.sesRepo, validate),
		EnrollmentSvc: enrollment.NewService(env.enrRepo, env.clsSvc, validate, logger),
		AttendanceSvc: env.attSvc,
		Validate:      validate,
		Translator:    translator,
	}
	for _, opt := range opts {
		opt(&deps)
	}

	env.fx = testutil.CreateFixture(t, testutil.FixtureRepos{
		Students: env.stdRepo,
		Teachers: env.tchRepo,
		Courses:  env.crsRepo,
		Classes:  env.clsRepo,
		Sessions: env.sesRepo,
	})

	// set up server
	env.app = NewServer(deps)
	return env
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app *Server, tests []httpTest) {
	for _, tt := range tests {
		if tt.method == "" {
			tt.method = http.MethodGet
		}
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

// do serves one request and decodes the JSON response into `dst` (when non-nil).
func do(t *testing.T, app *Server, method, path string, body interface{}, dst interface{}) int {
	var data []byte
	if body != nil {
		data = marchallObj(t, body)
	}
	req, rec := newRequest(method, path, data)
	app.ServeHTTP(rec, req)
	if dst != nil {
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), dst), rec.Body.String())
	}
	return rec.Code
}
