package echoapi_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/englishcenter/core"
	"github.com/trezcool/englishcenter/core/enrollment"
	"github.com/trezcool/englishcenter/core/student"
	"github.com/trezcool/englishcenter/tests"
)

func Test_studentApi_query(t *testing.T) {
	env := setup(t)
	amani, bora, chantal := env.fx.Students[0], env.fx.Students[1], env.fx.Students[2]

	tests := []httpTest{
		{name: "all, by name", path: "/api/students", wantData: marchallList(t, amani, bora, chantal)},
		{name: "status=INACTIVE", path: "/api/students?status=INACTIVE", wantData: marchallList(t)},
		{name: "search by name", path: "/api/students/search?q=BORA", wantData: marchallList(t, bora)},
		{name: "search by email", path: "/api/students/search?q=student3@", wantData: marchallList(t, chantal)},
		{name: "search (no match)", path: "/api/students/search?q=nobody", wantData: marchallList(t)},
		{
			name: "search requires a term", path: "/api/students/search?q=%20",
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, httpErr{Error: "search query is required"}),
		},
		{name: "retrieve", path: fmt.Sprintf("/api/students/%d", bora.ID), wantData: marchallObj(t, bora)},
		{
			name: "retrieve (unknown)", path: "/api/students/9999",
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	runHTTPTests(t, env.app, tests)
}

func Test_studentApi_create(t *testing.T) {
	env := setup(t)

	var std student.Student
	code := do(t, env.app, http.MethodPost, "/api/students", map[string]interface{}{
		"full_name":     "  Dieudonne Mutombo ",
		"email":         "Dikembe@Center.test",
		"phone":         "+243 81 000 0000",
		"date_of_birth": "2001-06-25",
	}, &std)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, "Dieudonne Mutombo", std.FullName)
	assert.Equal(t, "dikembe@center.test", std.Email)
	assert.Equal(t, student.StatusActive, std.Status)
	assert.Equal(t, core.NewDate(2001, 6, 25), std.DateOfBirth)
	assert.Equal(t, core.Today(), std.RegistrationDate)

	tests := []httpTest{
		{
			name: "duplicate email", method: http.MethodPost, path: "/api/students",
			body:     marchallObj(t, map[string]string{"full_name": "Someone Else", "email": "dikembe@center.test"}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "email already exists"}),
		},
		{
			name: "missing name", method: http.MethodPost, path: "/api/students",
			body:     marchallObj(t, map[string]string{"email": "x@center.test"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]interface{}{
				"error":  "full_name is required",
				"fields": map[string]string{"full_name": "full_name is required"},
			}),
		},
		{
			name: "invalid email", method: http.MethodPost, path: "/api/students",
			body:     marchallObj(t, map[string]string{"full_name": "X", "email": "not-an-email"}),
			wantCode: http.StatusBadRequest,
		},
		{
			name: "invalid phone", method: http.MethodPost, path: "/api/students",
			body:     marchallObj(t, map[string]string{"full_name": "X", "email": "x@center.test", "phone": "call me"}),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]interface{}{
				"error":  "phone must be a valid phone number",
				"fields": map[string]string{"phone": "phone must be a valid phone number"},
			}),
		},
		{
			name: "invalid date", method: http.MethodPost, path: "/api/students",
			body:     []byte(`{"full_name": "X", "email": "x@center.test", "date_of_birth": "25/06/2001"}`),
			wantCode: http.StatusBadRequest,
		},
	}
	runHTTPTests(t, env.app, tests)
}

func Test_studentApi_updateAndDelete(t *testing.T) {
	env := setup(t)
	amani, bora := env.fx.Students[0], env.fx.Students[1]

	var std student.Student
	path := fmt.Sprintf("/api/students/%d", amani.ID)
	code := do(t, env.app, http.MethodPut, path, map[string]string{
		"full_name": amani.FullName,
		"email":     amani.Email,
		"status":    student.StatusInactive,
	}, &std)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, student.StatusInactive, std.Status)
	assert.Equal(t, amani.RegistrationDate, std.RegistrationDate)

	testutil.CreateEnrollment(t, env.enrRepo, bora.ID, env.fx.Classes[0].ID, enrollment.StatusActive)

	tests := []httpTest{
		{
			name: "email taken", method: http.MethodPut, path: path,
			body:     marchallObj(t, map[string]string{"full_name": amani.FullName, "email": bora.Email}),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: "email already exists"}),
		},
		{
			name: "update unknown", method: http.MethodPut, path: "/api/students/9999",
			body:     marchallObj(t, map[string]string{"full_name": "X", "email": "x@center.test"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
		{
			name: "delete enrolled student", method: http.MethodDelete, path: fmt.Sprintf("/api/students/%d", bora.ID),
			wantCode: http.StatusConflict, wantData: marchallObj(t, httpErr{Error: student.ErrHasRecords.Error()}),
		},
		{
			name: "delete", method: http.MethodDelete, path: path,
			wantData: marchallObj(t, map[string]interface{}{"message": "Student deleted successfully", "student": std}),
		},
		{
			name: "delete again", method: http.MethodDelete, path: path,
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "student not found"}),
		},
	}
	runHTTPTests(t, env.app, tests)
}
