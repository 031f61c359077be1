package courses

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/filestore"
	"github.com/aula-lms/aula-lms/internal/shared"
	"github.com/aula-lms/aula-lms/internal/token"
)

func newCourseRouter(t *testing.T) (chi.Router, *token.Codec, *memoryCourseRepo) {
	t.Helper()
	repo := newMemoryCourseRepo()
	repo.lecturers[200] = true
	repo.lecturerAcc[20] = 200
	repo.students[10] = 100
	repo.details[100] = Member{StudentID: 100, AccountID: 10}
	repo.courses["CS101"] = Course{Code: "CS101", Name: "Intro", LecturerID: 200, Semester: 1}

	codec, err := token.NewCodec("handler-secret")
	require.NoError(t, err)

	gate := authz.Middleware{Resolver: shared.NewSessionResolver(codec)}
	svc := NewService(repo, authz.NewVisibility(repo), filestore.New(t.TempDir()))
	handler := NewHandler(nil, svc, gate)

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, codec, repo
}

func doRequest(t *testing.T, router http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// The enrollment endpoints answer with the bare pair, no envelope.
func TestRegisterEndpointBody(t *testing.T) {
	router, codec, _ := newCourseRouter(t)

	tok, err := codec.Encode(shared.Session{AccountID: 10, Role: shared.RoleStudent})
	require.NoError(t, err)

	rec := doRequest(t, router, "POST", "/courses/register/CS101", "", tok)
	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, map[string]any{
		"course_code": "CS101",
		"student_id":  float64(100),
	}, body)
}

func TestUnregisterEndpointBody(t *testing.T) {
	router, codec, repo := newCourseRouter(t)
	repo.enrollments[100] = map[string]bool{"CS101": true}

	tok, err := codec.Encode(shared.Session{AccountID: 10, Role: shared.RoleStudent})
	require.NoError(t, err)

	rec := doRequest(t, router, "DELETE", "/courses/unregister/CS101", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, map[string]any{
		"course_code": "CS101",
		"student_id":  float64(100),
	}, body)
}

// List endpoints answer with a top-level array.
func TestListCoursesEndpointBody(t *testing.T) {
	router, codec, _ := newCourseRouter(t)

	tok, err := codec.Encode(shared.Session{AccountID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)

	rec := doRequest(t, router, "GET", "/courses", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	require.Equal(t, "CS101", list[0]["course_code"])
	require.Equal(t, "Intro", list[0]["course_name"])
}

func TestGetCourseEndpointBody(t *testing.T) {
	router, codec, _ := newCourseRouter(t)

	tok, err := codec.Encode(shared.Session{AccountID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)

	rec := doRequest(t, router, "GET", "/courses/CS101", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)

	var c map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	require.Equal(t, "CS101", c["course_code"])
	require.Equal(t, float64(200), c["lecturer_id"])
	require.Equal(t, float64(1), c["semester"])
}

func TestCreateCourseEndpointBody(t *testing.T) {
	router, codec, _ := newCourseRouter(t)

	tok, err := codec.Encode(shared.Session{AccountID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)

	rec := doRequest(t, router, "POST", "/courses",
		`{"course_code":"CS202","course_name":"Algorithms","lecturer_id":200,"semester":2}`, tok)
	require.Equal(t, http.StatusCreated, rec.Code)

	var c map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	require.Equal(t, "CS202", c["course_code"])
}
