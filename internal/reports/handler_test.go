package reports

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/shared"
	"github.com/aula-lms/aula-lms/internal/token"
)

// memoryReportRepo serves canned aggregate rows and records the thresholds
// it was asked for.
type memoryReportRepo struct {
	crowded  []CourseEnrollment
	students []StudentLoad
	busy     []LecturerLoad
	top      []CourseEnrollment
	averages []StudentAverage

	minStudents  int
	minCourses   int
	minLectured  int
	topLimit     int
	averageLimit int
}

func (r *memoryReportRepo) CoursesWithAtLeastStudents(ctx context.Context, min int) ([]CourseEnrollment, error) {
	r.minStudents = min
	return r.crowded, nil
}

func (r *memoryReportRepo) StudentsWithAtLeastCourses(ctx context.Context, min int) ([]StudentLoad, error) {
	r.minCourses = min
	return r.students, nil
}

func (r *memoryReportRepo) LecturersWithAtLeastCourses(ctx context.Context, min int) ([]LecturerLoad, error) {
	r.minLectured = min
	return r.busy, nil
}

func (r *memoryReportRepo) TopEnrolledCourses(ctx context.Context, limit int) ([]CourseEnrollment, error) {
	r.topLimit = limit
	return r.top, nil
}

func (r *memoryReportRepo) TopStudentsByAverageGrade(ctx context.Context, limit int) ([]StudentAverage, error) {
	r.averageLimit = limit
	return r.averages, nil
}

func newReportRouter(t *testing.T, repo *memoryReportRepo) (chi.Router, *token.Codec) {
	t.Helper()
	codec, err := token.NewCodec("handler-secret")
	require.NoError(t, err)

	gate := authz.Middleware{Resolver: shared.NewSessionResolver(codec)}
	handler := NewHandler(nil, repo, gate)

	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r, codec
}

func getReport(t *testing.T, router http.Handler, path, bearer string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestReportsRequireAuthentication(t *testing.T) {
	router, _ := newReportRouter(t, &memoryReportRepo{})

	for _, path := range []string{
		"/reports/courses/50students",
		"/reports/students/5courses",
		"/reports/lecturers/3courses",
		"/reports/top10enrolled",
		"/reports/top10students",
	} {
		rec := getReport(t, router, path, "")
		require.Equal(t, http.StatusUnauthorized, rec.Code, path)

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, "Unauthorized", body["message"], path)
	}
}

func TestCrowdedCoursesReport(t *testing.T) {
	repo := &memoryReportRepo{crowded: []CourseEnrollment{
		{CourseCode: "CS101", CourseName: "Intro", StudentCount: 61},
	}}
	router, codec := newReportRouter(t, repo)

	tok, err := codec.Encode(shared.Session{AccountID: 10, Role: shared.RoleStudent})
	require.NoError(t, err)

	rec := getReport(t, router, "/reports/courses/50students", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 50, repo.minStudents)

	var list []CourseEnrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, repo.crowded, list)
}

func TestBusyStudentsReport(t *testing.T) {
	repo := &memoryReportRepo{students: []StudentLoad{
		{StudentID: 100, Name: "Ada", CourseCount: 6},
	}}
	router, codec := newReportRouter(t, repo)

	tok, err := codec.Encode(shared.Session{AccountID: 20, Role: shared.RoleLecturer})
	require.NoError(t, err)

	rec := getReport(t, router, "/reports/students/5courses", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 5, repo.minCourses)

	var list []StudentLoad
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, repo.students, list)
}

func TestBusyLecturersReport(t *testing.T) {
	repo := &memoryReportRepo{busy: []LecturerLoad{
		{LecturerID: 200, Name: "Grace", CourseCount: 4},
	}}
	router, codec := newReportRouter(t, repo)

	tok, err := codec.Encode(shared.Session{AccountID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)

	rec := getReport(t, router, "/reports/lecturers/3courses", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 3, repo.minLectured)

	var list []LecturerLoad
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, repo.busy, list)
}

func TestTopEnrolledReport(t *testing.T) {
	repo := &memoryReportRepo{top: []CourseEnrollment{
		{CourseCode: "CS101", CourseName: "Intro", StudentCount: 90},
		{CourseCode: "CS202", CourseName: "Algorithms", StudentCount: 45},
	}}
	router, codec := newReportRouter(t, repo)

	tok, err := codec.Encode(shared.Session{AccountID: 10, Role: shared.RoleStudent})
	require.NoError(t, err)

	rec := getReport(t, router, "/reports/top10enrolled", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 10, repo.topLimit)

	var list []CourseEnrollment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Equal(t, repo.top, list)
}

func TestTopStudentsReportEmpty(t *testing.T) {
	repo := &memoryReportRepo{}
	router, codec := newReportRouter(t, repo)

	tok, err := codec.Encode(shared.Session{AccountID: 1, Role: shared.RoleAdmin})
	require.NoError(t, err)

	// No graded submissions yet; the report is still a 200.
	rec := getReport(t, router, "/reports/top10students", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 10, repo.averageLimit)

	var list []StudentAverage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Empty(t, list)
}
