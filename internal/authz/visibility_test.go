package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

type memoryDirectory struct {
	students    map[int64]int64
	lecturers   map[int64]int64
	enrollments map[int64]map[string]bool
	ownership   map[int64]map[string]bool
}

func (d memoryDirectory) StudentIDByAccount(ctx context.Context, accountID int64) (int64, bool, error) {
	id, ok := d.students[accountID]
	return id, ok, nil
}

func (d memoryDirectory) LecturerIDByAccount(ctx context.Context, accountID int64) (int64, bool, error) {
	id, ok := d.lecturers[accountID]
	return id, ok, nil
}

func (d memoryDirectory) IsEnrolled(ctx context.Context, studentID int64, courseCode string) (bool, error) {
	return d.enrollments[studentID][courseCode], nil
}

func (d memoryDirectory) OwnsCourse(ctx context.Context, lecturerID int64, courseCode string) (bool, error) {
	return d.ownership[lecturerID][courseCode], nil
}

func newDirectory() memoryDirectory {
	return memoryDirectory{
		students:    map[int64]int64{10: 100},
		lecturers:   map[int64]int64{20: 200},
		enrollments: map[int64]map[string]bool{100: {"CS101": true}},
		ownership:   map[int64]map[string]bool{200: {"CS101": true}},
	}
}

func TestCheckAdminAlwaysAllowed(t *testing.T) {
	v := NewVisibility(newDirectory())
	sess := &shared.Session{AccountID: 99, Role: shared.RoleAdmin}
	require.NoError(t, v.Check(context.Background(), sess, "ANY999", Messages{}))
}

func TestCheckStudentEnrollment(t *testing.T) {
	v := NewVisibility(newDirectory())
	sess := &shared.Session{AccountID: 10, Role: shared.RoleStudent}

	require.NoError(t, v.Check(context.Background(), sess, "CS101", Messages{}))

	err := v.Check(context.Background(), sess, "CS202", Messages{StudentErr: "You can only view forums for your courses!"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Equal(t, "You can only view forums for your courses!", err.Error())
}

func TestCheckFlipsAfterEnrollment(t *testing.T) {
	dir := newDirectory()
	v := NewVisibility(dir)
	sess := &shared.Session{AccountID: 10, Role: shared.RoleStudent}

	err := v.Check(context.Background(), sess, "CS202", Messages{})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// Inserting the enrollment row is the only state change needed.
	dir.enrollments[100]["CS202"] = true
	require.NoError(t, v.Check(context.Background(), sess, "CS202", Messages{}))
}

func TestCheckLecturerOwnership(t *testing.T) {
	v := NewVisibility(newDirectory())
	sess := &shared.Session{AccountID: 20, Role: shared.RoleLecturer}

	require.NoError(t, v.Check(context.Background(), sess, "CS101", Messages{}))

	err := v.Check(context.Background(), sess, "CS202", Messages{LecturerErr: "You can only create forums for your own courses!"})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Equal(t, "You can only create forums for your own courses!", err.Error())
}

func TestCheckMissingDetailsRowDenies(t *testing.T) {
	v := NewVisibility(newDirectory())

	// Account 55 has a Student token but no student_details row; fail closed.
	student := &shared.Session{AccountID: 55, Role: shared.RoleStudent}
	err := v.Check(context.Background(), student, "CS101", Messages{})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	lecturer := &shared.Session{AccountID: 55, Role: shared.RoleLecturer}
	err = v.Check(context.Background(), lecturer, "CS101", Messages{})
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestCheckFallsBackToGenericDenial(t *testing.T) {
	v := NewVisibility(newDirectory())
	sess := &shared.Session{AccountID: 10, Role: shared.RoleStudent}

	err := v.Check(context.Background(), sess, "CS202", Messages{})
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Equal(t, GenericDenial, err.Error())
}
