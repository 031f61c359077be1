package authz

import (
	"context"
	"fmt"

	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// GenericDenial is the fallback message when a call site supplies no
// role-specific text.
const GenericDenial = "You can only view your courses!"

// Messages carries the per-call-site denial texts for the visibility check.
type Messages struct {
	StudentErr  string
	LecturerErr string
}

// Directory resolves the role-scoped identities behind a session and their
// relationship to a course. All lookups are read-only.
type Directory interface {
	StudentIDByAccount(ctx context.Context, accountID int64) (int64, bool, error)
	LecturerIDByAccount(ctx context.Context, accountID int64) (int64, bool, error)
	IsEnrolled(ctx context.Context, studentID int64, courseCode string) (bool, error)
	OwnsCourse(ctx context.Context, lecturerID int64, courseCode string) (bool, error)
}

// Visibility narrows a role-gated request down to "this principal's own
// course": enrollment for students, ownership for lecturers, always-allow
// for admins.
type Visibility struct {
	dir Directory
}

// NewVisibility constructs a Visibility checker.
func NewVisibility(dir Directory) *Visibility {
	return &Visibility{dir: dir}
}

// Check returns nil when the session may access courseCode's sub-resources,
// or an httpx.ErrForbidden-wrapped error carrying the denial message. The
// checker does not verify course existence; that is the handler's prior
// concern. A missing details row for the claimed role denies rather than
// errors out.
func (v *Visibility) Check(ctx context.Context, sess *shared.Session, courseCode string, msgs Messages) error {
	switch sess.Role {
	case shared.RoleAdmin:
		return nil

	case shared.RoleStudent:
		studentID, found, err := v.dir.StudentIDByAccount(ctx, sess.AccountID)
		if err != nil {
			return fmt.Errorf("authz: student lookup: %w", err)
		}
		if !found {
			return httpx.Fail(httpx.ErrForbidden, denial(msgs.StudentErr))
		}
		enrolled, err := v.dir.IsEnrolled(ctx, studentID, courseCode)
		if err != nil {
			return fmt.Errorf("authz: enrollment lookup: %w", err)
		}
		if !enrolled {
			return httpx.Fail(httpx.ErrForbidden, denial(msgs.StudentErr))
		}
		return nil

	case shared.RoleLecturer:
		lecturerID, found, err := v.dir.LecturerIDByAccount(ctx, sess.AccountID)
		if err != nil {
			return fmt.Errorf("authz: lecturer lookup: %w", err)
		}
		if !found {
			return httpx.Fail(httpx.ErrForbidden, denial(msgs.LecturerErr))
		}
		owns, err := v.dir.OwnsCourse(ctx, lecturerID, courseCode)
		if err != nil {
			return fmt.Errorf("authz: ownership lookup: %w", err)
		}
		if !owns {
			return httpx.Fail(httpx.ErrForbidden, denial(msgs.LecturerErr))
		}
		return nil
	}

	return httpx.Fail(httpx.ErrForbidden, GenericDenial)
}

func denial(msg string) string {
	if msg == "" {
		return GenericDenial
	}
	return msg
}
