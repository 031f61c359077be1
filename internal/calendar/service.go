package calendar

import (
	"context"
	"time"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// Service carries the calendar rules for course-scoped events.
type Service struct {
	repo       Repository
	visibility *authz.Visibility
}

// NewService constructs a Service.
func NewService(repo Repository, visibility *authz.Visibility) *Service {
	return &Service{repo: repo, visibility: visibility}
}

func (s *Service) requireCourse(ctx context.Context, courseCode string) error {
	ok, err := s.repo.CourseExists(ctx, courseCode)
	if err != nil {
		return err
	}
	if !ok {
		return httpx.Fail(httpx.ErrNotFound, "There is no course with that course code!")
	}
	return nil
}

// CreateEvent adds a dated event to a course the caller teaches.
func (s *Service) CreateEvent(ctx context.Context, sess *shared.Session, courseCode, name string, date time.Time) (*Event, error) {
	if err := s.requireCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		LecturerErr: "You can only create calendar events for your own courses!",
	})
	if err != nil {
		return nil, err
	}
	return s.repo.CreateEvent(ctx, Event{CourseCode: courseCode, EventName: name, Date: date})
}

// EventsForCourse lists a course's events, visibility-checked.
func (s *Service) EventsForCourse(ctx context.Context, sess *shared.Session, courseCode string) ([]Event, error) {
	if err := s.requireCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You can only view calendar events for your courses!",
		LecturerErr: "You can only view calendar events for your courses!",
	})
	if err != nil {
		return nil, err
	}

	events, err := s.repo.EventsByCourse(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "No calendar events found for this course")
	}
	return events, nil
}

// EventsForCourseStudent lists a course's events as seen by one enrolled
// student. A student session may only query its own student id.
func (s *Service) EventsForCourseStudent(ctx context.Context, sess *shared.Session, courseCode string, studentID int64) ([]Event, error) {
	if err := s.requireCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	if err := s.requireOwnStudentID(ctx, sess, studentID); err != nil {
		return nil, err
	}

	events, err := s.repo.EventsByCourseAndStudent(ctx, courseCode, studentID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "No calendar events found for this course")
	}
	return events, nil
}

// EventsForStudent lists every event across a student's enrolled courses.
func (s *Service) EventsForStudent(ctx context.Context, sess *shared.Session, studentID int64) ([]Event, error) {
	if err := s.requireOwnStudentID(ctx, sess, studentID); err != nil {
		return nil, err
	}

	events, err := s.repo.EventsByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "No calendar events found for this student")
	}
	return events, nil
}

func (s *Service) requireOwnStudentID(ctx context.Context, sess *shared.Session, studentID int64) error {
	if sess.Role != shared.RoleStudent {
		return nil
	}
	own, found, err := s.repo.StudentIDByAccount(ctx, sess.AccountID)
	if err != nil {
		return err
	}
	if !found || own != studentID {
		return httpx.Fail(httpx.ErrForbidden, "You can only view your own calendar events!")
	}
	return nil
}
