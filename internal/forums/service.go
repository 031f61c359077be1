package forums

import (
	"context"
	"time"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// CourseChecker confirms a course exists before forum rules run.
type CourseChecker interface {
	CourseExists(ctx context.Context, courseCode string) (bool, error)
}

// Service carries the discussion board rules. Every operation is scoped to a
// course the caller can see.
type Service struct {
	repo       Repository
	courses    CourseChecker
	visibility *authz.Visibility
	now        func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, courses CourseChecker, visibility *authz.Visibility) *Service {
	return &Service{repo: repo, courses: courses, visibility: visibility, now: time.Now}
}

func (s *Service) requireCourse(ctx context.Context, courseCode string) error {
	ok, err := s.courses.CourseExists(ctx, courseCode)
	if err != nil {
		return err
	}
	if !ok {
		return httpx.Fail(httpx.ErrNotFound, "There is no course with that course code!")
	}
	return nil
}

// ForumsForCourse lists the forums of a course the caller can see.
func (s *Service) ForumsForCourse(ctx context.Context, sess *shared.Session, courseCode string) ([]Forum, error) {
	if err := s.requireCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You can only view forums for your courses!",
		LecturerErr: "You can only view forums for your courses!",
	})
	if err != nil {
		return nil, err
	}

	forums, err := s.repo.ForumsByCourse(ctx, courseCode)
	if err != nil {
		return nil, err
	}
	if len(forums) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "No forums found for this course")
	}
	return forums, nil
}

// CreateForum opens a new forum under a course the caller teaches.
func (s *Service) CreateForum(ctx context.Context, sess *shared.Session, courseCode, topic string) (*Forum, error) {
	if err := s.requireCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		LecturerErr: "You can only create forums for your own courses!",
	})
	if err != nil {
		return nil, err
	}
	return s.repo.CreateForum(ctx, courseCode, topic)
}

func (s *Service) requireForum(ctx context.Context, courseCode string, forumID int64) (*Forum, error) {
	if err := s.requireCourse(ctx, courseCode); err != nil {
		return nil, err
	}
	f, err := s.repo.GetForum(ctx, courseCode, forumID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, "There is no forum with that ID!")
	}
	return f, nil
}

// ThreadsForForum lists the discussion threads of a forum.
func (s *Service) ThreadsForForum(ctx context.Context, sess *shared.Session, courseCode string, forumID int64) ([]Thread, error) {
	if _, err := s.requireForum(ctx, courseCode, forumID); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You can only view forums for your courses!",
		LecturerErr: "You can only view forums for your courses!",
	})
	if err != nil {
		return nil, err
	}

	threads, err := s.repo.ThreadsByForum(ctx, forumID)
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "No discussion threads found for this forum")
	}
	return threads, nil
}

// CreateThread opens a discussion under a forum. Enrolled students may post
// threads alongside the course's lecturer and admins.
func (s *Service) CreateThread(ctx context.Context, sess *shared.Session, courseCode string, forumID int64, title, post string) (*Thread, error) {
	f, err := s.requireForum(ctx, courseCode, forumID)
	if err != nil {
		return nil, err
	}
	err = s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You are not enrolled in this course!",
		LecturerErr: "You can only create threads for your own courses!",
	})
	if err != nil {
		return nil, err
	}

	return s.repo.CreateThread(ctx, Thread{
		ForumID:   f.ID,
		Title:     title,
		Post:      post,
		AuthorID:  sess.AccountID,
		CreatedAt: s.now().UTC(),
	})
}

func (s *Service) requireThread(ctx context.Context, courseCode string, forumID, threadID int64) (*Thread, error) {
	if _, err := s.requireForum(ctx, courseCode, forumID); err != nil {
		return nil, err
	}
	t, err := s.repo.GetThread(ctx, forumID, threadID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, httpx.Fail(httpx.ErrNotFound, "There is no thread with that ID!")
	}
	return t, nil
}

// CreateReply answers a thread.
func (s *Service) CreateReply(ctx context.Context, sess *shared.Session, courseCode string, forumID, threadID int64, replyText string) (*Reply, error) {
	t, err := s.requireThread(ctx, courseCode, forumID, threadID)
	if err != nil {
		return nil, err
	}
	err = s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You are not enrolled in this course!",
		LecturerErr: "You can only make replies to threads in courses that you lecture!",
	})
	if err != nil {
		return nil, err
	}

	return s.repo.CreateReply(ctx, Reply{
		ThreadID:  t.ID,
		ReplyText: replyText,
		AuthorID:  sess.AccountID,
		CreatedAt: s.now().UTC(),
	})
}

// RepliesForThread lists the replies of a thread.
func (s *Service) RepliesForThread(ctx context.Context, sess *shared.Session, courseCode string, forumID, threadID int64) ([]Reply, error) {
	if _, err := s.requireThread(ctx, courseCode, forumID, threadID); err != nil {
		return nil, err
	}
	err := s.visibility.Check(ctx, sess, courseCode, authz.Messages{
		StudentErr:  "You can only view forums for your courses!",
		LecturerErr: "You can only view forums for your courses!",
	})
	if err != nil {
		return nil, err
	}

	replies, err := s.repo.RepliesByThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if len(replies) == 0 {
		return nil, httpx.Fail(httpx.ErrNotFound, "No discussion replies found for this thread")
	}
	return replies, nil
}
