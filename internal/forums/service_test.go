package forums

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aula-lms/aula-lms/internal/authz"
	"github.com/aula-lms/aula-lms/internal/platform/httpx"
	"github.com/aula-lms/aula-lms/internal/shared"
)

// memoryForumRepo backs the Repository, the CourseChecker and the
// authz.Directory for the service under test.
type memoryForumRepo struct {
	courses     map[string]int64
	students    map[int64]int64
	lecturerAcc map[int64]int64
	enrollments map[int64]map[string]bool

	forums  map[int64]Forum
	threads map[int64]Thread
	replies map[int64]Reply

	nextForum  int64
	nextThread int64
	nextReply  int64
}

func newMemoryForumRepo() *memoryForumRepo {
	return &memoryForumRepo{
		courses:     make(map[string]int64),
		students:    make(map[int64]int64),
		lecturerAcc: make(map[int64]int64),
		enrollments: make(map[int64]map[string]bool),
		forums:      make(map[int64]Forum),
		threads:     make(map[int64]Thread),
		replies:     make(map[int64]Reply),
	}
}

func (r *memoryForumRepo) CourseExists(ctx context.Context, courseCode string) (bool, error) {
	_, ok := r.courses[courseCode]
	return ok, nil
}

func (r *memoryForumRepo) StudentIDByAccount(ctx context.Context, accountID int64) (int64, bool, error) {
	id, ok := r.students[accountID]
	return id, ok, nil
}

func (r *memoryForumRepo) LecturerIDByAccount(ctx context.Context, accountID int64) (int64, bool, error) {
	id, ok := r.lecturerAcc[accountID]
	return id, ok, nil
}

func (r *memoryForumRepo) IsEnrolled(ctx context.Context, studentID int64, courseCode string) (bool, error) {
	return r.enrollments[studentID][courseCode], nil
}

func (r *memoryForumRepo) OwnsCourse(ctx context.Context, lecturerID int64, courseCode string) (bool, error) {
	return r.courses[courseCode] == lecturerID, nil
}

func (r *memoryForumRepo) ForumsByCourse(ctx context.Context, courseCode string) ([]Forum, error) {
	var list []Forum
	for _, f := range r.forums {
		if f.CourseCode == courseCode {
			list = append(list, f)
		}
	}
	return list, nil
}

func (r *memoryForumRepo) CreateForum(ctx context.Context, courseCode, topic string) (*Forum, error) {
	r.nextForum++
	f := Forum{ID: r.nextForum, CourseCode: courseCode, Topic: topic}
	r.forums[f.ID] = f
	return &f, nil
}

func (r *memoryForumRepo) GetForum(ctx context.Context, courseCode string, forumID int64) (*Forum, error) {
	f, ok := r.forums[forumID]
	if !ok || f.CourseCode != courseCode {
		return nil, nil
	}
	return &f, nil
}

func (r *memoryForumRepo) ThreadsByForum(ctx context.Context, forumID int64) ([]Thread, error) {
	var list []Thread
	for _, t := range r.threads {
		if t.ForumID == forumID {
			list = append(list, t)
		}
	}
	return list, nil
}

func (r *memoryForumRepo) CreateThread(ctx context.Context, t Thread) (*Thread, error) {
	r.nextThread++
	t.ID = r.nextThread
	r.threads[t.ID] = t
	return &t, nil
}

func (r *memoryForumRepo) GetThread(ctx context.Context, forumID, threadID int64) (*Thread, error) {
	t, ok := r.threads[threadID]
	if !ok || t.ForumID != forumID {
		return nil, nil
	}
	return &t, nil
}

func (r *memoryForumRepo) RepliesByThread(ctx context.Context, threadID int64) ([]Reply, error) {
	var list []Reply
	for _, rep := range r.replies {
		if rep.ThreadID == threadID {
			list = append(list, rep)
		}
	}
	return list, nil
}

func (r *memoryForumRepo) CreateReply(ctx context.Context, rep Reply) (*Reply, error) {
	r.nextReply++
	rep.ID = r.nextReply
	r.replies[rep.ID] = rep
	return &rep, nil
}

// Fixture: lecturer 200 (account 20) owns CS101; student 100 (account 10) is
// enrolled in it.
func newForumFixture(t *testing.T) (*Service, *memoryForumRepo) {
	t.Helper()
	repo := newMemoryForumRepo()
	repo.courses["CS101"] = 200
	repo.students[10] = 100
	repo.lecturerAcc[20] = 200
	repo.enrollments[100] = map[string]bool{"CS101": true}
	return NewService(repo, repo, authz.NewVisibility(repo)), repo
}

func studentSession() *shared.Session {
	return &shared.Session{AccountID: 10, Role: shared.RoleStudent}
}

func lecturerSession() *shared.Session {
	return &shared.Session{AccountID: 20, Role: shared.RoleLecturer}
}

func TestForumsForCourse(t *testing.T) {
	svc, _ := newForumFixture(t)

	_, err := svc.ForumsForCourse(context.Background(), studentSession(), "CS101")
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Equal(t, "No forums found for this course", err.Error())

	_, err = svc.CreateForum(context.Background(), lecturerSession(), "CS101", "General")
	require.NoError(t, err)

	list, err := svc.ForumsForCourse(context.Background(), studentSession(), "CS101")
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.ForumsForCourse(context.Background(), studentSession(), "NOPE")
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Equal(t, "There is no course with that course code!", err.Error())
}

func TestForumsVisibilityDenial(t *testing.T) {
	svc, repo := newForumFixture(t)
	repo.courses["CS202"] = 999

	_, err := svc.ForumsForCourse(context.Background(), studentSession(), "CS202")
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Equal(t, "You can only view forums for your courses!", err.Error())
}

func TestCreateForumOwnership(t *testing.T) {
	svc, repo := newForumFixture(t)
	repo.courses["CS202"] = 999

	_, err := svc.CreateForum(context.Background(), lecturerSession(), "CS202", "General")
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Equal(t, "You can only create forums for your own courses!", err.Error())

	admin := &shared.Session{AccountID: 1, Role: shared.RoleAdmin}
	f, err := svc.CreateForum(context.Background(), admin, "CS202", "General")
	require.NoError(t, err)
	require.Equal(t, "General", f.Topic)
}

func TestThreadsLifecycle(t *testing.T) {
	svc, _ := newForumFixture(t)

	f, err := svc.CreateForum(context.Background(), lecturerSession(), "CS101", "General")
	require.NoError(t, err)

	_, err = svc.ThreadsForForum(context.Background(), studentSession(), "CS101", f.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Equal(t, "No discussion threads found for this forum", err.Error())

	// Enrolled students may open threads.
	th, err := svc.CreateThread(context.Background(), studentSession(), "CS101", f.ID, "Question", "How does grading work?")
	require.NoError(t, err)
	require.Equal(t, int64(10), th.AuthorID)

	list, err := svc.ThreadsForForum(context.Background(), studentSession(), "CS101", f.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = svc.ThreadsForForum(context.Background(), studentSession(), "CS101", 999)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Equal(t, "There is no forum with that ID!", err.Error())
}

func TestRepliesLifecycle(t *testing.T) {
	svc, repo := newForumFixture(t)

	f, err := svc.CreateForum(context.Background(), lecturerSession(), "CS101", "General")
	require.NoError(t, err)
	th, err := svc.CreateThread(context.Background(), lecturerSession(), "CS101", f.ID, "Welcome", "Ask here")
	require.NoError(t, err)

	_, err = svc.RepliesForThread(context.Background(), studentSession(), "CS101", f.ID, th.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
	require.Equal(t, "No discussion replies found for this thread", err.Error())

	rep, err := svc.CreateReply(context.Background(), studentSession(), "CS101", f.ID, th.ID, "Thanks!")
	require.NoError(t, err)
	require.Equal(t, "Thanks!", rep.ReplyText)

	list, err := svc.RepliesForThread(context.Background(), studentSession(), "CS101", f.ID, th.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// A student who is not enrolled cannot reply.
	repo.students[30] = 300
	outsider := &shared.Session{AccountID: 30, Role: shared.RoleStudent}
	_, err = svc.CreateReply(context.Background(), outsider, "CS101", f.ID, th.ID, "Hi")
	require.ErrorIs(t, err, httpx.ErrForbidden)
	require.Equal(t, "You are not enrolled in this course!", err.Error())
}
